// Package logging is the log pipeline shared by poold and poolctl, built on
// charmbracelet/log with lipgloss level styles.
//
// The two binaries log in different modes:
//
//   - ModeDaemon (poold, the default): every level goes to one stream,
//     stderr or the configured log file, with RFC3339 timestamps and a
//     "poold" prefix. Daemon logs are the service record and are read
//     after the fact, often interleaved with other units in a journal.
//   - ModeCLI (poolctl): stdout belongs to command results, which may be
//     JSON or YAML piped into scripts, so every log line goes to stderr.
//     Lines carry no timestamp and use short lower-case labels.
//
// SUCCESS is an INFO-level line with its own label; it is filtered with INFO.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	stdlog "log"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Mode selects how log lines are laid out and where they go.
type Mode int

const (
	ModeDaemon Mode = iota
	ModeCLI
)

// daemonPrefix tags every daemon line.
const daemonPrefix = "poold"

// suppressedLevel is above every level the loggers emit.
const suppressedLevel = log.FatalLevel + 1

var (
	mode   = ModeDaemon
	output io.Writer = os.Stderr
	level  = log.InfoLevel

	logger        = newLogger(output, mode, false)
	successLogger = newLogger(output, mode, true)

	// cliConfigured is set once poolctl has taken over logging.
	cliConfigured = false
)

// label is the text and color of one level in one mode.
type label struct {
	daemon string
	cli    string
	color  string
}

var labels = map[log.Level]label{
	log.DebugLevel: {daemon: "DEBUG", cli: "debug", color: "#7F6DFF"},
	log.InfoLevel:  {daemon: "INFO", cli: "info", color: "#42E7FF"},
	log.WarnLevel:  {daemon: "WARN", cli: "warning", color: "#FFE763"},
	log.ErrorLevel: {daemon: "ERROR", cli: "error", color: "#FF4473"},
}

var successLabel = label{daemon: "SUCCESS", cli: "ok", color: "#60F281"}

func (l label) style(m Mode) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(l.color))
	if m == ModeCLI {
		return s.SetString(l.cli + ":").Bold(true)
	}
	return s.SetString(l.daemon).MaxWidth(7)
}

func levelStyles(m Mode, success bool) *log.Styles {
	styles := log.DefaultStyles()
	for lvl, l := range labels {
		styles.Levels[lvl] = l.style(m)
	}
	if success {
		styles.Levels[log.InfoLevel] = successLabel.style(m)
	}
	return styles
}

func newLogger(w io.Writer, m Mode, success bool) *log.Logger {
	opts := log.Options{Level: level}
	if m == ModeDaemon {
		opts.ReportTimestamp = true
		opts.TimeFormat = time.RFC3339
		opts.Prefix = daemonPrefix
	}
	l := log.NewWithOptions(w, opts)
	l.SetStyles(levelStyles(m, success))
	return l
}

// rebuild recreates both loggers for the current mode, writer and level.
func rebuild() {
	logger = newLogger(output, mode, false)
	successLogger = newLogger(output, mode, true)
}

func setLevel(lvl log.Level) {
	level = lvl
	logger.SetLevel(lvl)
	successLogger.SetLevel(lvl)
}

// SetMode switches the layout of every later log line. poolctl calls it
// with ModeCLI before its first command runs.
func SetMode(m Mode) {
	mode = m
	if m == ModeCLI {
		cliConfigured = true
	}
	rebuild()
}

// Info logs informational messages such as served requests and stored entries.
func Info(format string, v ...any) {
	logger.Info(fmt.Sprintf(format, v...))
}

// Warn logs non-critical issues.
func Warn(format string, v ...any) {
	logger.Warn(fmt.Sprintf(format, v...))
}

// Error logs failures.
func Error(format string, v ...any) {
	logger.Error(fmt.Sprintf(format, v...))
}

// Success logs a completed operation. It shows whenever INFO does.
func Success(format string, v ...any) {
	successLogger.Info(fmt.Sprintf(format, v...))
}

// Debug logs detail for troubleshooting.
func Debug(format string, v ...any) {
	logger.Debug(fmt.Sprintf(format, v...))
}

// SetLevel sets the minimum level. Accepts DEBUG, INFO, WARN or ERROR and
// falls back to INFO for anything else.
func SetLevel(name string) {
	switch name {
	case "DEBUG":
		setLevel(log.DebugLevel)
	case "WARN":
		setLevel(log.WarnLevel)
	case "ERROR":
		setLevel(log.ErrorLevel)
	default:
		setLevel(log.InfoLevel)
	}
}

// SetOutput sends every level to w. Passing nil suppresses all output.
func SetOutput(w *os.File) {
	if w == nil {
		setLevel(suppressedLevel)
		return
	}
	setWriter(w)
}

func setWriter(w io.Writer) {
	output = w
	rebuild()
}

// SuppressOutput keeps only ERROR lines. poolctl runs this way unless asked
// to be verbose.
func SuppressOutput() {
	setLevel(log.ErrorLevel)
	cliConfigured = true
}

// RestoreOutput returns to stderr at INFO level in the current mode.
func RestoreOutput() {
	output = os.Stderr
	level = log.InfoLevel
	rebuild()
	cliConfigured = true
}

// IsConfiguredByCLI reports whether poolctl has taken over logging.
func IsConfiguredByCLI() bool {
	return cliConfigured
}

// ============================================================================
// GENERIC LOG INTEGRATION - writers for libraries that only take an io.Writer
// ============================================================================

// LevelWriter forwards each written line to one log level, with an optional
// prefix naming the source.
type LevelWriter struct {
	level  string
	prefix string
}

// NewLevelWriter creates a writer that logs each line at level (DEBUG,
// INFO, WARN or ERROR) with prefix.
func NewLevelWriter(level, prefix string) io.Writer {
	return &LevelWriter{level: strings.ToUpper(level), prefix: prefix}
}

// Write logs every non-blank line of p.
func (w *LevelWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		msg := line
		if w.prefix != "" {
			msg = w.prefix + ": " + line
		}
		switch w.level {
		case "DEBUG":
			Debug("%s", msg)
		case "WARN":
			Warn("%s", msg)
		case "ERROR":
			Error("%s", msg)
		default:
			Info("%s", msg)
		}
	}
	return len(p), nil
}

// RedirectStandardLog routes the standard library logger into w. Passing
// nil discards it. The daemon uses this for net/http server errors and
// dependencies that log through the global logger.
func RedirectStandardLog(w io.Writer) {
	if w == nil {
		stdlog.SetOutput(io.Discard)
		return
	}
	stdlog.SetFlags(0)
	stdlog.SetOutput(w)
}
