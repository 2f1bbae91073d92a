package logging

import (
	"bytes"
	"os"
	"strings"
	"testing"

	stdlog "log"
)

// captureLogOutput sends the package loggers to a buffer while fn runs.
func captureLogOutput(level string, fn func()) string {
	var buf bytes.Buffer

	origOutput, origLevel := output, logger.GetLevel()
	setWriter(&buf)
	defer func() {
		output = origOutput
		setLevel(origLevel)
		rebuild()
	}()

	SetLevel(level)
	fn()

	return strings.TrimSpace(buf.String())
}

// withMode runs fn in mode m and restores the daemon layout afterwards.
func withMode(m Mode, fn func()) {
	prevMode, prevCLI := mode, cliConfigured
	SetMode(m)
	defer func() {
		cliConfigured = prevCLI
		SetMode(prevMode)
	}()
	fn()
}

// TestLogLevels tests that logging functions write their message
func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func()
		expected string
	}{
		{
			name:     "Info level",
			logFunc:  func() { Info("test info message") },
			expected: "test info message",
		},
		{
			name:     "Warn level",
			logFunc:  func() { Warn("test warn message") },
			expected: "test warn message",
		},
		{
			name:     "Error level",
			logFunc:  func() { Error("test error message") },
			expected: "test error message",
		},
		{
			name:     "Debug level",
			logFunc:  func() { Debug("test debug message") },
			expected: "test debug message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput("DEBUG", tt.logFunc)

			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain '%s', got '%s'", tt.expected, output)
			}
		})
	}
}

// TestSetLevel tests that log level filtering works correctly
func TestSetLevel(t *testing.T) {
	tests := []struct {
		name         string
		level        string
		logFunc      func()
		shouldOutput bool
	}{
		{
			name:         "Info logged at INFO level",
			level:        "INFO",
			logFunc:      func() { Info("info message") },
			shouldOutput: true,
		},
		{
			name:         "Debug filtered at INFO level",
			level:        "INFO",
			logFunc:      func() { Debug("debug message") },
			shouldOutput: false,
		},
		{
			name:         "Error logged at WARN level",
			level:        "WARN",
			logFunc:      func() { Error("error message") },
			shouldOutput: true,
		},
		{
			name:         "Warn filtered at ERROR level",
			level:        "ERROR",
			logFunc:      func() { Warn("warn message") },
			shouldOutput: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput(tt.level, tt.logFunc)

			if tt.shouldOutput && output == "" {
				t.Error("Expected output but got none")
			}
			if !tt.shouldOutput && output != "" {
				t.Errorf("Expected no output but got: %s", output)
			}
		})
	}
}

// TestLevelWriter tests that each written line becomes one prefixed log entry
func TestLevelWriter(t *testing.T) {
	output := captureLogOutput("DEBUG", func() {
		w := NewLevelWriter("warn", "gin")
		if _, err := w.Write([]byte("first line\n\nsecond line\n")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	})

	for _, want := range []string{"gin: first line", "gin: second line"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got %q", want, output)
		}
	}
	if n := strings.Count(output, "\n") + 1; n != 2 {
		t.Errorf("Expected 2 log lines, got %d: %q", n, output)
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if err := ValidateLogLevel(level); err != nil {
			t.Errorf("ValidateLogLevel(%q) = %v, want nil", level, err)
		}
	}
	for _, level := range []string{"", "debug", "TRACE"} {
		if err := ValidateLogLevel(level); err == nil {
			t.Errorf("ValidateLogLevel(%q) = nil, want error", level)
		}
	}
}

func TestFormatRequestID(t *testing.T) {
	id := "3f1c2a9e-7b44-4d7a-9c1e-5a0f2d8b6e11"

	captureLogOutput("INFO", func() {
		if got := FormatRequestID(id); got != "3f1c2a9e" {
			t.Errorf("FormatRequestID() at INFO = %q, want %q", got, "3f1c2a9e")
		}
		if got := FormatRequestID("abc"); got != "abc" {
			t.Errorf("FormatRequestID(short) = %q, want %q", got, "abc")
		}
	})

	captureLogOutput("DEBUG", func() {
		if got := FormatRequestID(id); got != id {
			t.Errorf("FormatRequestID() at DEBUG = %q, want full id", got)
		}
	})
}

func TestModeLayout(t *testing.T) {
	tests := []struct {
		name    string
		mode    Mode
		want    []string
		notWant []string
	}{
		{
			name:    "daemon",
			mode:    ModeDaemon,
			want:    []string{"poold", "WARN", "disk almost full"},
			notWant: []string{"warning:"},
		},
		{
			name:    "cli",
			mode:    ModeCLI,
			want:    []string{"warning:", "disk almost full"},
			notWant: []string{"poold", "WARN "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out string
			withMode(tt.mode, func() {
				out = captureLogOutput("INFO", func() { Warn("disk almost full") })
			})
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Expected %q in %q", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("Did not expect %q in %q", w, out)
				}
			}
		})
	}
}

func TestSuccessFollowsInfo(t *testing.T) {
	withMode(ModeCLI, func() {
		if out := captureLogOutput("INFO", func() { Success("pool added") }); !strings.Contains(out, "ok: pool added") {
			t.Errorf("Expected success line, got %q", out)
		}
		if out := captureLogOutput("ERROR", func() { Success("pool added") }); out != "" {
			t.Errorf("Expected no output at ERROR, got %q", out)
		}
	})
}

func TestRedirectStandardLog(t *testing.T) {
	defer func() {
		stdlog.SetOutput(os.Stderr)
		stdlog.SetFlags(stdlog.LstdFlags)
	}()

	out := captureLogOutput("INFO", func() {
		RedirectStandardLog(NewLevelWriter("ERROR", "http"))
		stdlog.Print("TLS handshake error")
	})
	if !strings.Contains(out, "http: TLS handshake error") {
		t.Errorf("Expected standard log line to be forwarded, got %q", out)
	}
}
