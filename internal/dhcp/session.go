package dhcp

import (
	"context"
	"strings"

	"github.com/concave-dev/dhcpool/internal/eventloop"
	"github.com/concave-dev/dhcpool/internal/logging"
)

// Verdict is the server's last accepted answer about a range.
type Verdict struct {
	IsValid      bool   `json:"is_valid"`
	Message      string `json:"message"`
	RequestedFor string `json:"requested_for"`
}

// DefaultVerdict is the verdict before any answer arrives.
func DefaultVerdict() Verdict {
	return Verdict{IsValid: false, Message: DefaultInvalidRangeMessage}
}

// CheckResult is the payload of a dhcppool_is_valid response.
type CheckResult struct {
	Result bool   `json:"result"`
	Value  string `json:"value"`
}

// Checker performs the remote range check.
type Checker interface {
	IsValid(ctx context.Context, subnetPath []string, rangeText string) (CheckResult, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, subnetPath []string, rangeText string) (CheckResult, error)

// IsValid calls f.
func (f CheckerFunc) IsValid(ctx context.Context, subnetPath []string, rangeText string) (CheckResult, error) {
	return f(ctx, subnetPath, rangeText)
}

// Session caches the verdict for one dialog and issues range checks.
//
// Every field is owned by the loop: RequestCheck, CurrentVerdict, InFlight,
// WhenIdle and Close must run on it. Remote calls run on their own goroutines
// and post the answer back. An answer is applied only when its tag is the
// latest issued and the range it was asked for is still the current text, so
// a slow answer for an older edit can never overwrite a newer one.
type Session struct {
	loop      *eventloop.Loop
	checker   Checker
	current   func() string
	onVerdict func(Verdict)

	verdict Verdict
	seq     uint64
	pending int
	closed  bool
	idle    []chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession creates a session. current returns the range field's text at
// the moment an answer is applied; onVerdict runs after each accepted answer.
func NewSession(loop *eventloop.Loop, checker Checker, current func() string, onVerdict func(Verdict)) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		loop:      loop,
		checker:   checker,
		current:   current,
		onVerdict: onVerdict,
		verdict:   DefaultVerdict(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// CurrentVerdict returns the cached verdict without blocking.
func (s *Session) CurrentVerdict() Verdict {
	return s.verdict
}

// InFlight reports whether any check has not been answered yet.
func (s *Session) InFlight() bool {
	return s.pending > 0
}

// RequestCheck asks the server whether rangeText fits the subnet at
// subnetPath. It returns immediately. Failures are not retried.
func (s *Session) RequestCheck(subnetPath []string, rangeText string) {
	if s.closed {
		return
	}
	s.seq++
	tag := s.seq
	s.pending++
	path := append([]string(nil), subnetPath...)

	logging.Debug("Range check #%d: %s %q", tag, strings.Join(path, "/"), rangeText)

	go func() {
		res, err := s.checker.IsValid(s.ctx, path, rangeText)
		if !s.loop.Post(func() { s.apply(tag, rangeText, res, err) }) {
			logging.Debug("Range check #%d: loop stopped, answer discarded", tag)
		}
	}()
}

func (s *Session) apply(tag uint64, rangeText string, res CheckResult, err error) {
	s.pending--
	defer s.notifyIdle()
	if s.closed {
		logging.Debug("Range check #%d: session closed, answer discarded", tag)
		return
	}
	if err != nil {
		logging.Warn("Range check for %q failed: %v", rangeText, err)
		return
	}
	if tag != s.seq {
		logging.Debug("Range check #%d: stale (latest #%d), dropped", tag, s.seq)
		return
	}
	if s.current != nil && s.current() != rangeText {
		logging.Debug("Range check #%d: range changed since request, dropped", tag)
		return
	}

	s.verdict = Verdict{IsValid: res.Result, Message: res.Value, RequestedFor: rangeText}
	if s.onVerdict != nil {
		s.onVerdict(s.verdict)
	}
}

// Close discards the session. Outstanding calls are cancelled and their
// answers ignored.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
}

// WhenIdle returns a channel that is closed once no check is outstanding.
// It is closed right away when nothing is in flight. Receivers run off the
// loop; by the time a later closure posted to the loop runs, the answer that
// closed the channel has been applied.
func (s *Session) WhenIdle() <-chan struct{} {
	ch := make(chan struct{})
	if s.pending == 0 {
		close(ch)
		return ch
	}
	s.idle = append(s.idle, ch)
	return ch
}

func (s *Session) notifyIdle() {
	if s.pending > 0 {
		return
	}
	for _, ch := range s.idle {
		close(ch)
	}
	s.idle = nil
}
