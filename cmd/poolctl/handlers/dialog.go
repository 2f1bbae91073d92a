package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/concave-dev/dhcpool/internal/dhcp"
	"github.com/concave-dev/dhcpool/internal/eventloop"
	"github.com/concave-dev/dhcpool/internal/form"
)

// poolEdit is what the user typed into the pool adder dialog.
type poolEdit struct {
	subnet   string
	rng      string
	name     string // empty keeps the name suggested from the range
	comments string
}

// poolDialogOutcome is the dialog state after every range check settled.
type poolDialogOutcome struct {
	verdict    dhcp.Verdict
	rangeField form.Result
	name       string
	submission *dhcp.Submission
	submitErr  error
	checkErr   error
}

// Valid reports whether the range passed every validator.
func (o *poolDialogOutcome) Valid() bool {
	return o.rangeField.Valid
}

// Message is the range field's failure message, or the server's verdict
// when the range passed.
func (o *poolDialogOutcome) Message() string {
	if !o.rangeField.Valid {
		return o.rangeField.Message
	}
	return o.verdict.Message
}

// Verdict is the server verdict overridden by the local field result.
func (o *poolDialogOutcome) Verdict() dhcp.Verdict {
	v := o.verdict
	v.IsValid = o.Valid()
	v.Message = o.Message()
	return v
}

// recordingChecker remembers the last transport failure so the CLI can
// report it; the dialog itself only logs it.
type recordingChecker struct {
	checker dhcp.Checker
	mu      sync.Mutex
	lastErr error
}

func (r *recordingChecker) IsValid(ctx context.Context, subnetPath []string, rangeText string) (dhcp.CheckResult, error) {
	res, err := r.checker.IsValid(ctx, subnetPath, rangeText)
	r.mu.Lock()
	r.lastErr = err
	r.mu.Unlock()
	return res, err
}

func (r *recordingChecker) err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// runPoolDialog opens the pool adder dialog for edit.subnet on a private
// event loop, types the range, name and comments into it, waits for the
// range check to settle and then submits it.
func runPoolDialog(ctx context.Context, checker dhcp.Checker, edit poolEdit) (*poolDialogOutcome, error) {
	loop := eventloop.New(eventloop.DefaultQueueSize)
	loop.Start()
	defer loop.Stop()

	recorder := &recordingChecker{checker: checker}
	reg := form.NewRegistry()
	dhcp.Register(reg, loop, recorder)

	var (
		dialog  *dhcp.PoolAdderDialog
		openErr error
	)
	err := loop.Do(ctx, func() {
		d, err := reg.OpenDialog(dhcp.PoolAdderSpec([]string{edit.subnet}))
		if err != nil {
			openErr = err
			return
		}
		pd, ok := d.(*dhcp.PoolAdderDialog)
		if !ok {
			openErr = fmt.Errorf("dialog %s has unexpected type %T", dhcp.DialogPoolAdder, d)
			return
		}
		dialog = pd

		// Range first so the suggested name is in place before an explicit one
		dialog.Field(dhcp.FieldRange).SetValue(edit.rng)
		if edit.name != "" {
			dialog.Field(dhcp.FieldName).SetValue(edit.name)
		}
		if edit.comments != "" {
			dialog.Field(dhcp.FieldComments).SetValue(edit.comments)
		}
	})
	if err != nil {
		return nil, err
	}
	if openErr != nil {
		return nil, openErr
	}

	if err := dialog.Settle(ctx); err != nil {
		return nil, fmt.Errorf("range check did not finish: %w", err)
	}

	out := &poolDialogOutcome{checkErr: recorder.err()}
	err = loop.Do(ctx, func() {
		defer dialog.Close()
		out.submission, out.submitErr = dialog.Submit()
		out.verdict = dialog.CurrentVerdict()
		out.rangeField = dialog.Field(dhcp.FieldRange).Result()
		out.name = dialog.Field(dhcp.FieldName).Value()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
