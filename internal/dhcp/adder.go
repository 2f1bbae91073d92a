package dhcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/concave-dev/dhcpool/internal/eventloop"
	"github.com/concave-dev/dhcpool/internal/form"
)

// Field names of the pool adder dialog.
const (
	FieldRange    = "dhcprange"
	FieldName     = "cn"
	FieldComments = "dhcpcomments"
)

var (
	// ErrDialogClosed is returned by Submit after Close.
	ErrDialogClosed = errors.New("dialog is closed")

	// ErrCheckPending is returned by Submit while a range check is outstanding.
	ErrCheckPending = errors.New("range check still pending")

	// ErrRangeUnchecked is returned by Submit when the cached verdict was
	// issued for a different range than the one being submitted.
	ErrRangeUnchecked = errors.New("range has not been checked against the subnet")
)

// PoolAdderSpec returns the declarative spec of the pool adder dialog for
// the subnet identified by subnetPath.
func PoolAdderSpec(subnetPath []string) form.DialogSpec {
	return form.DialogSpec{
		Name:       DialogPoolAdder,
		Entity:     "dhcppool",
		Method:     "add",
		PkeyPrefix: append([]string(nil), subnetPath...),
		Fields: []form.FieldSpec{
			{
				Name:     FieldRange,
				Label:    "Range",
				Required: true,
				Validators: []form.ValidatorSpec{
					{Type: ValidatorRange},
					{Type: ValidatorRangeSubnet},
				},
			},
			{Name: FieldName, Label: "Name", Required: true},
			{Name: FieldComments, Label: "Comments", Type: "textarea"},
		},
	}
}

// Submission is the command a valid dialog submits.
type Submission struct {
	Method  string            `json:"method"`
	Args    []string          `json:"args"`
	Options map[string]string `json:"options"`
}

// PoolAdderDialog is the form for adding a pool to a subnet.
//
// Editing the range suggests a name, checks the range shape locally and, when
// the shape is right, asks the server whether the range fits. The answer
// arrives later on the loop and re-validates the range field. All methods
// except Settle must run on the dialog's loop.
type PoolAdderDialog struct {
	*form.AdderDialog

	loop        *eventloop.Loop
	session     *Session
	subnetPath  []string
	prevRange   string
	rangeSyntax form.Validator
}

// NewPoolAdderDialog builds the dialog from spec. Range checks go through
// checker and their answers are applied on loop.
func NewPoolAdderDialog(reg *form.Registry, spec form.DialogSpec, loop *eventloop.Loop, checker Checker) (*PoolAdderDialog, error) {
	// Answers reach the user only through the subnet fit validator.
	for _, name := range []string{ValidatorRange, ValidatorRangeSubnet} {
		if !reg.HasValidator(name) {
			return nil, fmt.Errorf("dialog %s: %w: %s", spec.Name, form.ErrUnknownValidator, name)
		}
	}

	base, err := form.NewAdderDialog(reg, spec)
	if err != nil {
		return nil, err
	}

	rangeField := base.Field(FieldRange)
	if rangeField == nil || len(rangeField.Validators()) == 0 {
		return nil, fmt.Errorf("dialog %s: field %s needs a range validator", spec.Name, FieldRange)
	}
	if base.Field(FieldName) == nil {
		return nil, fmt.Errorf("dialog %s: missing field %s", spec.Name, FieldName)
	}

	d := &PoolAdderDialog{
		AdderDialog: base,
		loop:        loop,
		subnetPath:  append([]string(nil), spec.PkeyPrefix...),
		rangeSyntax: rangeField.Validators()[0],
	}
	d.session = NewSession(loop, checker, rangeField.Value, func(Verdict) {
		rangeField.Validate()
	})
	d.SetContainer(d)
	rangeField.OnValueChanged(d.rangeChanged)
	return d, nil
}

// CurrentVerdict implements VerdictSource.
func (d *PoolAdderDialog) CurrentVerdict() Verdict {
	return d.session.CurrentVerdict()
}

// SubnetPath returns the keys of the parent subnet.
func (d *PoolAdderDialog) SubnetPath() []string {
	return d.subnetPath
}

// CheckPending reports whether a range check is outstanding.
func (d *PoolAdderDialog) CheckPending() bool {
	return d.session.InFlight()
}

func (d *PoolAdderDialog) rangeChanged(f *form.Field) {
	text := f.Value()

	name := d.Field(FieldName)
	if suggested := SuggestName(d.prevRange, name.Value(), text); suggested != name.Value() {
		name.Update(suggested)
	}
	d.prevRange = text

	if r := d.rangeSyntax.Validate(text, f.Context()); !r.Valid {
		return
	}
	if text == "" {
		return
	}
	d.session.RequestCheck(d.subnetPath, text)
}

// Submit validates the dialog and returns the command to send. It refuses
// while a check is outstanding and when the verdict belongs to other text.
func (d *PoolAdderDialog) Submit() (*Submission, error) {
	if d.Closed() {
		return nil, ErrDialogClosed
	}
	if d.session.InFlight() {
		return nil, ErrCheckPending
	}
	if err := d.FirstInvalid(); err != nil {
		return nil, err
	}

	values := d.Fields().Values()
	if rng := values[FieldRange]; d.session.CurrentVerdict().RequestedFor != rng {
		return nil, ErrRangeUnchecked
	}

	args := append(append([]string(nil), d.subnetPath...), values[FieldName])
	options := map[string]string{FieldRange: values[FieldRange]}
	if c := values[FieldComments]; c != "" {
		options[FieldComments] = c
	}
	return &Submission{Method: d.Spec().Command(), Args: args, Options: options}, nil
}

// Close closes the dialog and discards its session.
func (d *PoolAdderDialog) Close() {
	d.AdderDialog.Close()
	d.session.Close()
}

// Settle waits until every issued range check has been answered and its
// answer applied. Checks issued by edits that land while it waits are
// waited for too. It must not be called from the dialog's loop.
func (d *PoolAdderDialog) Settle(ctx context.Context) error {
	for {
		var idle <-chan struct{}
		if err := d.loop.Do(ctx, func() { idle = d.session.WhenIdle() }); err != nil {
			return err
		}

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}

		var busy bool
		if err := d.loop.Do(ctx, func() { busy = d.session.InFlight() }); err != nil {
			return err
		}
		if !busy {
			return nil
		}
	}
}

// Register adds the pool validators and the pool adder dialog to reg. Dialogs
// opened through reg run on loop and check ranges with checker.
func Register(reg *form.Registry, loop *eventloop.Loop, checker Checker) {
	reg.RegisterValidator(ValidatorRange, func(spec form.ValidatorSpec) form.Validator {
		return &RangeValidator{Message: spec.Message}
	})
	reg.RegisterValidator(ValidatorRangeSubnet, func(spec form.ValidatorSpec) form.Validator {
		return &SubnetFitValidator{Message: spec.Message}
	})
	reg.RegisterDialog(DialogPoolAdder, func(r *form.Registry, spec form.DialogSpec) (form.Dialog, error) {
		return NewPoolAdderDialog(r, spec, loop, checker)
	})
}
