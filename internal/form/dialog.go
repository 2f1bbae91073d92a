package form

import "fmt"

// DialogSpec declares a dialog: its registered name, the entity and method
// of the command it submits, the fields it shows and the primary-key prefix
// (parent entity keys) prepended to the command arguments.
type DialogSpec struct {
	Name       string      `json:"name" yaml:"name"`
	Entity     string      `json:"entity" yaml:"entity"`
	Method     string      `json:"method" yaml:"method"`
	Fields     []FieldSpec `json:"fields" yaml:"fields"`
	PkeyPrefix []string    `json:"pkey_prefix,omitempty" yaml:"pkey_prefix,omitempty"`
}

// Command returns the command name a dialog submits, e.g. "dhcppool_add".
func (s DialogSpec) Command() string {
	return s.Entity + "_" + s.Method
}

// Dialog is an open form.
type Dialog interface {
	Spec() DialogSpec
	Fields() *FieldSet
	Validate() bool
	Close()
}

// AdderDialog is the base of dialogs that create an entity. Concrete dialogs
// embed it and call SetContainer with themselves so validators can reach
// their state.
type AdderDialog struct {
	spec   DialogSpec
	fields *FieldSet
	closed bool
}

// NewAdderDialog builds the dialog's fields through reg.
func NewAdderDialog(reg *Registry, spec DialogSpec) (*AdderDialog, error) {
	fields, err := NewFieldSet(reg, spec.Fields)
	if err != nil {
		return nil, fmt.Errorf("dialog %s: %w", spec.Name, err)
	}
	d := &AdderDialog{spec: spec, fields: fields}
	d.SetContainer(d)
	return d, nil
}

func (d *AdderDialog) Spec() DialogSpec  { return d.spec }
func (d *AdderDialog) Fields() *FieldSet { return d.fields }

// Field returns the named field or nil.
func (d *AdderDialog) Field(name string) *Field {
	return d.fields.Get(name)
}

// SetContainer makes container the Context.Container of every field.
func (d *AdderDialog) SetContainer(container any) {
	for _, f := range d.fields.All() {
		f.SetContainer(container)
	}
}

// Validate validates every field and reports whether all passed.
func (d *AdderDialog) Validate() bool {
	return d.fields.Validate() == nil
}

// FirstInvalid validates every field and returns a ValidationError for the
// first one that failed, or nil.
func (d *AdderDialog) FirstInvalid() error {
	f := d.fields.Validate()
	if f == nil {
		return nil
	}
	return &ValidationError{Field: f.Name(), Message: f.Result().Message}
}

// Close marks the dialog closed.
func (d *AdderDialog) Close() {
	d.closed = true
}

// Closed reports whether Close was called.
func (d *AdderDialog) Closed() bool {
	return d.closed
}
