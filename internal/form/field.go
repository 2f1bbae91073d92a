package form

import (
	"fmt"
	"strings"
)

// FieldSpec declares one form field.
type FieldSpec struct {
	Name       string          `json:"name" yaml:"name"`
	Label      string          `json:"label,omitempty" yaml:"label,omitempty"`
	Type       string          `json:"type,omitempty" yaml:"type,omitempty"`
	Required   bool            `json:"required,omitempty" yaml:"required,omitempty"`
	ReadOnly   bool            `json:"read_only,omitempty" yaml:"read_only,omitempty"`
	Validators []ValidatorSpec `json:"validators,omitempty" yaml:"validators,omitempty"`
}

// ValidationError reports the field that blocked a submit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Field holds a value and the validators bound to it, in declaration order.
type Field struct {
	spec       FieldSpec
	validators []Validator
	value      string
	result     Result
	container  any
	listeners  []func(*Field)
}

// NewField creates the field's validators through reg.
func NewField(reg *Registry, spec FieldSpec) (*Field, error) {
	f := &Field{spec: spec, result: Pass()}
	for _, vs := range spec.Validators {
		v, err := reg.CreateValidator(vs)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", spec.Name, err)
		}
		f.validators = append(f.validators, v)
	}
	return f, nil
}

func (f *Field) Name() string    { return f.spec.Name }
func (f *Field) Label() string   { return f.spec.Label }
func (f *Field) Spec() FieldSpec { return f.spec }
func (f *Field) Value() string   { return f.value }

// Result is the outcome of the most recent validation.
func (f *Field) Result() Result { return f.result }

// Validators returns the bound validators in order.
func (f *Field) Validators() []Validator { return f.validators }

// SetContainer sets the object passed to validators as Context.Container.
func (f *Field) SetContainer(container any) {
	f.container = container
}

// OnValueChanged registers fn to run after each user edit.
func (f *Field) OnValueChanged(fn func(*Field)) {
	f.listeners = append(f.listeners, fn)
}

// SetValue applies a user edit: the value is stored and validated, then the
// value-changed listeners run.
func (f *Field) SetValue(value string) {
	f.value = value
	f.Validate()
	for _, fn := range f.listeners {
		fn(f)
	}
}

// Update sets the value programmatically. Listeners are not notified.
func (f *Field) Update(value string) {
	f.value = value
	f.Validate()
}

// Validate runs the required check and then every validator in order.
// The first failure is recorded and the rest are skipped.
func (f *Field) Validate() bool {
	f.result = f.check()
	return f.result.Valid
}

func (f *Field) check() Result {
	if f.spec.Required && strings.TrimSpace(f.value) == "" {
		return Fail(requiredMessage)
	}
	ctx := f.Context()
	for _, v := range f.validators {
		if r := v.Validate(f.value, ctx); !r.Valid {
			return r
		}
	}
	return Pass()
}

// Context returns the validation context for this field.
func (f *Field) Context() Context {
	return Context{Container: f.container, Field: f.spec.Name}
}

// FieldSet keeps fields in declaration order and indexes them by name.
type FieldSet struct {
	order  []*Field
	byName map[string]*Field
}

// NewFieldSet builds every field in specs.
func NewFieldSet(reg *Registry, specs []FieldSpec) (*FieldSet, error) {
	fs := &FieldSet{byName: make(map[string]*Field, len(specs))}
	for _, spec := range specs {
		if _, dup := fs.byName[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate field %s", spec.Name)
		}
		f, err := NewField(reg, spec)
		if err != nil {
			return nil, err
		}
		fs.order = append(fs.order, f)
		fs.byName[spec.Name] = f
	}
	return fs, nil
}

// Get returns the named field or nil.
func (fs *FieldSet) Get(name string) *Field { return fs.byName[name] }

// All returns the fields in declaration order.
func (fs *FieldSet) All() []*Field { return fs.order }

// Values returns the current value of every field keyed by name.
func (fs *FieldSet) Values() map[string]string {
	values := make(map[string]string, len(fs.order))
	for _, f := range fs.order {
		values[f.Name()] = f.value
	}
	return values
}

// Validate validates every field and returns the first invalid one, or nil.
func (fs *FieldSet) Validate() *Field {
	var first *Field
	for _, f := range fs.order {
		if !f.Validate() && first == nil {
			first = f
		}
	}
	return first
}
