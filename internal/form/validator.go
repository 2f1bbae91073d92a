// Package form is a headless form model: fields hold string values, run an
// ordered chain of validators and notify listeners when the user edits them.
//
// Validators and dialogs are created by name through a Registry so that a
// declarative field spec ("validators": ["dhcprange", "dhcprange_subnet"])
// can be turned into live objects. The registry is an explicit table built at
// startup and handed to whoever opens dialogs; there is no global state.
//
// Fields and dialogs are not safe for concurrent use. Each dialog is owned by
// one goroutine, normally an eventloop.Loop.
package form

// Result is the outcome of one validation. Message is only meaningful when
// Valid is false.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Pass returns a successful Result.
func Pass() Result {
	return Result{Valid: true}
}

// Fail returns a failed Result carrying message.
func Fail(message string) Result {
	return Result{Valid: false, Message: message}
}

// Context is what a validator sees besides the value. Container is the
// dialog that owns the field; validators that need dialog state type-assert
// it to the narrow interface they require.
type Context struct {
	Container any
	Field     string
}

// Validator checks a single field value.
type Validator interface {
	Validate(value string, ctx Context) Result
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(value string, ctx Context) Result

// Validate calls f(value, ctx).
func (f ValidatorFunc) Validate(value string, ctx Context) Result {
	return f(value, ctx)
}

// ValidatorSpec names a registered validator. A non-empty Message replaces
// the validator's default failure message.
type ValidatorSpec struct {
	Type    string `json:"type" yaml:"type"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// ValidatorFactory builds a validator from its spec.
type ValidatorFactory func(spec ValidatorSpec) Validator

// requiredMessage is reported for empty required fields.
const requiredMessage = "Required field"
