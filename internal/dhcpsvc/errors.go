package dhcpsvc

import (
	"errors"
	"fmt"

	"github.com/concave-dev/dhcpool/internal/store"
)

// Error codes carried by CommandError. They follow the numbering the web UI
// already understands for these failure classes.
const (
	CodeInternal    = 903
	CodeRequirement = 3007
	CodeValidation  = 3009
	CodeNotFound    = 4001
	CodeDuplicate   = 4002
	CodeNonLeaf     = 4201
)

// CommandError is a failure reported to the RPC caller. It is a normal
// command outcome, not a transport failure.
type CommandError struct {
	Code    int    `json:"code"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *CommandError) Error() string {
	return e.Message
}

func notFound(format string, args ...any) *CommandError {
	return &CommandError{Code: CodeNotFound, Name: "NotFound", Message: fmt.Sprintf(format, args...)}
}

func duplicate(format string, args ...any) *CommandError {
	return &CommandError{Code: CodeDuplicate, Name: "DuplicateEntry", Message: fmt.Sprintf(format, args...)}
}

func validationError(field, message string) *CommandError {
	return &CommandError{Code: CodeValidation, Name: "ValidationError", Message: fmt.Sprintf("invalid '%s': %s", field, message)}
}

func requirementError(field string) *CommandError {
	return &CommandError{Code: CodeRequirement, Name: "RequirementError", Message: fmt.Sprintf("'%s' is required", field)}
}

func nonLeaf(format string, args ...any) *CommandError {
	return &CommandError{Code: CodeNonLeaf, Name: "NotAllowedOnNonLeaf", Message: fmt.Sprintf(format, args...)}
}

func internalError(err error) *CommandError {
	return &CommandError{Code: CodeInternal, Name: "InternalError", Message: err.Error()}
}

// AsCommandError converts err into the CommandError a caller should see.
// Store sentinels map to their command error class; anything else is
// reported as an internal error.
func AsCommandError(err error) *CommandError {
	var ce *CommandError
	if errors.As(err, &ce) {
		return ce
	}

	var se *store.StoreError
	if errors.As(err, &se) {
		switch {
		case errors.Is(err, store.ErrNotFound):
			if se.ID != "" {
				return notFound("%s: %s", se.ID, se.Message)
			}
			return notFound("%s", se.Message)
		case errors.Is(err, store.ErrDuplicateID):
			return duplicate("%s with name \"%s\" already exists", se.Entity, se.ID)
		case errors.Is(err, store.ErrForeignKey):
			return nonLeaf("%s", se.Message)
		}
	}
	return internalError(err)
}
