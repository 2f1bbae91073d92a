package form

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrUnknownValidator is returned when a spec names an unregistered validator.
	ErrUnknownValidator = errors.New("unknown validator")

	// ErrUnknownDialog is returned when a spec names an unregistered dialog.
	ErrUnknownDialog = errors.New("unknown dialog")
)

// DialogFactory builds a dialog from its spec. The registry is passed along
// so the dialog can create its fields' validators.
type DialogFactory func(reg *Registry, spec DialogSpec) (Dialog, error)

// Registry maps symbolic names to validator and dialog constructors.
// Registering a name twice replaces the earlier constructor.
type Registry struct {
	mu         sync.RWMutex
	validators map[string]ValidatorFactory
	dialogs    map[string]DialogFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		validators: make(map[string]ValidatorFactory),
		dialogs:    make(map[string]DialogFactory),
	}
}

// RegisterValidator stores factory under name.
func (r *Registry) RegisterValidator(name string, factory ValidatorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validators[name] = factory
}

// CreateValidator instantiates the validator named by spec.Type.
func (r *Registry) CreateValidator(spec ValidatorSpec) (Validator, error) {
	r.mu.RLock()
	factory, ok := r.validators[spec.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownValidator, spec.Type)
	}
	return factory(spec), nil
}

// HasValidator reports whether name is registered.
func (r *Registry) HasValidator(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.validators[name]
	return ok
}

// RegisterDialog stores factory under name.
func (r *Registry) RegisterDialog(name string, factory DialogFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialogs[name] = factory
}

// OpenDialog instantiates the dialog named by spec.Name.
func (r *Registry) OpenDialog(spec DialogSpec) (Dialog, error) {
	r.mu.RLock()
	factory, ok := r.dialogs[spec.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialog, spec.Name)
	}
	return factory(r, spec)
}
