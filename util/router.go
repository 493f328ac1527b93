package util

import (
	"fmt"
)

// Router resolves hook identifiers to the module registered for their
// embedded type tag. Modules register once at wiring time; duplicate
// registration is a programming error and panics.
type Router[T any] struct {
	modules map[uint32]T
}

func NewRouter[T any]() *Router[T] {
	return &Router[T]{modules: map[uint32]T{}}
}

// RegisterModule binds a module to a hook type tag.
func (r *Router[T]) RegisterModule(hookType uint32, module T) {
	if _, ok := r.modules[hookType]; ok {
		panic(fmt.Sprintf("module already registered for hook type %d", hookType))
	}
	r.modules[hookType] = module
}

// GetModule returns the module registered for the given hook type tag.
func (r *Router[T]) GetModule(hookType uint32) (T, error) {
	module, ok := r.modules[hookType]
	if !ok {
		var zero T
		return zero, fmt.Errorf("no module registered for hook type %d", hookType)
	}
	return module, nil
}

// GetModuleForAddress resolves a hook identifier through its type tag.
func (r *Router[T]) GetModuleForAddress(hookId HexAddress) (T, error) {
	return r.GetModule(hookId.GetType())
}
