// Package registry provides the central glue between action types and the
// executors that handle them.
//
// The Registry stores mappings from the action type strings used in scripts
// (e.g. "asset_image") to the compiled executor implementations. It is
// populated explicitly at application startup by each module's Register
// call; registration is centralized, so lookups never need reflection.
package registry

import (
	"fmt"
	"sort"

	"github.com/vk/scriptforge/internal/executor"
)

// Module is implemented by each executor module; Register wires the
// module's executors into the registry during startup.
type Module interface {
	Register(r *Registry)
}

// Registry maps action types to their executors. It is populated during
// startup and read-only afterwards.
type Registry struct {
	executors map[string]executor.Executor
}

// New returns an empty registry. Each App instance owns its own registry,
// so tests can register isolated fakes without cross-test leakage.
func New() *Registry {
	return &Registry{executors: make(map[string]executor.Executor)}
}

// Register binds an executor to an action type. Registering the same type
// twice is a programmer error and panics.
func (r *Registry) Register(actionType string, exec executor.Executor) {
	if _, exists := r.executors[actionType]; exists {
		panic(fmt.Sprintf("executor for action type '%s' already registered", actionType))
	}
	r.executors[actionType] = exec
}

// Get returns the executor registered for an action type.
func (r *Registry) Get(actionType string) (executor.Executor, bool) {
	exec, ok := r.executors[actionType]
	return exec, ok
}

// List returns the registered action types in sorted order.
func (r *Registry) List() []string {
	types := make([]string, 0, len(r.executors))
	for t := range r.executors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
