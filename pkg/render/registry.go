package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownOutput is returned by Get when no output carries the name.
var ErrUnknownOutput = errors.New("render: unknown output")

// Registry maps output names ("vanilla", "fragment", "json") to the Output
// that produces them. The CLI and the preview server pick outputs from it by
// the name a user typed. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	outputs map[string]Output
}

func NewRegistry() *Registry {
	return &Registry{outputs: make(map[string]Output)}
}

// Register adds output under output.Name(). A name can be taken only once.
func (r *Registry) Register(output Output) error {
	if output == nil {
		return errors.New("render: register: nil output")
	}
	name := output.Name()
	if name == "" {
		return errors.New("render: register: output has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.outputs[name]; taken {
		return fmt.Errorf("render: register: %q is already taken", name)
	}
	r.outputs[name] = output
	return nil
}

// MustRegister is Register for the built-in outputs, which never collide.
func (r *Registry) MustRegister(output Output) {
	if err := r.Register(output); err != nil {
		panic(err)
	}
}

// Get looks an output up by name. The error wraps ErrUnknownOutput and lists
// the names that are registered.
func (r *Registry) Get(name string) (Output, error) {
	r.mu.RLock()
	output, ok := r.outputs[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownOutput, name, strings.Join(r.List(), ", "))
	}
	return output, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.outputs))
	for name := range r.outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.outputs[name]
	return ok
}
