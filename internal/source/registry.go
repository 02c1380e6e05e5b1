package source

import (
	"fmt"
	"log/slog"

	"historycal/internal/ports"
)

// Factory builds a configured adapter instance. Construction fails when
// the source configuration is incomplete; such a source is dropped from
// the run, not a process abort.
type Factory func(cfg Config, store ports.StateStore, logger *slog.Logger) (Source, error)

// Registry keeps a mapping from source names to their factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds or replaces a source factory.
func (r *Registry) Register(name string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[name] = factory
}

// Resolve returns a factory by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Factory, error) {
	if factory, ok := r.factories[name]; ok {
		return factory, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}
