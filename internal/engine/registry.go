package engine

import (
	"fmt"
	"sync"

	"github.com/jkoskel/refino/pkg/api"
)

type pipelineRegistry struct {
	mu     sync.RWMutex
	byName map[string]api.PipelineSpec
}

func newPipelineRegistry() *pipelineRegistry {
	return &pipelineRegistry{
		byName: make(map[string]api.PipelineSpec),
	}
}

func (r *pipelineRegistry) Register(spec api.PipelineSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[spec.Name]; exists {
		return fmt.Errorf("pipeline %q already registered", spec.Name)
	}

	r.byName[spec.Name] = spec
	return nil
}

func (r *pipelineRegistry) Get(name string) (api.PipelineSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.byName[name]
	if !ok {
		return api.PipelineSpec{}, fmt.Errorf("unknown pipeline: %s", name)
	}

	return spec, nil
}
