package api

import (
	"context"
	"errors"
)

// GenerateRequest carries everything a generator backend needs to produce
// a stage's initial artifact: the task instructions, a read-only snapshot
// of the stage's declared inputs, and the stage's view of the tool
// catalog.
type GenerateRequest struct {
	Pipeline     string
	Stage        string
	Instructions string

	// Context maps each declared input key to a deep copy of the artifact
	// committed under it. Mutations are never visible to the workflow
	// state.
	Context map[string]Artifact

	// Tools is the stage's filtered view of the engine's tool catalog.
	// The engine neither schedules nor caches tool calls; they are an
	// opaque capability of the generator.
	Tools ToolCatalog
}

// ReviseRequest asks the generator to transform a rejected artifact into
// one that addresses every rejection reason. The revision must preserve
// the previous artifact's intended schema (top-level key set) and must
// address all reasons, not a subset.
type ReviseRequest struct {
	GenerateRequest

	Previous Artifact
	Reasons  []string
}

// Generator is the external capability that produces and revises
// artifacts, typically backed by a hosted generative model. Both calls
// are potentially slow, remote, and transiently failing; the engine wraps
// every invocation in its retry policy and per-attempt timeout. Failure
// after retry exhaustion is fatal to the enclosing stage.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (Artifact, error)
	Revise(ctx context.Context, req ReviseRequest) (Artifact, error)
}

// GeneratorFuncs adapts plain functions to the Generator interface.
// Useful in tests and examples.
type GeneratorFuncs struct {
	GenerateFunc func(ctx context.Context, req GenerateRequest) (Artifact, error)
	ReviseFunc   func(ctx context.Context, req ReviseRequest) (Artifact, error)
}

func (g GeneratorFuncs) Generate(ctx context.Context, req GenerateRequest) (Artifact, error) {
	if g.GenerateFunc == nil {
		return nil, errors.New("generator: GenerateFunc is nil")
	}
	return g.GenerateFunc(ctx, req)
}

func (g GeneratorFuncs) Revise(ctx context.Context, req ReviseRequest) (Artifact, error) {
	if g.ReviseFunc == nil {
		return nil, errors.New("generator: ReviseFunc is nil")
	}
	return g.ReviseFunc(ctx, req)
}
