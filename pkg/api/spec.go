package api

import (
	"errors"
	"fmt"
)

// CheckerSpec configures one checker instance. Checkers differ only by
// spec, never by type: the label identifies the checker in verdicts and
// logs, the scope describes the concern it evaluates, and the rule text
// parameterizes the evaluation. Rules are data supplied by the embedding
// application; the engine does not interpret them.
type CheckerSpec struct {
	// Label identifies the checker within its stage (e.g. "format",
	// "correctness", "semantic"). Must be unique per stage.
	Label string

	// Scope is a short description of the concern being checked.
	Scope string

	// Rules is free-form rule text handed verbatim to the checker call.
	Rules string

	// Tools optionally names read-only tools the checker may consult.
	// Most checkers carry none.
	Tools []string
}

// StageSpec configures one pipeline stage: a single initial generation
// followed by a bounded critique/refine loop.
type StageSpec struct {
	// Name identifies the stage within its pipeline.
	Name string

	// Instructions is the task text handed to the generator and, for
	// reference, to every checker.
	Instructions string

	// Checkers lists the critique panel. An empty panel means the stage
	// converges immediately after the initial generation.
	Checkers []CheckerSpec

	// InputKeys are read from the workflow state to build the generator's
	// context snapshot. Every key must have been committed by an earlier
	// stage (or seeded at run start) before this stage runs.
	InputKeys []string

	// OutputKey is the workflow-state key this stage commits its artifact
	// under. Exactly one key per stage; unique across the pipeline.
	OutputKey string

	// MaxIterations bounds the number of revise calls. Zero means the
	// loop performs a single critique pass and never revises.
	MaxIterations int

	// Tools names the read-only tools from the engine's catalog that the
	// generator may invoke during generation and revision for this stage.
	Tools []string
}

// PipelineSpec describes a pipeline as an ordered sequence of stages over
// one shared workflow state.
type PipelineSpec struct {
	Name   string
	Stages []StageSpec

	// Retry, if set, overrides the engine's retry policy for every
	// external call made while running this pipeline.
	Retry *RetryPolicy
}

// Validate checks the spec for configuration errors: empty names, missing
// output keys, duplicate stage names or output keys, duplicate checker
// labels, and negative iteration budgets.
func (p PipelineSpec) Validate() error {
	if p.Name == "" {
		return errors.New("pipeline name is required")
	}
	if len(p.Stages) == 0 {
		return errors.New("pipeline must have at least one stage")
	}

	stageNames := make(map[string]bool, len(p.Stages))
	outputKeys := make(map[string]string, len(p.Stages))
	for i, s := range p.Stages {
		if s.Name == "" {
			return fmt.Errorf("stage %d: name is required", i)
		}
		if stageNames[s.Name] {
			return fmt.Errorf("duplicate stage name: %s", s.Name)
		}
		stageNames[s.Name] = true

		if s.OutputKey == "" {
			return fmt.Errorf("stage %s: output key is required", s.Name)
		}
		if prev, ok := outputKeys[s.OutputKey]; ok {
			return fmt.Errorf("stage %s: output key %q already produced by stage %s", s.Name, s.OutputKey, prev)
		}
		outputKeys[s.OutputKey] = s.Name

		if s.MaxIterations < 0 {
			return fmt.Errorf("stage %s: max iterations must not be negative", s.Name)
		}

		labels := make(map[string]bool, len(s.Checkers))
		for j, c := range s.Checkers {
			if c.Label == "" {
				return fmt.Errorf("stage %s: checker %d: label is required", s.Name, j)
			}
			if labels[c.Label] {
				return fmt.Errorf("stage %s: duplicate checker label: %s", s.Name, c.Label)
			}
			labels[c.Label] = true
		}
	}

	return nil
}
