package refino

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jkoskel/refino/pkg/api"
)

// Pipelines can be defined in YAML instead of code, which keeps prompt
// text and checker rules editable without recompiling:
//
//	name: Valuation
//	retry:
//	  max_attempts: 5
//	  initial_backoff: 1s
//	  backoff_multiplier: 7
//	  max_backoff: 2m
//	  retryable_codes: [429, 500, 503, 504]
//	stages:
//	  - name: forecast
//	    instructions: |
//	      Project free cash flows for the next five years.
//	    inputs: [normalized_result]
//	    output: forecast
//	    max_iterations: 5
//	    tools: [fundamentals]
//	    checkers:
//	      - label: format
//	        scope: structure and completeness
//	        rules: |
//	          Every year must carry revenue, ebitda and fcf figures.

type pipelineFile struct {
	Name   string      `yaml:"name"`
	Retry  *retryFile  `yaml:"retry"`
	Stages []stageFile `yaml:"stages"`
}

type retryFile struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialBackoff    string  `yaml:"initial_backoff"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	MaxBackoff        string  `yaml:"max_backoff"`
	RetryableCodes    []int   `yaml:"retryable_codes"`
}

type stageFile struct {
	Name          string        `yaml:"name"`
	Instructions  string        `yaml:"instructions"`
	Inputs        []string      `yaml:"inputs"`
	Output        string        `yaml:"output"`
	MaxIterations int           `yaml:"max_iterations"`
	Tools         []string      `yaml:"tools"`
	Checkers      []checkerFile `yaml:"checkers"`
}

type checkerFile struct {
	Label string   `yaml:"label"`
	Scope string   `yaml:"scope"`
	Rules string   `yaml:"rules"`
	Tools []string `yaml:"tools"`
}

// LoadPipelineSpec reads and parses a pipeline definition from a YAML file.
func LoadPipelineSpec(path string) (PipelineSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PipelineSpec{}, fmt.Errorf("read pipeline spec: %w", err)
	}
	spec, err := ParsePipelineSpec(data)
	if err != nil {
		return PipelineSpec{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return spec, nil
}

// ParsePipelineSpec parses a YAML pipeline definition and validates it.
func ParsePipelineSpec(data []byte) (PipelineSpec, error) {
	var f pipelineFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return PipelineSpec{}, err
	}

	spec := api.PipelineSpec{
		Name:   f.Name,
		Stages: make([]api.StageSpec, 0, len(f.Stages)),
	}
	if f.Retry != nil {
		initial, err := parseOptionalDuration(f.Retry.InitialBackoff)
		if err != nil {
			return PipelineSpec{}, fmt.Errorf("retry.initial_backoff: %w", err)
		}
		max, err := parseOptionalDuration(f.Retry.MaxBackoff)
		if err != nil {
			return PipelineSpec{}, fmt.Errorf("retry.max_backoff: %w", err)
		}
		spec.Retry = &api.RetryPolicy{
			MaxAttempts:       f.Retry.MaxAttempts,
			InitialBackoff:    initial,
			BackoffMultiplier: f.Retry.BackoffMultiplier,
			MaxBackoff:        max,
			RetryableCodes:    f.Retry.RetryableCodes,
		}
	}
	for _, s := range f.Stages {
		stage := api.StageSpec{
			Name:          s.Name,
			Instructions:  s.Instructions,
			InputKeys:     s.Inputs,
			OutputKey:     s.Output,
			MaxIterations: s.MaxIterations,
			Tools:         s.Tools,
		}
		for _, c := range s.Checkers {
			stage.Checkers = append(stage.Checkers, api.CheckerSpec{
				Label: c.Label,
				Scope: c.Scope,
				Rules: c.Rules,
				Tools: c.Tools,
			})
		}
		spec.Stages = append(spec.Stages, stage)
	}

	if err := spec.Validate(); err != nil {
		return PipelineSpec{}, err
	}
	return spec, nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
