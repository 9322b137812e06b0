package refino

import (
	"fmt"

	"github.com/jkoskel/refino/pkg/api"
)

// PipelineBuilder provides a fluent API for defining pipelines:
//
//	pipe := refino.NewPipeline("Valuation").
//	    Stage(refino.NewStage("forecast", forecastPrompt).
//	        Inputs("normalized_result").
//	        Output("forecast").
//	        MaxIterations(5).
//	        Check("format", "structure and completeness", formatRules).
//	        Spec())
//
//	if err := pipe.Register(engine); err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := eng.Run(ctx, pipe.Name(), seed)
type PipelineBuilder struct {
	def api.PipelineSpec
}

// NewPipeline creates a new pipeline builder with the given name.
func NewPipeline(name string) *PipelineBuilder {
	return &PipelineBuilder{
		def: api.PipelineSpec{
			Name:   name,
			Stages: make([]api.StageSpec, 0),
		},
	}
}

// Name returns the pipeline name.
func (b *PipelineBuilder) Name() string {
	return b.def.Name
}

// Definition returns the underlying PipelineSpec.
// Typically used when interacting with lower-level APIs.
func (b *PipelineBuilder) Definition() PipelineSpec {
	return b.def
}

// Stage appends a stage to the pipeline.
func (b *PipelineBuilder) Stage(spec StageSpec) *PipelineBuilder {
	if spec.Name == "" {
		panic("refino: stage name must not be empty")
	}
	if spec.OutputKey == "" {
		panic(fmt.Sprintf("refino: stage %q has no output key", spec.Name))
	}

	b.def.Stages = append(b.def.Stages, spec)
	return b
}

// WithRetry sets the retry policy for every external call made while this
// pipeline runs, overriding the engine default.
func (b *PipelineBuilder) WithRetry(retry RetryPolicy) *PipelineBuilder {
	// Make a copy so callers can mutate their RetryPolicy after the call
	// without affecting the stored definition.
	r := retry

	b.def.Retry = &r
	return b
}

// Register registers the built pipeline with the given engine.
func (b *PipelineBuilder) Register(eng Engine) error {
	return eng.RegisterPipeline(b.def)
}

// MustRegister is like Register but panics on error.
// Useful for initialization in main().
func (b *PipelineBuilder) MustRegister(eng Engine) {
	if err := b.Register(eng); err != nil {
		panic(fmt.Sprintf("refino: register pipeline %q: %v", b.def.Name, err))
	}
}

// StageBuilder builds a single StageSpec. Finish with Spec() and hand the
// result to PipelineBuilder.Stage.
type StageBuilder struct {
	spec api.StageSpec
}

// NewStage creates a stage builder with the given name and generator
// instructions.
func NewStage(name, instructions string) *StageBuilder {
	return &StageBuilder{
		spec: api.StageSpec{
			Name:         name,
			Instructions: instructions,
		},
	}
}

// Inputs declares the state keys this stage reads. All of them must be
// present in the run state before the stage starts.
func (sb *StageBuilder) Inputs(keys ...string) *StageBuilder {
	sb.spec.InputKeys = append(sb.spec.InputKeys, keys...)
	return sb
}

// Output declares the state key this stage commits its artifact under.
func (sb *StageBuilder) Output(key string) *StageBuilder {
	sb.spec.OutputKey = key
	return sb
}

// MaxIterations caps how many revisions the refinement loop may perform.
// Zero means a single critique pass with no revision.
func (sb *StageBuilder) MaxIterations(n int) *StageBuilder {
	if n < 0 {
		n = 0
	}
	sb.spec.MaxIterations = n
	return sb
}

// Tools names the catalog tools the generator may use for this stage.
func (sb *StageBuilder) Tools(names ...string) *StageBuilder {
	sb.spec.Tools = append(sb.spec.Tools, names...)
	return sb
}

// Check adds a checker to the stage's critique panel.
func (sb *StageBuilder) Check(label, scope string, rules string) *StageBuilder {
	sb.spec.Checkers = append(sb.spec.Checkers, api.CheckerSpec{
		Label: label,
		Scope: scope,
		Rules: rules,
	})
	return sb
}

// CheckWithTools is Check for checkers that need tool access, such as a
// correctness checker verifying figures against live market data.
func (sb *StageBuilder) CheckWithTools(label, scope string, rules string, tools ...string) *StageBuilder {
	sb.spec.Checkers = append(sb.spec.Checkers, api.CheckerSpec{
		Label: label,
		Scope: scope,
		Rules: rules,
		Tools: tools,
	})
	return sb
}

// Spec returns the built StageSpec.
func (sb *StageBuilder) Spec() StageSpec {
	return sb.spec
}
