package refino

import (
	"context"
	"testing"
)

func echoGenerator() Generator {
	return GeneratorFuncs{
		GenerateFunc: func(ctx context.Context, req GenerateRequest) (Artifact, error) {
			return Artifact{"stage": req.Stage}, nil
		},
		ReviseFunc: func(ctx context.Context, req ReviseRequest) (Artifact, error) {
			return req.Previous, nil
		},
	}
}

func approveAll() Checker {
	return CheckerFunc(func(ctx context.Context, req EvaluateRequest) (Verdict, error) {
		return Approve(), nil
	})
}

func TestPipelineBuilder_BuildAndRegister(t *testing.T) {
	eng := NewEngine(echoGenerator(), approveAll())

	pipe := NewPipeline("builder-sample").
		Stage(NewStage("scoping", "identify the company and its peers").
			Inputs("request").
			Output("scoping_result").
			MaxIterations(3).
			Check("format", "structure and completeness", "must list at least three peers").
			Spec()).
		Stage(NewStage("dcf", "discount the forecast cash flows").
			Inputs("scoping_result").
			Output("dcf_result").
			MaxIterations(5).
			Tools("fundamentals").
			Check("spec", "coverage of the task", "all years discounted").
			CheckWithTools("correctness", "figures against market data", "terminal value uses the stated wacc", "price").
			Spec()).
		WithRetry(Retry(3).Immediate().Policy())

	if err := pipe.Register(eng); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if pipe.Name() != "builder-sample" {
		t.Fatalf("unexpected name: %s", pipe.Name())
	}

	def := pipe.Definition()
	if def.Name == "" || len(def.Stages) != 2 {
		t.Fatalf("unexpected definition: %+v", def)
	}
	if def.Retry == nil || def.Retry.MaxAttempts != 3 {
		t.Fatalf("retry override not stored: %+v", def.Retry)
	}

	dcf := def.Stages[1]
	if len(dcf.Checkers) != 2 {
		t.Fatalf("expected 2 checkers, got %d", len(dcf.Checkers))
	}
	if got := dcf.Checkers[1].Tools; len(got) != 1 || got[0] != "price" {
		t.Fatalf("checker tools not stored: %v", got)
	}

	// The built pipeline actually runs.
	seed := map[string]Artifact{"request": {"ticker": "ACME"}}
	run, err := eng.Run(context.Background(), pipe.Name(), seed)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if run.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %q", run.Status)
	}
}

func TestPipelineBuilder_PanicsOnBadStage(t *testing.T) {
	assertPanics := func(name string, fn func()) {
		defer func() {
			if recover() == nil {
				t.Fatalf("%s: expected panic", name)
			}
		}()
		fn()
	}

	assertPanics("empty name", func() {
		NewPipeline("p").Stage(NewStage("", "x").Output("out").Spec())
	})
	assertPanics("missing output", func() {
		NewPipeline("p").Stage(NewStage("a", "x").Spec())
	})
}

func TestStageBuilder_NegativeIterationsClampToZero(t *testing.T) {
	spec := NewStage("a", "x").Output("out").MaxIterations(-3).Spec()
	if spec.MaxIterations != 0 {
		t.Fatalf("expected 0, got %d", spec.MaxIterations)
	}
}

func TestPipelineBuilder_MustRegisterPanicsOnDuplicate(t *testing.T) {
	eng := NewEngine(echoGenerator(), approveAll())

	pipe := NewPipeline("dup").
		Stage(NewStage("a", "x").Output("out").Spec())
	pipe.MustRegister(eng)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	pipe.MustRegister(eng)
}
