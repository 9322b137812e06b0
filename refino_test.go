package refino

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestNewEngine_RunThroughPublicSurface(t *testing.T) {
	eng := NewEngine(echoGenerator(), approveAll())

	NewPipeline("simple").
		Stage(NewStage("draft", "write a draft").Output("draft_result").Spec()).
		MustRegister(eng)

	run, err := Run(context.Background(), eng, "simple", nil)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, run.Status)
	require.True(t, run.State.Has("draft_result"))

	// No memory configured: the helper degrades to an empty result.
	entries, err := SearchMemory(context.Background(), eng, MemoryScope{App: "a", User: "u"}, "draft")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestNewEngineWithOptions_ObserverAndMetrics(t *testing.T) {
	metrics := &BasicMetrics{}
	eng := NewEngineWithOptions(echoGenerator(), approveAll(), Options{
		Observer: NewCompositeObserver(NewLoggingObserver(nil), metrics),
	})

	NewPipeline("observed").
		Stage(NewStage("draft", "write a draft").
			Output("draft_result").
			MaxIterations(2).
			Check("format", "structure", "non-empty").
			Spec()).
		MustRegister(eng)

	_, err := eng.Run(context.Background(), "observed", nil)
	require.NoError(t, err)

	snap := metrics.Snapshot()
	require.Equal(t, int64(1), snap.RunsStarted)
	require.Equal(t, int64(1), snap.RunsCompleted)
	require.Equal(t, int64(1), snap.StagesConverged)
	require.Equal(t, int64(1), snap.Critiques)
}

func TestNewSQLiteEngine_PersistsMemoryAndEvents(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	scope := MemoryScope{App: "valuation", User: "analyst-1"}
	gen := GeneratorFuncs{
		GenerateFunc: func(ctx context.Context, req GenerateRequest) (Artifact, error) {
			return Artifact{"ticker": "ACME", "stage": req.Stage}, nil
		},
	}

	eng, err := NewSQLiteEngineWithOptions(gen, approveAll(), db, Options{Scope: scope})
	require.NoError(t, err)

	NewPipeline("durable").
		Stage(NewStage("scoping", "scope the company").Output("scoping_result").Spec()).
		Stage(NewStage("report", "write the report").Inputs("scoping_result").Output("final_report").Spec()).
		MustRegister(eng)

	run, err := eng.Run(context.Background(), "durable", nil)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, run.Status)

	// Memory and event history survive in the shared database.
	entries, err := SearchMemory(context.Background(), eng, scope, "acme")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	events, err := eng.Events().ListEvents(context.Background(), run.ID)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	require.Equal(t, EventRunStarted, events[0].Type)
	require.Equal(t, EventRunCompleted, events[len(events)-1].Type)
}

func TestOptions_CallTimeoutDefaults(t *testing.T) {
	// The zero options value must yield a working engine; the important
	// part is that construction normalizes the timeout without panicking.
	eng := NewEngineWithOptions(echoGenerator(), nil, Options{})
	require.NotNil(t, eng)

	eng = NewEngineWithOptions(echoGenerator(), nil, Options{CallTimeout: -1})
	require.NotNil(t, eng)
}
