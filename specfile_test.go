package refino

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const samplePipelineYAML = `
name: Valuation
retry:
  max_attempts: 5
  initial_backoff: 1s
  backoff_multiplier: 7
  max_backoff: 2m
  retryable_codes: [429, 500, 503, 504]
stages:
  - name: scoping
    instructions: |
      Identify the company's business model and three listed peers.
    inputs: [request]
    output: scoping_result
    max_iterations: 3
    checkers:
      - label: format
        scope: structure and completeness
        rules: the result must list at least three peers
  - name: dcf
    instructions: Discount the forecast cash flows.
    inputs: [scoping_result]
    output: dcf_result
    max_iterations: 5
    tools: [fundamentals]
    checkers:
      - label: spec
        scope: coverage of the task
        rules: all forecast years must be discounted
      - label: correctness
        scope: figures against market data
        rules: the terminal value must use the stated wacc
        tools: [price]
`

func TestParsePipelineSpec(t *testing.T) {
	spec, err := ParsePipelineSpec([]byte(samplePipelineYAML))
	require.NoError(t, err)

	require.Equal(t, "Valuation", spec.Name)
	require.Len(t, spec.Stages, 2)

	require.NotNil(t, spec.Retry)
	require.Equal(t, 5, spec.Retry.MaxAttempts)
	require.Equal(t, time.Second, spec.Retry.InitialBackoff)
	require.Equal(t, 7.0, spec.Retry.BackoffMultiplier)
	require.Equal(t, 2*time.Minute, spec.Retry.MaxBackoff)
	require.Equal(t, []int{429, 500, 503, 504}, spec.Retry.RetryableCodes)

	scoping := spec.Stages[0]
	require.Equal(t, "scoping", scoping.Name)
	require.Equal(t, []string{"request"}, scoping.InputKeys)
	require.Equal(t, "scoping_result", scoping.OutputKey)
	require.Equal(t, 3, scoping.MaxIterations)
	require.Len(t, scoping.Checkers, 1)
	require.Equal(t, "format", scoping.Checkers[0].Label)

	dcf := spec.Stages[1]
	require.Equal(t, []string{"fundamentals"}, dcf.Tools)
	require.Len(t, dcf.Checkers, 2)
	require.Equal(t, []string{"price"}, dcf.Checkers[1].Tools)
}

func TestParsePipelineSpec_Invalid(t *testing.T) {
	cases := map[string]string{
		"not yaml": "::::",
		"fails validation": `
name: p
stages:
  - name: a
`,
		"bad duration": `
name: p
retry:
  max_attempts: 2
  initial_backoff: soon
stages:
  - name: a
    output: out
`,
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePipelineSpec([]byte(src))
			require.Error(t, err)
		})
	}
}

func TestLoadPipelineSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(samplePipelineYAML), 0o644))

	spec, err := LoadPipelineSpec(path)
	require.NoError(t, err)
	require.Equal(t, "Valuation", spec.Name)

	_, err = LoadPipelineSpec(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
