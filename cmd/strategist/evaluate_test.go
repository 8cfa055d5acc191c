package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Strategist/internal/export"
	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
	"github.com/MikeSquared-Agency/Strategist/internal/session"
)

// Scores follow the default criteria: three maximised, then three minimised.
const dominantInput = `integration_pair: ERP-CRM
strategies: [A, B]
weights: [1, 1, 1, 1, 1, 1]
scores:
  - [10, 10, 10, 1, 1, 1]
  - [0, 0, 0, 5, 5, 5]
`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func useExportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STRATEGIST_EXPORT_DIR", dir)
	t.Setenv("STRATEGIST_HISTORY_BACKEND", "memory")
	return dir
}

func TestEvaluateCommand(t *testing.T) {
	dir := useExportDir(t)

	stdout, _, err := runCLI(t, "evaluate", "-f", writeInput(t, dominantInput))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Integration pair: ERP-CRM")
	assert.Contains(t, stdout, "Weights don't sum to 1.0 - normalized to 0.1667, 0.1667")
	assert.Contains(t, stdout, "A: 1.0000")
	assert.Contains(t, stdout, "B: 0.0000")
	assert.Contains(t, stdout, "Best strategy: A (1.0000)")
	assert.NotContains(t, stdout, "Tied for best")
	assert.Contains(t, stdout, "Pareto frontier: A\n")

	path := filepath.Join(dir, "ERP-CRM", export.ResultsFile)
	assert.Contains(t, stdout, "Results written to "+path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Strategy,Final Score\n")
}

func TestEvaluateCommand_TiersAndPairOverride(t *testing.T) {
	dir := useExportDir(t)
	input := `integration_pair: ignored
strategies: [A, B]
tiers: [high, high, high, low, low, low]
scores:
  - [10, 10, 10, 1, 1, 1]
  - [0, 0, 0, 5, 5, 5]
`
	stdout, _, err := runCLI(t, "evaluate", "-f", writeInput(t, input), "--pair", "HR-Payroll", "--no-export")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Integration pair: HR-Payroll")
	assert.Contains(t, stdout, "Best strategy: A")
	assert.NotContains(t, stdout, "Results written to")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEvaluateCommand_InputErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name: "more strategies than score rows",
			input: `integration_pair: ERP-CRM
strategies: [A, B, C]
weights: [1, 1, 1, 1, 1, 1]
scores:
  - [10, 10, 10, 1, 1, 1]
  - [0, 0, 0, 5, 5, 5]
`,
			want: scoring.ErrShapeMismatch,
		},
		{
			name: "text score",
			input: `strategies: [A, B]
weights: [1, 1, 1, 1, 1, 1]
scores:
  - [10, 10, high, 1, 1, 1]
  - [0, 0, 0, 5, 5, 5]
`,
			want: scoring.ErrNonNumericInput,
		},
		{
			name: "zero weights",
			input: `strategies: [A, B]
weights: [0, 0, 0, 0, 0, 0]
scores:
  - [10, 10, 10, 1, 1, 1]
  - [0, 0, 0, 5, 5, 5]
`,
			want: scoring.ErrInvalidWeights,
		},
		{
			name: "unknown tier",
			input: `strategies: [A, B]
tiers: [high, high, urgent, low, low, low]
scores:
  - [10, 10, 10, 1, 1, 1]
  - [0, 0, 0, 5, 5, 5]
`,
			want: session.ErrUnknownTier,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := useExportDir(t)
			stdout, _, err := runCLI(t, "evaluate", "-f", writeInput(t, tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, ExitInputError, exitCode(err))
			assert.Empty(t, stdout)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "nothing is exported for a rejected evaluation")
		})
	}
}

func TestEvaluateCommand_MissingFile(t *testing.T) {
	useExportDir(t)
	_, _, err := runCLI(t, "evaluate", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitError, exitCode(err))
}

func TestEvaluateCommand_RequiresFile(t *testing.T) {
	_, _, err := runCLI(t, "evaluate")
	assert.Error(t, err)
}
