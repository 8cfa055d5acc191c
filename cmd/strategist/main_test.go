package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
	"github.com/MikeSquared-Agency/Strategist/internal/session"
)

// runCLI executes the root command with args and captures its output.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitSuccess},
		{"shape mismatch", &scoring.ShapeError{Field: "scores", Want: 3, Got: 2}, ExitInputError},
		{"invalid weights", fmt.Errorf("configure: %w", scoring.ErrInvalidWeights), ExitInputError},
		{"non numeric", &scoring.InputError{Field: "scores", Row: 0, Col: 0, Value: "x"}, ExitInputError},
		{"strategy count", session.ErrStrategyCount, ExitInputError},
		{"unknown tier", fmt.Errorf("weight 2: %w %q", session.ErrUnknownTier, "urgent"), ExitInputError},
		{"runtime", errors.New("open history: permission denied"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "evaluate", "wizard", "history"} {
		assert.True(t, names[want], "root command should have %q subcommand", want)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	root := newRootCommand()
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
}

func TestRootCommand_BadConfigIsRuntimeError(t *testing.T) {
	_, _, err := runCLI(t, "evaluate", "--config", "/nonexistent/strategist.yaml", "-f", "input.yaml")
	assert.Error(t, err)
	assert.Equal(t, ExitError, exitCode(err))
}
