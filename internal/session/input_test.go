package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Strategist/internal/config"
	"github.com/MikeSquared-Agency/Strategist/internal/scoring"
)

func TestParseTier(t *testing.T) {
	for in, want := range map[string]Tier{"Low": TierLow, " medium ": TierMedium, "HIGH": TierHigh} {
		got, err := ParseTier(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTier("critical")
	assert.ErrorIs(t, err, ErrUnknownTier)
	assert.Contains(t, err.Error(), `unknown weight tier "critical"`)
	assert.Equal(t, "invalid_weights", ErrorKind(err))
	assert.True(t, IsInputError(err))
}

func TestTierWeights(t *testing.T) {
	mapping := config.TierWeights{Low: 0.1, Medium: 0.3, High: 0.5}
	got, err := TierWeights([]Tier{TierLow, TierMedium, TierHigh, TierHigh}, mapping)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.3, 0.5, 0.5}, got)

	_, err = TierWeights([]Tier{TierLow, "extreme"}, mapping)
	assert.ErrorIs(t, err, ErrUnknownTier)
	assert.Contains(t, err.Error(), "weight 2")
}

func TestParseWeights(t *testing.T) {
	got, err := ParseWeights([]string{"0.2", "", " 0.3 ", "1e-1"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0, 0.3, 0.1}, got)

	_, err = ParseWeights([]string{"0.2", "abc"})
	require.Error(t, err)
	assert.ErrorIs(t, err, scoring.ErrNonNumericInput)
	assert.Contains(t, err.Error(), "weights[1]")
}

func TestParseScores(t *testing.T) {
	got, err := ParseScores([][]string{{"1", "2.5"}, {"", "-3"}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2.5}, {0, -3}}, got)

	_, err = ParseScores([][]string{{"1", "2"}, {"3", "NaN"}})
	require.Error(t, err)
	var ie *scoring.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 1, ie.Row)
	assert.Equal(t, 1, ie.Col)
	assert.Equal(t, "NaN", ie.Value)
}

func TestCleanNames(t *testing.T) {
	got, err := CleanNames([]string{" A ", "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, got)

	_, err = CleanNames([]string{"A", ""})
	assert.EqualError(t, err, "strategy 2: name is required")

	_, err = CleanNames([]string{"A", "A "})
	assert.EqualError(t, err, `strategy 2: duplicate name "A"`)
}
