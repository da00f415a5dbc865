package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fipulse/internal/errors"
)

func TestCombineAdditive(t *testing.T) {
	got, err := Combine([]float64{2.0, 3.5}, CombineAdditive)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, got, 1e-12)
}

func TestCombineEmptySet(t *testing.T) {
	for _, rule := range []CombinationRule{CombineAdditive, CombineMultiplicative, CombineMax} {
		got, err := Combine(nil, rule)
		require.NoError(t, err)
		assert.Zero(t, got, "empty set under %s", rule)
	}
}

func TestCombineMultiplicative(t *testing.T) {
	// Two +10pp effects compound to +21pp under the pinned convention
	// 100 * ((1.10 * 1.10) - 1).
	got, err := Combine([]float64{10, 10}, CombineMultiplicative)
	require.NoError(t, err)
	assert.InDelta(t, 21.0, got, 1e-9)

	// A single effect passes through unchanged.
	single, err := Combine([]float64{7.5}, CombineMultiplicative)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, single, 1e-9)

	// Opposing effects partially cancel.
	mixed, err := Combine([]float64{10, -10}, CombineMultiplicative)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, mixed, 1e-9)
}

func TestCombineMax(t *testing.T) {
	tests := []struct {
		name    string
		effects []float64
		want    float64
	}{
		{"largest_positive", []float64{2.0, 5.0, -1.0}, 5.0},
		{"largest_absolute_is_negative", []float64{2.0, -7.0}, -7.0},
		{"single", []float64{-3.0}, -3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Combine(tt.effects, CombineMax)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCombineUnknownRule(t *testing.T) {
	_, err := Combine([]float64{1}, CombinationRule("geometric"))
	assert.ErrorIs(t, err, apperrors.ErrUnknownCombination)

	_, err = ParseCombinationRule("geometric")
	assert.ErrorIs(t, err, apperrors.ErrUnknownCombination)
}

func TestCombineSeries(t *testing.T) {
	a := []float64{0, 1, 2}
	b := []float64{3, 0, 4}

	combined, err := CombineSeries([][]float64{a, b}, CombineAdditive)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 6}, combined)

	// Mismatched lengths are rejected.
	_, err = CombineSeries([][]float64{a, {1}}, CombineAdditive)
	assert.Error(t, err)

	// Empty set yields no series.
	combined, err = CombineSeries(nil, CombineAdditive)
	require.NoError(t, err)
	assert.Nil(t, combined)
}
