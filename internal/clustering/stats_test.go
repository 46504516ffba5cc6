package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"single", []float64{3}, 0.9, 3},
		{"median of pair interpolates", []float64{1, 2}, 0.5, 1.5},
		{"q25 of four", []float64{1, 2, 3, 4}, 0.25, 1.75},
		{"q75 of four", []float64{1, 2, 3, 4}, 0.75, 3.25},
		{"q0 is min", []float64{5, 1, 3}, 0, 1},
		{"q1 is max", []float64{5, 1, 3}, 1, 5},
		{"unsorted input", []float64{9, 1, 5}, 0.5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.values, tt.q), 1e-12)
		})
	}
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Quantile(values, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestSummarizeScores(t *testing.T) {
	stats := SummarizeScores([]float64{0.2, 0.4, 0.6, 0.8})

	assert.InDelta(t, 0.5, stats.Mean, 1e-12)
	assert.InDelta(t, 0.35, stats.Q25, 1e-12)
	assert.InDelta(t, 0.65, stats.Q75, 1e-12)
	assert.InDelta(t, 0.3, stats.IQR, 1e-12)
	assert.InDelta(t, 0.2, stats.Min, 1e-12)
	assert.InDelta(t, 0.8, stats.Max, 1e-12)
	assert.Equal(t, 4, stats.Count)
}

func TestSummarizeScoresEmpty(t *testing.T) {
	assert.Zero(t, SummarizeScores(nil))
}
