package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		slope     float64
		direction Direction
	}{
		{"increasing", []float64{1, 2, 3, 4, 5}, 1, Increasing},
		{"constant", []float64{7, 7, 7, 7}, 0, Stable},
		{"decreasing", []float64{10, 8, 6, 4}, -2, Decreasing},
		{"single sample", []float64{3}, 0, Stable},
		{"empty", nil, 0, Stable},
		{"below threshold", []float64{1, 1.02, 1.04}, 0.02, Stable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Analyze(tt.values)
			assert.InDelta(t, tt.slope, r.Slope, 1e-9)
			assert.Equal(t, tt.direction, r.Direction)
			assert.Equal(t, len(tt.values), r.Samples)
		})
	}
}

func TestResultFields(t *testing.T) {
	r := Analyze([]float64{2, 4, 6})
	assert.InDelta(t, 4, r.Mean, 1e-9)
	assert.Equal(t, 6.0, r.Current)
	assert.InDelta(t, 0.5, r.RelativeSlope(), 1e-9)

	assert.Equal(t, 0.0, Result{Slope: 1}.RelativeSlope())
}

func TestClassifyThreshold(t *testing.T) {
	assert.Equal(t, Stable, Classify(0.05, 0.05))
	assert.Equal(t, Increasing, Classify(0.051, 0.05))
	assert.Equal(t, Decreasing, Classify(-0.3, 0.05))
	assert.Equal(t, Stable, Classify(0.3, 0.5))
}
