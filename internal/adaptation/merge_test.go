package adaptation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/training-engine/internal/domain"
)

func result(src string, t domain.RecommendationType, weight, conf, vol float64) AnalysisResult {
	return AnalysisResult{
		Source:           src,
		NeedsAdaptation:  t != domain.RecommendNone,
		Type:             t,
		Weight:           weight,
		Confidence:       conf,
		VolumeAdjustment: vol,
	}
}

func TestMergeNoVotes(t *testing.T) {
	m := Merge(nil, DefaultPolicy())
	assert.Equal(t, domain.RecommendNone, m.Type)
	assert.False(t, m.SystemWide)

	m = Merge([]AnalysisResult{result("a", domain.RecommendNone, 1, 0.9, 0)}, DefaultPolicy())
	assert.Equal(t, domain.RecommendNone, m.Type)
	assert.Zero(t, m.Agreeing)
}

func TestMergeWeightedVote(t *testing.T) {
	m := Merge([]AnalysisResult{
		result(SourceFatigue, domain.RecommendDeload, 1.0, 0.7, -0.2),
		result(SourcePerformance, domain.RecommendModify, 0.8, 0.6, -0.1),
		result(SourceExercise, domain.RecommendNone, 0.6, 0.5, 0),
	}, DefaultPolicy())

	assert.Equal(t, domain.RecommendDeload, m.Type)
	assert.Equal(t, 2, m.Agreeing)
	assert.True(t, m.SystemWide)
	assert.InDelta(t, -0.2, m.VolumeAdjustment, 1e-9)
	assert.InDelta(t, (0.7*1.0+0.6*0.8)/1.8, m.Confidence, 1e-9)
	assert.Equal(t, []string{SourceFatigue, SourcePerformance}, m.Sources)
}

func TestMergeTiesFavourCaution(t *testing.T) {
	m := Merge([]AnalysisResult{
		result("a", domain.RecommendIntensify, 0.5, 1, 0.1),
		result("b", domain.RecommendDeload, 0.5, 1, -0.2),
	}, DefaultPolicy())
	assert.Equal(t, domain.RecommendDeload, m.Type)

	m = Merge([]AnalysisResult{
		result("a", domain.RecommendIntensify, 0.5, 1, 0.1),
		result("b", domain.RecommendModify, 0.5, 1, -0.1),
	}, DefaultPolicy())
	assert.Equal(t, domain.RecommendModify, m.Type)
}

func TestMergeMinAgreeing(t *testing.T) {
	single := []AnalysisResult{result("a", domain.RecommendModify, 1, 0.6, -0.1)}
	assert.False(t, Merge(single, DefaultPolicy()).SystemWide)
	assert.True(t, Merge(single, Policy{MinAgreeing: 1}).SystemWide)
}

func TestPolicy(t *testing.T) {
	p := Policy{}.WithDefaults()
	require.Equal(t, DefaultPolicy(), p)
	assert.InDelta(t, 1.1, p.NextSensitivity(1), 1e-9)
	assert.Equal(t, 1.5, p.NextSensitivity(1.45))
	assert.Equal(t, 1.5, p.NextSensitivity(1.5))
}

func weekPlan(deloadWeek int) *domain.Plan {
	p := &domain.Plan{Macrocycle: domain.Macrocycle{HorizonWeeks: 8}}
	for w := 1; w <= 8; w++ {
		p.Microcycles = append(p.Microcycles, domain.Microcycle{
			Week: w, VolumeMultiplier: 1, IntensityMultiplier: 1, IsDeloadWeek: w == deloadWeek,
		})
	}
	return p
}

func TestPeriodizationAnalyzer(t *testing.T) {
	fatigued := &Analysis{Status: StatusOK, FatigueMarkers: []string{MarkerHighRPE, MarkerVolumeDrop}}
	an := PeriodizationAnalyzer{Weight: 0.6}

	r := an.Analyze(Input{Analysis: fatigued, Plan: weekPlan(6), Week: 2})
	assert.True(t, r.NeedsAdaptation)
	assert.Equal(t, domain.RecommendDeload, r.Type)
	assert.Contains(t, r.Rationale, "4 weeks away")

	r = an.Analyze(Input{Analysis: fatigued, Plan: weekPlan(3), Week: 2})
	assert.False(t, r.NeedsAdaptation)

	r = an.Analyze(Input{Analysis: fatigued, Plan: weekPlan(2), Week: 2})
	assert.False(t, r.NeedsAdaptation)

	r = an.Analyze(Input{Analysis: &Analysis{Status: StatusOK}, Plan: weekPlan(6), Week: 2})
	assert.False(t, r.NeedsAdaptation)

	r = an.Analyze(Input{Analysis: fatigued, Week: 2})
	assert.False(t, r.NeedsAdaptation)
}

func TestExerciseAnalyzer(t *testing.T) {
	an := ExerciseAnalyzer{Weight: 0.6, AdherenceFloor: 0.8, LiftRPECeiling: 9.5}

	skipped := sessionsWithRPE(nil, 8, 8, 8)
	for i := range skipped {
		skipped[i].Exercises[0].Sets[1].Completed = false
		skipped[i].Exercises[0].Sets[2].Completed = false
	}
	a := NewMonitor(DefaultMonitorConfig()).Analyze(skipped, domain.TrainingStrength)
	r := an.Analyze(Input{Analysis: a, Sessions: skipped})
	assert.True(t, r.NeedsAdaptation)
	assert.Equal(t, -0.15, r.VolumeAdjustment)

	grinding := sessionsWithRPE(nil, 9.6, 9.6, 9.7)
	a = NewMonitor(DefaultMonitorConfig()).Analyze(grinding, domain.TrainingStrength)
	r = an.Analyze(Input{Analysis: a, Sessions: grinding})
	assert.True(t, r.NeedsAdaptation)
	assert.Contains(t, r.Rationale, "squat")

	easy := sessionsWithRPE(nil, 7, 7, 7)
	a = NewMonitor(DefaultMonitorConfig()).Analyze(easy, domain.TrainingStrength)
	assert.False(t, an.Analyze(Input{Analysis: a, Sessions: easy}).NeedsAdaptation)
}

func TestRunAnalyzersDeloadScenario(t *testing.T) {
	sessions := sessionsWithRPE([]float64{160, 150, 140, 130}, 9.5, 9.6, 9.8, 9.9)
	a := NewMonitor(DefaultMonitorConfig()).Analyze(sessions, domain.TrainingStrength)
	d := NewDecisionEngine(1).Decide(a)

	results := RunAnalyzers(Input{Analysis: a, Decision: d, Plan: weekPlan(8), Week: 2, Sessions: sessions}, DefaultAnalyzers()...)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.NotEmpty(t, r.Source)
	}

	m := Merge(results, DefaultPolicy())
	assert.Equal(t, domain.RecommendDeload, m.Type)
	assert.True(t, m.SystemWide)
	assert.GreaterOrEqual(t, m.Agreeing, 3)
	assert.Less(t, m.VolumeAdjustment, 0.0)
}
