package adaptation

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"alcyxob/training-engine/internal/domain"
)

// Analyzer names, also used as recommendation sources.
const (
	SourceFatigue       = "fatigue"
	SourcePerformance   = "performance"
	SourcePeriodization = "periodization"
	SourceExercise      = "exercise"
)

// Input is everything an analyzer may look at. Plan may be nil.
type Input struct {
	Analysis *Analysis
	Decision Decision
	Plan     *domain.Plan
	Week     int
	Sessions []domain.SessionRecord
}

// AnalysisResult is one analyzer's opinion.
type AnalysisResult struct {
	Source              string                    `json:"source"`
	NeedsAdaptation     bool                      `json:"needsAdaptation"`
	Type                domain.RecommendationType `json:"type"`
	Weight              float64                   `json:"weight"`
	VolumeAdjustment    float64                   `json:"volumeAdjustment"`
	IntensityAdjustment float64                   `json:"intensityAdjustment"`
	Confidence          float64                   `json:"confidence"`
	Rationale           string                    `json:"rationale"`
}

// Recommendation converts a result into the journaled form.
func (r AnalysisResult) Recommendation() domain.Recommendation {
	p := domain.PriorityLow
	if r.NeedsAdaptation {
		p = domain.PriorityMedium
		if r.Type == domain.RecommendDeload {
			p = domain.PriorityHigh
		}
	}
	return domain.Recommendation{
		Type:                r.Type,
		Priority:            p,
		VolumeAdjustment:    r.VolumeAdjustment,
		IntensityAdjustment: r.IntensityAdjustment,
		Rationale:           r.Rationale,
		Confidence:          r.Confidence,
		Source:              r.Source,
	}
}

type Analyzer interface {
	Name() string
	Analyze(in Input) AnalysisResult
}

// DefaultAnalyzers returns the fatigue, performance, periodization and
// exercise analyzers.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		FatigueAnalyzer{Weight: 1.0},
		PerformanceAnalyzer{Weight: 0.8},
		PeriodizationAnalyzer{Weight: 0.6},
		ExerciseAnalyzer{Weight: 0.6, AdherenceFloor: 0.8, LiftRPECeiling: 9.5},
	}
}

// RunAnalyzers evaluates every analyzer against the same input.
func RunAnalyzers(in Input, analyzers ...Analyzer) []AnalysisResult {
	out := make([]AnalysisResult, 0, len(analyzers))
	for _, a := range analyzers {
		r := a.Analyze(in)
		r.Source = a.Name()
		out = append(out, r)
	}
	return out
}

func noAdaptation(weight float64, why string) AnalysisResult {
	return AnalysisResult{Type: domain.RecommendNone, Weight: weight, Confidence: 0.5, Rationale: why}
}

// FatigueAnalyzer relays the decision engine's recommendation.
type FatigueAnalyzer struct{ Weight float64 }

func (FatigueAnalyzer) Name() string { return SourceFatigue }

func (f FatigueAnalyzer) Analyze(in Input) AnalysisResult {
	rec := in.Decision.Recommendation
	return AnalysisResult{
		NeedsAdaptation:     rec.Type != domain.RecommendNone && rec.Type != "",
		Type:                orNone(rec.Type),
		Weight:              f.Weight,
		VolumeAdjustment:    rec.VolumeAdjustment,
		IntensityAdjustment: rec.IntensityAdjustment,
		Confidence:          rec.Confidence,
		Rationale:           rec.Rationale,
	}
}

// PerformanceAnalyzer looks only at the estimated-max trend.
type PerformanceAnalyzer struct{ Weight float64 }

func (PerformanceAnalyzer) Name() string { return SourcePerformance }

func (p PerformanceAnalyzer) Analyze(in Input) AnalysisResult {
	a := in.Analysis
	if a == nil || a.Status != StatusOK {
		return noAdaptation(p.Weight, "no performance data")
	}
	switch a.Progression {
	case Regressing:
		return AnalysisResult{
			NeedsAdaptation:  true,
			Type:             domain.RecommendModify,
			Weight:           p.Weight,
			VolumeAdjustment: -0.1,
			Confidence:       0.6,
			Rationale:        fmt.Sprintf("estimated max falling %.1f per session", -a.EstimatedMax.Slope),
		}
	case Progressing:
		if a.RPE.Samples > 0 && a.RPE.Average < a.Thresholds.IntensifyRPE {
			return AnalysisResult{
				NeedsAdaptation:     true,
				Type:                domain.RecommendIntensify,
				Weight:              p.Weight,
				IntensityAdjustment: 0.03,
				Confidence:          0.6,
				Rationale:           "estimated max rising with effort to spare",
			}
		}
		return noAdaptation(p.Weight, "progressing at current load")
	}
	return noAdaptation(p.Weight, "performance stable")
}

// PeriodizationAnalyzer checks the athlete's state against where the plan
// already schedules reduced load.
type PeriodizationAnalyzer struct{ Weight float64 }

func (PeriodizationAnalyzer) Name() string { return SourcePeriodization }

func (p PeriodizationAnalyzer) Analyze(in Input) AnalysisResult {
	if in.Plan == nil || in.Analysis == nil || in.Analysis.Status != StatusOK {
		return noAdaptation(p.Weight, "no plan context")
	}
	cur, ok := in.Plan.Week(in.Week)
	if !ok {
		return noAdaptation(p.Weight, "week outside plan")
	}
	if reduced(cur) {
		return noAdaptation(p.Weight, "current week already reduces load")
	}
	if len(in.Analysis.FatigueMarkers) < 2 {
		return noAdaptation(p.Weight, "fatigue consistent with plan")
	}

	next := 0
	for _, m := range in.Plan.Microcycles {
		if m.Week > in.Week && reduced(&m) {
			next = m.Week - in.Week
			break
		}
	}
	if next == 1 {
		return noAdaptation(p.Weight, "reduced week scheduled next")
	}
	why := "no reduced week left in plan"
	if next > 0 {
		why = fmt.Sprintf("next reduced week is %d weeks away", next)
	}
	return AnalysisResult{
		NeedsAdaptation:     true,
		Type:                domain.RecommendDeload,
		Weight:              p.Weight,
		VolumeAdjustment:    -0.2,
		IntensityAdjustment: -0.05,
		Confidence:          0.65,
		Rationale:           fmt.Sprintf("%d fatigue markers and %s", len(in.Analysis.FatigueMarkers), why),
	}
}

func reduced(m *domain.Microcycle) bool {
	return m.IsDeloadWeek || m.IsTaperWeek || m.IsRecoveryWeek || m.IsCompetitionWeek
}

// ExerciseAnalyzer looks at adherence and per-lift effort.
type ExerciseAnalyzer struct {
	Weight         float64
	AdherenceFloor float64
	LiftRPECeiling float64
}

func (ExerciseAnalyzer) Name() string { return SourceExercise }

func (e ExerciseAnalyzer) Analyze(in Input) AnalysisResult {
	a := in.Analysis
	if a == nil || a.Status != StatusOK {
		return noAdaptation(e.Weight, "no exercise data")
	}
	if a.Adherence.Samples > 0 && a.Adherence.Average < e.AdherenceFloor {
		return AnalysisResult{
			NeedsAdaptation:  true,
			Type:             domain.RecommendModify,
			Weight:           e.Weight,
			VolumeAdjustment: -0.15,
			Confidence:       0.6,
			Rationale:        fmt.Sprintf("only %.0f%% of prescribed sets completed", a.Adherence.Average*100),
		}
	}
	if lift, rpe := hardestLift(in.Sessions); rpe >= e.LiftRPECeiling {
		return AnalysisResult{
			NeedsAdaptation:     true,
			Type:                domain.RecommendModify,
			Weight:              e.Weight,
			IntensityAdjustment: -0.05,
			Confidence:          0.55,
			Rationale:           fmt.Sprintf("%s averaging RPE %.1f", lift, rpe),
		}
	}
	return noAdaptation(e.Weight, "exercise execution on track")
}

// hardestLift returns the main lift with the highest average RPE.
func hardestLift(sessions []domain.SessionRecord) (string, float64) {
	rpes := map[string][]float64{}
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			if !ex.MainLift {
				continue
			}
			for _, set := range ex.Sets {
				if set.Completed && set.RPE > 0 {
					rpes[ex.Name] = append(rpes[ex.Name], set.RPE)
				}
			}
		}
	}
	names := make([]string, 0, len(rpes))
	for n := range rpes {
		names = append(names, n)
	}
	sort.Strings(names)

	best, bestRPE := "", 0.0
	for _, n := range names {
		if avg, err := stats.Mean(rpes[n]); err == nil && avg > bestRPE {
			best, bestRPE = n, avg
		}
	}
	return best, bestRPE
}

func orNone(t domain.RecommendationType) domain.RecommendationType {
	if t == "" {
		return domain.RecommendNone
	}
	return t
}
