package adaptation

import (
	"fmt"
	"math"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/trend"
)

// Deload severities.
const (
	SeverityMild     = "mild"
	SeverityModerate = "moderate"
	SeveritySevere   = "severe"
)

// Intensification magnitudes, picked from the relative estimated-max slope.
const (
	MagnitudeConservative = "conservative"
	MagnitudeModerate     = "moderate"
	MagnitudeAggressive   = "aggressive"
)

const (
	modifyRPESlope    = 0.1
	modifyVolumeSlope = 100.0
	maxConfidence     = 0.95
)

// Decision bundles a recommendation with the analysis it was derived from.
type Decision struct {
	Recommendation domain.Recommendation `json:"recommendation"`
	Analysis       *Analysis             `json:"analysis"`
}

// DecisionEngine maps an Analysis to a single recommendation. Sensitivity
// above 1 lowers the RPE level at which a deload is called.
type DecisionEngine struct {
	sensitivity float64
}

func NewDecisionEngine(sensitivity float64) *DecisionEngine {
	if sensitivity <= 0 {
		sensitivity = 1
	}
	return &DecisionEngine{sensitivity: sensitivity}
}

func (d *DecisionEngine) Sensitivity() float64 { return d.sensitivity }

// DeloadRPE is the effective deload threshold after sensitivity.
func (d *DecisionEngine) DeloadRPE(th Thresholds) float64 {
	return th.EffectiveDeloadRPE(d.sensitivity)
}

// Decide evaluates rules in order: deload, intensify, modify, none.
func (d *DecisionEngine) Decide(a *Analysis) Decision {
	if a == nil || a.Status == StatusInsufficientData {
		sessions, need := 0, DefaultMonitorConfig().MinSessions
		if a != nil {
			sessions, need = a.Sessions, a.MinSessions
		}
		return Decision{
			Analysis: a,
			Recommendation: domain.Recommendation{
				Type:      domain.RecommendNone,
				Priority:  domain.PriorityLow,
				Rationale: fmt.Sprintf("insufficient data: %d sessions, need %d", sessions, need),
				Source:    "decision_engine",
			},
		}
	}

	var rec domain.Recommendation
	if r, ok := d.deload(a); ok {
		rec = r
	} else if r, ok := d.intensify(a); ok {
		rec = r
	} else if r, ok := d.modify(a); ok {
		rec = r
	} else {
		rec = domain.Recommendation{
			Type:       domain.RecommendNone,
			Priority:   domain.PriorityLow,
			Rationale:  "metrics within expected ranges",
			Confidence: 0.6,
		}
	}
	rec.Source = "decision_engine"
	return Decision{Recommendation: rec, Analysis: a}
}

func (d *DecisionEngine) deload(a *Analysis) (domain.Recommendation, bool) {
	th := a.Thresholds
	limit := d.DeloadRPE(th)
	high := TrailingCount(a.RPE.Values, func(v float64) bool { return v >= limit })
	if high < th.DeloadSessions {
		return domain.Recommendation{}, false
	}

	markers := 1
	if a.Volume.Direction == trend.Decreasing {
		markers++
	}
	if a.EstimatedMax.Direction == trend.Decreasing {
		markers++
	}

	rec := domain.Recommendation{
		Type:       domain.RecommendDeload,
		Confidence: math.Min(0.6+0.1*float64(markers), maxConfidence),
		Rationale: fmt.Sprintf("RPE at or above %.1f for %d consecutive sessions with %d fatigue markers",
			limit, high, markers),
	}
	switch {
	case markers >= 3:
		rec.Severity = SeveritySevere
		rec.Priority = domain.PriorityHigh
		rec.VolumeAdjustment, rec.IntensityAdjustment = -0.4, -0.15
		rec.Actions = []string{"reduce volume 40%", "reduce intensity 15%", "prioritise sleep and nutrition"}
	case markers == 2:
		rec.Severity = SeverityModerate
		rec.Priority = domain.PriorityHigh
		rec.VolumeAdjustment, rec.IntensityAdjustment = -0.3, -0.1
		rec.Actions = []string{"reduce volume 30%", "reduce intensity 10%"}
	default:
		rec.Severity = SeverityMild
		rec.Priority = domain.PriorityMedium
		rec.VolumeAdjustment, rec.IntensityAdjustment = -0.2, -0.05
		rec.Actions = []string{"reduce volume 20%", "keep intensity near current loads"}
	}
	return rec, true
}

func (d *DecisionEngine) intensify(a *Analysis) (domain.Recommendation, bool) {
	th := a.Thresholds
	low := TrailingCount(a.RPE.Values, func(v float64) bool { return v < th.IntensifyRPE })
	if low < th.IntensifySessions || a.EstimatedMax.Direction != trend.Increasing {
		return domain.Recommendation{}, false
	}

	rel := a.EstimatedMax.RelativeSlope()
	rec := domain.Recommendation{
		Type:     domain.RecommendIntensify,
		Priority: domain.PriorityMedium,
	}
	switch {
	case rel > 0.1:
		rec.Severity = MagnitudeAggressive
		rec.VolumeAdjustment, rec.IntensityAdjustment = 0.1, 0.05
		rec.Confidence = 0.8
	case rel > 0.05:
		rec.Severity = MagnitudeModerate
		rec.VolumeAdjustment, rec.IntensityAdjustment = 0.05, 0.03
		rec.Confidence = 0.7
	default:
		rec.Severity = MagnitudeConservative
		rec.Priority = domain.PriorityLow
		rec.IntensityAdjustment = 0.02
		rec.Confidence = 0.6
	}
	rec.Rationale = fmt.Sprintf("RPE below %.1f for %d sessions while estimated max is rising", th.IntensifyRPE, low)
	rec.Actions = []string{fmt.Sprintf("increase intensity %.0f%%", rec.IntensityAdjustment*100)}
	return rec, true
}

func (d *DecisionEngine) modify(a *Analysis) (domain.Recommendation, bool) {
	switch {
	case math.Abs(a.RPE.Slope) > modifyRPESlope:
		sign := math.Copysign(1, a.RPE.Slope)
		return domain.Recommendation{
			Type:                domain.RecommendModify,
			Priority:            domain.PriorityMedium,
			VolumeAdjustment:    -0.1 * sign,
			IntensityAdjustment: -0.05 * sign,
			Confidence:          0.55,
			Rationale:           fmt.Sprintf("RPE trending %s at %.2f per session", a.RPE.Direction, a.RPE.Slope),
			Actions:             []string{"rebalance load to stabilise effort"},
		}, true
	case math.Abs(a.Volume.Slope) > modifyVolumeSlope:
		sign := math.Copysign(1, a.Volume.Slope)
		return domain.Recommendation{
			Type:             domain.RecommendModify,
			Priority:         domain.PriorityLow,
			VolumeAdjustment: -0.05 * sign,
			Confidence:       0.55,
			Rationale:        fmt.Sprintf("session volume trending %s at %.0f per session", a.Volume.Direction, a.Volume.Slope),
			Actions:          []string{"smooth session volume"},
		}, true
	}
	return domain.Recommendation{}, false
}
