package adaptation

import "alcyxob/training-engine/internal/domain"

// Thresholds are the RPE levels and run lengths that trigger deload or
// intensification for a training type.
type Thresholds struct {
	DeloadRPE         float64 `json:"deloadRpe"`
	DeloadSessions    int     `json:"deloadSessions"`
	IntensifyRPE      float64 `json:"intensifyRpe"`
	IntensifySessions int     `json:"intensifySessions"`
}

// EffectiveDeloadRPE lowers DeloadRPE by how far sensitivity exceeds 1.
func (th Thresholds) EffectiveDeloadRPE(sensitivity float64) float64 {
	if sensitivity <= 0 {
		sensitivity = 1
	}
	return th.DeloadRPE - (sensitivity - 1)
}

// ThresholdsFor returns the thresholds for tt; unknown types use the general set.
func ThresholdsFor(tt domain.TrainingType) Thresholds {
	switch tt {
	case domain.TrainingStrength:
		return Thresholds{DeloadRPE: 9.5, DeloadSessions: 3, IntensifyRPE: 7.5, IntensifySessions: 3}
	case domain.TrainingHypertrophy:
		return Thresholds{DeloadRPE: 9.0, DeloadSessions: 3, IntensifyRPE: 7.0, IntensifySessions: 3}
	case domain.TrainingEndurance:
		return Thresholds{DeloadRPE: 8.5, DeloadSessions: 4, IntensifyRPE: 6.5, IntensifySessions: 4}
	default:
		return Thresholds{DeloadRPE: 9.0, DeloadSessions: 4, IntensifyRPE: 7.0, IntensifySessions: 4}
	}
}
