package periodization

import (
	"strconv"

	"alcyxob/training-engine/internal/domain"
)

// progression curve endpoints, interpolated over t = i/n
type curve struct{ from, to float64 }

func (c curve) at(t float64) float64 { return c.from + (c.to-c.from)*t }

func volumeCurve(f domain.Focus) curve {
	switch {
	case volumeFocused(f):
		return curve{0.8, 1.2}
	case intensityFocused(f):
		return curve{1.2, 0.8}
	case f == domain.FocusPeak:
		return curve{0.8, 0.5}
	default:
		return curve{1, 1}
	}
}

func intensityCurve(f domain.Focus) curve {
	switch {
	case volumeFocused(f):
		return curve{0.95, 1.05}
	case intensityFocused(f):
		return curve{1.0, 1.1}
	case f == domain.FocusPeak:
		return curve{1.05, 1.15}
	default:
		return curve{1, 1}
	}
}

func volumeFocused(f domain.Focus) bool {
	return f == domain.FocusHypertrophy || f == domain.FocusEndurance
}

func intensityFocused(f domain.Focus) bool {
	return f == domain.FocusStrength || f == domain.FocusPower
}

func adaptationMarkers(f domain.Focus) []string {
	switch f {
	case domain.FocusHypertrophy:
		return []string{"volume_tolerance", "muscle_soreness"}
	case domain.FocusStrength:
		return []string{"e1rm_trend", "bar_speed"}
	case domain.FocusPower:
		return []string{"rate_of_force", "bar_speed"}
	case domain.FocusPeak:
		return []string{"readiness", "e1rm_trend"}
	case domain.FocusEndurance:
		return []string{"heart_rate_drift", "pace_at_rpe"}
	default:
		return []string{"rpe_trend"}
	}
}

// GenerateMesocycles splits every macrocycle phase into blocks of
// opts.MesocycleLength weeks. A final shorter block is kept.
func GenerateMesocycles(macro domain.Macrocycle, weaknesses []string, opts Options) []domain.Mesocycle {
	opts = opts.withDefaults()
	var mesos []domain.Mesocycle

	for _, phase := range macro.Phases {
		length := phase.EndWeek - phase.StartWeek + 1
		if length < 1 {
			continue
		}
		n := (length + opts.MesocycleLength - 1) / opts.MesocycleLength
		vc, ic := volumeCurve(phase.Focus), intensityCurve(phase.Focus)

		for i := 0; i < n; i++ {
			start := phase.StartWeek + i*opts.MesocycleLength
			end := min(start+opts.MesocycleLength-1, phase.EndWeek)
			t := float64(i) / float64(n)

			mesos = append(mesos, domain.Mesocycle{
				ID:                   "meso-" + strconv.Itoa(len(mesos)+1),
				Phase:                phase.Name,
				Focus:                phase.Focus,
				StartWeek:            start,
				EndWeek:              end,
				VolumeProgression:    phase.VolumeFactor * vc.at(t),
				IntensityProgression: phase.IntensityFactor * ic.at(t),
				FocusAreas:           focusAreas(phase.Focus, weaknesses),
				AdaptationMarkers:    adaptationMarkers(phase.Focus),
			})
		}
	}
	return mesos
}

// focusAreas is the phase focus followed by at most two distinct weaknesses.
func focusAreas(f domain.Focus, weaknesses []string) []string {
	primary := string(f)
	if primary == "" {
		primary = string(domain.FocusGeneral)
	}
	areas := []string{primary}
	for _, w := range weaknesses {
		if len(areas) == 3 {
			break
		}
		if w == "" || w == primary {
			continue
		}
		dup := false
		for _, a := range areas {
			if a == w {
				dup = true
				break
			}
		}
		if !dup {
			areas = append(areas, w)
		}
	}
	return areas
}
