package periodization

import (
	"math"
	"slices"

	"alcyxob/training-engine/internal/domain"
)

const (
	deloadVolume    = 0.6
	deloadIntensity = 0.85
	maxVolume       = 1.3
	minVolume       = 0.65 // keeps training weeks strictly above deload volume
	maxIntensity    = 1.05

	highIntensityPhase = 0.95
)

// Recovery protocol tags.
const (
	ProtocolSleep           = "sleep_priority"
	ProtocolStress          = "stress_management"
	ProtocolActiveRecovery  = "active_recovery"
	ProtocolMobility        = "mobility_work"
	ProtocolPhysiological   = "physiological_monitoring"
	ProtocolPostCompetition = "post_competition_recovery"
	ProtocolTaperRest       = "taper_rest"
)

// GenerateMicrocycles expands mesocycles into one microcycle per week.
func GenerateMicrocycles(macro domain.Macrocycle, mesos []domain.Mesocycle, opts Options) []domain.Microcycle {
	opts = opts.withDefaults()
	micros := make([]domain.Microcycle, 0, macro.HorizonWeeks)

	for _, meso := range mesos {
		phase := phaseByName(macro, meso.Phase)
		for week := meso.StartWeek; week <= meso.EndWeek; week++ {
			idx := float64(week - meso.StartWeek)
			deload := week%opts.DeloadCadence == 0

			m := domain.Microcycle{
				Week:          week,
				MesocycleID:   meso.ID,
				Phase:         meso.Phase,
				IsDeloadWeek:  deload,
				IsTestingWeek: slices.Contains(macro.TestingWeeks, week),
				FocusAreas:    append([]string(nil), meso.FocusAreas...),
			}
			if deload {
				m.VolumeMultiplier = deloadVolume
				m.IntensityMultiplier = deloadIntensity
			} else {
				v := math.Min(meso.VolumeProgression*(1+0.05*idx), maxVolume)
				m.VolumeMultiplier = math.Max(v, minVolume)
				m.IntensityMultiplier = math.Min(meso.IntensityProgression*(1+0.02*idx), maxIntensity)
			}

			m.RecoveryProtocols = []string{ProtocolSleep, ProtocolStress}
			if deload {
				m.RecoveryProtocols = append(m.RecoveryProtocols, ProtocolActiveRecovery, ProtocolMobility)
			}
			if phase.IntensityFactor >= highIntensityPhase {
				m.RecoveryProtocols = append(m.RecoveryProtocols, ProtocolPhysiological)
			}
			micros = append(micros, m)
		}
	}
	return micros
}

func phaseByName(macro domain.Macrocycle, name string) domain.MacroPhase {
	for _, p := range macro.Phases {
		if p.Name == name {
			return p
		}
	}
	return domain.MacroPhase{}
}
