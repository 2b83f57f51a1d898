package periodization

import (
	"math"

	"alcyxob/training-engine/internal/domain"
)

// Options are the fixed cadences used while generating a plan.
type Options struct {
	DeloadCadence   int
	TestingCadence  int
	MesocycleLength int
}

// DefaultOptions: deload every 4th week, test every 6th, 4-week mesocycles.
func DefaultOptions() Options {
	return Options{DeloadCadence: 4, TestingCadence: 6, MesocycleLength: 4}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.DeloadCadence <= 0 {
		o.DeloadCadence = d.DeloadCadence
	}
	if o.TestingCadence <= 0 {
		o.TestingCadence = d.TestingCadence
	}
	if o.MesocycleLength <= 0 {
		o.MesocycleLength = d.MesocycleLength
	}
	return o
}

// BuildMacrocycle scales the model's phases to the goal horizon.
//
// Each phase gets max(1, round(relative*horizon/sum)) weeks, kept in Weeks.
// Phases are then laid out back to back over 1..horizon: the final phase is
// stretched or clipped to end on the horizon and phases that no longer fit
// are dropped.
func BuildMacrocycle(model domain.PeriodizationModel, goal domain.GoalParameters, opts Options) domain.Macrocycle {
	opts = opts.withDefaults()
	horizon := goal.HorizonWeeks

	var sum float64
	for _, p := range model.Phases {
		sum += p.Weeks
	}

	macro := domain.Macrocycle{
		Model:        model.Key,
		HorizonWeeks: horizon,
		StartDate:    goal.StartDate,
		EndDate:      goal.EndDate(),
		DeloadWeeks:  []int{},
		TestingWeeks: []int{},
	}

	start := 1
	for i, p := range model.Phases {
		if start > horizon {
			break
		}
		weeks := 1
		if sum > 0 {
			weeks = max(1, int(math.Round(p.Weeks*float64(horizon)/sum)))
		}
		end := start + weeks - 1
		if end > horizon || i == len(model.Phases)-1 {
			end = horizon
		}
		macro.Phases = append(macro.Phases, domain.MacroPhase{
			Name:            p.Name,
			Focus:           p.Focus,
			Weeks:           weeks,
			StartWeek:       start,
			EndWeek:         end,
			VolumeFactor:    p.VolumeFactor,
			IntensityFactor: p.IntensityFactor,
		})
		start = end + 1
	}

	for w := opts.DeloadCadence; w <= horizon; w += opts.DeloadCadence {
		macro.DeloadWeeks = append(macro.DeloadWeeks, w)
	}
	for w := opts.TestingCadence; w <= horizon; w += opts.TestingCadence {
		macro.TestingWeeks = append(macro.TestingWeeks, w)
	}
	if n := len(macro.TestingWeeks); n == 0 || macro.TestingWeeks[n-1] != horizon {
		macro.TestingWeeks = append(macro.TestingWeeks, horizon)
	}
	return macro
}
