package periodization

import (
	"fmt"
	"math"
	"strconv"

	"alcyxob/training-engine/internal/domain"
)

// AdaptWorkout applies the week's multipliers and focus rules to a copy of
// base. It is a pure function of its arguments.
//
// With no plan, or no microcycle for week, the result carries an unchanged
// copy of base together with a *domain.NotFoundError.
func AdaptWorkout(plan *domain.Plan, week int, base domain.Workout) (*domain.AdaptedWorkout, error) {
	out := &domain.AdaptedWorkout{
		Original:      base.Clone(),
		Workout:       base.Clone(),
		Modifications: []domain.Modification{},
	}
	if plan == nil {
		return out, domain.NewNotFoundError("plan", "")
	}
	m, ok := plan.Week(week)
	if !ok {
		return out, domain.NewNotFoundError("week", strconv.Itoa(week))
	}

	a := adapter{week: m}
	for i := range out.Workout.Exercises {
		ex := &out.Workout.Exercises[i]
		a.volume(ex)
		a.intensity(ex)
		for _, f := range m.FocusAreas {
			a.focus(ex, domain.Focus(f))
		}
	}
	out.Modifications = append(out.Modifications, a.mods...)
	out.PeriodizationContext = &domain.PeriodizationContext{
		Week:                m.Week,
		Phase:               m.Phase,
		MesocycleID:         m.MesocycleID,
		IsDeloadWeek:        m.IsDeloadWeek,
		IsTaperWeek:         m.IsTaperWeek,
		IsCompetitionWeek:   m.IsCompetitionWeek,
		IsRecoveryWeek:      m.IsRecoveryWeek,
		VolumeMultiplier:    m.VolumeMultiplier,
		IntensityMultiplier: m.IntensityMultiplier,
		FocusAreas:          append([]string(nil), m.FocusAreas...),
	}
	return out, nil
}

type adapter struct {
	week *domain.Microcycle
	mods []domain.Modification
}

func (a *adapter) record(m domain.Modification) {
	if m.Original != m.Adapted || m.Field == "notes" {
		a.mods = append(a.mods, m)
	}
}

func (a *adapter) volume(ex *domain.ExercisePrescription) {
	vm := a.week.VolumeMultiplier
	sets := max(1, int(math.Round(float64(ex.Sets)*vm)))
	a.record(domain.Modification{
		Type: domain.ModificationVolume, Exercise: ex.Name, Field: "sets",
		Original: float64(ex.Sets), Adapted: float64(sets), Multiplier: vm,
		Reason: fmt.Sprintf("week %d volume multiplier %.2f", a.week.Week, vm),
	})
	ex.Sets = sets
}

func (a *adapter) intensity(ex *domain.ExercisePrescription) {
	im := a.week.IntensityMultiplier
	reason := fmt.Sprintf("week %d intensity multiplier %.2f", a.week.Week, im)
	if ex.Weight > 0 {
		w := roundToHalf(ex.Weight * im)
		a.record(domain.Modification{
			Type: domain.ModificationIntensity, Exercise: ex.Name, Field: "weight",
			Original: ex.Weight, Adapted: w, Multiplier: im, Reason: reason,
		})
		ex.Weight = w
	}
	if ex.Percentage > 0 {
		p := math.Round(ex.Percentage*im*100) / 100
		a.record(domain.Modification{
			Type: domain.ModificationIntensity, Exercise: ex.Name, Field: "percentage",
			Original: ex.Percentage, Adapted: p, Multiplier: im, Reason: reason,
		})
		ex.Percentage = p
	}
}

func (a *adapter) focus(ex *domain.ExercisePrescription, f domain.Focus) {
	switch f {
	case domain.FocusStrength:
		if ex.MainLift {
			a.clampReps(ex, 1, 5, "strength_reps", "strength focus keeps main lifts at 1-5 reps")
			a.minRest(ex, 180, "strength_rest", "strength focus needs full recovery between sets")
		}
	case domain.FocusHypertrophy:
		a.clampReps(ex, 6, 12, "hypertrophy_reps", "hypertrophy focus uses 6-12 reps")
		a.maxRest(ex, 120, "hypertrophy_rest", "hypertrophy focus keeps rest short")
	case domain.FocusPower:
		if ex.MainLift {
			a.clampReps(ex, 1, 3, "power_reps", "power focus keeps main lifts at 1-3 reps")
			a.minRest(ex, 240, "power_rest", "power focus needs long rest to keep bar speed")
			a.note(ex, "explosive intent: move every rep as fast as possible", "power_intent")
		}
	case domain.FocusRecovery:
		if ex.Weight > 0 {
			w := roundToHalf(ex.Weight * 0.8)
			a.record(domain.Modification{
				Type: domain.ModificationFocus, Exercise: ex.Name, Field: "weight",
				Original: ex.Weight, Adapted: w, Multiplier: 0.8, Rule: "recovery_load",
				Reason: "recovery focus lightens the load",
			})
			ex.Weight = w
		}
		a.note(ex, "focus on movement quality, stop well short of failure", "recovery_quality")
	case domain.FocusTechnique:
		if ex.MainLift {
			a.clampReps(ex, 3, 6, "technique_reps", "technique focus uses moderate reps")
			a.note(ex, "controlled 3-1-1 tempo, film a top set", "technique_tempo")
		}
	case domain.FocusEndurance:
		a.clampReps(ex, 12, 20, "endurance_reps", "endurance focus uses 12-20 reps")
		a.maxRest(ex, 60, "endurance_rest", "endurance focus keeps rest under a minute")
	}
}

func (a *adapter) clampReps(ex *domain.ExercisePrescription, lo, hi int, rule, reason string) {
	reps := min(max(ex.Reps, lo), hi)
	a.record(domain.Modification{
		Type: domain.ModificationFocus, Exercise: ex.Name, Field: "reps",
		Original: float64(ex.Reps), Adapted: float64(reps), Rule: rule, Reason: reason,
	})
	ex.Reps = reps
}

func (a *adapter) minRest(ex *domain.ExercisePrescription, seconds int, rule, reason string) {
	if ex.RestSeconds <= 0 || ex.RestSeconds >= seconds {
		return
	}
	a.record(domain.Modification{
		Type: domain.ModificationFocus, Exercise: ex.Name, Field: "restSeconds",
		Original: float64(ex.RestSeconds), Adapted: float64(seconds), Rule: rule, Reason: reason,
	})
	ex.RestSeconds = seconds
}

func (a *adapter) maxRest(ex *domain.ExercisePrescription, seconds int, rule, reason string) {
	if ex.RestSeconds <= seconds {
		return
	}
	a.record(domain.Modification{
		Type: domain.ModificationFocus, Exercise: ex.Name, Field: "restSeconds",
		Original: float64(ex.RestSeconds), Adapted: float64(seconds), Rule: rule, Reason: reason,
	})
	ex.RestSeconds = seconds
}

func (a *adapter) note(ex *domain.ExercisePrescription, text, rule string) {
	for _, n := range ex.Notes {
		if n == text {
			return
		}
	}
	ex.Notes = append(ex.Notes, text)
	a.record(domain.Modification{
		Type: domain.ModificationFocus, Exercise: ex.Name, Field: "notes", Rule: rule, Reason: text,
	})
}

func roundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
