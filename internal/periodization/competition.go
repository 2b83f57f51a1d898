package periodization

import (
	"math"
	"strings"

	"alcyxob/training-engine/internal/domain"
)

const (
	majorTaperWeeks   = 3
	defaultTaperWeeks = 2

	taperVolumeDrop    = 0.6
	taperIntensityRise = 0.05

	recoveryWeekVolume    = 0.5
	recoveryWeekIntensity = 0.7
)

// TaperLength is 3 weeks for major competitions and 2 otherwise.
func TaperLength(importance string) int {
	if strings.EqualFold(importance, domain.ImportanceMajor) {
		return majorTaperWeeks
	}
	return defaultTaperWeeks
}

// CompetitionWeek returns the plan week containing the competition date, and false when the
// date falls outside [start, start+horizon].
func CompetitionWeek(macro domain.Macrocycle, c domain.Competition) (int, bool) {
	if c.Date.Before(macro.StartDate) || c.Date.After(macro.EndDate) {
		return 0, false
	}
	days := int(c.Date.Sub(macro.StartDate).Hours() / 24)
	return min(days/7+1, macro.HorizonWeeks), true
}

// IntegrateCompetition overlays a taper, the competition week and a
// post-event recovery week onto p in place. Pass a copy of a published plan.
// It reports false, leaving p untouched, when the competition lies outside
// the plan horizon.
//
// Taper week i runs from 1 (earliest) to L (the week before the event).
// Volume is taken from the highest taper-week multiplier and scaled by
// 1-(i/L)*0.6 so it strictly drops toward the event; intensity is scaled by
// 1+(i/L)*0.05.
func IntegrateCompetition(p *domain.Plan, c domain.Competition) ([]domain.WeekChange, bool) {
	compWeek, ok := CompetitionWeek(p.Macrocycle, c)
	if !ok {
		return nil, false
	}
	var changes []domain.WeekChange
	L := TaperLength(c.Importance)
	first := compWeek - L

	anchor := 0.0
	for w := max(first, 1); w < compWeek; w++ {
		if m, ok := p.Week(w); ok {
			anchor = math.Max(anchor, m.VolumeMultiplier)
		}
	}

	for i := 1; i <= L; i++ {
		m, ok := p.Week(first + i - 1)
		if !ok {
			continue
		}
		frac := float64(i) / float64(L)
		changes = append(changes, setVolume(m, anchor*(1-frac*taperVolumeDrop)))
		changes = append(changes, setIntensity(m, m.IntensityMultiplier*(1+frac*taperIntensityRise)))

		m.IsTaperWeek = true
		m.IsDeloadWeek = false
		weeksOut := L - i + 1
		m.CompetitionPrep = &domain.CompetitionPrep{
			Competition: c.Name,
			Importance:  c.Importance,
			Type:        c.Type,
			WeeksOut:    weeksOut,
			TaperFocus:  taperFocus(weeksOut),
			Techniques:  taperTechniques(c.Type),
		}
		m.RecoveryProtocols = appendUnique(m.RecoveryProtocols, ProtocolTaperRest)
	}

	if m, ok := p.Week(compWeek); ok {
		m.IsCompetitionWeek = true
		changes = append(changes, domain.WeekChange{Week: compWeek, Field: "isCompetitionWeek", Before: 0, After: 1})
	}

	if m, ok := p.Week(compWeek + 1); ok {
		m.IsRecoveryWeek = true
		changes = append(changes, setVolume(m, m.VolumeMultiplier*recoveryWeekVolume))
		changes = append(changes, setIntensity(m, m.IntensityMultiplier*recoveryWeekIntensity))
		m.RecoveryProtocols = appendUnique(m.RecoveryProtocols, ProtocolPostCompetition)
	}
	syncDeloadWeeks(p)
	return changes, true
}

func setVolume(m *domain.Microcycle, v float64) domain.WeekChange {
	ch := domain.WeekChange{Week: m.Week, Field: "volumeMultiplier", Before: m.VolumeMultiplier, After: v}
	m.VolumeMultiplier = v
	return ch
}

func setIntensity(m *domain.Microcycle, v float64) domain.WeekChange {
	ch := domain.WeekChange{Week: m.Week, Field: "intensityMultiplier", Before: m.IntensityMultiplier, After: v}
	m.IntensityMultiplier = v
	return ch
}

func taperFocus(weeksOut int) string {
	switch weeksOut {
	case 1:
		return "openers and rest: minimal volume, full recovery"
	case 2:
		return "sharpen: competition-specific singles, reduced accessories"
	default:
		return "reduce volume while holding intensity"
	}
}

func taperTechniques(competitionType string) []string {
	switch strings.ToLower(competitionType) {
	case "powerlifting":
		return []string{"attempt_selection", "commands_practice", "competition_singles"}
	case "weightlifting":
		return []string{"attempt_selection", "warmup_timing", "speed_under_bar"}
	case "strongman":
		return []string{"event_rehearsal", "implement_familiarisation", "pacing_strategy"}
	case "running", "cycling", "triathlon", "rowing", "endurance":
		return []string{"race_pace_strides", "carbohydrate_loading", "pacing_strategy"}
	default:
		return []string{"movement_rehearsal", "sleep_banking", "nutrition_timing"}
	}
}

func appendUnique(list []string, tag string) []string {
	for _, t := range list {
		if t == tag {
			return list
		}
	}
	return append(list, tag)
}
