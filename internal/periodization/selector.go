package periodization

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"alcyxob/training-engine/internal/domain"
)

// Selector weights.
const (
	baseScore           = 0.5
	typeMatchBonus      = 0.3
	experienceBonus     = 0.2
	specializationBonus = 0.4
	peakingBonus        = 0.15
	timePenalty         = 0.1
	recoveryPenalty     = 0.1
)

// SelectModel scores every catalog model and returns the best one. Ties go to
// the model that comes first in catalog order.
func SelectModel(profile *domain.AthleteProfile, goal *domain.GoalParameters) (*domain.ModelSelection, error) {
	if profile == nil {
		return nil, domain.NewValidationError("profile", "athlete profile is required")
	}
	if goal == nil {
		return nil, domain.NewValidationError("goal", "goal parameters are required")
	}
	if goal.HorizonWeeks < 1 {
		return nil, domain.NewValidationError("goal.horizonWeeks", "horizon must be at least 1 week")
	}

	sel := &domain.ModelSelection{Score: -1}
	var reasons []string
	for _, m := range Catalog() {
		score, why := ScoreModel(m, profile, goal)
		sel.Scores = append(sel.Scores, domain.ModelScore{Model: m.Key, Score: score})
		if score > sel.Score {
			sel.Model, sel.Score = m.Key, score
			reasons = why
		}
	}

	best, _ := Lookup(sel.Model)
	if len(reasons) == 0 {
		reasons = []string{"no specific match, default ordering"}
	}
	sel.Rationale = fmt.Sprintf("%s (score %.2f): %s. %s", best.Name, sel.Score, strings.Join(reasons, ", "), best.Rationale)
	return sel, nil
}

// ScoreModel returns the clamped score of m for the athlete and the list of
// factors that moved it.
func ScoreModel(m domain.PeriodizationModel, profile *domain.AthleteProfile, goal *domain.GoalParameters) (float64, []string) {
	score := baseScore
	var why []string

	if slices.Contains(m.TrainingTypes, targetType(profile, goal)) {
		score += typeMatchBonus
		why = append(why, "training type match")
	}
	if slices.Contains(m.ExperienceLevels, profile.Experience) {
		score += experienceBonus
		why = append(why, "suits "+string(profile.Experience)+" athletes")
	}
	if spec := strings.ToLower(strings.TrimSpace(profile.Specialization)); spec != "" && slices.Contains(m.Specializations, spec) {
		score += specializationBonus
		why = append(why, "built for "+spec)
	}
	if len(goal.Competitions) > 0 && m.PeakingCapable {
		score += peakingBonus
		why = append(why, "can peak for competition")
	}
	if m.HighDemand && profile.TimeConstraint == domain.TimeLimited {
		score -= timePenalty
		why = append(why, "demanding under limited time")
	}
	if m.HighDemand && profile.RecoveryCapacity == domain.RecoveryLow {
		score -= recoveryPenalty
		why = append(why, "demanding under low recovery capacity")
	}
	return math.Max(0, math.Min(1, score)), why
}

// targetType uses the goal's primary goal when it names a training type and
// falls back to the profile's training type otherwise.
func targetType(profile *domain.AthleteProfile, goal *domain.GoalParameters) domain.TrainingType {
	if g := domain.TrainingType(strings.ToLower(strings.TrimSpace(goal.PrimaryGoal))); g.Known() {
		return g
	}
	return profile.TrainingType
}
