package periodization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/training-engine/internal/domain"
)

var testStart = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func powerlifter() *domain.AthleteProfile {
	return &domain.AthleteProfile{
		ID:             "athlete-1",
		Experience:     domain.ExperienceAdvanced,
		TrainingType:   domain.TrainingStrength,
		Specialization: "powerlifting",
	}
}

func TestSelectModelPowerliftingScenario(t *testing.T) {
	goal := &domain.GoalParameters{HorizonWeeks: 16, PrimaryGoal: "strength", StartDate: testStart}

	sel, err := SelectModel(powerlifter(), goal)
	require.NoError(t, err)
	assert.Contains(t, []domain.ModelKey{domain.ModelConjugate, domain.ModelBlock}, sel.Model)
	assert.GreaterOrEqual(t, sel.Score, 0.8)
	assert.Len(t, sel.Scores, len(domain.ModelKeys))
	assert.NotEmpty(t, sel.Rationale)
}

func TestTargetTypeIgnoresFreeTextGoals(t *testing.T) {
	cases := []struct {
		goal string
		want domain.TrainingType
	}{
		{"", domain.TrainingStrength},
		{"powerlifting", domain.TrainingStrength},
		{"get stronger", domain.TrainingStrength},
		{" Hypertrophy ", domain.TrainingHypertrophy},
		{"endurance", domain.TrainingEndurance},
	}
	for _, c := range cases {
		t.Run(c.goal, func(t *testing.T) {
			goal := &domain.GoalParameters{HorizonWeeks: 16, PrimaryGoal: c.goal, StartDate: testStart}
			assert.Equal(t, c.want, targetType(powerlifter(), goal))
		})
	}

	block, ok := Lookup(domain.ModelBlock)
	require.True(t, ok)
	goal := &domain.GoalParameters{HorizonWeeks: 16, PrimaryGoal: "powerlifting", StartDate: testStart}
	_, why := ScoreModel(block, powerlifter(), goal)
	assert.Contains(t, why, "training type match")
}

func TestSelectModelIsDeterministic(t *testing.T) {
	goal := &domain.GoalParameters{HorizonWeeks: 12, StartDate: testStart}
	a, err := SelectModel(powerlifter(), goal)
	require.NoError(t, err)
	b, err := SelectModel(powerlifter(), goal)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSelectModelScoresStayInRange(t *testing.T) {
	levels := []domain.ExperienceLevel{domain.ExperienceBeginner, domain.ExperienceIntermediate, domain.ExperienceAdvanced}
	types := []domain.TrainingType{domain.TrainingStrength, domain.TrainingHypertrophy, domain.TrainingEndurance, domain.TrainingGeneral}
	comps := [][]domain.Competition{nil, {{Name: "meet", Date: testStart.AddDate(0, 0, 30)}}}

	for _, lvl := range levels {
		for _, tt := range types {
			for _, c := range comps {
				p := &domain.AthleteProfile{
					ID: "x", Experience: lvl, TrainingType: tt,
					TimeConstraint: domain.TimeLimited, RecoveryCapacity: domain.RecoveryLow,
				}
				sel, err := SelectModel(p, &domain.GoalParameters{HorizonWeeks: 8, StartDate: testStart, Competitions: c})
				require.NoError(t, err)
				for _, s := range sel.Scores {
					assert.GreaterOrEqual(t, s.Score, 0.0)
					assert.LessOrEqual(t, s.Score, 1.0)
				}
			}
		}
	}
}

func TestSelectModelEnduranceAthlete(t *testing.T) {
	p := &domain.AthleteProfile{ID: "r", Experience: domain.ExperienceIntermediate, TrainingType: domain.TrainingEndurance}
	sel, err := SelectModel(p, &domain.GoalParameters{HorizonWeeks: 20, StartDate: testStart})
	require.NoError(t, err)
	assert.Equal(t, domain.ModelPolarized, sel.Model)
}

func TestSelectModelValidation(t *testing.T) {
	_, err := SelectModel(nil, &domain.GoalParameters{HorizonWeeks: 4})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = SelectModel(powerlifter(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = SelectModel(powerlifter(), &domain.GoalParameters{HorizonWeeks: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestScoreModelPenalties(t *testing.T) {
	conj, ok := Lookup(domain.ModelConjugate)
	require.True(t, ok)

	p := &domain.AthleteProfile{
		Experience: domain.ExperienceIntermediate, TrainingType: domain.TrainingHypertrophy,
		TimeConstraint: domain.TimeLimited, RecoveryCapacity: domain.RecoveryLow,
	}
	score, why := ScoreModel(conj, p, &domain.GoalParameters{HorizonWeeks: 8})
	assert.InDelta(t, 0.3, score, 1e-9)
	assert.Len(t, why, 2)
}

func TestCatalogCoversEveryKey(t *testing.T) {
	models := Catalog()
	require.Len(t, models, len(domain.ModelKeys))
	for i, m := range models {
		assert.Equal(t, domain.ModelKeys[i], m.Key)
		assert.NotEmpty(t, m.Phases)
		assert.NotEmpty(t, m.Name)
	}

	_, ok := Lookup("wave")
	assert.False(t, ok)
	_, err := PhaseTemplates("wave")
	assert.Error(t, err)
}
