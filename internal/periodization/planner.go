package periodization

import (
	"time"

	"go.uber.org/zap"

	"alcyxob/training-engine/internal/domain"
)

// Planner turns a profile and goal into a plan:
// selector -> macrocycle -> mesocycles -> microcycles -> competitions.
type Planner struct {
	opts   Options
	logger *zap.Logger
}

func NewPlanner(opts Options, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{opts: opts.withDefaults(), logger: logger.Named("planner")}
}

// Options returns the cadences the planner was configured with.
func (pl *Planner) Options() Options { return pl.opts }

// Build validates the inputs and generates a plan. Competitions outside the
// horizon are logged and skipped.
func (pl *Planner) Build(profile *domain.AthleteProfile, goal *domain.GoalParameters, now time.Time) (*domain.Plan, *domain.ModelSelection, error) {
	if profile == nil {
		return nil, nil, domain.NewValidationError("profile", "athlete profile is required")
	}
	if err := domain.Validate(profile); err != nil {
		return nil, nil, err
	}
	if err := goal.Validate(); err != nil {
		return nil, nil, err
	}

	sel, err := SelectModel(profile, goal)
	if err != nil {
		return nil, nil, err
	}
	model, _ := Lookup(sel.Model)

	macro := BuildMacrocycle(model, *goal, pl.opts)
	mesos := GenerateMesocycles(macro, profile.Weaknesses, pl.opts)
	micros := GenerateMicrocycles(macro, mesos, pl.opts)

	g := goal.Clone()
	g.Competitions = nil
	plan := &domain.Plan{
		AthleteID:   profile.ID,
		Model:       sel.Model,
		ModelScore:  sel.Score,
		Revision:    1,
		Profile:     profile.Clone(),
		Goal:        g,
		Macrocycle:  macro,
		Mesocycles:  mesos,
		Microcycles: micros,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, c := range goal.Competitions {
		if _, ok := IntegrateCompetition(plan, c); !ok {
			pl.logger.Warn("competition outside plan horizon, skipped",
				zap.String("athlete_id", profile.ID),
				zap.String("competition", c.Name),
				zap.Time("date", c.Date))
			continue
		}
		plan.Goal.Competitions = append(plan.Goal.Competitions, c)
	}

	pl.logger.Info("plan built",
		zap.String("athlete_id", profile.ID),
		zap.String("model", string(sel.Model)),
		zap.Float64("score", sel.Score),
		zap.Int("weeks", len(micros)))
	return plan, sel, nil
}
