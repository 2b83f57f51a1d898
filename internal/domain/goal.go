package domain

import "time"

// Competition importance values. Anything other than major gets the short taper.
const (
	ImportanceMajor = "major"
	ImportanceMinor = "minor"
)

// Competition is a dated event the plan peaks for.
type Competition struct {
	Name       string    `bson:"name" json:"name" validate:"required"`
	Date       time.Time `bson:"date" json:"date" validate:"required"`
	Importance string    `bson:"importance" json:"importance" validate:"omitempty,oneof=major minor"`
	Type       string    `bson:"type,omitempty" json:"type,omitempty"`
}

// GoalParameters describes the horizon and target of a plan.
type GoalParameters struct {
	HorizonWeeks int           `bson:"horizonWeeks" json:"horizonWeeks" validate:"min=1,max=104"`
	PrimaryGoal  string        `bson:"primaryGoal,omitempty" json:"primaryGoal,omitempty"`
	StartDate    time.Time     `bson:"startDate" json:"startDate" validate:"required"`
	Competitions []Competition `bson:"competitions,omitempty" json:"competitions,omitempty" validate:"dive"`
}

// EndDate is StartDate plus the horizon in whole weeks.
func (g GoalParameters) EndDate() time.Time {
	return g.StartDate.AddDate(0, 0, 7*g.HorizonWeeks)
}

// Covers reports whether t falls inside [start, start+horizon].
func (g GoalParameters) Covers(t time.Time) bool {
	return !t.Before(g.StartDate) && !t.After(g.EndDate())
}

// Validate checks field constraints. Competitions outside the horizon are not
// rejected here; the competition integrator skips them.
func (g *GoalParameters) Validate() error {
	if g == nil {
		return NewValidationError("goal", "goal parameters are required")
	}
	return Validate(g)
}

// Clone returns a copy that shares no slices with g.
func (g GoalParameters) Clone() GoalParameters {
	out := g
	out.Competitions = append([]Competition(nil), g.Competitions...)
	return out
}
