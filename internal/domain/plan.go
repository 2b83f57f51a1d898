package domain

import "time"

// MacroPhase is a catalog phase scaled to the plan horizon. Weeks keeps the
// rounded scaled length; StartWeek/EndWeek are the reconciled, contiguous
// placement inside 1..horizon.
type MacroPhase struct {
	Name            string  `bson:"name" json:"name"`
	Focus           Focus   `bson:"focus,omitempty" json:"focus,omitempty"`
	Weeks           int     `bson:"weeks" json:"weeks"`
	StartWeek       int     `bson:"startWeek" json:"startWeek"`
	EndWeek         int     `bson:"endWeek" json:"endWeek"`
	VolumeFactor    float64 `bson:"volumeFactor" json:"volumeFactor"`
	IntensityFactor float64 `bson:"intensityFactor" json:"intensityFactor"`
}

// Macrocycle spans the whole plan horizon.
type Macrocycle struct {
	Model        ModelKey     `bson:"model" json:"model"`
	HorizonWeeks int          `bson:"horizonWeeks" json:"horizonWeeks"`
	Phases       []MacroPhase `bson:"phases" json:"phases"`
	DeloadWeeks  []int        `bson:"deloadWeeks" json:"deloadWeeks"`
	TestingWeeks []int        `bson:"testingWeeks" json:"testingWeeks"`
	StartDate    time.Time    `bson:"startDate" json:"startDate"`
	EndDate      time.Time    `bson:"endDate" json:"endDate"`
}

// Mesocycle is a block of weeks inside one phase sharing a focus.
type Mesocycle struct {
	ID                   string   `bson:"id" json:"id"`
	Phase                string   `bson:"phase" json:"phase"`
	Focus                Focus    `bson:"focus,omitempty" json:"focus,omitempty"`
	StartWeek            int      `bson:"startWeek" json:"startWeek"`
	EndWeek              int      `bson:"endWeek" json:"endWeek"`
	VolumeProgression    float64  `bson:"volumeProgression" json:"volumeProgression"`
	IntensityProgression float64  `bson:"intensityProgression" json:"intensityProgression"`
	FocusAreas           []string `bson:"focusAreas" json:"focusAreas"`
	AdaptationMarkers    []string `bson:"adaptationMarkers,omitempty" json:"adaptationMarkers,omitempty"`
}

// CompetitionPrep is attached to taper weeks.
type CompetitionPrep struct {
	Competition string   `bson:"competition" json:"competition"`
	Importance  string   `bson:"importance" json:"importance"`
	Type        string   `bson:"type,omitempty" json:"type,omitempty"`
	WeeksOut    int      `bson:"weeksOut" json:"weeksOut"`
	TaperFocus  string   `bson:"taperFocus" json:"taperFocus"`
	Techniques  []string `bson:"techniques" json:"techniques"`
}

// Microcycle is one week of the plan.
type Microcycle struct {
	Week                int              `bson:"week" json:"week"`
	MesocycleID         string           `bson:"mesocycleId" json:"mesocycleId"`
	Phase               string           `bson:"phase" json:"phase"`
	IsDeloadWeek        bool             `bson:"isDeloadWeek" json:"isDeloadWeek"`
	IsTaperWeek         bool             `bson:"isTaperWeek" json:"isTaperWeek"`
	IsCompetitionWeek   bool             `bson:"isCompetitionWeek" json:"isCompetitionWeek"`
	IsRecoveryWeek      bool             `bson:"isRecoveryWeek" json:"isRecoveryWeek"`
	IsTestingWeek       bool             `bson:"isTestingWeek" json:"isTestingWeek"`
	VolumeMultiplier    float64          `bson:"volumeMultiplier" json:"volumeMultiplier"`
	IntensityMultiplier float64          `bson:"intensityMultiplier" json:"intensityMultiplier"`
	FocusAreas          []string         `bson:"focusAreas" json:"focusAreas"`
	RecoveryProtocols   []string         `bson:"recoveryProtocols" json:"recoveryProtocols"`
	CompetitionPrep     *CompetitionPrep `bson:"competitionPrep,omitempty" json:"competitionPrep,omitempty"`
}

// Plan is the unit of ownership: one active plan per athlete context.
// Plans are never mutated in place once published; adaptations derive a new
// revision from a deep copy.
type Plan struct {
	AthleteID   string         `bson:"athleteId" json:"athleteId"`
	Model       ModelKey       `bson:"model" json:"model"`
	ModelScore  float64        `bson:"modelScore" json:"modelScore"`
	Revision    int            `bson:"revision" json:"revision"`
	Profile     AthleteProfile `bson:"profile" json:"profile"`
	Goal        GoalParameters `bson:"goal" json:"goal"`
	Macrocycle  Macrocycle     `bson:"macrocycle" json:"macrocycle"`
	Mesocycles  []Mesocycle    `bson:"mesocycles" json:"mesocycles"`
	Microcycles []Microcycle   `bson:"microcycles" json:"microcycles"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Week returns the microcycle for week n (1-based).
func (p *Plan) Week(n int) (*Microcycle, bool) {
	if p == nil || n < 1 || n > len(p.Microcycles) {
		return nil, false
	}
	m := &p.Microcycles[n-1]
	if m.Week != n {
		for i := range p.Microcycles {
			if p.Microcycles[i].Week == n {
				return &p.Microcycles[i], true
			}
		}
		return nil, false
	}
	return m, true
}

// Mesocycle returns the mesocycle with the given id.
func (p *Plan) Mesocycle(id string) (*Mesocycle, bool) {
	if p == nil {
		return nil, false
	}
	for i := range p.Mesocycles {
		if p.Mesocycles[i].ID == id {
			return &p.Mesocycles[i], true
		}
	}
	return nil, false
}

// WeekAt maps a point in time to its plan week, clamped to 1..horizon.
func (p *Plan) WeekAt(t time.Time) int {
	if p == nil || p.Macrocycle.HorizonWeeks == 0 {
		return 0
	}
	days := int(t.Sub(p.Macrocycle.StartDate).Hours() / 24)
	week := days/7 + 1
	if days < 0 {
		week = 1
	}
	if week > p.Macrocycle.HorizonWeeks {
		week = p.Macrocycle.HorizonWeeks
	}
	return week
}

// Clone returns a deep copy of p.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	out.Profile = p.Profile.Clone()
	out.Goal = p.Goal.Clone()
	out.Macrocycle.Phases = append([]MacroPhase(nil), p.Macrocycle.Phases...)
	out.Macrocycle.DeloadWeeks = append([]int(nil), p.Macrocycle.DeloadWeeks...)
	out.Macrocycle.TestingWeeks = append([]int(nil), p.Macrocycle.TestingWeeks...)

	out.Mesocycles = make([]Mesocycle, len(p.Mesocycles))
	for i, m := range p.Mesocycles {
		m.FocusAreas = append([]string(nil), m.FocusAreas...)
		m.AdaptationMarkers = append([]string(nil), m.AdaptationMarkers...)
		out.Mesocycles[i] = m
	}

	out.Microcycles = make([]Microcycle, len(p.Microcycles))
	for i, m := range p.Microcycles {
		out.Microcycles[i] = m.Clone()
	}
	return &out
}

// Clone returns a deep copy of m.
func (m Microcycle) Clone() Microcycle {
	out := m
	out.FocusAreas = append([]string(nil), m.FocusAreas...)
	out.RecoveryProtocols = append([]string(nil), m.RecoveryProtocols...)
	if m.CompetitionPrep != nil {
		prep := *m.CompetitionPrep
		prep.Techniques = append([]string(nil), m.CompetitionPrep.Techniques...)
		out.CompetitionPrep = &prep
	}
	return out
}
