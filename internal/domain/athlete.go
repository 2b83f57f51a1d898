package domain

// ExperienceLevel is the athlete's training-age tier.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
)

// TrainingType is the athlete's dominant training orientation. It also
// selects the monitor's fatigue thresholds.
type TrainingType string

const (
	TrainingStrength    TrainingType = "strength"
	TrainingHypertrophy TrainingType = "hypertrophy"
	TrainingEndurance   TrainingType = "endurance"
	TrainingGeneral     TrainingType = "general"
)

// Known reports whether t is one of the defined training types.
func (t TrainingType) Known() bool {
	switch t {
	case TrainingStrength, TrainingHypertrophy, TrainingEndurance, TrainingGeneral:
		return true
	}
	return false
}

// TimeConstraint describes how much training time the athlete has.
type TimeConstraint string

const (
	TimeLimited  TimeConstraint = "limited"
	TimeModerate TimeConstraint = "moderate"
	TimeFlexible TimeConstraint = "flexible"
)

// RecoveryCapacity describes the athlete's ability to absorb training load.
type RecoveryCapacity string

const (
	RecoveryLow      RecoveryCapacity = "low"
	RecoveryModerate RecoveryCapacity = "moderate"
	RecoveryHigh     RecoveryCapacity = "high"
)

// AthleteProfile is supplied once per plan. A plan built from a profile keeps
// its own copy; a changed profile requires a new plan.
type AthleteProfile struct {
	ID               string           `bson:"id" json:"id" validate:"required"`
	Experience       ExperienceLevel  `bson:"experience" json:"experience" validate:"required,oneof=beginner intermediate advanced"`
	TrainingType     TrainingType     `bson:"trainingType" json:"trainingType" validate:"required,oneof=strength hypertrophy endurance general"`
	TimeConstraint   TimeConstraint   `bson:"timeConstraint,omitempty" json:"timeConstraint,omitempty" validate:"omitempty,oneof=limited moderate flexible"`
	RecoveryCapacity RecoveryCapacity `bson:"recoveryCapacity,omitempty" json:"recoveryCapacity,omitempty" validate:"omitempty,oneof=low moderate high"`
	Specialization   string           `bson:"specialization,omitempty" json:"specialization,omitempty"`
	Weaknesses       []string         `bson:"weaknesses,omitempty" json:"weaknesses,omitempty"`
}

// Clone returns a copy that shares no slices with p.
func (p AthleteProfile) Clone() AthleteProfile {
	out := p
	out.Weaknesses = append([]string(nil), p.Weaknesses...)
	return out
}
