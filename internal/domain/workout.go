package domain

// ExercisePrescription is one exercise of a base workout skeleton. Weight and
// Percentage are optional; zero means not prescribed.
type ExercisePrescription struct {
	Name        string   `bson:"name" json:"name" validate:"required"`
	MainLift    bool     `bson:"mainLift" json:"mainLift"`
	Sets        int      `bson:"sets" json:"sets" validate:"min=1"`
	Reps        int      `bson:"reps" json:"reps" validate:"min=1"`
	Weight      float64  `bson:"weight,omitempty" json:"weight,omitempty" validate:"min=0"`
	Percentage  float64  `bson:"percentage,omitempty" json:"percentage,omitempty" validate:"min=0"`
	RestSeconds int      `bson:"restSeconds,omitempty" json:"restSeconds,omitempty" validate:"min=0"`
	Notes       []string `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Workout is a base workout supplied by the caller.
type Workout struct {
	Name      string                 `bson:"name,omitempty" json:"name,omitempty"`
	Exercises []ExercisePrescription `bson:"exercises" json:"exercises" validate:"required,min=1,dive"`
}

// Clone returns a deep copy of w.
func (w Workout) Clone() Workout {
	out := w
	out.Exercises = make([]ExercisePrescription, len(w.Exercises))
	for i, e := range w.Exercises {
		e.Notes = append([]string(nil), e.Notes...)
		out.Exercises[i] = e
	}
	return out
}

// ModificationType classifies an adapter change.
type ModificationType string

const (
	ModificationVolume    ModificationType = "volume"
	ModificationIntensity ModificationType = "intensity"
	ModificationFocus     ModificationType = "focus"
)

// Modification is one audited change made by the workout adapter.
type Modification struct {
	Type       ModificationType `json:"type"`
	Exercise   string           `json:"exercise"`
	Field      string           `json:"field"`
	Original   float64          `json:"original"`
	Adapted    float64          `json:"adapted"`
	Multiplier float64          `json:"multiplier,omitempty"`
	Rule       string           `json:"rule,omitempty"`
	Reason     string           `json:"reason"`
}

// PeriodizationContext describes the week a workout was adapted for.
type PeriodizationContext struct {
	Week                int      `json:"week"`
	Phase               string   `json:"phase"`
	MesocycleID         string   `json:"mesocycleId"`
	IsDeloadWeek        bool     `json:"isDeloadWeek"`
	IsTaperWeek         bool     `json:"isTaperWeek"`
	IsCompetitionWeek   bool     `json:"isCompetitionWeek"`
	IsRecoveryWeek      bool     `json:"isRecoveryWeek"`
	VolumeMultiplier    float64  `json:"volumeMultiplier"`
	IntensityMultiplier float64  `json:"intensityMultiplier"`
	FocusAreas          []string `json:"focusAreas"`
}

// AdaptedWorkout is the adapter's output: the original, the adapted copy and
// the audit trail linking them.
type AdaptedWorkout struct {
	Original             Workout               `json:"original"`
	Workout              Workout               `json:"workout"`
	Modifications        []Modification        `json:"modifications"`
	PeriodizationContext *PeriodizationContext `json:"periodizationContext,omitempty"`
}
