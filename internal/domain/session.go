package domain

import (
	"math"
	"time"
)

// SetRecord is one performed set.
type SetRecord struct {
	Weight    float64 `bson:"weight" json:"weight" validate:"min=0"`
	Reps      int     `bson:"reps" json:"reps" validate:"min=0"`
	RPE       float64 `bson:"rpe,omitempty" json:"rpe,omitempty" validate:"omitempty,min=1,max=10"`
	Completed bool    `bson:"completed" json:"completed"`
}

// ExerciseEntry groups the sets performed for one exercise.
type ExerciseEntry struct {
	Name     string      `bson:"name" json:"name" validate:"required"`
	MainLift bool        `bson:"mainLift" json:"mainLift"`
	Sets     []SetRecord `bson:"sets" json:"sets" validate:"required,min=1,dive"`
}

// Wellness holds subjective 1-10 scores reported with a session.
type Wellness struct {
	Energy       int `bson:"energy" json:"energy" validate:"min=1,max=10"`
	SleepQuality int `bson:"sleepQuality" json:"sleepQuality" validate:"min=1,max=10"`
	Stress       int `bson:"stress" json:"stress" validate:"min=1,max=10"`
	Soreness     int `bson:"soreness" json:"soreness" validate:"min=1,max=10"`
	Motivation   int `bson:"motivation" json:"motivation" validate:"min=1,max=10"`
}

// SessionRecord is a completed training session as reported by the logging UI.
// Derived metrics are computed on demand via Metrics.
type SessionRecord struct {
	Date      time.Time       `bson:"date" json:"date" validate:"required"`
	Exercises []ExerciseEntry `bson:"exercises" json:"exercises" validate:"required,min=1,dive"`
	Wellness  *Wellness       `bson:"wellness,omitempty" json:"wellness,omitempty"`
}

// SessionMetrics are the values derived from a SessionRecord.
type SessionMetrics struct {
	Date         time.Time `json:"date"`
	Volume       float64   `json:"volume"`
	AverageRPE   float64   `json:"averageRpe"`
	EstimatedMax float64   `json:"estimatedMax"`
	Adherence    float64   `json:"adherence"`
	Recovery     float64   `json:"recovery"`
	HasRecovery  bool      `json:"hasRecovery"`
	HasRPE       bool      `json:"hasRpe"`
}

// Clone returns a deep copy of s.
func (s SessionRecord) Clone() SessionRecord {
	out := s
	out.Exercises = make([]ExerciseEntry, len(s.Exercises))
	for i, e := range s.Exercises {
		e.Sets = append([]SetRecord(nil), e.Sets...)
		out.Exercises[i] = e
	}
	if s.Wellness != nil {
		w := *s.Wellness
		out.Wellness = &w
	}
	return out
}

// EpleyOneRepMax estimates a one-rep max from a submaximal set.
func EpleyOneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// BrzyckiOneRepMax is the Brzycki estimate; only meaningful below 37 reps.
func BrzyckiOneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 || reps >= 37 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return weight * (36 / float64(37-reps))
}

// Volume is the sum of weight x reps over completed sets.
func (s SessionRecord) Volume() float64 {
	var total float64
	for _, e := range s.Exercises {
		for _, set := range e.Sets {
			if set.Completed {
				total += set.Weight * float64(set.Reps)
			}
		}
	}
	return total
}

// AverageRPE is the reps-weighted mean RPE of completed sets that carry an RPE,
// or 0 when no completed set was rated.
func (s SessionRecord) AverageRPE() float64 {
	var weighted, reps float64
	for _, e := range s.Exercises {
		for _, set := range e.Sets {
			if !set.Completed || set.RPE <= 0 {
				continue
			}
			r := math.Max(float64(set.Reps), 1)
			weighted += set.RPE * r
			reps += r
		}
	}
	if reps == 0 {
		return 0
	}
	return weighted / reps
}

// EstimatedMax is the best Epley estimate over completed main-lift sets, or
// over all completed sets when the session has no main lift.
func (s SessionRecord) EstimatedMax() float64 {
	best := func(mainOnly bool) float64 {
		var m float64
		for _, e := range s.Exercises {
			if mainOnly && !e.MainLift {
				continue
			}
			for _, set := range e.Sets {
				if set.Completed {
					m = math.Max(m, EpleyOneRepMax(set.Weight, set.Reps))
				}
			}
		}
		return m
	}
	if m := best(true); m > 0 {
		return m
	}
	return best(false)
}

// Adherence is completed sets over prescribed sets.
func (s SessionRecord) Adherence() float64 {
	var done, total int
	for _, e := range s.Exercises {
		for _, set := range e.Sets {
			total++
			if set.Completed {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total)
}

// Recovery averages the wellness scores with stress and soreness inverted.
// ok is false when the session carries no wellness report.
func (s SessionRecord) Recovery() (score float64, ok bool) {
	if s.Wellness == nil {
		return 0, false
	}
	w := s.Wellness
	sum := w.Energy + w.SleepQuality + w.Motivation + (11 - w.Stress) + (11 - w.Soreness)
	return float64(sum) / 5, true
}

// Metrics computes every derived metric of s.
func (s SessionRecord) Metrics() SessionMetrics {
	rec, ok := s.Recovery()
	rpe := s.AverageRPE()
	return SessionMetrics{
		Date:         s.Date,
		Volume:       s.Volume(),
		AverageRPE:   rpe,
		EstimatedMax: s.EstimatedMax(),
		Adherence:    s.Adherence(),
		Recovery:     rec,
		HasRecovery:  ok,
		HasRPE:       rpe > 0,
	}
}
