package periodization

import (
	"fmt"
	"strconv"
	"time"

	"alcyxob/training-engine/internal/domain"
)

// minMultiplier keeps adjusted multipliers strictly positive.
const minMultiplier = 0.05

// Revision derives a new plan revision from a published plan. All edits go to
// a deep copy; the source plan is never touched, so readers holding it keep a
// consistent view.
type Revision struct {
	plan    *domain.Plan
	changes []domain.WeekChange
}

// Revise starts a revision of p.
func Revise(p *domain.Plan) *Revision {
	return &Revision{plan: p.Clone()}
}

// ScaleWeek multiplies the week's volume and intensity multipliers by the
// given factors. Deload, taper, competition and recovery weeks never take an
// increase, deload volume never exceeds the deload multiplier, and a taper
// week is not cut to or below the taper week after it. A factor that would
// break one of these is dropped; Changes is then empty when nothing applied.
func (r *Revision) ScaleWeek(week int, volumeFactor, intensityFactor float64) error {
	if volumeFactor <= 0 || intensityFactor <= 0 {
		return domain.NewValidationError("factor", fmt.Sprintf("scale factors must be positive (got %.3f, %.3f)", volumeFactor, intensityFactor))
	}
	m, ok := r.plan.Week(week)
	if !ok {
		return domain.NewNotFoundError("week", strconv.Itoa(week))
	}
	if Protected(m) {
		volumeFactor = min(volumeFactor, 1)
		intensityFactor = min(intensityFactor, 1)
	}

	if volumeFactor != 1 {
		v := max(m.VolumeMultiplier*volumeFactor, minMultiplier)
		if m.IsDeloadWeek {
			v = min(v, deloadVolume)
		}
		if m.IsTaperWeek {
			if next, ok := r.plan.Week(week + 1); ok && next.IsTaperWeek && v <= next.VolumeMultiplier {
				v = m.VolumeMultiplier
			}
		}
		if v != m.VolumeMultiplier {
			r.changes = append(r.changes, setVolume(m, v))
		}
	}
	if intensityFactor != 1 {
		r.changes = append(r.changes, setIntensity(m, max(m.IntensityMultiplier*intensityFactor, minMultiplier)))
	}
	return nil
}

// Protected reports whether m is a deload, taper, competition or recovery
// week. Adaptations may only reduce the load of such weeks.
func Protected(m *domain.Microcycle) bool {
	return m.IsDeloadWeek || m.IsTaperWeek || m.IsCompetitionWeek || m.IsRecoveryWeek
}

// ForceDeload turns week into a deload week with the standard deload multipliers.
func (r *Revision) ForceDeload(week int) error {
	m, ok := r.plan.Week(week)
	if !ok {
		return domain.NewNotFoundError("week", strconv.Itoa(week))
	}
	if m.IsTaperWeek {
		return domain.NewValidationError("week", "a taper week cannot also be a deload week")
	}
	if !m.IsDeloadWeek {
		r.changes = append(r.changes, domain.WeekChange{Week: week, Field: "isDeloadWeek", Before: 0, After: 1})
	}
	m.IsDeloadWeek = true
	r.changes = append(r.changes, setVolume(m, deloadVolume), setIntensity(m, deloadIntensity))
	m.RecoveryProtocols = appendUnique(m.RecoveryProtocols, ProtocolActiveRecovery)
	m.RecoveryProtocols = appendUnique(m.RecoveryProtocols, ProtocolMobility)
	syncDeloadWeeks(r.plan)
	return nil
}

// AddCompetition overlays the competition taper. It reports false when the
// competition is outside the plan horizon.
func (r *Revision) AddCompetition(c domain.Competition) bool {
	changes, ok := IntegrateCompetition(r.plan, c)
	if !ok {
		return false
	}
	r.plan.Goal.Competitions = append(r.plan.Goal.Competitions, c)
	r.changes = append(r.changes, changes...)
	return true
}

// Changes lists every edit made so far.
func (r *Revision) Changes() []domain.WeekChange {
	return append([]domain.WeekChange(nil), r.changes...)
}

// Build publishes the revision.
func (r *Revision) Build(now time.Time) *domain.Plan {
	out := r.plan.Clone()
	out.Revision++
	out.UpdatedAt = now
	return out
}

// syncDeloadWeeks rebuilds Macrocycle.DeloadWeeks from the microcycle flags
// after a revision added or removed deload weeks.
func syncDeloadWeeks(p *domain.Plan) {
	weeks := []int{}
	for _, m := range p.Microcycles {
		if m.IsDeloadWeek {
			weeks = append(weeks, m.Week)
		}
	}
	p.Macrocycle.DeloadWeeks = weeks
}
