package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"alcyxob/training-engine/internal/domain"
)

// DocumentVersion tags exported state documents.
const DocumentVersion = "periodization-engine/v1"

// Document is the serialized form of an athlete context.
type Document struct {
	Version               string                 `json:"version"`
	AthleteID             string                 `json:"athleteId"`
	Profile               *domain.AthleteProfile `json:"profile,omitempty"`
	Goal                  *domain.GoalParameters `json:"goal,omitempty"`
	Plan                  *domain.Plan           `json:"plan,omitempty"`
	Journal               []domain.JournalEntry  `json:"journal"`
	Sessions              []domain.SessionRecord `json:"sessions"`
	Sensitivity           float64                `json:"sensitivity"`
	LastAnalysis          *time.Time             `json:"lastAnalysis,omitempty"`
	SessionsSinceAnalysis int                    `json:"sessionsSinceAnalysis"`
	ExportedAt            time.Time              `json:"exportedAt"`
}

// Export serializes the whole context.
func (o *Orchestrator) Export() ([]byte, error) {
	o.mu.RLock()
	doc := Document{
		Version:               DocumentVersion,
		AthleteID:             o.athleteID,
		Profile:               o.profile,
		Goal:                  o.goal,
		Plan:                  o.plan,
		Journal:               o.journal,
		Sessions:              o.sessions,
		Sensitivity:           o.sensitivity,
		SessionsSinceAnalysis: o.sessionsSinceAnalysis,
		ExportedAt:            o.clock(),
	}
	if !o.lastAnalysis.IsZero() {
		t := o.lastAnalysis
		doc.LastAnalysis = &t
	}
	if doc.Journal == nil {
		doc.Journal = []domain.JournalEntry{}
	}
	if doc.Sessions == nil {
		doc.Sessions = []domain.SessionRecord{}
	}
	b, err := json.Marshal(doc)
	o.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("marshal state document: %w", err)
	}
	return b, nil
}

// Import replaces the context with a previously exported document. Any
// malformed input is rejected with an *ImportError and the current state is
// left untouched.
func (o *Orchestrator) Import(data []byte) error {
	doc, err := o.decode(data)
	if err != nil {
		o.logger.Warn("import rejected", zap.Error(err))
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.profile = doc.Profile
	o.goal = doc.Goal
	o.plan = doc.Plan
	o.journal = doc.Journal
	o.sessions = doc.Sessions
	o.sensitivity = doc.Sensitivity
	o.lastAnalysis = time.Time{}
	if doc.LastAnalysis != nil {
		o.lastAnalysis = *doc.LastAnalysis
	}
	o.sessionsSinceAnalysis = doc.SessionsSinceAnalysis
	return nil
}

func (o *Orchestrator) decode(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, &domain.ImportError{Reason: "malformed document", Err: err}
	}
	if doc.Version != DocumentVersion {
		return nil, &domain.ImportError{Reason: fmt.Sprintf("unsupported version %q", doc.Version)}
	}
	if doc.AthleteID != o.athleteID {
		return nil, &domain.ImportError{Reason: fmt.Sprintf("document belongs to athlete %q", doc.AthleteID)}
	}
	if doc.Sensitivity <= 0 || doc.Sensitivity > o.cfg.Policy.MaxSensitivity {
		return nil, &domain.ImportError{Reason: fmt.Sprintf("sensitivity %.2f out of range", doc.Sensitivity)}
	}
	if doc.SessionsSinceAnalysis < 0 {
		return nil, &domain.ImportError{Reason: "negative session counter"}
	}
	if len(doc.Sessions) > o.cfg.MaxHistory {
		doc.Sessions = doc.Sessions[len(doc.Sessions)-o.cfg.MaxHistory:]
	}
	for i := range doc.Sessions {
		if err := domain.Validate(&doc.Sessions[i]); err != nil {
			return nil, &domain.ImportError{Reason: fmt.Sprintf("session %d", i), Err: err}
		}
	}
	for i, e := range doc.Journal {
		if e.ID == "" || e.Type == "" {
			return nil, &domain.ImportError{Reason: fmt.Sprintf("journal entry %d incomplete", i)}
		}
	}

	if doc.Plan == nil {
		if len(doc.Journal) > 0 {
			return nil, &domain.ImportError{Reason: "journal without plan"}
		}
		doc.Profile, doc.Goal = nil, nil
		return &doc, nil
	}
	if doc.Profile == nil || doc.Goal == nil {
		return nil, &domain.ImportError{Reason: "plan without profile or goal"}
	}
	if err := domain.Validate(doc.Profile); err != nil {
		return nil, &domain.ImportError{Reason: "profile", Err: err}
	}
	if err := doc.Goal.Validate(); err != nil {
		return nil, &domain.ImportError{Reason: "goal", Err: err}
	}
	if err := checkPlan(doc.Plan, o.athleteID); err != nil {
		return nil, err
	}
	return &doc, nil
}

// checkPlan verifies the structural invariants of an imported plan.
func checkPlan(p *domain.Plan, athleteID string) error {
	bad := func(format string, args ...any) error {
		return &domain.ImportError{Reason: "plan: " + fmt.Sprintf(format, args...)}
	}
	if p.AthleteID != athleteID {
		return bad("athlete %q does not match", p.AthleteID)
	}
	if p.Revision < 1 {
		return bad("revision %d", p.Revision)
	}
	horizon := p.Macrocycle.HorizonWeeks
	if horizon < 1 || len(p.Microcycles) != horizon {
		return bad("%d microcycles for a %d-week horizon", len(p.Microcycles), horizon)
	}
	for i, m := range p.Microcycles {
		if m.Week != i+1 {
			return bad("week %d found at position %d", m.Week, i+1)
		}
		if m.VolumeMultiplier <= 0 || m.IntensityMultiplier <= 0 {
			return bad("week %d has non-positive multipliers", m.Week)
		}
		if m.IsDeloadWeek && m.IsTaperWeek {
			return bad("week %d is both deload and taper", m.Week)
		}
		if _, ok := p.Mesocycle(m.MesocycleID); !ok {
			return bad("week %d references unknown mesocycle %q", m.Week, m.MesocycleID)
		}
	}
	return nil
}
