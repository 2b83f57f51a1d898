// Package engine owns one athlete's training context: the active plan, its
// adaptation journal and the recent session history.
package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"alcyxob/training-engine/internal/adaptation"
	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/periodization"
)

// Clock returns the current time.
type Clock func() time.Time

// Recorder receives engine events. Implementations must be safe for
// concurrent use across orchestrators.
type Recorder interface {
	PlanBuilt(model domain.ModelKey)
	Recommendation(t domain.RecommendationType)
	AdaptationApplied(kind domain.JournalEntryType)
}

type nopRecorder struct{}

func (nopRecorder) PlanBuilt(domain.ModelKey)                 {}
func (nopRecorder) Recommendation(domain.RecommendationType)  {}
func (nopRecorder) AdaptationApplied(domain.JournalEntryType) {}

// Config holds engine tuning.
type Config struct {
	Planner            periodization.Options
	Monitor            adaptation.MonitorConfig
	Policy             adaptation.Policy
	MaxHistory         int
	ReanalysisInterval time.Duration
	ReanalysisSessions int
}

func DefaultConfig() Config {
	return Config{
		Planner:            periodization.DefaultOptions(),
		Monitor:            adaptation.DefaultMonitorConfig(),
		Policy:             adaptation.DefaultPolicy(),
		MaxHistory:         50,
		ReanalysisInterval: 24 * time.Hour,
		ReanalysisSessions: 3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxHistory <= 0 {
		c.MaxHistory = d.MaxHistory
	}
	if c.ReanalysisInterval <= 0 {
		c.ReanalysisInterval = d.ReanalysisInterval
	}
	if c.ReanalysisSessions <= 0 {
		c.ReanalysisSessions = d.ReanalysisSessions
	}
	c.Policy = c.Policy.WithDefaults()
	return c
}

type Option func(*Orchestrator)

func WithClock(c Clock) Option { return func(o *Orchestrator) { o.clock = c } }

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// Orchestrator is one athlete context. All methods are safe for concurrent
// use; readers always see a fully published plan revision.
type Orchestrator struct {
	mu sync.RWMutex

	athleteID string
	cfg       Config
	clock     Clock
	logger    *zap.Logger
	recorder  Recorder
	planner   *periodization.Planner
	monitor   *adaptation.Monitor
	analyzers []adaptation.Analyzer

	profile               *domain.AthleteProfile
	goal                  *domain.GoalParameters
	plan                  *domain.Plan
	journal               []domain.JournalEntry
	sessions              []domain.SessionRecord
	sensitivity           float64
	lastAnalysis          time.Time
	sessionsSinceAnalysis int
}

// New creates an empty context for athleteID.
func New(athleteID string, cfg Config, opts ...Option) *Orchestrator {
	cfg = cfg.withDefaults()
	o := &Orchestrator{
		athleteID:   athleteID,
		cfg:         cfg,
		clock:       time.Now,
		logger:      zap.NewNop(),
		recorder:    nopRecorder{},
		analyzers:   adaptation.DefaultAnalyzers(),
		sensitivity: 1,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named("orchestrator").With(zap.String("athlete_id", athleteID))
	o.planner = periodization.NewPlanner(cfg.Planner, o.logger)
	o.monitor = adaptation.NewMonitor(cfg.Monitor)
	return o
}

func (o *Orchestrator) AthleteID() string { return o.athleteID }

// SetPolicy replaces the adaptation policy for subsequent analyses.
func (o *Orchestrator) SetPolicy(p adaptation.Policy) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg.Policy = p.WithDefaults()
}

// BuildPlan replaces the active plan. The journal starts over with the new
// plan; session history and sensitivity carry across.
func (o *Orchestrator) BuildPlan(profile *domain.AthleteProfile, goal *domain.GoalParameters) (*domain.Plan, *domain.ModelSelection, error) {
	if profile != nil {
		if profile.ID == "" {
			p := profile.Clone()
			p.ID = o.athleteID
			profile = &p
		} else if profile.ID != o.athleteID {
			return nil, nil, domain.NewValidationError("profile.id", "does not match athlete "+o.athleteID)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	plan, sel, err := o.planner.Build(profile, goal, o.clock())
	if err != nil {
		return nil, nil, err
	}
	p, g := profile.Clone(), goal.Clone()
	o.profile, o.goal = &p, &g
	o.plan = plan
	o.journal = nil
	o.lastAnalysis = time.Time{}
	o.recorder.PlanBuilt(plan.Model)
	return plan.Clone(), sel, nil
}

// Plan returns a copy of the active plan.
func (o *Orchestrator) Plan() (*domain.Plan, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.plan == nil {
		return nil, domain.NewNotFoundError("plan", o.athleteID)
	}
	return o.plan.Clone(), nil
}

// Week returns a copy of one microcycle of the active plan.
func (o *Orchestrator) Week(n int) (*domain.Microcycle, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.plan == nil {
		return nil, domain.NewNotFoundError("plan", o.athleteID)
	}
	m, ok := o.plan.Week(n)
	if !ok {
		return nil, domain.NewNotFoundError("week", itoa(n))
	}
	out := m.Clone()
	return &out, nil
}

// AdaptWorkout runs the workout adapter against the active plan.
func (o *Orchestrator) AdaptWorkout(week int, base domain.Workout) (*domain.AdaptedWorkout, error) {
	o.mu.RLock()
	plan := o.plan
	o.mu.RUnlock()
	// published plans are immutable, so the adapter can run outside the lock
	return periodization.AdaptWorkout(plan, week, base)
}

// IntegrateCompetition overlays a taper for c on a new plan revision.
func (o *Orchestrator) IntegrateCompetition(c domain.Competition) (*domain.Plan, error) {
	if err := domain.Validate(&c); err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.plan == nil {
		return nil, domain.NewNotFoundError("plan", o.athleteID)
	}

	rev := periodization.Revise(o.plan)
	if !rev.AddCompetition(c) {
		return nil, domain.NewValidationError("competition.date", "outside plan horizon")
	}
	week, _ := periodization.CompetitionWeek(o.plan.Macrocycle, c)
	o.publish(rev, domain.JournalEntry{
		Week: week,
		Type: domain.JournalCompetition,
		Note: c.Name,
	})
	if o.goal != nil {
		o.goal.Competitions = append(o.goal.Competitions, c)
	}
	return o.plan.Clone(), nil
}

// OverrideDeload forces week to be a deload week on a new plan revision.
func (o *Orchestrator) OverrideDeload(week int) (*domain.Plan, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.plan == nil {
		return nil, domain.NewNotFoundError("plan", o.athleteID)
	}

	rev := periodization.Revise(o.plan)
	if err := rev.ForceDeload(week); err != nil {
		return nil, err
	}
	o.publish(rev, domain.JournalEntry{
		Week: week,
		Type: domain.JournalDeloadOverride,
		Note: "manual deload override",
	})
	return o.plan.Clone(), nil
}

// Journal returns the most recent limit entries, oldest first. limit <= 0
// returns all of them.
func (o *Orchestrator) Journal(limit int) []domain.JournalEntry {
	o.mu.RLock()
	defer o.mu.RUnlock()
	entries := o.journal
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return append([]domain.JournalEntry{}, entries...)
}

// Sessions returns a copy of the retained session history.
func (o *Orchestrator) Sessions() []domain.SessionRecord {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]domain.SessionRecord, len(o.sessions))
	for i, s := range o.sessions {
		out[i] = s.Clone()
	}
	return out
}

func (o *Orchestrator) Sensitivity() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.sensitivity
}

// publish swaps in the revision and journals it. Callers hold mu.
func (o *Orchestrator) publish(rev *periodization.Revision, entry domain.JournalEntry) domain.JournalEntry {
	now := o.clock()
	next := rev.Build(now)
	entry.ID = newID()
	entry.Timestamp = now
	entry.Changes = rev.Changes()
	entry.PlanRevision = next.Revision

	o.plan = next
	o.journal = append(o.journal, entry)
	o.recorder.AdaptationApplied(entry.Type)
	o.logger.Info("plan revised",
		zap.String("kind", string(entry.Type)),
		zap.Int("week", entry.Week),
		zap.Int("revision", next.Revision),
	)
	return entry
}
