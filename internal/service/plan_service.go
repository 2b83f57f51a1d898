package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"alcyxob/training-engine/internal/adaptation"
	"alcyxob/training-engine/internal/config"
	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/engine"
	"alcyxob/training-engine/internal/periodization"
	"alcyxob/training-engine/internal/repository"
	"alcyxob/training-engine/internal/storage"
	"alcyxob/training-engine/internal/tracing"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound       = errors.New("plan not found")
	ErrAthleteMismatch    = errors.New("athlete id does not match")
	ErrArchiveUnavailable = errors.New("state archive is not configured")
)

// PlanService is the boundary around the per-athlete engine contexts.
type PlanService interface {
	BuildPlan(ctx context.Context, profile *domain.AthleteProfile, goal *domain.GoalParameters) (*domain.Plan, *domain.ModelSelection, error)
	GetPlan(ctx context.Context, athleteID string) (*domain.Plan, error)
	GetWeek(ctx context.Context, athleteID string, week int) (*domain.Microcycle, error)
	AdaptWorkout(ctx context.Context, athleteID string, week int, workout domain.Workout) (*domain.AdaptedWorkout, error)

	RecordSession(ctx context.Context, athleteID string, record domain.SessionRecord) (*engine.MonitorOutcome, error)
	ListSessions(ctx context.Context, athleteID string, limit int) ([]domain.StoredSession, error)
	MonitorAndAdapt(ctx context.Context, athleteID string) (*engine.MonitorOutcome, error)

	AddCompetition(ctx context.Context, athleteID string, competition domain.Competition) (*domain.Plan, error)
	OverrideDeload(ctx context.Context, athleteID string, week int) (*domain.Plan, error)
	GetJournal(ctx context.Context, athleteID string, limit int) ([]domain.JournalEntry, error)

	ExportState(ctx context.Context, athleteID string) ([]byte, error)
	ImportState(ctx context.Context, athleteID string, doc []byte) error
	ArchiveState(ctx context.Context, athleteID string) (*domain.Snapshot, string, error)
	ListSnapshots(ctx context.Context, athleteID string) ([]domain.Snapshot, error)

	// Sweep re-runs monitoring over every loaded context and returns how many
	// actually ran an analysis.
	Sweep(ctx context.Context) (int, error)
	UpdatePolicy(policy adaptation.Policy)
}

// EngineConfigFrom maps the engine config section onto engine.Config.
func EngineConfigFrom(c config.EngineConfig) engine.Config {
	return engine.Config{
		Planner: periodization.Options{
			DeloadCadence:   c.DeloadCadence,
			TestingCadence:  c.TestingCadence,
			MesocycleLength: c.MesocycleLength,
		},
		Monitor: adaptation.MonitorConfig{
			Window:      c.AnalysisWindow,
			MinSessions: c.MinSessions,
		},
		Policy:             PolicyFrom(c.Policy),
		MaxHistory:         c.MaxHistory,
		ReanalysisInterval: c.ReanalysisInterval,
		ReanalysisSessions: c.ReanalysisSessions,
	}
}

func PolicyFrom(p config.PolicyConfig) adaptation.Policy {
	return adaptation.Policy{
		MinAgreeing:       p.MinAgreeing,
		ExtraVolumeFactor: p.ExtraVolumeFactor,
		SensitivityStep:   p.SensitivityStep,
		MaxSensitivity:    p.MaxSensitivity,
	}
}

// Option configures a planService.
type Option func(*planService)

func WithRecorder(r engine.Recorder) Option { return func(s *planService) { s.recorder = r } }

func WithClock(c engine.Clock) Option { return func(s *planService) { s.clock = c } }

// WithArchive enables ArchiveState; objects are stored under prefix.
func WithArchive(store storage.ObjectStorage, snapshots repository.SnapshotRepository, prefix string) Option {
	return func(s *planService) {
		s.archive = store
		s.snapshots = snapshots
		if prefix != "" {
			s.snapshotPrefix = prefix
		}
	}
}

// athleteContext pairs an orchestrator with the lock that orders its saves.
type athleteContext struct {
	orch    *engine.Orchestrator
	persist sync.Mutex
}

// --- Service Implementation ---

type planService struct {
	mu       sync.RWMutex
	contexts map[string]*athleteContext
	cfg      engine.Config

	stateRepo   repository.StateRepository
	sessionRepo repository.SessionRepository
	snapshots   repository.SnapshotRepository
	archive     storage.ObjectStorage

	snapshotPrefix string
	recorder       engine.Recorder
	clock          engine.Clock
	logger         *zap.Logger
}

// NewPlanService creates a new PlanService backed by the given repositories.
func NewPlanService(
	cfg engine.Config,
	stateRepo repository.StateRepository,
	sessionRepo repository.SessionRepository,
	logger *zap.Logger,
	opts ...Option,
) PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &planService{
		contexts:       make(map[string]*athleteContext),
		cfg:            cfg,
		stateRepo:      stateRepo,
		sessionRepo:    sessionRepo,
		snapshotPrefix: "snapshots",
		clock:          time.Now,
		logger:         logger.Named("plan_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// === Plans ===

func (s *planService) BuildPlan(ctx context.Context, profile *domain.AthleteProfile, goal *domain.GoalParameters) (*domain.Plan, *domain.ModelSelection, error) {
	if profile == nil || profile.ID == "" {
		return nil, nil, domain.NewValidationError("profile.id", "required")
	}
	ctx, span := startSpan(ctx, "plan.build", profile.ID)
	defer span.End()

	ac, err := s.load(ctx, profile.ID, true)
	if err != nil {
		return nil, nil, spanError(span, err)
	}
	plan, sel, err := ac.orch.BuildPlan(profile, goal)
	if err != nil {
		return nil, nil, spanError(span, err)
	}
	span.SetAttributes(attribute.String("model", string(plan.Model)))
	if err := s.persist(ctx, ac); err != nil {
		return nil, nil, spanError(span, err)
	}
	s.logger.Info("plan built",
		zap.String("athlete_id", profile.ID),
		zap.String("model", string(plan.Model)),
		zap.Float64("score", sel.Score),
	)
	return plan, sel, nil
}

func (s *planService) GetPlan(ctx context.Context, athleteID string) (*domain.Plan, error) {
	ac, err := s.load(ctx, athleteID, false)
	if err != nil {
		return nil, err
	}
	plan, err := ac.orch.Plan()
	return plan, planErr(err)
}

func (s *planService) GetWeek(ctx context.Context, athleteID string, week int) (*domain.Microcycle, error) {
	ac, err := s.load(ctx, athleteID, false)
	if err != nil {
		return nil, err
	}
	m, err := ac.orch.Week(week)
	return m, planErr(err)
}

// AdaptWorkout returns the workout unmodified, together with the not-found
// error, when the athlete has no plan or the week is outside it.
func (s *planService) AdaptWorkout(ctx context.Context, athleteID string, week int, workout domain.Workout) (*domain.AdaptedWorkout, error) {
	ctx, span := startSpan(ctx, "plan.adapt_workout", athleteID)
	defer span.End()
	span.SetAttributes(attribute.Int("week", week))

	ac, err := s.load(ctx, athleteID, false)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			adapted, _ := periodization.AdaptWorkout(nil, week, workout)
			return adapted, spanError(span, err)
		}
		return nil, spanError(span, err)
	}
	adapted, err := ac.orch.AdaptWorkout(week, workout)
	if err != nil {
		return adapted, spanError(span, planErr(err))
	}
	return adapted, nil
}

// === Sessions and monitoring ===

func (s *planService) RecordSession(ctx context.Context, athleteID string, record domain.SessionRecord) (*engine.MonitorOutcome, error) {
	ctx, span := startSpan(ctx, "plan.monitor", athleteID)
	defer span.End()

	if err := domain.Validate(&record); err != nil {
		return nil, spanError(span, err)
	}
	ac, err := s.load(ctx, athleteID, true)
	if err != nil {
		return nil, spanError(span, err)
	}
	if _, err := s.sessionRepo.Create(ctx, &domain.StoredSession{AthleteID: athleteID, Record: record.Clone()}); err != nil {
		return nil, spanError(span, fmt.Errorf("store session: %w", err))
	}
	outcome, err := ac.orch.RecordSession(record)
	if err != nil {
		return nil, spanError(span, err)
	}
	if err := s.persist(ctx, ac); err != nil {
		return nil, spanError(span, err)
	}
	s.traceOutcome(span, athleteID, outcome)
	return outcome, nil
}

func (s *planService) ListSessions(ctx context.Context, athleteID string, limit int) ([]domain.StoredSession, error) {
	return s.sessionRepo.ListByAthlete(ctx, athleteID, limit)
}

func (s *planService) MonitorAndAdapt(ctx context.Context, athleteID string) (*engine.MonitorOutcome, error) {
	ctx, span := startSpan(ctx, "plan.monitor", athleteID)
	defer span.End()

	ac, err := s.load(ctx, athleteID, false)
	if err != nil {
		return nil, spanError(span, err)
	}
	outcome, err := s.monitor(ctx, ac)
	if err != nil {
		return nil, spanError(span, err)
	}
	s.traceOutcome(span, athleteID, outcome)
	return outcome, nil
}

func (s *planService) monitor(ctx context.Context, ac *athleteContext) (*engine.MonitorOutcome, error) {
	outcome, err := ac.orch.MonitorAndAdapt()
	if err != nil {
		return nil, err
	}
	// a skipped run leaves the context untouched
	if outcome.Ran {
		if err := s.persist(ctx, ac); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

func (s *planService) traceOutcome(span trace.Span, athleteID string, outcome *engine.MonitorOutcome) {
	span.SetAttributes(attribute.Bool("ran", outcome.Ran))
	if !outcome.Ran {
		span.SetAttributes(attribute.String("skip_reason", outcome.SkipReason))
		return
	}
	if outcome.Decision != nil {
		span.SetAttributes(attribute.String("recommendation", string(outcome.Decision.Type)))
	}
	if outcome.Applied != nil {
		s.logger.Debug("adaptation persisted",
			zap.String("athlete_id", athleteID),
			zap.Int("week", outcome.Applied.Week),
			zap.Int("revision", outcome.Applied.PlanRevision),
		)
	}
}

// === Revisions ===

func (s *planService) AddCompetition(ctx context.Context, athleteID string, competition domain.Competition) (*domain.Plan, error) {
	ac, err := s.load(ctx, athleteID, false)
	if err != nil {
		return nil, err
	}
	plan, err := ac.orch.IntegrateCompetition(competition)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			s.logger.Warn("competition skipped",
				zap.String("athlete_id", athleteID),
				zap.String("competition", competition.Name),
				zap.Error(err),
			)
		}
		return nil, planErr(err)
	}
	return plan, s.persist(ctx, ac)
}

func (s *planService) OverrideDeload(ctx context.Context, athleteID string, week int) (*domain.Plan, error) {
	ac, err := s.load(ctx, athleteID, false)
	if err != nil {
		return nil, err
	}
	plan, err := ac.orch.OverrideDeload(week)
	if err != nil {
		return nil, planErr(err)
	}
	return plan, s.persist(ctx, ac)
}

func (s *planService) GetJournal(ctx context.Context, athleteID string, limit int) ([]domain.JournalEntry, error) {
	ac, err := s.load(ctx, athleteID, false)
	if err != nil {
		return nil, err
	}
	return ac.orch.Journal(limit), nil
}

// === State documents ===

func (s *planService) ExportState(ctx context.Context, athleteID string) ([]byte, error) {
	ac, err := s.load(ctx, athleteID, false)
	if err != nil {
		return nil, err
	}
	return ac.orch.Export()
}

func (s *planService) ImportState(ctx context.Context, athleteID string, doc []byte) error {
	ac, err := s.load(ctx, athleteID, true)
	if err != nil {
		return err
	}
	if err := ac.orch.Import(doc); err != nil {
		return err
	}
	return s.persist(ctx, ac)
}

// ArchiveState uploads the current export and returns its metadata and a
// presigned download URL.
func (s *planService) ArchiveState(ctx context.Context, athleteID string) (*domain.Snapshot, string, error) {
	if s.archive == nil || s.snapshots == nil {
		return nil, "", ErrArchiveUnavailable
	}
	ac, err := s.load(ctx, athleteID, false)
	if err != nil {
		return nil, "", err
	}
	data, err := ac.orch.Export()
	if err != nil {
		return nil, "", err
	}

	key := path.Join(s.snapshotPrefix, athleteID, uuid.NewString()+".json")
	if err := s.archive.PutObject(ctx, key, "application/json", data); err != nil {
		return nil, "", fmt.Errorf("upload snapshot: %w", err)
	}
	snapshot := &domain.Snapshot{
		AthleteID:    athleteID,
		ObjectKey:    key,
		PlanRevision: revisionOf(ac.orch),
		Size:         int64(len(data)),
		CreatedAt:    s.clock().UTC(),
	}
	if _, err := s.snapshots.Create(ctx, snapshot); err != nil {
		// orphaned object; best-effort cleanup
		if delErr := s.archive.DeleteObject(ctx, key); delErr != nil {
			s.logger.Warn("orphaned snapshot object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, "", fmt.Errorf("record snapshot: %w", err)
	}

	url, err := s.archive.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return snapshot, "", fmt.Errorf("presign snapshot: %w", err)
	}
	s.logger.Info("state archived", zap.String("athlete_id", athleteID), zap.String("key", key))
	return snapshot, url, nil
}

func (s *planService) ListSnapshots(ctx context.Context, athleteID string) ([]domain.Snapshot, error) {
	if s.snapshots == nil {
		return nil, ErrArchiveUnavailable
	}
	return s.snapshots.ListByAthlete(ctx, athleteID)
}

// === Maintenance ===

func (s *planService) Sweep(ctx context.Context) (int, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.contexts))
	for id := range s.contexts {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)

	var ran int
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		s.mu.RLock()
		ac := s.contexts[id]
		s.mu.RUnlock()

		outcome, err := s.monitor(ctx, ac)
		if err != nil {
			errs = append(errs, fmt.Errorf("athlete %s: %w", id, err))
			continue
		}
		if outcome.Ran {
			ran++
		}
	}
	s.logger.Info("sweep finished", zap.Int("contexts", len(ids)), zap.Int("analysed", ran))
	return ran, errors.Join(errs...)
}

func (s *planService) UpdatePolicy(policy adaptation.Policy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Policy = policy
	for _, ac := range s.contexts {
		ac.orch.SetPolicy(policy)
	}
	s.logger.Info("adaptation policy updated",
		zap.Int("min_agreeing", policy.MinAgreeing),
		zap.Float64("extra_volume_factor", policy.ExtraVolumeFactor),
	)
}

// === Registry ===

// load returns the athlete context, rehydrating it from the state repository
// on first use. With create, an unknown athlete gets a fresh context;
// otherwise ErrPlanNotFound is returned.
func (s *planService) load(ctx context.Context, athleteID string, create bool) (*athleteContext, error) {
	if athleteID == "" {
		return nil, domain.NewValidationError("athlete_id", "required")
	}
	s.mu.RLock()
	ac, ok := s.contexts[athleteID]
	s.mu.RUnlock()
	if ok {
		return ac, nil
	}

	// repository I/O happens outside the registry lock
	state, err := s.stateRepo.Get(ctx, athleteID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if !create {
			return nil, ErrPlanNotFound
		}
		state = nil
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ac, ok := s.contexts[athleteID]; ok {
		return ac, nil
	}
	orch := s.newOrchestrator(athleteID)
	if state != nil {
		if err := orch.Import([]byte(state.Document)); err != nil {
			s.logger.Error("stored state rejected", zap.String("athlete_id", athleteID), zap.Error(err))
			return nil, fmt.Errorf("rehydrate %s: %w", athleteID, err)
		}
	}
	ac = &athleteContext{orch: orch}
	s.contexts[athleteID] = ac
	return ac, nil
}

// newOrchestrator builds a context with the current config. Callers hold mu.
func (s *planService) newOrchestrator(athleteID string) *engine.Orchestrator {
	opts := []engine.Option{engine.WithClock(s.clock), engine.WithLogger(s.logger)}
	if s.recorder != nil {
		opts = append(opts, engine.WithRecorder(s.recorder))
	}
	return engine.New(athleteID, s.cfg, opts...)
}

// persist saves the exported document. Saves for one athlete are serialized
// so the stored state never goes backwards.
func (s *planService) persist(ctx context.Context, ac *athleteContext) error {
	ac.persist.Lock()
	defer ac.persist.Unlock()

	data, err := ac.orch.Export()
	if err != nil {
		return err
	}
	state := &domain.AthleteState{
		AthleteID:    ac.orch.AthleteID(),
		Document:     string(data),
		PlanRevision: revisionOf(ac.orch),
	}
	if err := s.stateRepo.Save(ctx, state); err != nil {
		s.logger.Error("persist state failed", zap.String("athlete_id", state.AthleteID), zap.Error(err))
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

func revisionOf(o *engine.Orchestrator) int {
	if p, err := o.Plan(); err == nil {
		return p.Revision
	}
	return 0
}

// planErr maps a missing plan onto ErrPlanNotFound; other errors pass through.
func planErr(err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) && nf.Resource == "plan" {
		return ErrPlanNotFound
	}
	return err
}

func startSpan(ctx context.Context, name, athleteID string) (context.Context, trace.Span) {
	ctx, span := tracing.Start(ctx, name)
	span.SetAttributes(attribute.String("athlete_id", athleteID))
	return ctx, span
}

func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
