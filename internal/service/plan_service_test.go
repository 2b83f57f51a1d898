package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"alcyxob/training-engine/internal/adaptation"
	"alcyxob/training-engine/internal/config"
	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/engine"
	"alcyxob/training-engine/internal/repository"
	"alcyxob/training-engine/internal/repository/memory"
	"alcyxob/training-engine/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var start = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc       PlanService
	clock     *fakeClock
	states    *memory.StateRepository
	sessions  *memory.SessionRepository
	snapshots *memory.SnapshotRepository
	archive   *storage.MemoryStorage
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		clock:     &fakeClock{now: start},
		states:    memory.NewStateRepository(),
		sessions:  memory.NewSessionRepository(),
		snapshots: memory.NewSnapshotRepository(),
		archive:   storage.NewMemoryStorage("engine"),
	}
	opts = append([]Option{WithClock(f.clock.Now)}, opts...)
	f.svc = NewPlanService(engine.DefaultConfig(), f.states, f.sessions, zaptest.NewLogger(t), opts...)
	return f
}

func lifter(id string) *domain.AthleteProfile {
	return &domain.AthleteProfile{
		ID:             id,
		Experience:     domain.ExperienceAdvanced,
		TrainingType:   domain.TrainingStrength,
		Specialization: "powerlifting",
	}
}

func goal16() *domain.GoalParameters {
	return &domain.GoalParameters{HorizonWeeks: 16, PrimaryGoal: "strength", StartDate: start}
}

func squatSession(at time.Time, rpe float64) domain.SessionRecord {
	sets := make([]domain.SetRecord, 3)
	for i := range sets {
		sets[i] = domain.SetRecord{Weight: 150, Reps: 5, RPE: rpe, Completed: true}
	}
	return domain.SessionRecord{
		Date:      at,
		Exercises: []domain.ExerciseEntry{{Name: "squat", MainLift: true, Sets: sets}},
	}
}

func (f *fixture) record(t *testing.T, athleteID string, rpes ...float64) []*engine.MonitorOutcome {
	t.Helper()
	var out []*engine.MonitorOutcome
	for _, rpe := range rpes {
		res, err := f.svc.RecordSession(context.Background(), athleteID, squatSession(f.clock.Now(), rpe))
		require.NoError(t, err)
		out = append(out, res)
		f.clock.Advance(24 * time.Hour)
	}
	return out
}

func TestBuildPlanPersistsAndRehydrates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plan, sel, err := f.svc.BuildPlan(ctx, lifter("a1"), goal16())
	require.NoError(t, err)
	assert.Equal(t, plan.Model, sel.Model)
	assert.Len(t, plan.Microcycles, 16)

	state, err := f.states.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.PlanRevision)

	// a fresh service over the same store sees the same plan
	other := NewPlanService(engine.DefaultConfig(), f.states, f.sessions, zaptest.NewLogger(t), WithClock(f.clock.Now))
	got, err := other.GetPlan(ctx, "a1")
	require.NoError(t, err)
	if diff := cmp.Diff(plan, got); diff != "" {
		t.Errorf("rehydrated plan mismatch (-want +got):\n%s", diff)
	}

	week, err := other.GetWeek(ctx, "a1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, week.Week)

	_, err = other.GetWeek(ctx, "a1", 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, ErrPlanNotFound)
}

func TestBuildPlanValidation(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.BuildPlan(context.Background(), lifter(""), goal16())
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad := goal16()
	bad.HorizonWeeks = 0
	_, _, err = f.svc.BuildPlan(context.Background(), lifter("a1"), bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUnknownAthlete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.GetPlan(ctx, "ghost")
	assert.ErrorIs(t, err, ErrPlanNotFound)
	_, err = f.svc.GetJournal(ctx, "ghost", 0)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	_, err = f.svc.ExportState(ctx, "ghost")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	workout := domain.Workout{Name: "A", Exercises: []domain.ExercisePrescription{{Name: "squat", Sets: 5, Reps: 5, Percentage: 75}}}
	adapted, err := f.svc.AdaptWorkout(ctx, "ghost", 1, workout)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	require.NotNil(t, adapted)
	if diff := cmp.Diff(workout, adapted.Workout); diff != "" {
		t.Errorf("workout changed (-want +got):\n%s", diff)
	}
}

func TestAdaptWorkoutUnknownWeekKeepsWorkout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _, err := f.svc.BuildPlan(ctx, lifter("a1"), goal16())
	require.NoError(t, err)

	workout := domain.Workout{Name: "A", Exercises: []domain.ExercisePrescription{{Name: "squat", Sets: 5, Reps: 5, Percentage: 75}}}
	adapted, err := f.svc.AdaptWorkout(ctx, "a1", 40, workout)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NotNil(t, adapted)
	assert.Equal(t, workout, adapted.Workout)

	adapted, err = f.svc.AdaptWorkout(ctx, "a1", 1, workout)
	require.NoError(t, err)
	require.NotNil(t, adapted.PeriodizationContext)
	assert.Equal(t, 1, adapted.PeriodizationContext.Week)
}

func TestRecordSessionAppliesAndPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _, err := f.svc.BuildPlan(ctx, lifter("a1"), goal16())
	require.NoError(t, err)

	outs := f.record(t, "a1", 9.5, 9.8, 9.7)
	require.NotNil(t, outs[2].Applied)
	assert.Equal(t, domain.JournalSystemAdjustment, outs[2].Applied.Type)

	stored, err := f.svc.ListSessions(ctx, "a1", 0)
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	state, err := f.states.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 2, state.PlanRevision)

	journal, err := f.svc.GetJournal(ctx, "a1", 0)
	require.NoError(t, err)
	assert.Len(t, journal, 1)

	// invalid sessions touch neither store
	_, err = f.svc.RecordSession(ctx, "a1", domain.SessionRecord{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	stored, _ = f.svc.ListSessions(ctx, "a1", 0)
	assert.Len(t, stored, 3)
}

func TestRecordSessionWithoutPlan(t *testing.T) {
	f := newFixture(t)
	out := f.record(t, "a1", 8)[0]
	assert.False(t, out.Ran)
	assert.Equal(t, engine.SkipNoPlan, out.SkipReason)

	// sessions recorded before a plan exists are kept in the state
	_, err := f.states.Get(context.Background(), "a1")
	assert.NoError(t, err)
}

func TestUpdatePolicyBlocksSystemWide(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _, err := f.svc.BuildPlan(ctx, lifter("a1"), goal16())
	require.NoError(t, err)

	p := adaptation.DefaultPolicy()
	p.MinAgreeing = 5
	f.svc.UpdatePolicy(p)

	outs := f.record(t, "a1", 9.5, 9.8, 9.7)
	require.NotNil(t, outs[2].Merged)
	assert.Equal(t, domain.RecommendDeload, outs[2].Merged.Type)
	assert.False(t, outs[2].Merged.SystemWide)
	assert.Nil(t, outs[2].Applied)

	// contexts created after the update get the new policy too
	_, _, err = f.svc.BuildPlan(ctx, lifter("a2"), goal16())
	require.NoError(t, err)
	outs = f.record(t, "a2", 9.5, 9.8, 9.7)
	assert.Nil(t, outs[2].Applied)
}

func TestCompetitionAndDeloadOverride(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _, err := f.svc.BuildPlan(ctx, lifter("a1"), goal16())
	require.NoError(t, err)

	_, err = f.svc.AddCompetition(ctx, "a1", domain.Competition{Name: "too late", Date: start.AddDate(1, 0, 0), Importance: domain.ImportanceMajor})
	assert.ErrorIs(t, err, domain.ErrValidation)

	plan, err := f.svc.AddCompetition(ctx, "a1", domain.Competition{Name: "regionals", Date: start.AddDate(0, 0, 80), Importance: domain.ImportanceMinor})
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Revision)

	plan, err = f.svc.OverrideDeload(ctx, "a1", 2)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Revision)
	w, _ := plan.Week(2)
	assert.True(t, w.IsDeloadWeek)

	journal, err := f.svc.GetJournal(ctx, "a1", 1)
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.Equal(t, domain.JournalDeloadOverride, journal[0].Type)

	state, err := f.states.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 3, state.PlanRevision)

	_, err = f.svc.OverrideDeload(ctx, "ghost", 2)
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestExportImportAcrossServices(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	_, _, err := src.svc.BuildPlan(ctx, lifter("a1"), goal16())
	require.NoError(t, err)
	src.record(t, "a1", 9.5, 9.8, 9.7)

	doc, err := src.svc.ExportState(ctx, "a1")
	require.NoError(t, err)

	dst := newFixture(t)
	require.NoError(t, dst.svc.ImportState(ctx, "a1", doc))
	want, _ := src.svc.GetPlan(ctx, "a1")
	got, err := dst.svc.GetPlan(ctx, "a1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("imported plan mismatch (-want +got):\n%s", diff)
	}
	_, err = dst.states.Get(ctx, "a1")
	assert.NoError(t, err)

	// a document for another athlete is rejected and leaves state alone
	err = dst.svc.ImportState(ctx, "b2", doc)
	assert.ErrorIs(t, err, domain.ErrImport)
	_, err = dst.states.Get(ctx, "b2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestArchiveState(t *testing.T) {
	ctx := context.Background()

	bare := newFixture(t)
	_, _, err := bare.svc.ArchiveState(ctx, "a1")
	assert.ErrorIs(t, err, ErrArchiveUnavailable)

	f := newFixture(t)
	f.svc = NewPlanService(engine.DefaultConfig(), f.states, f.sessions, zaptest.NewLogger(t),
		WithClock(f.clock.Now), WithArchive(f.archive, f.snapshots, "archive"))
	_, _, err = f.svc.BuildPlan(ctx, lifter("a1"), goal16())
	require.NoError(t, err)

	snap, url, err := f.svc.ArchiveState(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.PlanRevision)
	assert.Regexp(t, `^archive/a1/[0-9a-f-]{36}\.json$`, snap.ObjectKey)
	assert.Contains(t, url, snap.ObjectKey)

	body, err := f.archive.GetObject(ctx, snap.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), snap.Size)
	assert.Contains(t, string(body), engine.DocumentVersion)

	list, err := f.svc.ListSnapshots(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

type failingSnapshots struct{}

func (failingSnapshots) Create(context.Context, *domain.Snapshot) (primitive.ObjectID, error) {
	return primitive.NilObjectID, errors.New("db down")
}

func (failingSnapshots) ListByAthlete(context.Context, string) ([]domain.Snapshot, error) {
	return nil, errors.New("db down")
}

func TestArchiveCleansUpOnMetadataFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc = NewPlanService(engine.DefaultConfig(), f.states, f.sessions, zaptest.NewLogger(t),
		WithArchive(f.archive, failingSnapshots{}, ""))
	_, _, err := f.svc.BuildPlan(ctx, lifter("a1"), goal16())
	require.NoError(t, err)

	_, _, err = f.svc.ArchiveState(ctx, "a1")
	assert.ErrorContains(t, err, "record snapshot")
	assert.Empty(t, f.archive.Keys())
}

type failingStates struct{ repository.StateRepository }

func (failingStates) Save(context.Context, *domain.AthleteState) error { return errors.New("db down") }

func TestPersistFailureSurfaces(t *testing.T) {
	states := failingStates{memory.NewStateRepository()}
	svc := NewPlanService(engine.DefaultConfig(), states, memory.NewSessionRepository(), zaptest.NewLogger(t))
	_, _, err := svc.BuildPlan(context.Background(), lifter("a1"), goal16())
	assert.ErrorContains(t, err, "persist state")
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, id := range []string{"a1", "a2"} {
		_, _, err := f.svc.BuildPlan(ctx, lifter(id), goal16())
		require.NoError(t, err)
	}
	f.record(t, "a1", 9.5, 9.8, 9.7)

	// a1 analysed on every session already, a2 has none
	ran, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, ran)

	f.record(t, "a2", 8)
	f.clock.Advance(48 * time.Hour)
	ran, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	// a2 still lacks data, so its counter was never reset
	assert.Equal(t, 1, ran)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = f.svc.Sweep(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAthletes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	var wg sync.WaitGroup
	ids := []string{"a1", "a2", "a3", "a4"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, err := f.svc.BuildPlan(ctx, lifter(id), goal16())
			assert.NoError(t, err)
			for i := 0; i < 5; i++ {
				_, err := f.svc.RecordSession(ctx, id, squatSession(start.AddDate(0, 0, i), 8))
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	got, err := f.states.ListAthleteIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids, got)
	for _, id := range ids {
		stored, err := f.svc.ListSessions(ctx, id, 0)
		require.NoError(t, err)
		assert.Len(t, stored, 5)
	}
}

func TestEngineConfigFrom(t *testing.T) {
	cfg := EngineConfigFrom(config.EngineConfig{
		DeloadCadence:      5,
		TestingCadence:     7,
		MesocycleLength:    3,
		AnalysisWindow:     8,
		MinSessions:        4,
		MaxHistory:         20,
		ReanalysisInterval: time.Hour,
		ReanalysisSessions: 2,
		Policy:             config.PolicyConfig{MinAgreeing: 3, ExtraVolumeFactor: 0.8, SensitivityStep: 0.2, MaxSensitivity: 2},
	})
	assert.Equal(t, 5, cfg.Planner.DeloadCadence)
	assert.Equal(t, 8, cfg.Monitor.Window)
	assert.Equal(t, 4, cfg.Monitor.MinSessions)
	assert.Equal(t, 20, cfg.MaxHistory)
	assert.Equal(t, adaptation.Policy{MinAgreeing: 3, ExtraVolumeFactor: 0.8, SensitivityStep: 0.2, MaxSensitivity: 2}, cfg.Policy)
}

func TestCatalogService(t *testing.T) {
	svc := NewCatalogService()
	models := svc.ListModels()
	require.Len(t, models, len(domain.ModelKeys))

	m, err := svc.GetModel(domain.ModelBlock)
	require.NoError(t, err)
	assert.Equal(t, "Block Periodization", m.Name)

	_, err = svc.GetModel("nonexistent")
	assert.ErrorIs(t, err, ErrModelNotFound)
}
