package engine

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/training-engine/internal/domain"
)

func populated(t *testing.T) (*Orchestrator, *fakeClock) {
	t.Helper()
	o, clock, _ := withPlan(t, DefaultConfig())
	_, err := o.IntegrateCompetition(domain.Competition{
		Name: "Open", Date: start.AddDate(0, 0, 80), Importance: domain.ImportanceMinor, Type: "powerlifting",
	})
	require.NoError(t, err)
	record(t, o, clock, nil, 9.6, 9.7, 9.8, 9.6)
	require.NotEmpty(t, o.Journal(0))
	return o, clock
}

func TestExportImportRoundTrip(t *testing.T) {
	src, clock := populated(t)
	doc, err := src.Export()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(doc, &raw))
	assert.Equal(t, DocumentVersion, raw["version"])

	dst := New("athlete-1", DefaultConfig(), WithClock(clock.Now))
	require.NoError(t, dst.Import(doc))

	want, _ := src.Plan()
	got, err := dst.Plan()
	require.NoError(t, err)
	opts := cmpopts.EquateEmpty()
	assert.Empty(t, cmp.Diff(want, got, opts))
	assert.Empty(t, cmp.Diff(src.Journal(0), dst.Journal(0), opts))
	assert.Empty(t, cmp.Diff(src.Sessions(), dst.Sessions(), opts))
	assert.Equal(t, src.Sensitivity(), dst.Sensitivity())

	again, err := dst.Export()
	require.NoError(t, err)
	assert.JSONEq(t, string(doc), string(again))
}

func TestImportedContextKeepsGuardState(t *testing.T) {
	src, clock := populated(t)
	doc, err := src.Export()
	require.NoError(t, err)

	dst := New("athlete-1", DefaultConfig(), WithClock(clock.Now))
	require.NoError(t, dst.Import(doc))

	res, err := dst.MonitorAndAdapt()
	require.NoError(t, err)
	assert.Equal(t, SkipNoNewSessions, res.SkipReason)
}

func TestExportEmptyContext(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, DefaultConfig())
	doc, err := o.Export()
	require.NoError(t, err)

	dst := New("athlete-1", DefaultConfig())
	require.NoError(t, dst.Import(doc))
	_, err = dst.Plan()
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImportFailsClosed(t *testing.T) {
	src, _ := populated(t)
	valid, err := src.Export()
	require.NoError(t, err)

	mutate := func(f func(d *Document)) []byte {
		var d Document
		require.NoError(t, json.Unmarshal(valid, &d))
		f(&d)
		b, err := json.Marshal(d)
		require.NoError(t, err)
		return b
	}

	tests := []struct {
		name string
		doc  []byte
	}{
		{"not json", []byte("{plan: yes")},
		{"unknown field", []byte(`{"version":"periodization-engine/v1","athleteId":"athlete-1","sensitivity":1,"extra":true}`)},
		{"wrong version", mutate(func(d *Document) { d.Version = "periodization-engine/v0" })},
		{"other athlete", mutate(func(d *Document) { d.AthleteID = "athlete-9" })},
		{"zero sensitivity", mutate(func(d *Document) { d.Sensitivity = 0 })},
		{"missing week", mutate(func(d *Document) { d.Plan.Microcycles = d.Plan.Microcycles[1:] })},
		{"weeks out of order", mutate(func(d *Document) {
			d.Plan.Microcycles[0], d.Plan.Microcycles[1] = d.Plan.Microcycles[1], d.Plan.Microcycles[0]
		})},
		{"non-positive multiplier", mutate(func(d *Document) { d.Plan.Microcycles[2].VolumeMultiplier = 0 })},
		{"unknown mesocycle", mutate(func(d *Document) { d.Plan.Microcycles[0].MesocycleID = "meso-99" })},
		{"deload taper overlap", mutate(func(d *Document) {
			d.Plan.Microcycles[3].IsDeloadWeek = true
			d.Plan.Microcycles[3].IsTaperWeek = true
		})},
		{"plan without profile", mutate(func(d *Document) { d.Profile = nil })},
		{"invalid session", mutate(func(d *Document) { d.Sessions[0].Exercises = nil })},
		{"journal without plan", mutate(func(d *Document) { d.Plan = nil })},
		{"journal entry without id", mutate(func(d *Document) { d.Journal[0].ID = "" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst, _ := populated(t)
			before, _ := dst.Plan()
			journal := dst.Journal(0)

			err := dst.Import(tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrImport)
			var ie *domain.ImportError
			assert.ErrorAs(t, err, &ie)

			after, _ := dst.Plan()
			assert.Empty(t, cmp.Diff(before, after))
			assert.Len(t, dst.Journal(0), len(journal))
		})
	}
}

func TestCheckPlanAcceptsGeneratedPlans(t *testing.T) {
	for _, horizon := range []int{1, 5, 16, 52} {
		o, _, _ := newTestOrchestrator(t, DefaultConfig())
		_, _, err := o.BuildPlan(lifter(), &domain.GoalParameters{HorizonWeeks: horizon, StartDate: start})
		require.NoError(t, err)
		p, _ := o.Plan()
		assert.NoError(t, checkPlan(p, "athlete-1"), "horizon %d", horizon)
	}
}
