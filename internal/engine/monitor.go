package engine

import (
	"math"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alcyxob/training-engine/internal/adaptation"
	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/periodization"
)

// Reasons reported when an analysis or adjustment is skipped.
const (
	SkipNoPlan          = "no_plan"
	SkipNoNewSessions   = "no_new_sessions"
	SkipTooSoon         = "reanalysis_interval"
	SkipAlreadyAdjusted = "week_already_adjusted"
	SkipNoCurrentWeek   = "no_current_week"
	SkipProtectedWeek   = "protected_week"
)

// MonitorOutcome describes one pass of monitoring. Analysis and Decision are
// set whenever the monitor ran, including insufficient-data runs.
type MonitorOutcome struct {
	Ran         bool                        `json:"ran"`
	SkipReason  string                      `json:"skipReason,omitempty"`
	Analysis    *adaptation.Analysis        `json:"analysis,omitempty"`
	Decision    *domain.Recommendation      `json:"recommendation,omitempty"`
	Results     []adaptation.AnalysisResult `json:"results,omitempty"`
	Merged      *adaptation.MergedDecision  `json:"merged,omitempty"`
	Applied     *domain.JournalEntry        `json:"applied,omitempty"`
	Sensitivity float64                     `json:"sensitivity"`
}

// RecordSession appends a session to the bounded history and runs the
// monitor under the re-analysis guard.
func (o *Orchestrator) RecordSession(rec domain.SessionRecord) (*MonitorOutcome, error) {
	if err := domain.Validate(&rec); err != nil {
		return nil, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sessions = append(o.sessions, rec.Clone())
	if over := len(o.sessions) - o.cfg.MaxHistory; over > 0 {
		o.sessions = append([]domain.SessionRecord(nil), o.sessions[over:]...)
	}
	o.sessionsSinceAnalysis++
	return o.monitorLocked()
}

// MonitorAndAdapt re-analyses recent sessions. Calling it again without new
// sessions never applies a second adjustment.
func (o *Orchestrator) MonitorAndAdapt() (*MonitorOutcome, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.monitorLocked()
}

func (o *Orchestrator) monitorLocked() (*MonitorOutcome, error) {
	out := &MonitorOutcome{Sensitivity: o.sensitivity}
	if reason := o.guard(); reason != "" {
		out.SkipReason = reason
		o.logger.Debug("analysis skipped", zap.String("reason", reason))
		return out, nil
	}

	now := o.clock()
	out.Ran = true
	analysis := o.monitor.AnalyzeWithSensitivity(o.sessions, o.profile.TrainingType, o.sensitivity)
	decision := adaptation.NewDecisionEngine(o.sensitivity).Decide(analysis)
	out.Analysis = analysis
	out.Decision = &decision.Recommendation
	o.recorder.Recommendation(decision.Recommendation.Type)

	if analysis.Status == adaptation.StatusInsufficientData {
		return out, nil
	}
	o.lastAnalysis = now
	o.sessionsSinceAnalysis = 0

	week := o.plan.WeekAt(now)
	results := adaptation.RunAnalyzers(adaptation.Input{
		Analysis: analysis,
		Decision: decision,
		Plan:     o.plan,
		Week:     week,
		Sessions: o.monitor.Window(o.sessions),
	}, o.analyzers...)
	merged := adaptation.Merge(results, o.cfg.Policy)
	out.Results = results
	out.Merged = &merged

	if !merged.SystemWide || merged.Type == domain.RecommendNone {
		return out, nil
	}
	if week == 0 {
		out.SkipReason = SkipNoCurrentWeek
		return out, nil
	}
	if o.adjusted(week) {
		out.SkipReason = SkipAlreadyAdjusted
		o.logger.Debug("system-wide adjustment already applied", zap.Int("week", week))
		return out, nil
	}

	entry, err := o.applySystemWide(week, decision.Recommendation, results, merged)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		out.SkipReason = SkipProtectedWeek
		o.logger.Debug("adjustment dropped by week guards", zap.Int("week", week))
		return out, nil
	}
	out.Applied = entry
	out.Sensitivity = o.sensitivity
	return out, nil
}

// guard reports why an analysis should not run, or "" when it should.
func (o *Orchestrator) guard() string {
	switch {
	case o.plan == nil || o.profile == nil:
		return SkipNoPlan
	case o.sessionsSinceAnalysis == 0:
		return SkipNoNewSessions
	case o.lastAnalysis.IsZero(),
		o.clock().Sub(o.lastAnalysis) >= o.cfg.ReanalysisInterval,
		o.sessionsSinceAnalysis >= o.cfg.ReanalysisSessions:
		return ""
	}
	return SkipTooSoon
}

func (o *Orchestrator) adjusted(week int) bool {
	for _, e := range o.journal {
		if e.Type == domain.JournalSystemAdjustment && e.Week == week {
			return true
		}
	}
	return false
}

// applySystemWide scales the current week on a new revision. Reducing
// decisions take an extra volume cut and raise the decision sensitivity.
// It returns nil when the week's guards dropped every change.
func (o *Orchestrator) applySystemWide(week int, primary domain.Recommendation, results []adaptation.AnalysisResult, merged adaptation.MergedDecision) (*domain.JournalEntry, error) {
	policy := o.cfg.Policy
	vf := 1 + merged.VolumeAdjustment
	inf := 1 + merged.IntensityAdjustment
	reducing := merged.Type == domain.RecommendDeload ||
		(merged.Type == domain.RecommendModify && merged.VolumeAdjustment < 0)
	if reducing {
		vf *= policy.ExtraVolumeFactor
	}

	rev := periodization.Revise(o.plan)
	if err := rev.ScaleWeek(week, math.Max(vf, 0.05), math.Max(inf, 0.05)); err != nil {
		return nil, err
	}
	if len(rev.Changes()) == 0 {
		return nil, nil
	}

	recs := []domain.Recommendation{primary}
	for _, r := range results {
		if r.NeedsAdaptation {
			recs = append(recs, r.Recommendation())
		}
	}
	entry := o.publish(rev, domain.JournalEntry{
		Week:            week,
		Type:            domain.JournalSystemAdjustment,
		Recommendations: recs,
		Confidence:      merged.Confidence,
		Note:            merged.Rationale,
	})
	if reducing {
		o.sensitivity = policy.NextSensitivity(o.sensitivity)
	}
	o.logger.Info("system-wide adjustment applied",
		zap.Int("week", week),
		zap.String("recommendation", string(merged.Type)),
		zap.Float64("confidence", merged.Confidence),
		zap.Int("agreeing", merged.Agreeing),
		zap.Float64("sensitivity", o.sensitivity),
	)
	return &entry, nil
}

func newID() string { return uuid.NewString() }

func itoa(n int) string { return strconv.Itoa(n) }
