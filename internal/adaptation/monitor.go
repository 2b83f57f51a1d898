// Package adaptation analyses recent sessions and decides how the plan
// should react to them.
package adaptation

import (
	"sort"

	"github.com/montanaflynn/stats"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/trend"
)

// AnalysisStatus tells whether enough sessions were available.
type AnalysisStatus string

const (
	StatusOK               AnalysisStatus = "ok"
	StatusInsufficientData AnalysisStatus = "insufficient_data"
)

// Readiness derived from average recovery score.
type Readiness string

const (
	ReadinessHigh     Readiness = "high"
	ReadinessModerate Readiness = "moderate"
	ReadinessLow      Readiness = "low"
	ReadinessUnknown  Readiness = "unknown"
)

// ProgressionQuality derived from the estimated-max trend.
type ProgressionQuality string

const (
	Progressing ProgressionQuality = "progressing"
	Plateau     ProgressionQuality = "plateau"
	Regressing  ProgressionQuality = "regressing"
)

// Fatigue markers.
const (
	MarkerHighRPE         = "rpe_above_threshold"
	MarkerVolumeDrop      = "volume_decreasing"
	MarkerPerformanceDrop = "performance_decreasing"
	MarkerLowRecovery     = "recovery_low"
)

// MonitorConfig controls the analysis window.
type MonitorConfig struct {
	Window      int
	MinSessions int
}

func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{Window: 6, MinSessions: 3}
}

// MetricAnalysis is one metric over the window.
type MetricAnalysis struct {
	Current   float64         `json:"current"`
	Average   float64         `json:"average"`
	Slope     float64         `json:"slope"`
	Direction trend.Direction `json:"direction"`
	Samples   int             `json:"samples"`
	Values    []float64       `json:"values"`
}

// RelativeSlope is the slope as a fraction of the window average.
func (m MetricAnalysis) RelativeSlope() float64 {
	return trend.Result{Slope: m.Slope, Mean: m.Average}.RelativeSlope()
}

// Analysis is the monitor's output. It is always returned alongside a
// recommendation so callers can see what the decision was based on.
type Analysis struct {
	Status       AnalysisStatus      `json:"status"`
	TrainingType domain.TrainingType `json:"trainingType"`
	Sessions     int                 `json:"sessions"`
	Window       int                 `json:"window"`
	MinSessions  int                 `json:"minSessions"`
	Thresholds   Thresholds          `json:"thresholds"`

	// DeloadRPE is Thresholds.DeloadRPE after sensitivity. UnratedSessions
	// counts window sessions without any RPE; they stay out of the RPE series.
	DeloadRPE       float64 `json:"deloadRpe"`
	UnratedSessions int     `json:"unratedSessions,omitempty"`

	RPE          MetricAnalysis `json:"rpe"`
	Volume       MetricAnalysis `json:"volume"`
	EstimatedMax MetricAnalysis `json:"estimatedMax"`
	Recovery     MetricAnalysis `json:"recovery"`
	Adherence    MetricAnalysis `json:"adherence"`

	Readiness      Readiness          `json:"readiness"`
	Progression    ProgressionQuality `json:"progression"`
	FatigueMarkers []string           `json:"fatigueMarkers,omitempty"`
}

// Monitor turns a session history into an Analysis.
type Monitor struct {
	cfg MonitorConfig
}

func NewMonitor(cfg MonitorConfig) *Monitor {
	d := DefaultMonitorConfig()
	if cfg.Window <= 0 {
		cfg.Window = d.Window
	}
	if cfg.MinSessions <= 0 {
		cfg.MinSessions = d.MinSessions
	}
	return &Monitor{cfg: cfg}
}

// Window returns the most recent sessions the monitor would analyse, oldest first.
func (m *Monitor) Window(sessions []domain.SessionRecord) []domain.SessionRecord {
	sorted := append([]domain.SessionRecord(nil), sessions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	if len(sorted) > m.cfg.Window {
		sorted = sorted[len(sorted)-m.cfg.Window:]
	}
	return sorted
}

// Analyze evaluates the most recent window of sessions at sensitivity 1.
// Fewer than MinSessions yields StatusInsufficientData with no metrics.
func (m *Monitor) Analyze(sessions []domain.SessionRecord, tt domain.TrainingType) *Analysis {
	return m.AnalyzeWithSensitivity(sessions, tt, 1)
}

// AnalyzeWithSensitivity is Analyze with the high-RPE marker computed
// against the sensitivity-adjusted deload threshold.
func (m *Monitor) AnalyzeWithSensitivity(sessions []domain.SessionRecord, tt domain.TrainingType, sensitivity float64) *Analysis {
	window := m.Window(sessions)
	th := ThresholdsFor(tt)
	a := &Analysis{
		Status:       StatusOK,
		TrainingType: tt,
		Sessions:     len(window),
		Window:       m.cfg.Window,
		MinSessions:  m.cfg.MinSessions,
		Thresholds:   th,
		DeloadRPE:    th.EffectiveDeloadRPE(sensitivity),
		Readiness:    ReadinessUnknown,
		Progression:  Plateau,
	}
	if len(window) < m.cfg.MinSessions {
		a.Status = StatusInsufficientData
		return a
	}

	var rpe, volume, e1rm, recovery, adherence []float64
	for _, s := range window {
		sm := s.Metrics()
		if sm.HasRPE {
			rpe = append(rpe, sm.AverageRPE)
		} else {
			a.UnratedSessions++
		}
		volume = append(volume, sm.Volume)
		e1rm = append(e1rm, sm.EstimatedMax)
		adherence = append(adherence, sm.Adherence)
		if sm.HasRecovery {
			recovery = append(recovery, sm.Recovery)
		}
	}
	a.RPE = analyzeMetric(rpe)
	a.Volume = analyzeMetric(volume)
	a.EstimatedMax = analyzeMetric(e1rm)
	a.Recovery = analyzeMetric(recovery)
	a.Adherence = analyzeMetric(adherence)

	switch a.EstimatedMax.Direction {
	case trend.Increasing:
		a.Progression = Progressing
	case trend.Decreasing:
		a.Progression = Regressing
	}

	if a.Recovery.Samples > 0 {
		switch {
		case a.Recovery.Average >= 7:
			a.Readiness = ReadinessHigh
		case a.Recovery.Average >= 5:
			a.Readiness = ReadinessModerate
		default:
			a.Readiness = ReadinessLow
		}
	}

	if TrailingCount(rpe, func(v float64) bool { return v >= a.DeloadRPE }) >= a.Thresholds.DeloadSessions {
		a.FatigueMarkers = append(a.FatigueMarkers, MarkerHighRPE)
	}
	if a.Volume.Direction == trend.Decreasing {
		a.FatigueMarkers = append(a.FatigueMarkers, MarkerVolumeDrop)
	}
	if a.EstimatedMax.Direction == trend.Decreasing {
		a.FatigueMarkers = append(a.FatigueMarkers, MarkerPerformanceDrop)
	}
	if a.Readiness == ReadinessLow {
		a.FatigueMarkers = append(a.FatigueMarkers, MarkerLowRecovery)
	}
	return a
}

func analyzeMetric(values []float64) MetricAnalysis {
	r := trend.Analyze(values)
	out := MetricAnalysis{
		Current:   r.Current,
		Slope:     r.Slope,
		Direction: r.Direction,
		Samples:   r.Samples,
		Values:    values,
	}
	if len(values) > 0 {
		out.Average, _ = stats.Mean(values)
	}
	return out
}

// TrailingCount counts how many of the most recent values satisfy ok without
// interruption.
func TrailingCount(values []float64, ok func(float64) bool) int {
	n := 0
	for i := len(values) - 1; i >= 0; i-- {
		if !ok(values[i]) {
			break
		}
		n++
	}
	return n
}
