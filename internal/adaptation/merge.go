package adaptation

import (
	"strings"

	"alcyxob/training-engine/internal/domain"
)

// Policy controls when merged results become a plan change and how hard
// the change bites.
type Policy struct {
	MinAgreeing       int     `mapstructure:"min_agreeing" json:"minAgreeing"`
	ExtraVolumeFactor float64 `mapstructure:"extra_volume_factor" json:"extraVolumeFactor"`
	SensitivityStep   float64 `mapstructure:"sensitivity_step" json:"sensitivityStep"`
	MaxSensitivity    float64 `mapstructure:"max_sensitivity" json:"maxSensitivity"`
}

func DefaultPolicy() Policy {
	return Policy{MinAgreeing: 2, ExtraVolumeFactor: 0.9, SensitivityStep: 0.1, MaxSensitivity: 1.5}
}

// WithDefaults fills zero fields from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()
	if p.MinAgreeing <= 0 {
		p.MinAgreeing = d.MinAgreeing
	}
	if p.ExtraVolumeFactor <= 0 || p.ExtraVolumeFactor > 1 {
		p.ExtraVolumeFactor = d.ExtraVolumeFactor
	}
	if p.SensitivityStep <= 0 {
		p.SensitivityStep = d.SensitivityStep
	}
	if p.MaxSensitivity < 1 {
		p.MaxSensitivity = d.MaxSensitivity
	}
	return p
}

// NextSensitivity raises s by one step, capped.
func (p Policy) NextSensitivity(s float64) float64 {
	s += p.SensitivityStep
	if s > p.MaxSensitivity {
		return p.MaxSensitivity
	}
	return s
}

// MergedDecision is the reduced outcome of all analyzers.
type MergedDecision struct {
	Type                domain.RecommendationType `json:"type"`
	VolumeAdjustment    float64                   `json:"volumeAdjustment"`
	IntensityAdjustment float64                   `json:"intensityAdjustment"`
	Confidence          float64                   `json:"confidence"`
	Agreeing            int                       `json:"agreeing"`
	SystemWide          bool                      `json:"systemWide"`
	Sources             []string                  `json:"sources,omitempty"`
	Rationale           string                    `json:"rationale"`
}

// precedence breaks vote ties; earlier wins.
var precedence = []domain.RecommendationType{
	domain.RecommendDeload,
	domain.RecommendModify,
	domain.RecommendIntensify,
}

// Merge reduces analyzer results into one decision. Only results that ask
// for adaptation vote; each vote counts weight × confidence. The result is
// system-wide when at least MinAgreeing analyzers ask for adaptation.
func Merge(results []AnalysisResult, policy Policy) MergedDecision {
	policy = policy.WithDefaults()

	votes := map[domain.RecommendationType]float64{}
	var voting []AnalysisResult
	for _, r := range results {
		if !r.NeedsAdaptation || r.Type == domain.RecommendNone {
			continue
		}
		voting = append(voting, r)
		votes[r.Type] += r.Weight * r.Confidence
	}
	if len(voting) == 0 {
		return MergedDecision{Type: domain.RecommendNone, Rationale: "no analyzer requested adaptation"}
	}

	winner, best := domain.RecommendNone, -1.0
	for _, t := range precedence {
		if v, ok := votes[t]; ok && v > best+1e-12 {
			winner, best = t, v
		}
	}

	var w, vol, inten, conf, weights float64
	out := MergedDecision{Type: winner, Agreeing: len(voting)}
	var why []string
	for _, r := range voting {
		out.Sources = append(out.Sources, r.Source)
		why = append(why, r.Source+": "+r.Rationale)
		conf += r.Confidence * r.Weight
		weights += r.Weight
		if r.Type != winner {
			continue
		}
		rw := r.Weight * r.Confidence
		w += rw
		vol += r.VolumeAdjustment * rw
		inten += r.IntensityAdjustment * rw
	}
	if w > 0 {
		out.VolumeAdjustment = vol / w
		out.IntensityAdjustment = inten / w
	}
	if weights > 0 {
		out.Confidence = conf / weights
	}
	out.SystemWide = out.Agreeing >= policy.MinAgreeing
	out.Rationale = strings.Join(why, "; ")
	return out
}
