// Package periodization builds multi-horizon training plans and adapts
// workouts to a plan week.
package periodization

import (
	"fmt"

	"alcyxob/training-engine/internal/domain"
)

// Catalog returns every periodization model in catalog order. The returned
// slice is freshly built; callers may not mutate the shared tables through it.
func Catalog() []domain.PeriodizationModel {
	models := make([]domain.PeriodizationModel, 0, len(domain.ModelKeys))
	for _, key := range domain.ModelKeys {
		m, err := model(key)
		if err != nil {
			panic(err) // ModelKeys and model() must agree
		}
		models = append(models, m)
	}
	return models
}

// Lookup returns the catalog entry for key.
func Lookup(key domain.ModelKey) (domain.PeriodizationModel, bool) {
	m, err := model(key)
	if err != nil {
		return domain.PeriodizationModel{}, false
	}
	return m, true
}

func model(key domain.ModelKey) (domain.PeriodizationModel, error) {
	phases, err := PhaseTemplates(key)
	if err != nil {
		return domain.PeriodizationModel{}, err
	}
	m := domain.PeriodizationModel{Key: key, Phases: phases}

	switch key {
	case domain.ModelLinear:
		m.Name = "Linear Periodization"
		m.TrainingTypes = []domain.TrainingType{domain.TrainingStrength, domain.TrainingGeneral}
		m.ExperienceLevels = []domain.ExperienceLevel{domain.ExperienceBeginner, domain.ExperienceIntermediate}
		m.Specializations = []string{"general_fitness"}
		m.PeakingCapable = true
		m.Rationale = "Steady shift from volume to intensity; simple to follow and reliable for newer lifters."
	case domain.ModelBlock:
		m.Name = "Block Periodization"
		m.TrainingTypes = []domain.TrainingType{domain.TrainingStrength, domain.TrainingHypertrophy}
		m.ExperienceLevels = []domain.ExperienceLevel{domain.ExperienceIntermediate, domain.ExperienceAdvanced}
		m.Specializations = []string{"weightlifting", "strongman"}
		m.PeakingCapable = true
		m.Rationale = "Concentrated accumulation, transmutation and realization blocks for trained athletes with a target date."
	case domain.ModelConjugate:
		m.Name = "Conjugate Method"
		m.TrainingTypes = []domain.TrainingType{domain.TrainingStrength}
		m.ExperienceLevels = []domain.ExperienceLevel{domain.ExperienceAdvanced}
		m.Specializations = []string{"powerlifting"}
		m.HighDemand = true
		m.PeakingCapable = true
		m.Rationale = "Concurrent max-effort and dynamic-effort work; rotates stimuli to keep advanced lifters progressing."
	case domain.ModelUndulating:
		m.Name = "Daily Undulating Periodization"
		m.TrainingTypes = []domain.TrainingType{domain.TrainingHypertrophy, domain.TrainingGeneral, domain.TrainingStrength}
		m.ExperienceLevels = []domain.ExperienceLevel{domain.ExperienceIntermediate, domain.ExperienceAdvanced}
		m.Specializations = []string{"bodybuilding"}
		m.Rationale = "Frequent variation of rep ranges within the week; good for hypertrophy and mixed goals."
	case domain.ModelPolarized:
		m.Name = "Polarized Training"
		m.TrainingTypes = []domain.TrainingType{domain.TrainingEndurance}
		m.ExperienceLevels = []domain.ExperienceLevel{domain.ExperienceBeginner, domain.ExperienceIntermediate, domain.ExperienceAdvanced}
		m.Specializations = []string{"running", "cycling", "triathlon", "rowing"}
		m.HighDemand = true
		m.PeakingCapable = true
		m.Rationale = "Mostly low-intensity volume with a small share of hard sessions; the standard for endurance athletes."
	default:
		return domain.PeriodizationModel{}, fmt.Errorf("unknown periodization model %q", key)
	}
	return m, nil
}

// PhaseTemplates returns the ordered phase list for key.
func PhaseTemplates(key domain.ModelKey) ([]domain.PhaseTemplate, error) {
	switch key {
	case domain.ModelLinear:
		return []domain.PhaseTemplate{
			{Name: "Anatomical Adaptation", Weeks: 3, VolumeFactor: 1.0, IntensityFactor: 0.85, Focus: domain.FocusHypertrophy},
			{Name: "Strength", Weeks: 4, VolumeFactor: 0.9, IntensityFactor: 0.95, Focus: domain.FocusStrength},
			{Name: "Power", Weeks: 3, VolumeFactor: 0.75, IntensityFactor: 1.0, Focus: domain.FocusPower},
			{Name: "Peak", Weeks: 2, VolumeFactor: 0.6, IntensityFactor: 1.05, Focus: domain.FocusPeak},
		}, nil
	case domain.ModelBlock:
		return []domain.PhaseTemplate{
			{Name: "Accumulation", Weeks: 4, VolumeFactor: 1.1, IntensityFactor: 0.85, Focus: domain.FocusHypertrophy},
			{Name: "Transmutation", Weeks: 4, VolumeFactor: 0.95, IntensityFactor: 0.95, Focus: domain.FocusStrength},
			{Name: "Realization", Weeks: 2, VolumeFactor: 0.7, IntensityFactor: 1.05, Focus: domain.FocusPeak},
		}, nil
	case domain.ModelConjugate:
		return []domain.PhaseTemplate{
			{Name: "General Preparation", Weeks: 3, VolumeFactor: 1.05, IntensityFactor: 0.85, Focus: domain.FocusHypertrophy},
			{Name: "Max Effort Emphasis", Weeks: 4, VolumeFactor: 0.9, IntensityFactor: 1.0, Focus: domain.FocusStrength},
			{Name: "Dynamic Effort Emphasis", Weeks: 3, VolumeFactor: 0.85, IntensityFactor: 0.95, Focus: domain.FocusPower},
			{Name: "Peak", Weeks: 2, VolumeFactor: 0.6, IntensityFactor: 1.05, Focus: domain.FocusPeak},
		}, nil
	case domain.ModelUndulating:
		return []domain.PhaseTemplate{
			{Name: "Volume Wave", Weeks: 4, VolumeFactor: 1.05, IntensityFactor: 0.9, Focus: domain.FocusHypertrophy},
			{Name: "Mixed Wave", Weeks: 4, VolumeFactor: 1.0, IntensityFactor: 0.95, Focus: domain.FocusGeneral},
			{Name: "Intensity Wave", Weeks: 4, VolumeFactor: 0.9, IntensityFactor: 1.0, Focus: domain.FocusStrength},
		}, nil
	case domain.ModelPolarized:
		return []domain.PhaseTemplate{
			{Name: "Base", Weeks: 5, VolumeFactor: 1.2, IntensityFactor: 0.8, Focus: domain.FocusEndurance},
			{Name: "Build", Weeks: 4, VolumeFactor: 1.0, IntensityFactor: 0.9, Focus: domain.FocusEndurance},
			{Name: "Sharpen", Weeks: 2, VolumeFactor: 0.8, IntensityFactor: 1.0, Focus: domain.FocusPower},
			{Name: "Taper", Weeks: 1, VolumeFactor: 0.6, IntensityFactor: 0.95, Focus: domain.FocusPeak},
		}, nil
	}
	return nil, fmt.Errorf("unknown periodization model %q", key)
}
