package domain

// ModelKey identifies a periodization model in the catalog.
type ModelKey string

const (
	ModelLinear     ModelKey = "linear"
	ModelBlock      ModelKey = "block"
	ModelConjugate  ModelKey = "conjugate"
	ModelUndulating ModelKey = "undulating"
	ModelPolarized  ModelKey = "polarized"
)

// ModelKeys lists every model in catalog order. Selection ties resolve to the
// earliest key in this list.
var ModelKeys = []ModelKey{ModelLinear, ModelBlock, ModelConjugate, ModelUndulating, ModelPolarized}

// Focus is a training emphasis attached to phases, mesocycles and weeks.
type Focus string

const (
	FocusHypertrophy Focus = "hypertrophy"
	FocusStrength    Focus = "strength"
	FocusPower       Focus = "power"
	FocusPeak        Focus = "peak"
	FocusEndurance   Focus = "endurance"
	FocusRecovery    Focus = "recovery"
	FocusTechnique   Focus = "technique"
	FocusGeneral     Focus = "general"
)

// PhaseTemplate is one entry of a model's ordered phase list. Weeks is
// relative; the macrocycle builder scales it to the requested horizon.
type PhaseTemplate struct {
	Name            string  `bson:"name" json:"name"`
	Weeks           float64 `bson:"weeks" json:"weeks"`
	VolumeFactor    float64 `bson:"volumeFactor" json:"volumeFactor"`
	IntensityFactor float64 `bson:"intensityFactor" json:"intensityFactor"`
	Focus           Focus   `bson:"focus,omitempty" json:"focus,omitempty"`
}

// PeriodizationModel is a read-only catalog entry.
type PeriodizationModel struct {
	Key              ModelKey          `json:"key"`
	Name             string            `json:"name"`
	Phases           []PhaseTemplate   `json:"phases"`
	TrainingTypes    []TrainingType    `json:"trainingTypes"`
	ExperienceLevels []ExperienceLevel `json:"experienceLevels"`
	Specializations  []string          `json:"specializations,omitempty"`
	HighDemand       bool              `json:"highDemand"`
	PeakingCapable   bool              `json:"peakingCapable"`
	Rationale        string            `json:"rationale"`
}

// ModelScore is the selector's score for a single model.
type ModelScore struct {
	Model ModelKey `bson:"model" json:"model"`
	Score float64  `bson:"score" json:"score"`
}

// ModelSelection is the selector's output.
type ModelSelection struct {
	Model     ModelKey     `bson:"model" json:"model"`
	Score     float64      `bson:"score" json:"score"`
	Rationale string       `bson:"rationale" json:"rationale"`
	Scores    []ModelScore `bson:"scores" json:"scores"`
}
