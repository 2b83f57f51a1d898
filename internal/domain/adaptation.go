package domain

import "time"

// RecommendationType is the kind of plan change a recommendation asks for.
type RecommendationType string

const (
	RecommendDeload    RecommendationType = "deload"
	RecommendIntensify RecommendationType = "intensify"
	RecommendModify    RecommendationType = "modify"
	RecommendNone      RecommendationType = "none"
)

// Priority orders recommendations for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is the decision engine's typed output. Adjustments are
// signed fractions (-0.2 means reduce by 20%).
type Recommendation struct {
	Type                RecommendationType `bson:"type" json:"type"`
	Priority            Priority           `bson:"priority" json:"priority"`
	Severity            string             `bson:"severity,omitempty" json:"severity,omitempty"`
	VolumeAdjustment    float64            `bson:"volumeAdjustment" json:"volumeAdjustment"`
	IntensityAdjustment float64            `bson:"intensityAdjustment" json:"intensityAdjustment"`
	Rationale           string             `bson:"rationale" json:"rationale"`
	Actions             []string           `bson:"actions,omitempty" json:"actions,omitempty"`
	Confidence          float64            `bson:"confidence" json:"confidence"`
	Source              string             `bson:"source,omitempty" json:"source,omitempty"`
}

// JournalEntryType classifies journaled plan mutations.
type JournalEntryType string

const (
	JournalSystemAdjustment JournalEntryType = "system_adjustment"
	JournalDeloadOverride   JournalEntryType = "deload_override"
	JournalCompetition      JournalEntryType = "competition"
)

// WeekChange records a single multiplier or flag change on one week.
type WeekChange struct {
	Week   int     `bson:"week" json:"week"`
	Field  string  `bson:"field" json:"field"`
	Before float64 `bson:"before" json:"before"`
	After  float64 `bson:"after" json:"after"`
}

// JournalEntry is an append-only record of an applied adaptation.
type JournalEntry struct {
	ID              string           `bson:"id" json:"id"`
	Week            int              `bson:"week" json:"week"`
	Timestamp       time.Time        `bson:"timestamp" json:"timestamp"`
	Type            JournalEntryType `bson:"type" json:"type"`
	Recommendations []Recommendation `bson:"recommendations,omitempty" json:"recommendations,omitempty"`
	Confidence      float64          `bson:"confidence" json:"confidence"`
	Changes         []WeekChange     `bson:"changes,omitempty" json:"changes,omitempty"`
	PlanRevision    int              `bson:"planRevision" json:"planRevision"`
	Note            string           `bson:"note,omitempty" json:"note,omitempty"`
}
