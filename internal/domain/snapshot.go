package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Snapshot stores metadata about an archived state export. The document
// itself lives in object storage.
type Snapshot struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID    string             `bson:"athleteId" json:"athleteId"`
	ObjectKey    string             `bson:"objectKey" json:"-"` // internal, never exposed
	PlanRevision int                `bson:"planRevision" json:"planRevision"`
	Size         int64              `bson:"size" json:"size"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// AthleteState is the persisted form of one athlete context: the versioned
// export document kept as an opaque JSON string.
type AthleteState struct {
	AthleteID    string    `bson:"athleteId" json:"athleteId"`
	Document     string    `bson:"document" json:"-"`
	PlanRevision int       `bson:"planRevision" json:"planRevision"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// StoredSession is a raw session record kept for history and audit.
type StoredSession struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID string             `bson:"athleteId" json:"athleteId"`
	Record    SessionRecord      `bson:"record" json:"record"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
