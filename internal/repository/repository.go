package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/training-engine/internal/domain"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrInvalid      = RepositoryError("invalid record")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// StateRepository persists the exported engine state of each athlete.
type StateRepository interface {
	// Save upserts the state keyed by AthleteID.
	Save(ctx context.Context, state *domain.AthleteState) error
	Get(ctx context.Context, athleteID string) (*domain.AthleteState, error)
	ListAthleteIDs(ctx context.Context) ([]string, error)
}

// SessionRepository keeps the raw session history for audit.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.StoredSession) (primitive.ObjectID, error)
	// ListByAthlete returns newest sessions first. limit <= 0 means all.
	ListByAthlete(ctx context.Context, athleteID string, limit int) ([]domain.StoredSession, error)
}

// SnapshotRepository stores metadata about archived state documents.
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *domain.Snapshot) (primitive.ObjectID, error)
	ListByAthlete(ctx context.Context, athleteID string) ([]domain.Snapshot, error)
}
