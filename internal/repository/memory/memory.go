// Package memory provides in-process repositories for tests and for running
// the server without MongoDB (database.uri = memory://).
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/repository"
)

type StateRepository struct {
	mu     sync.RWMutex
	states map[string]domain.AthleteState
}

func NewStateRepository() *StateRepository {
	return &StateRepository{states: make(map[string]domain.AthleteState)}
}

var _ repository.StateRepository = (*StateRepository)(nil)

func (r *StateRepository) Save(_ context.Context, state *domain.AthleteState) error {
	if state.AthleteID == "" || state.Document == "" {
		return errors.New("athlete state requires athleteId and document")
	}
	state.UpdatedAt = time.Now().UTC()
	r.mu.Lock()
	r.states[state.AthleteID] = *state
	r.mu.Unlock()
	return nil
}

func (r *StateRepository) Get(_ context.Context, athleteID string) (*domain.AthleteState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.states[athleteID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *StateRepository) ListAthleteIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.states))
	for id := range r.states {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

type SessionRepository struct {
	mu       sync.RWMutex
	sessions []domain.StoredSession
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(_ context.Context, session *domain.StoredSession) (primitive.ObjectID, error) {
	if session.AthleteID == "" || session.Record.Date.IsZero() {
		return primitive.NilObjectID, errors.New("session requires athleteId and record date")
	}
	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now().UTC()

	stored := *session
	stored.Record = session.Record.Clone()
	r.mu.Lock()
	r.sessions = append(r.sessions, stored)
	r.mu.Unlock()
	return session.ID, nil
}

func (r *SessionRepository) ListByAthlete(_ context.Context, athleteID string, limit int) ([]domain.StoredSession, error) {
	r.mu.RLock()
	out := []domain.StoredSession{}
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if s := r.sessions[i]; s.AthleteID == athleteID {
			s.Record = s.Record.Clone()
			out = append(out, s)
		}
	}
	r.mu.RUnlock()

	// newest training date first; among equal dates the latest insert wins
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Record.Date.After(out[j].Record.Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots []domain.Snapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{}
}

var _ repository.SnapshotRepository = (*SnapshotRepository)(nil)

func (r *SnapshotRepository) Create(_ context.Context, snapshot *domain.Snapshot) (primitive.ObjectID, error) {
	if snapshot.AthleteID == "" || snapshot.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("snapshot requires athleteId and objectKey")
	}
	snapshot.ID = primitive.NewObjectID()
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	r.mu.Lock()
	r.snapshots = append(r.snapshots, *snapshot)
	r.mu.Unlock()
	return snapshot.ID, nil
}

func (r *SnapshotRepository) ListByAthlete(_ context.Context, athleteID string) ([]domain.Snapshot, error) {
	r.mu.RLock()
	out := []domain.Snapshot{}
	for i := len(r.snapshots) - 1; i >= 0; i-- {
		if r.snapshots[i].AthleteID == athleteID {
			out = append(out, r.snapshots[i])
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
