package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/repository"
)

const stateCollectionName = "athlete_states"

// mongoStateRepository implements repository.StateRepository
type mongoStateRepository struct {
	collection *mongo.Collection
}

func NewMongoStateRepository(db *mongo.Database) repository.StateRepository {
	return &mongoStateRepository{
		collection: db.Collection(stateCollectionName),
	}
}

// Save upserts the athlete state, one document per athleteId.
func (r *mongoStateRepository) Save(ctx context.Context, state *domain.AthleteState) error {
	if state.AthleteID == "" || state.Document == "" {
		return errors.New("athlete state requires athleteId and document")
	}
	state.UpdatedAt = time.Now().UTC()

	filter := bson.M{"athleteId": state.AthleteID}
	update := bson.M{
		"$set": bson.M{
			"document":     state.Document,
			"planRevision": state.PlanRevision,
			"updatedAt":    state.UpdatedAt,
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 && result.UpsertedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

func (r *mongoStateRepository) Get(ctx context.Context, athleteID string) (*domain.AthleteState, error) {
	var state domain.AthleteState
	err := r.collection.FindOne(ctx, bson.M{"athleteId": athleteID}).Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &state, nil
}

// ListAthleteIDs returns every athlete with stored state, sorted.
func (r *mongoStateRepository) ListAthleteIDs(ctx context.Context) ([]string, error) {
	findOptions := options.Find().
		SetProjection(bson.M{"athleteId": 1}).
		SetSort(bson.D{{Key: "athleteId", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		AthleteID string `bson:"athleteId"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.AthleteID)
	}
	return ids, nil
}

// EnsureStateIndexes creates necessary indexes. Call during startup.
func EnsureStateIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "athleteId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
