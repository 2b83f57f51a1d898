package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/repository"
)

const snapshotCollectionName = "snapshots"

// mongoSnapshotRepository implements repository.SnapshotRepository
type mongoSnapshotRepository struct {
	collection *mongo.Collection
}

// NewMongoSnapshotRepository creates a snapshot metadata repository.
func NewMongoSnapshotRepository(db *mongo.Database) repository.SnapshotRepository {
	return &mongoSnapshotRepository{
		collection: db.Collection(snapshotCollectionName),
	}
}

// Create inserts snapshot metadata. The object itself must already be stored.
func (r *mongoSnapshotRepository) Create(ctx context.Context, snapshot *domain.Snapshot) (primitive.ObjectID, error) {
	if snapshot.AthleteID == "" || snapshot.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("snapshot requires athleteId and objectKey")
	}
	snapshot.ID = primitive.NewObjectID()
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, snapshot)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// ListByAthlete returns the athlete's snapshots, newest first.
func (r *mongoSnapshotRepository) ListByAthlete(ctx context.Context, athleteID string) ([]domain.Snapshot, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"athleteId": athleteID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	snapshots := []domain.Snapshot{}
	if err = cursor.All(ctx, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// EnsureSnapshotIndexes creates necessary indexes for the snapshots collection.
func EnsureSnapshotIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// S3 keys are unique within the bucket
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
