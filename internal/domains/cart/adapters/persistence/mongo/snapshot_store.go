package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Apurer/freshcart-api/internal/domains/cart/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// CollectionName is the collection holding snapshot documents.
const CollectionName = "cart_snapshots"

// SnapshotStore persists snapshots as MongoDB documents keyed by snapshot key.
type SnapshotStore struct {
	collection *mongo.Collection
	now        func() time.Time
}

type snapshotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewSnapshotStore wires a database handle. Caller owns the client lifecycle.
func NewSnapshotStore(db *mongo.Database) *SnapshotStore {
	return &SnapshotStore{collection: db.Collection(CollectionName), now: time.Now}
}

// CreateIndexes adds the updated_at index used for housekeeping.
func (s *SnapshotStore) CreateIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create snapshot indexes: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Get(ctx context.Context, key string) (string, error) {
	var doc snapshotDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ports.ErrSnapshotNotFound
		}
		return "", fmt.Errorf("failed to get snapshot: %w", err)
	}
	return doc.Value, nil
}

func (s *SnapshotStore) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": s.now()}}
	opts := options.Update().SetUpsert(true)
	if _, err := s.collection.UpdateOne(ctx, bson.M{"_id": key}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) Delete(ctx context.Context, key string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
