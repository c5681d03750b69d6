package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/frotadev/fleet-manager/internal/models"
)

// snapshotKey is the fixed document ID of the single fleet snapshot. The
// whole state is written and read as one document, never per-entity.
const snapshotKey = "fleet-state"

// ErrNoSnapshot is returned when the snapshot document has never been saved.
var ErrNoSnapshot = errors.New("no snapshot found")

// SnapshotCollection defines the interface for fleet snapshot persistence.
type SnapshotCollection interface {
	SaveSnapshot(ctx context.Context, state models.PersistedState) error
	LoadSnapshot(ctx context.Context) (models.PersistedState, error)
}

// snapshotDocument wraps the persisted state with the fixed document key.
type snapshotDocument struct {
	ID    string                `bson:"_id"`
	State models.PersistedState `bson:"state"`
}

// MongoSnapshotCollection implements SnapshotCollection for MongoDB.
type MongoSnapshotCollection struct {
	Collection *mongo.Collection
}

// SaveSnapshot upserts the full fleet state as a single document.
func (c *MongoSnapshotCollection) SaveSnapshot(ctx context.Context, state models.PersistedState) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	doc := snapshotDocument{ID: snapshotKey, State: state}
	opts := options.Replace().SetUpsert(true)
	_, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": snapshotKey}, doc, opts)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the fleet state document. ErrNoSnapshot signals a
// fresh deployment with nothing persisted yet.
func (c *MongoSnapshotCollection) LoadSnapshot(ctx context.Context) (models.PersistedState, error) {
	if c.Collection == nil {
		return models.PersistedState{}, fmt.Errorf("mongo collection is nil")
	}
	var doc snapshotDocument
	err := c.Collection.FindOne(ctx, bson.M{"_id": snapshotKey}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.PersistedState{}, ErrNoSnapshot
		}
		return models.PersistedState{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return doc.State, nil
}
