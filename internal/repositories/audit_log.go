package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/config"
)

// AuditEntry is one recorded change to an order or other entity.
type AuditEntry struct {
	ID        string    `bson:"_id,omitempty" json:"-"`
	Service   string    `bson:"service" json:"service"`
	Action    string    `bson:"action" json:"action"`
	EntityID  string    `bson:"entity_id" json:"entityId"`
	Data      bson.M    `bson:"data" json:"data"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// AuditLog records and lists audit entries.
type AuditLog interface {
	Record(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, entityID string, limit int64) ([]*AuditEntry, error)
}

// MongoAuditLog stores audit entries in a MongoDB collection.
type MongoAuditLog struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoAuditLog connects to MongoDB.
func NewMongoAuditLog(ctx context.Context, cfg config.MongoDBConfig) (*MongoAuditLog, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	return &MongoAuditLog{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (m *MongoAuditLog) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoAuditLog) Record(ctx context.Context, entry *AuditEntry) error {
	entry.CreatedAt = time.Now()
	if _, err := m.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit entry for %s: %w", entry.EntityID, err)
	}
	return nil
}

// List returns the newest entries for entityID first.
func (m *MongoAuditLog) List(ctx context.Context, entityID string, limit int64) ([]*AuditEntry, error) {
	filter := bson.M{"entity_id": entityID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}
	return entries, nil
}

func (m *MongoAuditLog) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
