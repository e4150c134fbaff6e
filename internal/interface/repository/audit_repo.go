package repository

import (
	"context"
	"time"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAuditRepository implements the AuditRepository interface
type MongoAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoAuditRepository creates a new MongoDB audit trail repository
func NewMongoAuditRepository(db *mongo.Database) repository.AuditRepository {
	collection := db.Collection("flightAuditTrail")

	ctx := context.Background()

	// Index on userId + createdAt for per-user history queries
	userIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "userId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}
	flightIndex := mongo.IndexModel{
		Keys: bson.M{"flightId": 1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		userIndex,
		flightIndex,
	})

	return &MongoAuditRepository{
		collection: collection,
	}
}

// Append inserts one audit entry. Entries are never updated or deleted.
func (r *MongoAuditRepository) Append(ctx context.Context, entry *entity.AuditTrailEntry) error {
	if entry.ID == "" {
		entry.ID = primitive.NewObjectID().Hex()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// FindByUser returns a user's most recent audit entries
func (r *MongoAuditRepository) FindByUser(ctx context.Context, userID string, limit int) ([]*entity.AuditTrailEntry, error) {
	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "createdAt", Value: -1}}, // Most recent first
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*entity.AuditTrailEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}
