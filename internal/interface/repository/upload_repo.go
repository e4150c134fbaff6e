package repository

import (
	"context"
	"fmt"
	"time"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUploadRepository implements the UploadRepository interface
type MongoUploadRepository struct {
	collection *mongo.Collection
}

// NewMongoUploadRepository creates a new MongoDB upload repository
func NewMongoUploadRepository(db *mongo.Database) repository.UploadRepository {
	collection := db.Collection("rosterUploads")

	ctx := context.Background()

	uploadIDIndex := mongo.IndexModel{
		Keys:    bson.M{"uploadId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Index on processStatus for finding uploads by status
	processStatusIndex := mongo.IndexModel{
		Keys: bson.M{"processStatus": 1},
	}

	// Compound index for finding unprocessed uploads efficiently
	unprocessedIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "processStatus", Value: 1},
			{Key: "receivedAt", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		uploadIDIndex,
		processStatusIndex,
		unprocessedIndex,
	})

	return &MongoUploadRepository{
		collection: collection,
	}
}

// Save archives an upload
func (r *MongoUploadRepository) Save(ctx context.Context, upload *entity.RosterUpload) error {
	if upload.ProcessStatus == "" {
		upload.ProcessStatus = entity.StatusPending
	}

	_, err := r.collection.InsertOne(ctx, upload)
	return err
}

// FindByUploadID finds an upload by its upload id
func (r *MongoUploadRepository) FindByUploadID(ctx context.Context, uploadID string) (*entity.RosterUpload, error) {
	var upload entity.RosterUpload
	err := r.collection.FindOne(ctx, bson.M{"uploadId": uploadID}).Decode(&upload)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &upload, nil
}

// FindUnprocessed finds unprocessed uploads (PENDING status or empty)
func (r *MongoUploadRepository) FindUnprocessed(ctx context.Context, limit int) ([]*entity.RosterUpload, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"processStatus": ""},
			{"processStatus": entity.StatusPending},
			{"processStatus": bson.M{"$exists": false}},
		},
	}

	limit64 := int64(limit)
	cursor, err := r.collection.Find(ctx, filter, &options.FindOptions{
		Limit: &limit64,
		Sort:  bson.D{{Key: "receivedAt", Value: 1}}, // Process oldest first
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var uploads []*entity.RosterUpload
	if err := cursor.All(ctx, &uploads); err != nil {
		return nil, err
	}

	return uploads, nil
}

// UpdateStatusByUploadID updates just the status and started time
func (r *MongoUploadRepository) UpdateStatusByUploadID(ctx context.Context, uploadID string, status string, startedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"processStatus": status,
		},
	}

	// Only set processStartedAt when moving to PROCESSING
	if status == entity.StatusProcessing && !startedAt.IsZero() {
		update["$set"].(bson.M)["processStartedAt"] = startedAt
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"uploadId": uploadID},
		update,
	)

	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with uploadId: %s", uploadID)
	}

	return nil
}

// UpdateProcessStepsByUploadID updates the processing steps
func (r *MongoUploadRepository) UpdateProcessStepsByUploadID(ctx context.Context, uploadID string, steps entity.ProcessSteps) error {
	update := bson.M{
		"$set": bson.M{
			"processSteps": steps,
		},
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"uploadId": uploadID},
		update,
	)
	return err
}

// MarkAsProcessedByUploadID marks an upload as processed with full details
func (r *MongoUploadRepository) MarkAsProcessedByUploadID(ctx context.Context, uploadID, status, errorDetail string, extractedData map[string]interface{}) error {
	update := bson.M{
		"$set": bson.M{
			"processedAt":   time.Now(),
			"processStatus": status,
		},
	}

	if len(extractedData) > 0 {
		update["$set"].(bson.M)["extractedData"] = extractedData
	}

	if errorDetail != "" {
		update["$set"].(bson.M)["errorDetail"] = errorDetail
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"uploadId": uploadID},
		update,
	)

	if err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with uploadId: %s", uploadID)
	}

	return nil
}

// ResetProcessingUploads resets uploads stuck in PROCESSING state back to PENDING
func (r *MongoUploadRepository) ResetProcessingUploads(ctx context.Context) error {
	// Uploads processing for more than 5 minutes are considered stale
	staleTime := time.Now().Add(-5 * time.Minute)

	filter := bson.M{
		"processStatus": entity.StatusProcessing,
		"$or": []bson.M{
			{"processStartedAt": bson.M{"$lt": staleTime}},
			{"processStartedAt": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"processStatus": entity.StatusPending,
			"errorDetail":   "Reset from stale PROCESSING state",
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}
