package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"scholarguard/internal/models"
)

const checksCollection = "plagiarism_checks"

// CheckRepository persists finished plagiarism checks
type CheckRepository struct {
	mongoRepo *MongoRepository
}

func NewCheckRepository(mongoRepo *MongoRepository) *CheckRepository {
	return &CheckRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *CheckRepository) Insert(ctx context.Context, record *models.CheckRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	err := r.mongoRepo.InsertOne(ctx, checksCollection, record)
	if err != nil {
		return fmt.Errorf("failed to insert check record: %w", err)
	}

	return nil
}

// FindByID returns the check with the given id, or nil when none exists
func (r *CheckRepository) FindByID(ctx context.Context, checkID string) (*models.CheckRecord, error) {
	filter := bson.M{"checkId": checkID}

	var record models.CheckRecord
	err := r.mongoRepo.FindOne(ctx, checksCollection, filter).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find check record: %w", err)
	}

	return &record, nil
}

// FindByUser returns the user's checks, newest first
func (r *CheckRepository) FindByUser(ctx context.Context, userID string, limit int) ([]models.CheckRecord, error) {
	filter := bson.M{"userId": userID}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.mongoRepo.FindMany(ctx, checksCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find check records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.CheckRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode check records: %w", err)
	}

	return records, nil
}

// Delete removes a check only when it belongs to the given user.
// Returns false when nothing matched.
func (r *CheckRepository) Delete(ctx context.Context, checkID, userID string) (bool, error) {
	filter := bson.M{"checkId": checkID, "userId": userID}

	deleted, err := r.mongoRepo.DeleteOne(ctx, checksCollection, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete check record: %w", err)
	}

	return deleted > 0, nil
}
