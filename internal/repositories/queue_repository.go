package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gympulse/gym-notify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrRecordNotFound is returned when a queue record id resolves to nothing.
	ErrRecordNotFound = errors.New("notification record not found")
	// ErrAlreadyProcessed is returned when a terminal record would be rewritten.
	// Marking is write-once; callers treat this as a no-op, not a failure.
	ErrAlreadyProcessed = errors.New("notification record already processed")
)

// QueueRepository defines the interface for the durable notification queue
type QueueRepository interface {
	Insert(ctx context.Context, record *models.NotificationRecord) (string, error)
	GetByID(ctx context.Context, id string) (*models.NotificationRecord, error)
	FetchUnprocessed(ctx context.Context, limit int64) ([]models.NotificationRecord, error)
	MarkProcessed(ctx context.Context, id string, success bool, result string) error
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time, limit int64) (int64, error)
}

// MongoQueueRepository implements QueueRepository over the fcm_notifications collection
type MongoQueueRepository struct {
	collection *mongo.Collection
}

// NewMongoQueueRepository creates a new MongoQueueRepository
func NewMongoQueueRepository(db *mongo.Database) *MongoQueueRepository {
	return &MongoQueueRepository{collection: db.Collection("fcm_notifications")}
}

// Insert appends a new record to the queue and returns its assigned id.
// The id, creation timestamp and the initial processed=false state are
// owned by the store, not the producer.
func (r *MongoQueueRepository) Insert(ctx context.Context, record *models.NotificationRecord) (string, error) {
	record.ID = primitive.NewObjectID()
	record.CreatedAt = time.Now()
	record.Processed = false
	record.ProcessedAt = nil
	record.Success = false
	record.Result = ""

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		return "", err
	}
	return record.ID.Hex(), nil
}

// GetByID retrieves a single queue record
func (r *MongoQueueRepository) GetByID(ctx context.Context, id string) (*models.NotificationRecord, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid notification ID format: %w", err)
	}

	var record models.NotificationRecord
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FetchUnprocessed returns up to limit non-terminal records, oldest first
func (r *MongoQueueRepository) FetchUnprocessed(ctx context.Context, limit int64) ([]models.NotificationRecord, error) {
	findOptions := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"processed": false}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.NotificationRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// MarkProcessed writes the terminal outcome of a record. The update filters on
// processed=false so all four terminal fields are set atomically at most once;
// a record that is already terminal is never rewritten.
func (r *MongoQueueRepository) MarkProcessed(ctx context.Context, id string, success bool, result string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"processed":    true,
			"processed_at": now,
			"success":      success,
			"result":       result,
		},
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID, "processed": false}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID}); err == nil && count == 0 {
			return ErrRecordNotFound
		}
		return ErrAlreadyProcessed
	}
	return nil
}

// DeleteProcessedBefore removes terminal records created before cutoff, capped
// at limit per call. Unprocessed records are never deleted regardless of age.
func (r *MongoQueueRepository) DeleteProcessedBefore(ctx context.Context, cutoff time.Time, limit int64) (int64, error) {
	filter := bson.M{
		"processed":  true,
		"created_at": bson.M{"$lt": cutoff},
	}
	findOptions := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, len(docs))
	for i, doc := range docs {
		ids[i] = doc.ID
	}

	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
