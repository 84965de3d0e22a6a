package repositories

import (
	"context"

	"github.com/gympulse/gym-notify/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for mobile user account operations
type UserRepository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	GetGymInfoByID(ctx context.Context, gymID string) (*models.GymInfo, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	users   *mongo.Collection
	gymInfo *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		users:   db.Collection("users"),
		gymInfo: db.Collection("gym_info"),
	}
}

// GetUserByUID retrieves a mobile user account by its Firebase UID
func (r *MongoUserRepository) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"uid": uid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetGymInfoByID retrieves the legacy gym lookup document for a gym id
func (r *MongoUserRepository) GetGymInfoByID(ctx context.Context, gymID string) (*models.GymInfo, error) {
	var info models.GymInfo
	err := r.gymInfo.FindOne(ctx, bson.M{"gym_id": gymID}).Decode(&info)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &info, nil
}
