package repositories

import (
	"errors"

	"github.com/gympulse/gym-notify/backend/internal/models"
	"gorm.io/gorm"
)

// AdminRepository defines the interface for admin account operations
type AdminRepository interface {
	GetAdminByUID(uid string) (*models.Admin, error)
	GetGymByID(gymID string) (*models.Gym, error)
}

// PostgresAdminRepository implements AdminRepository for PostgreSQL
type PostgresAdminRepository struct {
	db *gorm.DB
}

// NewPostgresAdminRepository creates a new PostgresAdminRepository
func NewPostgresAdminRepository(db *gorm.DB) *PostgresAdminRepository {
	return &PostgresAdminRepository{db: db}
}

// GetAdminByUID retrieves an admin account by its Firebase UID
func (r *PostgresAdminRepository) GetAdminByUID(uid string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.Where("uid = ?", uid).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &admin, nil
}

// GetGymByID retrieves a gym by its external gym id
func (r *PostgresAdminRepository) GetGymByID(gymID string) (*models.Gym, error) {
	var gym models.Gym
	if err := r.db.Where("gym_id = ?", gymID).First(&gym).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &gym, nil
}
