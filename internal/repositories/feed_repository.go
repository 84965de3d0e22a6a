package repositories

import (
	"time"

	"github.com/gympulse/gym-notify/backend/internal/models"
	"gorm.io/gorm"
)

// FeedRepository defines the interface for the admin notification feed
type FeedRepository interface {
	CreateEntry(entry *models.AdminNotification) error
	GetStats(adminUID string) (*models.NotificationStats, error)
}

// PostgresFeedRepository implements FeedRepository for PostgreSQL
type PostgresFeedRepository struct {
	db *gorm.DB
}

// NewPostgresFeedRepository creates a new PostgresFeedRepository
func NewPostgresFeedRepository(db *gorm.DB) *PostgresFeedRepository {
	return &PostgresFeedRepository{db: db}
}

// CreateEntry appends a notification to an admin's feed
func (r *PostgresFeedRepository) CreateEntry(entry *models.AdminNotification) error {
	return r.db.Create(entry).Error
}

// GetStats returns the total, unread and today counters for an admin's feed
func (r *PostgresFeedRepository) GetStats(adminUID string) (*models.NotificationStats, error) {
	var stats models.NotificationStats

	if err := r.db.Model(&models.AdminNotification{}).
		Where("admin_uid = ?", adminUID).
		Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&models.AdminNotification{}).
		Where("admin_uid = ? AND is_read = false", adminUID).
		Count(&stats.Unread).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := r.db.Model(&models.AdminNotification{}).
		Where("admin_uid = ? AND created_at >= ?", adminUID, todayStart).
		Count(&stats.Today).Error; err != nil {
		return nil, err
	}

	stats.LastUpdated = now
	return &stats, nil
}
