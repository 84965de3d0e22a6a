package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// AdminLocator resolves the administrator identity responsible for a gym.
// Producers call this before enqueueing a notification for a gym-scoped event.
//
// Lookup order: gyms table (PostgreSQL), then the legacy gym_info collection
// (MongoDB), then the gym id itself as a last resort — some early deployments
// used the admin UID as the gym id.
type AdminLocator struct {
	admins AdminRepository
	users  UserRepository
	logger *zap.Logger
}

// NewAdminLocator creates a new AdminLocator
func NewAdminLocator(admins AdminRepository, users UserRepository, logger *zap.Logger) *AdminLocator {
	return &AdminLocator{admins: admins, users: users, logger: logger}
}

// FindGymAdmin returns the admin UID for a gym. Lookup failures degrade to
// the next registry; the result is never empty.
func (l *AdminLocator) FindGymAdmin(ctx context.Context, gymID string) string {
	gym, err := l.admins.GetGymByID(gymID)
	if err == nil {
		if gym.AdminUID != "" {
			return gym.AdminUID
		}
		if gym.OwnerUID != "" {
			return gym.OwnerUID
		}
	} else if !errors.Is(err, ErrRecordNotFound) {
		l.logger.Warn("gym lookup failed", zap.String("gym_id", gymID), zap.Error(err))
	}

	info, err := l.users.GetGymInfoByID(ctx, gymID)
	if err == nil {
		if info.AdminUID != "" {
			return info.AdminUID
		}
		if info.OwnerUID != "" {
			return info.OwnerUID
		}
	} else if !errors.Is(err, ErrRecordNotFound) {
		l.logger.Warn("gym_info lookup failed", zap.String("gym_id", gymID), zap.Error(err))
	}

	return gymID
}
