package dispatch

import (
	"context"
	"errors"

	"github.com/gympulse/gym-notify/backend/internal/repositories"
	"go.uber.org/zap"
)

// TokenSource is a single token registry lookup strategy. Implementations
// return an empty slice for unknown identities; an error means the registry
// itself failed.
type TokenSource interface {
	Name() string
	Lookup(ctx context.Context, uid string) ([]string, error)
}

// Resolver fans a recipient identity out over a prioritized list of token
// sources and unions the results. Adding a registry means adding a source;
// the consumer never changes.
type Resolver struct {
	sources []TokenSource
	logger  *zap.Logger
}

// NewResolver creates a Resolver over the given sources, queried in order.
func NewResolver(logger *zap.Logger, sources ...TokenSource) *Resolver {
	return &Resolver{sources: sources, logger: logger}
}

// Resolve returns the deduplicated set of device tokens known for uid.
// It never fails: a broken registry contributes nothing and is logged, so a
// partial outage cannot block delivery through the registries that work. An
// empty result is a valid outcome meaning the identity is undeliverable.
func (r *Resolver) Resolve(ctx context.Context, uid string) []string {
	seen := make(map[string]struct{})
	var tokens []string

	for _, source := range r.sources {
		found, err := source.Lookup(ctx, uid)
		if err != nil {
			r.logger.Warn("token lookup failed",
				zap.String("source", source.Name()),
				zap.String("target_uid", uid),
				zap.Error(err))
			continue
		}
		for _, token := range found {
			if token == "" {
				continue
			}
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// AdminTokenSource reads the two admin token slots from PostgreSQL.
type AdminTokenSource struct {
	admins repositories.AdminRepository
}

// NewAdminTokenSource creates a new AdminTokenSource
func NewAdminTokenSource(admins repositories.AdminRepository) *AdminTokenSource {
	return &AdminTokenSource{admins: admins}
}

func (s *AdminTokenSource) Name() string { return "admins" }

func (s *AdminTokenSource) Lookup(_ context.Context, uid string) ([]string, error) {
	admin, err := s.admins.GetAdminByUID(uid)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var tokens []string
	if admin.WebFCMToken != "" {
		tokens = append(tokens, admin.WebFCMToken)
	}
	if admin.FCMToken != "" {
		tokens = append(tokens, admin.FCMToken)
	}
	return tokens, nil
}

// UserTokenSource reads the mobile fallback token slot from MongoDB.
type UserTokenSource struct {
	users repositories.UserRepository
}

// NewUserTokenSource creates a new UserTokenSource
func NewUserTokenSource(users repositories.UserRepository) *UserTokenSource {
	return &UserTokenSource{users: users}
}

func (s *UserTokenSource) Name() string { return "users" }

func (s *UserTokenSource) Lookup(ctx context.Context, uid string) ([]string, error) {
	user, err := s.users.GetUserByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if user.FCMToken == "" {
		return nil, nil
	}
	return []string{user.FCMToken}, nil
}
