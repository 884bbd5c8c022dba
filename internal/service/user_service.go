package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/store-management/internal/domain"
	"github.com/spec-kit/store-management/internal/events"
	"github.com/spec-kit/store-management/internal/repository"
	apperrors "github.com/spec-kit/store-management/pkg/util"
)

// UserService exposes admin-side account administration.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// FindByID looks up a user by numeric ID.
func (s *UserService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

// FindByUsername looks up a user by username.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

// FindByEmail looks up a user by email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapUserErr(err)
	}
	return user, nil
}

// ListByRole returns all users holding the given role.
func (s *UserService) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListEnabled returns all enabled users.
func (s *UserService) ListEnabled(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListEnabled(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// UpdateRole changes a user's role.
func (s *UserService) UpdateRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}

	oldRole := user.Role
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserErr(err)
	}

	s.logger.Info("user role updated",
		zap.String("username", user.Username),
		zap.String("old_role", string(oldRole)),
		zap.String("new_role", string(role)))
	s.publishUser(ctx, events.EventUserRoleChanged, user)

	return user, nil
}

// SetEnabled enables or disables a user account.
func (s *UserService) SetEnabled(ctx context.Context, id int64, enabled bool) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapUserErr(err)
	}

	user.Enabled = enabled
	if err := s.users.Update(ctx, user); err != nil {
		return nil, mapUserErr(err)
	}

	eventType := events.EventUserEnabled
	if !enabled {
		eventType = events.EventUserDisabled
	}
	s.logger.Info("user enabled flag updated",
		zap.String("username", user.Username),
		zap.Bool("enabled", enabled))
	s.publishUser(ctx, eventType, user)

	return user, nil
}

func (s *UserService) publishUser(ctx context.Context, eventType events.EventType, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     user.Username,
		Timestamp: time.Now(),
		Payload: events.UserPayload{
			Username: user.Username,
			Role:     string(user.Role),
		},
	})
}

func mapUserErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("user", nil)
	}
	return apperrors.MapError(err)
}
