package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/store-management/internal/auth"
	"github.com/spec-kit/store-management/internal/config"
	"github.com/spec-kit/store-management/internal/domain"
	"github.com/spec-kit/store-management/internal/events"
	"github.com/spec-kit/store-management/internal/repository"
	apperrors "github.com/spec-kit/store-management/pkg/util"
)

// RegisterInput carries a registration candidate.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.Role
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Username  string
	Role      domain.Role
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		dispatcher: dispatcher,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
	}
}

// Register creates a new account. Username and email are checked for
// uniqueness up front; the check is racy against concurrent registrations,
// so a constraint violation from the store is translated to the same
// duplicate error rather than escaping as an internal failure.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	exists, err := s.users.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewDuplicate("username")
	}

	exists, err = s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if exists {
		return nil, apperrors.NewDuplicate("email")
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         role,
		Enabled:      true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if dup, ok := repository.AsDuplicate(err); ok {
			return nil, apperrors.NewDuplicate(dup.Field)
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user registered",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	s.publish(ctx, events.EventUserRegistered, user.Username, events.UserPayload{
		Username: user.Username,
		Role:     string(user.Role),
	})

	return user, nil
}

// Login authenticates by username and password. An unknown username and a
// wrong password produce the identical error value and the identical log
// line, so neither the caller nor the logs can distinguish them.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("login failed", zap.String("username", username))
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, apperrors.MapError(err)
	}

	if !user.Enabled {
		s.logger.Warn("login attempt for disabled account", zap.String("username", username))
		return nil, apperrors.NewAccountDisabled()
	}

	ok, err := auth.ComparePassword(user.PasswordHash, password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !ok {
		s.logger.Warn("login failed", zap.String("username", username))
		return nil, apperrors.NewInvalidCredentials()
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, user.Role, time.Now())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	s.publish(ctx, events.EventUserLogin, user.Username, events.UserPayload{
		Username: user.Username,
		Role:     string(user.Role),
	})

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  user.Username,
		Role:      user.Role,
	}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, actor string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
