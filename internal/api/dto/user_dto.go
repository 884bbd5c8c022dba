package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/store-management/internal/domain"
	apperrors "github.com/spec-kit/store-management/pkg/util"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// Validate checks required fields and formats.
func (r RegisterRequest) Validate() error {
	details := map[string]any{}
	if n := len(r.Username); n < 3 || n > 50 {
		details["username"] = "must be between 3 and 50 characters"
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		details["email"] = "must be a valid email address"
	}
	if len(r.Password) < 6 {
		details["password"] = "must be at least 6 characters"
	}
	if r.Role != "" && !domain.Role(r.Role).Valid() {
		details["role"] = "must be one of ADMIN, MANAGER, EMPLOYEE"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration request", details)
	}
	return nil
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse standard response for successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// UserResponse is the outward user representation. The password hash never
// appears here.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      string    `json:"role"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserToResponse maps a domain user outward.
func UserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
		Enabled:   user.Enabled,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// UsersToResponse maps a slice of domain users outward.
func UsersToResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, UserToResponse(&users[i]))
	}
	return out
}

// UpdateRoleRequest payload for role changes.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}
