package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-management/internal/domain"
	apperrors "github.com/spec-kit/store-management/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller, derived from validated
// token claims. Never persisted; lives for one request.
type Principal struct {
	Username string
	Role     domain.Role
}

// Middleware validates bearer tokens and attaches principals. Token
// validation is pure computation, so the gate never touches storage on the
// request hot path.
type Middleware struct {
	tokens      *TokenManager
	publicPaths []string
}

// NewMiddleware constructs the authentication gate. publicPaths are path
// prefixes that bypass authentication entirely.
func NewMiddleware(tokens *TokenManager, publicPaths []string) *Middleware {
	return &Middleware{tokens: tokens, publicPaths: publicPaths}
}

// Handle enforces authentication for all non-public routes. Every failure
// mode returns the same generic message so callers cannot distinguish a
// missing token from a tampered or expired one.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	if m.isPublic(c.Path()) {
		return c.Next()
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("authentication required")
	}

	claims, err := m.tokens.Validate(parts[1], time.Now())
	if err != nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	c.Locals(principalKey, &Principal{
		Username: claims.Subject,
		Role:     claims.Role,
	})
	return c.Next()
}

func (m *Middleware) isPublic(path string) bool {
	for _, prefix := range m.publicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// PrincipalFromContext retrieves the authenticated principal.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
