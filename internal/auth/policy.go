package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/store-management/internal/domain"
	apperrors "github.com/spec-kit/store-management/pkg/util"
)

// Rule maps one protected surface to the roles allowed to reach it.
// Method "" matches any method; PathPrefix matches the path and everything
// below it.
type Rule struct {
	Method       string
	PathPrefix   string
	AllowedRoles []domain.Role
}

// Policy is an ordered rule table consulted after authentication succeeds.
// First matching rule wins; a request matching no rule is denied. Roles are
// enumerated explicitly per rule, there is no implicit hierarchy.
type Policy struct {
	rules []Rule
}

// NewPolicy builds an immutable policy from the given rules. Loaded once at
// startup; safe for unsynchronized concurrent reads.
func NewPolicy(rules []Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultRules is the authorization matrix for the store API. Read access to
// products is open to every role, mutation is restricted to managers and
// admins, and destructive or administrative actions are admin only.
func DefaultRules() []Rule {
	all := []domain.Role{domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee}
	managers := []domain.Role{domain.RoleAdmin, domain.RoleManager}
	admins := []domain.Role{domain.RoleAdmin}

	return []Rule{
		{Method: fiber.MethodGet, PathPrefix: "/api/products", AllowedRoles: all},
		{Method: fiber.MethodPost, PathPrefix: "/api/products", AllowedRoles: managers},
		{Method: fiber.MethodPut, PathPrefix: "/api/products", AllowedRoles: managers},
		{Method: fiber.MethodDelete, PathPrefix: "/api/products", AllowedRoles: admins},
		{Method: "", PathPrefix: "/api/users", AllowedRoles: admins},
	}
}

// Authorize reports whether a principal with the given role may perform
// method on path.
func (p *Policy) Authorize(role domain.Role, method, path string) bool {
	for _, rule := range p.rules {
		if rule.Method != "" && rule.Method != method {
			continue
		}
		if !strings.HasPrefix(path, rule.PathPrefix) {
			continue
		}
		for _, allowed := range rule.AllowedRoles {
			if allowed == role {
				return true
			}
		}
		return false
	}
	return false
}

// Enforce returns a handler that consults the policy for the authenticated
// principal. Runs after the authentication gate.
func (p *Policy) Enforce(c *fiber.Ctx) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !p.Authorize(principal.Role, c.Method(), c.Path()) {
		return apperrors.NewForbidden("insufficient role")
	}
	return c.Next()
}
