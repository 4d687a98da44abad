package middleware

import (
	"slices"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/gofiber/fiber/v3"
)

const (
	// Roles
	RoleStudent    = models.RoleStudent
	RoleAdmin      = models.RoleAdmin
	RoleSuperAdmin = models.RoleSuperAdmin

	userIDKey = "userId"
	actorKey  = "actor"
)

// AdminRoles may use the /api/admin surface.
var AdminRoles = []models.Role{RoleAdmin, RoleSuperAdmin}

// UserID returns the caller id set by Auth or OptionalAuth, or "".
func UserID(c fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

// Actor returns the user loaded by RequireRole.
func Actor(c fiber.Ctx) *models.User {
	user, _ := c.Locals(actorKey).(*models.User)
	return user
}

func isAdmin(role models.Role) bool {
	return slices.Contains(AdminRoles, role)
}
