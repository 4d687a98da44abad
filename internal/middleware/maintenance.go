package middleware

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/gofiber/fiber/v3"
)

const defaultMaintenanceMessage = "The system is under maintenance. Please try again later."

type SettingsReader interface {
	Get(ctx context.Context) (*models.SystemSettings, error)
}

// Reachable while maintenance mode is on.
var maintenanceExempt = []string{"/api/auth", "/api/settings/public", "/api/admin"}

// Maintenance answers 503 to API calls while maintenance mode is on. Admins
// with a valid token pass through. A settings read failure lets the request through.
func Maintenance(settings SettingsReader, jwt TokenParser, users ActorLoader) fiber.Handler {
	return func(c fiber.Ctx) error {
		// Routing ignores case, so the gate does too.
		path := strings.ToLower(c.Path())
		if !strings.HasPrefix(path, "/api/") {
			return c.Next()
		}
		for _, prefix := range maintenanceExempt {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		current, err := settings.Get(ctx)
		if err != nil {
			log.Printf("Warning: maintenance check skipped: %v", err)
			return c.Next()
		}
		if !current.MaintenanceMode {
			return c.Next()
		}

		if token, ok := bearerToken(c); ok {
			if claims, err := jwt.ParseToken(token); err == nil {
				if user, err := users.ActorFor(ctx, claims.UserID); err == nil && isAdmin(user.Role) {
					return c.Next()
				}
			}
		}

		message := current.MaintenanceMessage
		if message == "" {
			message = defaultMaintenanceMessage
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": message,
		})
	}
}
