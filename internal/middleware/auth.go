package middleware

import (
	"context"
	"errors"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

type TokenParser interface {
	ParseToken(tokenString string) (*service.Claims, error)
}

type ActorLoader interface {
	ActorFor(ctx context.Context, id string) (*models.User, error)
}

func bearerToken(c fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(authHeader[7:])
	return token, token != ""
}

// Auth requires a valid bearer token and stores the caller id.
func Auth(jwt TokenParser) fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Missing auth token",
			})
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}
		c.Locals(userIDKey, claims.UserID)
		return c.Next()
	}
}

// OptionalAuth stores the caller id when a valid token is present and never rejects.
func OptionalAuth(jwt TokenParser) fiber.Handler {
	return func(c fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if claims, err := jwt.ParseToken(token); err == nil {
				c.Locals(userIDKey, claims.UserID)
			}
		}
		return c.Next()
	}
}

// RequireRole loads the caller and checks the role. Must run after Auth.
func RequireRole(users ActorLoader, roles ...models.Role) fiber.Handler {
	return func(c fiber.Ctx) error {
		id := UserID(c)
		if id == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not authenticated",
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := users.ActorFor(ctx, id)
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User not found",
			})
		}
		if err != nil {
			log.Printf("Failed to load user %s for role check: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Server error",
			})
		}
		if !slices.Contains(roles, user.Role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Forbidden",
			})
		}
		c.Locals(actorKey, user)
		return c.Next()
	}
}
