package handlers

import (
	"errors"
	"log"

	"github.com/ntwari02/proviQuiz/internal/middleware"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

type Services struct {
	JWT         *service.JWTService
	Auth        *service.AuthService
	Google      *service.GoogleService
	Questions   *service.QuestionService
	Exams       *service.ExamService
	Users       *service.UserService
	Catalog     *service.CatalogService
	ExamConfigs *service.ExamConfigService
	Analytics   *service.AnalyticsService
	Settings    *service.SettingsService
}

// Guards holds the shared auth checks. Admin must run after Auth.
type Guards struct {
	Auth  fiber.Handler
	Admin fiber.Handler
}

// RegisterRoutes mounts /health and the whole /api surface. authLimiter may be nil.
func RegisterRoutes(app *fiber.App, svc *Services, authLimiter fiber.Handler) {
	app.Get("/health", HealthCheck)

	guards := Guards{
		Auth:  middleware.Auth(svc.JWT),
		Admin: middleware.RequireRole(svc.Users, middleware.AdminRoles...),
	}

	api := app.Group("/api")
	api.Use(middleware.Maintenance(svc.Settings, svc.JWT, svc.Users))
	admin := api.Group("/admin", guards.Auth, guards.Admin)

	NewAuthHandler(svc.Auth, svc.Google, svc.JWT).RegisterRoutes(api, authLimiter)
	NewQuestionHandler(svc.Questions).RegisterRoutes(api, guards)
	NewExamHandler(svc.Exams).RegisterRoutes(api, guards)
	NewUserHandler(svc.Users, svc.Analytics).RegisterRoutes(api, guards)

	NewAdminHandler(svc.Users, svc.Analytics).RegisterRoutes(admin)
	NewCatalogHandler(svc.Catalog).RegisterRoutes(admin)
	NewExamConfigHandler(svc.ExamConfigs).RegisterRoutes(admin)
	NewSettingsHandler(svc.Settings).RegisterRoutes(api, admin)
}

func HealthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

// ErrorHandler renders errors that escaped a handler, including recovered panics.
func ErrorHandler(c fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return message(c, fe.Code, fe.Message)
	}
	log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return message(c, fiber.StatusInternalServerError, "Server error")
}
