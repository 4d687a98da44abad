package handlers

import (
	"context"
	"log"
	"time"

	"github.com/ntwari02/proviQuiz/internal/metrics"
	"github.com/ntwari02/proviQuiz/internal/middleware"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

type AuthHandler struct {
	authService   *service.AuthService
	googleService *service.GoogleService
	jwtService    *service.JWTService
}

func NewAuthHandler(authService *service.AuthService, googleService *service.GoogleService, jwtService *service.JWTService) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		googleService: googleService,
		jwtService:    jwtService,
	}
}

// RegisterRoutes mounts /auth on router. limiter may be nil.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, limiter fiber.Handler) {
	authGroup := router.Group("/auth")
	if limiter != nil {
		authGroup.Use(limiter)
	}

	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)
	authGroup.Get("/me", h.Me, middleware.Auth(h.jwtService))
	authGroup.Get("/google", h.GoogleLogin)
	authGroup.Get("/google/callback", h.GoogleCallback)
	authGroup.Post("/forgot-password", h.ForgotPassword)
	authGroup.Post("/reset-password", h.ResetPassword)
}

func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req models.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		metrics.RecordAuth("register", err)
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.authService.Register(ctx, req)
	metrics.RecordAuth("register", err)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req models.LoginRequest
	if err := bindBody(c, &req); err != nil {
		metrics.RecordAuth("login", err)
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.authService.Login(ctx, req)
	metrics.RecordAuth("login", err)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

func (h *AuthHandler) Me(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := h.authService.Me(ctx, middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":        user.ID.Hex(),
		"email":     user.Email,
		"name":      user.Name,
		"role":      user.Role,
		"createdAt": user.CreatedAt,
	})
}

func (h *AuthHandler) GoogleLogin(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	authURL, err := h.googleService.AuthURL(ctx, c.Query("redirect"))
	if err != nil {
		return writeError(c, err)
	}
	return c.Redirect().Status(fiber.StatusFound).To(authURL)
}

func (h *AuthHandler) GoogleCallback(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	target, err := h.googleService.Callback(ctx, c.Query("code"), c.Query("state"))
	metrics.RecordAuth("google", err)
	if err != nil {
		log.Printf("Google callback failed: %v", err)
		return writeError(c, err)
	}
	return c.Redirect().Status(fiber.StatusFound).To(target)
}

func (h *AuthHandler) ForgotPassword(c fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.authService.ForgotPassword(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

func (h *AuthHandler) ResetPassword(c fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := h.authService.ResetPassword(ctx, req)
	metrics.RecordAuth("reset", err)
	if err != nil {
		return writeError(c, err)
	}
	return message(c, fiber.StatusOK, "Password updated successfully.")
}
