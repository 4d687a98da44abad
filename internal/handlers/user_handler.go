package handlers

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/middleware"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

// UserHandler serves the signed-in student's own views.
type UserHandler struct {
	userService      *service.UserService
	analyticsService *service.AnalyticsService
}

func NewUserHandler(userService *service.UserService, analyticsService *service.AnalyticsService) *UserHandler {
	return &UserHandler{
		userService:      userService,
		analyticsService: analyticsService,
	}
}

func (h *UserHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	router.Get("/users/profile", h.Profile, guards.Auth)

	analyticsGroup := router.Group("/analytics", guards.Auth)
	analyticsGroup.Get("/performance", h.Performance)
	analyticsGroup.Get("/weak-areas", h.WeakAreas)
}

func (h *UserHandler) Profile(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.userService.Profile(ctx, middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(profile)
}

func (h *UserHandler) Performance(c fiber.Ctx) error {
	user, err := service.ParseUserID(middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	performance, err := h.analyticsService.Performance(ctx, user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(performance)
}

func (h *UserHandler) WeakAreas(c fiber.Ctx) error {
	user, err := service.ParseUserID(middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	weak, err := h.analyticsService.WeakAreas(ctx, user, queryInt(c, "limit"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(weak)
}
