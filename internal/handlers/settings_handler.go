package handlers

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router, admin fiber.Router) {
	router.Get("/settings/public", h.Public)

	admin.Get("/settings", h.Get)
	admin.Put("/settings", h.Update)
}

func (h *SettingsHandler) Public(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	settings, err := h.settingsService.Public(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) Get(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) Update(c fiber.Ctx) error {
	var req models.SettingsRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	settings, err := h.settingsService.Update(ctx, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(settings)
}
