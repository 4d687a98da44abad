package handlers

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/middleware"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

// AdminHandler serves the user console and the dashboards under /api/admin.
type AdminHandler struct {
	userService      *service.UserService
	analyticsService *service.AnalyticsService
}

func NewAdminHandler(userService *service.UserService, analyticsService *service.AnalyticsService) *AdminHandler {
	return &AdminHandler{
		userService:      userService,
		analyticsService: analyticsService,
	}
}

// RegisterRoutes expects admin to already be guarded by Auth and RequireRole.
func (h *AdminHandler) RegisterRoutes(admin fiber.Router) {
	admin.Get("/overview", h.Overview)
	admin.Get("/analytics/overview", h.AnalyticsOverview)

	admin.Get("/users", h.ListUsers)
	admin.Post("/users", h.CreateUser)
	admin.Patch("/users/:id/role", h.UpdateRole)
	admin.Patch("/users/:id/activate", h.SetActive)
	admin.Patch("/users/:id/ban", h.SetBanned)
	admin.Post("/users/:id/reset-password", h.ResetPassword)
	admin.Get("/users/:id/progress", h.Progress)
	admin.Get("/users/:id/exams", h.UserExams)

	admin.Get("/exams", h.ListExams)
}

func (h *AdminHandler) Overview(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	overview, err := h.analyticsService.AdminOverview(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(overview)
}

func (h *AdminHandler) AnalyticsOverview(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	overview, err := h.analyticsService.Overview(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(overview)
}

func (h *AdminHandler) ListUsers(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, err := h.userService.List(ctx, c.Query("q"), queryInt(c, "skip"), queryInt(c, "limit"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

func (h *AdminHandler) CreateUser(c fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := h.userService.Create(ctx, req, middleware.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *AdminHandler) UpdateRole(c fiber.Ctx) error {
	var req models.UpdateRoleRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := h.userService.UpdateRole(ctx, c.Params("id"), req, middleware.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *AdminHandler) SetActive(c fiber.Ctx) error {
	var req models.ActivateRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := h.userService.SetActive(ctx, c.Params("id"), req, middleware.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *AdminHandler) SetBanned(c fiber.Ctx) error {
	var req models.BanRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := h.userService.SetBanned(ctx, c.Params("id"), req, middleware.Actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *AdminHandler) ResetPassword(c fiber.Ctx) error {
	var req models.AdminResetPasswordRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.userService.ResetPassword(ctx, c.Params("id"), req); err != nil {
		return writeError(c, err)
	}
	return message(c, fiber.StatusOK, "Password reset successfully")
}

func (h *AdminHandler) Progress(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	progress, err := h.userService.Progress(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(progress)
}

func (h *AdminHandler) UserExams(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exams, err := h.userService.Exams(ctx, c.Params("id"), queryInt(c, "skip"), queryInt(c, "limit"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(exams)
}

func (h *AdminHandler) ListExams(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, err := h.userService.AllExams(ctx, queryInt(c, "skip"), queryInt(c, "limit"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}
