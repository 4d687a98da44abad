package handlers

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/middleware"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ExamConfigHandler struct {
	examConfigService *service.ExamConfigService
}

func NewExamConfigHandler(examConfigService *service.ExamConfigService) *ExamConfigHandler {
	return &ExamConfigHandler{examConfigService: examConfigService}
}

func (h *ExamConfigHandler) RegisterRoutes(admin fiber.Router) {
	configGroup := admin.Group("/exam-configs")

	configGroup.Get("/", h.List)
	configGroup.Get("/:id", h.Get)
	configGroup.Get("/:id/preview", h.Preview)
	configGroup.Post("/", h.Create)
	configGroup.Put("/:id", h.Update)
	configGroup.Delete("/:id", h.Delete)
}

func (h *ExamConfigHandler) List(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	configs, err := h.examConfigService.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(configs)
}

func (h *ExamConfigHandler) Get(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := h.examConfigService.Get(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cfg)
}

func (h *ExamConfigHandler) Create(c fiber.Ctx) error {
	var req models.ExamConfigRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}
	var createdBy *bson.ObjectID
	if actor := middleware.Actor(c); actor != nil {
		createdBy = &actor.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := h.examConfigService.Create(ctx, &req, createdBy)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cfg)
}

func (h *ExamConfigHandler) Update(c fiber.Ctx) error {
	var req models.ExamConfigRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg, err := h.examConfigService.Update(ctx, c.Params("id"), &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(cfg)
}

func (h *ExamConfigHandler) Delete(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.examConfigService.Delete(ctx, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return message(c, fiber.StatusOK, "Exam config deleted")
}

func (h *ExamConfigHandler) Preview(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	preview, err := h.examConfigService.Preview(ctx, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(preview)
}
