package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/ntwari02/proviQuiz/internal/middleware"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

const idempotencyHeader = "Idempotency-Key"

type ExamHandler struct {
	examService *service.ExamService
}

func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

func (h *ExamHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	examGroup := router.Group("/exams")

	examGroup.Get("/start", h.Start)
	examGroup.Post("/start", h.Start)
	examGroup.Post("/submit", h.Submit, guards.Auth)
	examGroup.Get("/mine", h.Mine, guards.Auth)
	examGroup.Get("/stats", h.Stats, guards.Auth)
}

func (h *ExamHandler) Start(c fiber.Ctx) error {
	query := models.StartExamQuery{
		Limit:       queryInt(c, "limit"),
		RangeStart:  queryIntPtr(c, "rangeStart"),
		RangeEnd:    queryIntPtr(c, "rangeEnd"),
		ImageFilter: models.ImageFilter(c.Query("imageFilter")),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.examService.Start(ctx, query)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// Submit answers 201 for a new session and 200 when a retry with the same
// client session id matched an earlier one.
func (h *ExamHandler) Submit(c fiber.Ctx) error {
	var req models.SubmitExamRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}
	if req.ClientSessionID == "" {
		// c.Get aliases the request buffer, which fasthttp reuses.
		req.ClientSessionID = strings.Clone(c.Get(idempotencyHeader))
	}
	user, err := service.ParseUserID(middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, created, err := h.examService.Submit(ctx, user, &req)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

func (h *ExamHandler) Mine(c fiber.Ctx) error {
	user, err := service.ParseUserID(middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exams, err := h.examService.Mine(ctx, user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(exams)
}

func (h *ExamHandler) Stats(c fiber.Ctx) error {
	user, err := service.ParseUserID(middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := h.examService.Stats(ctx, user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}
