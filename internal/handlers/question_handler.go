package handlers

import (
	"bytes"
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

type QuestionHandler struct {
	questionService *service.QuestionService
}

func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func (h *QuestionHandler) RegisterRoutes(router fiber.Router, guards Guards) {
	questionGroup := router.Group("/questions")

	questionGroup.Get("/random", h.Random)
	questionGroup.Get("/all", h.Bank)
	questionGroup.Get("/", h.List)
	questionGroup.Get("/:id", h.Get)

	questionGroup.Post("/", h.Create, guards.Auth, guards.Admin)
	questionGroup.Post("/bulk", h.BulkCreate, guards.Auth, guards.Admin)
	questionGroup.Put("/:id", h.Update, guards.Auth, guards.Admin)
	questionGroup.Delete("/:id", h.Delete, guards.Auth, guards.Admin)
	questionGroup.Post("/:id/image", h.UploadImage, guards.Auth, guards.Admin)
}

func listQuery(c fiber.Ctx) models.QuestionListQuery {
	return models.QuestionListQuery{
		Limit:     queryInt(c, "limit"),
		Skip:      queryInt(c, "skip"),
		Search:    c.Query("q"),
		Category:  c.Query("category"),
		Increment: queryIntPtr(c, "increment"),
		Status:    c.Query("status"),
	}
}

func (h *QuestionHandler) Random(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	questions, err := h.questionService.Random(ctx, queryInt(c, "limit"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(questions)
}

// Bank serves the admin question bank view.
func (h *QuestionHandler) Bank(c fiber.Ctx) error {
	return h.list(c, service.DefaultBankLimit)
}

func (h *QuestionHandler) List(c fiber.Ctx) error {
	return h.list(c, service.DefaultListLimit)
}

func (h *QuestionHandler) list(c fiber.Ctx, defaultLimit int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, err := h.questionService.List(ctx, listQuery(c), defaultLimit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(page)
}

func (h *QuestionHandler) Get(c fiber.Ctx) error {
	id, err := paramQuestionID(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	question, err := h.questionService.Get(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(question)
}

func (h *QuestionHandler) Create(c fiber.Ctx) error {
	var req models.QuestionRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := h.questionService.Create(ctx, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *QuestionHandler) BulkCreate(c fiber.Ctx) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 || body[0] != '[' {
		return writeError(c, service.ErrExpectedArray)
	}
	var reqs []*models.QuestionRequest
	if err := bindBody(c, &reqs); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inserted, err := h.questionService.BulkCreate(ctx, reqs)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"inserted": inserted})
}

func (h *QuestionHandler) Update(c fiber.Ctx) error {
	id, err := paramQuestionID(c)
	if err != nil {
		return writeError(c, err)
	}
	var req models.QuestionRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := h.questionService.Update(ctx, id, &req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

func (h *QuestionHandler) Delete(c fiber.Ctx) error {
	id, err := paramQuestionID(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.questionService.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Question deleted (soft)",
		"id":      id,
	})
}

// UploadImage takes a multipart "image" field.
func (h *QuestionHandler) UploadImage(c fiber.Ctx) error {
	id, err := paramQuestionID(c)
	if err != nil {
		return writeError(c, err)
	}
	file, err := c.FormFile("image")
	if err != nil {
		return writeError(c, service.ErrMissingImage)
	}
	reader, err := file.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	updated, err := h.questionService.UploadImage(ctx, id, file.Header.Get(fiber.HeaderContentType), reader, file.Size)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}
