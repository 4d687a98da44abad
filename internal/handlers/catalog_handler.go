package handlers

import (
	"context"
	"net/url"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
)

// CatalogHandler serves categories, topics and increments.
type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(admin fiber.Router) {
	for path, taxonomy := range map[string]service.Taxonomy{
		"/categories": service.Categories,
		"/topics":     service.Topics,
	} {
		admin.Get(path, h.names(taxonomy))
		admin.Patch(path+"/rename", h.rename(taxonomy))
		admin.Delete(path+"/:name", h.remove(taxonomy))
	}

	incrementGroup := admin.Group("/increments")
	incrementGroup.Get("/stats", h.IncrementStats)
	incrementGroup.Get("/:increment/questions", h.IncrementQuestions)
	incrementGroup.Patch("/:increment/assign", h.Assign)
	incrementGroup.Patch("/:increment/reorder", h.Reorder)
	incrementGroup.Patch("/:increment/lock", h.Lock)
}

func (h *CatalogHandler) names(t service.Taxonomy) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		names, err := h.catalogService.Names(ctx, t)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(names)
	}
}

func (h *CatalogHandler) rename(t service.Taxonomy) fiber.Handler {
	return func(c fiber.Ctx) error {
		var req models.RenameRequest
		if err := bindBody(c, &req); err != nil {
			return writeError(c, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		result, err := h.catalogService.Rename(ctx, t, req)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(result)
	}
}

func (h *CatalogHandler) remove(t service.Taxonomy) fiber.Handler {
	return func(c fiber.Ctx) error {
		name, err := url.PathUnescape(c.Params("name"))
		if err != nil {
			return writeError(c, service.ErrInvalidTaxonomyName(t))
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		result, err := h.catalogService.Remove(ctx, t, name)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(result)
	}
}

func (h *CatalogHandler) IncrementQuestions(c fiber.Ctx) error {
	increment, err := service.ParseIncrement(c.Params("increment"))
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	questions, err := h.catalogService.IncrementQuestions(ctx, increment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(questions)
}

func (h *CatalogHandler) Assign(c fiber.Ctx) error {
	increment, err := service.ParseIncrement(c.Params("increment"))
	if err != nil {
		return writeError(c, err)
	}
	var req models.QuestionIDsRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.catalogService.Assign(ctx, increment, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

func (h *CatalogHandler) Reorder(c fiber.Ctx) error {
	increment, err := service.ParseIncrement(c.Params("increment"))
	if err != nil {
		return writeError(c, err)
	}
	var req models.QuestionIDsRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.catalogService.Reorder(ctx, increment, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

func (h *CatalogHandler) Lock(c fiber.Ctx) error {
	increment, err := service.ParseIncrement(c.Params("increment"))
	if err != nil {
		return writeError(c, err)
	}
	var req models.LockRequest
	if err := bindBody(c, &req); err != nil {
		return writeError(c, err)
	}

	result, err := h.catalogService.Lock(increment, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

func (h *CatalogHandler) IncrementStats(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := h.catalogService.IncrementStats(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(stats)
}
