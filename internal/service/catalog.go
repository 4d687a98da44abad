package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/models"
)

// Taxonomy names a free-text grouping field on questions.
type Taxonomy struct {
	Field string
	Label string
}

var (
	Categories = Taxonomy{Field: "category", Label: "Category"}
	Topics     = Taxonomy{Field: "topic", Label: "Topic"}
)

type UpdateResult struct {
	Message string `json:"message"`
	Updated int64  `json:"updated"`
}

type ReorderResult struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type LockResult struct {
	Message   string `json:"message"`
	Increment int    `json:"increment"`
	Locked    bool   `json:"locked"`
}

type IncrementQuestion struct {
	ID        int                   `json:"id"`
	Question  string                `json:"question"`
	Category  string                `json:"category,omitempty"`
	Topic     string                `json:"topic,omitempty"`
	Status    models.QuestionStatus `json:"status"`
	Increment *int                  `json:"increment,omitempty"`
	Order     *int                  `json:"order,omitempty"`
}

// CatalogService manages categories, topics and increments across the bank.
type CatalogService struct {
	questions QuestionStore
	publisher event.Publisher
}

func NewCatalogService(questions QuestionStore, publisher event.Publisher) *CatalogService {
	return &CatalogService{questions: questions, publisher: publisher}
}

func (s *CatalogService) publish(ids []int, fields ...string) {
	publishQuestions(s.publisher, event.EventTypeQuestionUpdated, ids, fields)
}

func (s *CatalogService) Names(ctx context.Context, t Taxonomy) ([]models.NameCount, error) {
	counts, err := s.questions.FieldCounts(ctx, t.Field)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []models.NameCount{}
	}
	return counts, nil
}

func (s *CatalogService) Rename(ctx context.Context, t Taxonomy, req models.RenameRequest) (*UpdateResult, error) {
	if err := invalid(invalidData, check(req)); err != nil {
		return nil, err
	}

	updated, err := s.questions.RenameField(ctx, t.Field, req.OldName, req.NewName)
	if err != nil {
		return nil, err
	}
	if updated > 0 {
		s.publish(nil, t.Field)
	}
	return &UpdateResult{Message: t.Label + " renamed", Updated: updated}, nil
}

// ErrInvalidTaxonomyName is the 400 message for an empty path name.
func ErrInvalidTaxonomyName(t Taxonomy) error {
	return &ValidationError{Message: "Invalid " + t.Field + " name"}
}

func (s *CatalogService) Remove(ctx context.Context, t Taxonomy, name string) (*UpdateResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidTaxonomyName(t)
	}
	updated, err := s.questions.UnsetField(ctx, t.Field, name)
	if err != nil {
		return nil, err
	}
	if updated > 0 {
		s.publish(nil, t.Field)
	}
	return &UpdateResult{Message: t.Label + " removed", Updated: updated}, nil
}

// ParseIncrement reads an increment path segment.
func ParseIncrement(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || !models.ValidIncrement(n) {
		return 0, ErrInvalidIncrement
	}
	return n, nil
}

func (s *CatalogService) IncrementQuestions(ctx context.Context, increment int) ([]IncrementQuestion, error) {
	if !models.ValidIncrement(increment) {
		return nil, ErrInvalidIncrement
	}
	questions, err := s.questions.FindByIncrement(ctx, increment)
	if err != nil {
		return nil, err
	}
	out := make([]IncrementQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, IncrementQuestion{
			ID:        q.ID,
			Question:  q.Question,
			Category:  q.Category,
			Topic:     q.Topic,
			Status:    q.Status,
			Increment: q.Increment,
			Order:     q.Order,
		})
	}
	return out, nil
}

func validateQuestionIDs(req models.QuestionIDsRequest) error {
	return invalid(invalidData, check(req))
}

func (s *CatalogService) Assign(ctx context.Context, increment int, req models.QuestionIDsRequest) (*UpdateResult, error) {
	if !models.ValidIncrement(increment) {
		return nil, ErrInvalidIncrement
	}
	if err := validateQuestionIDs(req); err != nil {
		return nil, err
	}
	updated, err := s.questions.AssignIncrement(ctx, req.QuestionIDs, increment)
	if err != nil {
		return nil, err
	}
	if updated > 0 {
		s.publish(req.QuestionIDs, "increment")
	}
	return &UpdateResult{Message: "Questions assigned", Updated: updated}, nil
}

// Reorder moves the listed questions into the increment and stores their
// position in the list as order.
func (s *CatalogService) Reorder(ctx context.Context, increment int, req models.QuestionIDsRequest) (*ReorderResult, error) {
	if !models.ValidIncrement(increment) {
		return nil, ErrInvalidIncrement
	}
	if err := validateQuestionIDs(req); err != nil {
		return nil, err
	}
	if err := s.questions.ReorderIncrement(ctx, req.QuestionIDs, increment); err != nil {
		return nil, err
	}
	if len(req.QuestionIDs) > 0 {
		s.publish(req.QuestionIDs, "increment", "order")
	}
	return &ReorderResult{Message: "Questions reordered", Count: len(req.QuestionIDs)}, nil
}

// Lock acknowledges the request; lock state is not stored.
func (s *CatalogService) Lock(increment int, req models.LockRequest) (*LockResult, error) {
	if !models.ValidIncrement(increment) {
		return nil, ErrInvalidIncrement
	}
	message := "Increment unlocked"
	if req.Locked {
		message = "Increment locked"
	}
	return &LockResult{Message: message, Increment: increment, Locked: req.Locked}, nil
}

func (s *CatalogService) IncrementStats(ctx context.Context) ([]models.IncrementStat, error) {
	stats, err := s.questions.IncrementStats(ctx)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []models.IncrementStat{}
	}
	return stats, nil
}
