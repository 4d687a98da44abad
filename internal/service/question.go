package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"
	"github.com/ntwari02/proviQuiz/internal/storage"
)

const (
	DefaultRandomLimit = 20
	MaxRandomLimit     = 50
	DefaultBankLimit   = 50
	DefaultListLimit   = 100
	MaxListLimit       = 200
)

type QuestionPage struct {
	Items []*models.Question `json:"items"`
	Total int64              `json:"total"`
}

type QuestionService struct {
	questions QuestionStore
	images    ImageStore
	publisher event.Publisher
	maxImage  int64
}

// NewQuestionService wires the bank. images may be nil when uploads are disabled.
func NewQuestionService(questions QuestionStore, images ImageStore, publisher event.Publisher, maxImageBytes int64) *QuestionService {
	return &QuestionService{
		questions: questions,
		images:    images,
		publisher: publisher,
		maxImage:  maxImageBytes,
	}
}

// ClampLimit applies a default to missing or non-positive limits and caps the rest.
func ClampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		limit = def
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func publishQuestions(publisher event.Publisher, eventType string, ids []int, fields []string) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishQuestionEvent(event.NewQuestionEvent(eventType, ids, fields)); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", eventType, err)
	}
}

func (s *QuestionService) publish(eventType string, ids []int, fields []string) {
	publishQuestions(s.publisher, eventType, ids, fields)
}

func (s *QuestionService) Random(ctx context.Context, limit int) ([]*models.Question, error) {
	questions, err := s.questions.Sample(ctx, ClampLimit(limit, DefaultRandomLimit, MaxRandomLimit))
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []*models.Question{}
	}
	return questions, nil
}

// List pages through the bank. defaultLimit differs between the bank browser
// and the plain listing.
func (s *QuestionService) List(ctx context.Context, query models.QuestionListQuery, defaultLimit int) (*QuestionPage, error) {
	query.Limit = ClampLimit(query.Limit, defaultLimit, MaxListLimit)
	if query.Skip < 0 {
		query.Skip = 0
	}
	query.Search = strings.TrimSpace(query.Search)

	items, total, err := s.questions.List(ctx, query)
	if err != nil {
		return nil, err
	}
	return &QuestionPage{Items: items, Total: total}, nil
}

func (s *QuestionService) Get(ctx context.Context, id int) (*models.Question, error) {
	q, err := s.questions.FindByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, ErrQuestionNotFound
	}
	return q, err
}

// normalizeImage maps null, empty and blank values to no image.
func normalizeImage(v models.NullableString) *string {
	if !v.Set || !v.Valid || strings.TrimSpace(v.Value) == "" {
		return nil
	}
	url := strings.TrimSpace(v.Value)
	return &url
}

// buildQuestion maps a validated create body onto a new question.
func buildQuestion(req *models.QuestionRequest) *models.Question {
	q := &models.Question{
		Difficulty: models.DifficultyMedium,
		Status:     models.StatusDraft,
		Question:   *req.Question,
		Options:    *req.Options,
		Correct:    *req.Correct,
	}
	if req.ID != nil {
		q.ID = *req.ID
	}
	if req.Explanation != nil {
		q.Explanation = *req.Explanation
	}
	if req.Category != nil {
		q.Category = *req.Category
	}
	if req.Topic != nil {
		q.Topic = *req.Topic
	}
	if req.Source != nil {
		q.Source = *req.Source
	}
	if req.Difficulty != nil {
		q.Difficulty = models.Difficulty(*req.Difficulty)
	}
	if req.Status != nil {
		q.Status = models.QuestionStatus(*req.Status)
	}
	if req.Increment != nil {
		inc := *req.Increment
		q.Increment = &inc
	}
	q.ImageURL = normalizeImage(req.ImageURL)
	return q
}

func (s *QuestionService) Create(ctx context.Context, req *models.QuestionRequest) (*models.Question, error) {
	if err := invalid(invalidData, check(req)); err != nil {
		return nil, err
	}
	q := buildQuestion(req)

	if q.ID == 0 {
		maxID, err := s.questions.MaxID(ctx)
		if err != nil {
			return nil, err
		}
		q.ID = maxID + 1
	}

	created, err := s.questions.Insert(ctx, q)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, ErrDuplicateQuestion
	}
	if err != nil {
		return nil, err
	}
	s.publish(event.EventTypeQuestionCreated, []int{created.ID}, nil)
	return created, nil
}

// BulkCreate validates every item before inserting any. Items without an id get
// sequential ids after the current maximum.
func (s *QuestionService) BulkCreate(ctx context.Context, reqs []*models.QuestionRequest) (int, error) {
	var list []Issue
	built := make([]*models.Question, 0, len(reqs))
	for i, req := range reqs {
		if req == nil {
			list = append(list, Issue{Path: []any{i}, Message: "Expected object, received null"})
			continue
		}
		if itemIssues := check(req, i); len(itemIssues) > 0 {
			list = append(list, itemIssues...)
			continue
		}
		built = append(built, buildQuestion(req))
	}
	if err := invalid("Invalid item in bulk import", list); err != nil {
		return 0, err
	}
	if len(built) == 0 {
		return 0, nil
	}

	maxID, err := s.questions.MaxID(ctx)
	if err != nil {
		return 0, err
	}
	next := maxID + 1
	ids := make([]int, 0, len(built))
	for _, q := range built {
		if q.ID == 0 {
			q.ID = next
			next++
		}
		ids = append(ids, q.ID)
	}

	inserted, err := s.questions.InsertMany(ctx, built)
	if errors.Is(err, repository.ErrDuplicateKey) {
		return 0, ErrDuplicateQuestion
	}
	if err != nil {
		return 0, err
	}
	s.publish(event.EventTypeQuestionsBulkImported, ids, nil)
	return inserted, nil
}

// Update applies only the fields present in the body.
func (s *QuestionService) Update(ctx context.Context, id int, req *models.QuestionRequest) (*models.Question, error) {
	if err := invalid(invalidData, checkPresent(req)); err != nil {
		return nil, err
	}

	patch := &models.QuestionPatch{}
	var fields []string
	if req.Question != nil {
		patch.Question = req.Question
		fields = append(fields, "question")
	}
	if req.Options != nil {
		patch.Options = req.Options
		fields = append(fields, "options")
	}
	if req.Correct != nil {
		patch.Correct = req.Correct
		fields = append(fields, "correct")
	}
	if req.Explanation != nil {
		patch.Explanation = req.Explanation
		fields = append(fields, "explanation")
	}
	if req.Category != nil {
		patch.Category = req.Category
		fields = append(fields, "category")
	}
	if req.Topic != nil {
		patch.Topic = req.Topic
		fields = append(fields, "topic")
	}
	if req.Source != nil {
		patch.Source = req.Source
		fields = append(fields, "source")
	}
	if req.Difficulty != nil {
		d := models.Difficulty(*req.Difficulty)
		patch.Difficulty = &d
		fields = append(fields, "difficulty")
	}
	if req.Increment != nil {
		patch.Increment = req.Increment
		fields = append(fields, "increment")
	}
	if req.Status != nil {
		st := models.QuestionStatus(*req.Status)
		patch.Status = &st
		fields = append(fields, "status")
	}
	if req.ImageURL.Set {
		if img := normalizeImage(req.ImageURL); img == nil {
			patch.UnsetImage = true
		} else {
			patch.ImageURL = img
		}
		fields = append(fields, "imageUrl")
	}

	updated, err := s.questions.Update(ctx, id, patch)
	if repository.IsNotFound(err) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	s.publish(event.EventTypeQuestionUpdated, []int{id}, fields)
	return updated, nil
}

func (s *QuestionService) Delete(ctx context.Context, id int) error {
	err := s.questions.SoftDelete(ctx, id)
	if repository.IsNotFound(err) {
		return ErrQuestionNotFound
	}
	if err != nil {
		return err
	}
	s.publish(event.EventTypeQuestionDeleted, []int{id}, nil)
	return nil
}

// UploadImage stores the file and points the question at it. The previous
// image is removed from the bucket once the question has been updated.
func (s *QuestionService) UploadImage(ctx context.Context, id int, contentType string, reader io.Reader, size int64) (*models.Question, error) {
	if s.images == nil {
		return nil, ErrStorageDisabled
	}
	if s.maxImage > 0 && size > s.maxImage {
		return nil, ErrImageTooLarge
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, id, contentType, reader, size)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		return nil, ErrUnsupportedImage
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.questions.Update(ctx, id, &models.QuestionPatch{ImageURL: &url})
	if repository.IsNotFound(err) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}

	if current.ImageURL != nil && *current.ImageURL != url {
		if err := s.images.Remove(ctx, *current.ImageURL); err != nil {
			log.Printf("Warning: failed to remove old image for question %d: %v", id, err)
		}
	}
	s.publish(event.EventTypeQuestionUpdated, []int{id}, []string{"imageUrl"})
	return updated, nil
}
