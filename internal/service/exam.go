package service

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"time"

	"github.com/ntwari02/proviQuiz/internal/config"
	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/grading"
	"github.com/ntwari02/proviQuiz/internal/metrics"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	submitKeyPrefix = "proviquiz-exam-submit-"
	mineLimit       = 50
)

var ErrSubmitActive = errors.New("Submission already in progress")

type StartResult struct {
	Questions      []*models.Question `json:"questions"`
	Limit          int                `json:"limit"`
	TotalAvailable int                `json:"totalAvailable"`
}

type SubmitResult struct {
	ExamID          string                `json:"examId"`
	Score           int                   `json:"score"`
	TotalQuestions  int                   `json:"totalQuestions"`
	DurationSeconds int                   `json:"durationSeconds"`
	Answers         []models.GradedAnswer `json:"answers"`
	Passed          bool                  `json:"passed"`
}

type ExamStats struct {
	ExamCount    int     `json:"examCount"`
	AverageScore float64 `json:"averageScore"`
}

type ExamService struct {
	questions    QuestionStore
	exams        ExamSessionStore
	cache        Cache
	publisher    event.Publisher
	threshold    float64
	defaultLimit int
	maxLimit     int
	submitTTL    time.Duration
	shuffle      func(n int, swap func(i, j int))
}

func NewExamService(questions QuestionStore, exams ExamSessionStore, cache Cache, publisher event.Publisher, cfg config.ExamConfig) *ExamService {
	threshold := cfg.PassThreshold
	if threshold <= 0 {
		threshold = grading.DefaultPassThreshold
	}
	return &ExamService{
		questions:    questions,
		exams:        exams,
		cache:        cache,
		publisher:    publisher,
		threshold:    threshold,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
		submitTTL:    cfg.IdempotencyTTL,
		shuffle:      rand.Shuffle,
	}
}

func (s *ExamService) PassThreshold() float64 {
	return s.threshold
}

// Start draws a shuffled batch from the filtered pool. TotalAvailable is the
// pool size before slicing.
func (s *ExamService) Start(ctx context.Context, query models.StartExamQuery) (*StartResult, error) {
	filter := query.ImageFilter
	if filter == "" {
		filter = models.ImageFilterAll
	}
	if !filter.Valid() {
		return nil, ErrInvalidImageFilter
	}
	limit := ClampLimit(query.Limit, s.defaultLimit, s.maxLimit)

	all, err := s.questions.FindPool(ctx, query.RangeStart, query.RangeEnd)
	if err != nil {
		return nil, err
	}
	pool := make([]*models.Question, 0, len(all))
	for _, q := range all {
		if filter.Match(q.ImageURL) {
			pool = append(pool, q)
		}
	}

	s.shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	picked := pool
	if len(picked) > limit {
		picked = picked[:limit]
	}
	return &StartResult{
		Questions:      picked,
		Limit:          limit,
		TotalAvailable: len(pool),
	}, nil
}

func validateSubmit(req *models.SubmitExamRequest) error {
	if req.Mode == "" {
		req.Mode = string(models.ModeTimed)
	}
	return invalid(invalidData, check(req))
}

func submitKey(user bson.ObjectID, clientSessionID string) string {
	return submitKeyPrefix + user.Hex() + "-" + clientSessionID
}

func (s *ExamService) result(exam *models.ExamSession) *SubmitResult {
	answers := exam.Answers
	if answers == nil {
		answers = []models.GradedAnswer{}
	}
	return &SubmitResult{
		ExamID:          exam.ID.Hex(),
		Score:           exam.Score,
		TotalQuestions:  exam.TotalQuestions,
		DurationSeconds: exam.DurationSeconds,
		Answers:         answers,
		Passed:          grading.Passed(exam.Score, exam.TotalQuestions, s.threshold),
	}
}

// Submit grades the answers against the stored questions and records the
// session. When clientSessionID is set, a repeated submit returns the session
// recorded first and created is false.
func (s *ExamService) Submit(ctx context.Context, user bson.ObjectID, req *models.SubmitExamRequest) (res *SubmitResult, created bool, err error) {
	if err := validateSubmit(req); err != nil {
		return nil, false, err
	}

	key := req.ClientSessionID
	if key != "" {
		existing, err := s.exams.FindByClientSessionID(ctx, user, key)
		if err == nil {
			return s.result(existing), false, nil
		}
		if !repository.IsNotFound(err) {
			return nil, false, err
		}
		if s.cache != nil {
			reserved, err := s.cache.Reserve(ctx, submitKey(user, key), "1", s.submitTTL)
			if err != nil {
				log.Printf("Warning: idempotency reservation failed: %v", err)
			} else if !reserved {
				return nil, false, ErrSubmitActive
			}
		}
	}

	ids := make([]int, 0, len(req.Answers))
	answers := make([]grading.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		ids = append(ids, *a.QuestionID)
		answers = append(answers, grading.Answer{QuestionID: *a.QuestionID, Selected: a.Selected})
	}
	questions, err := s.questions.FindByIDs(ctx, ids)
	if err != nil {
		s.release(ctx, user, key)
		return nil, false, err
	}
	correct := make(map[int]string, len(questions))
	for _, q := range questions {
		correct[q.ID] = q.Correct
	}
	graded := grading.Grade(answers, correct)

	exam := &models.ExamSession{
		User:            &user,
		Mode:            models.ExamMode(req.Mode),
		StartedAt:       req.StartedAt.Time,
		CompletedAt:     req.CompletedAt.Time,
		DurationSeconds: grading.Duration(req.StartedAt.Time, req.CompletedAt.Time),
		Score:           graded.Score,
		TotalQuestions:  graded.Total,
		Answers:         make([]models.GradedAnswer, 0, len(graded.Answers)),
		ClientSessionID: key,
	}
	for _, a := range graded.Answers {
		exam.Answers = append(exam.Answers, models.GradedAnswer{
			QuestionID: a.QuestionID,
			Selected:   a.Selected,
			Correct:    a.Correct,
			IsCorrect:  a.IsCorrect,
		})
	}

	saved, err := s.exams.Create(ctx, exam)
	if errors.Is(err, repository.ErrDuplicateKey) && key != "" {
		existing, findErr := s.exams.FindByClientSessionID(ctx, user, key)
		if findErr != nil {
			return nil, false, findErr
		}
		return s.result(existing), false, nil
	}
	if err != nil {
		s.release(ctx, user, key)
		return nil, false, err
	}

	res = s.result(saved)
	metrics.RecordExam(string(saved.Mode), res.Passed, saved.Score, saved.TotalQuestions)
	if s.publisher != nil {
		evt := event.NewExamSubmittedEvent(saved.ID.Hex(), user.Hex(), string(saved.Mode),
			saved.Score, saved.TotalQuestions, saved.DurationSeconds, res.Passed)
		if err := s.publisher.PublishExamEvent(evt); err != nil {
			log.Printf("Warning: Failed to publish exam event: %v", err)
		}
	}
	return res, true, nil
}

func (s *ExamService) release(ctx context.Context, user bson.ObjectID, key string) {
	if key == "" || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, submitKey(user, key)); err != nil {
		log.Printf("Warning: failed to release submit key: %v", err)
	}
}

// Mine lists the caller's latest sessions, newest first.
func (s *ExamService) Mine(ctx context.Context, user bson.ObjectID) ([]models.ExamSummary, error) {
	exams, err := s.exams.ListByUser(ctx, user, 0, mineLimit)
	if err != nil {
		return nil, err
	}
	out := make([]models.ExamSummary, 0, len(exams))
	for _, e := range exams {
		out = append(out, e.Summary())
	}
	return out, nil
}

func (s *ExamService) Stats(ctx context.Context, user bson.ObjectID) (*ExamStats, error) {
	exams, err := s.exams.ListByUser(ctx, user, 0, 0)
	if err != nil {
		return nil, err
	}
	stats := &ExamStats{ExamCount: len(exams)}
	if len(exams) == 0 {
		return stats, nil
	}
	var sum float64
	for _, e := range exams {
		sum += e.Accuracy()
	}
	stats.AverageScore = sum / float64(len(exams))
	return stats, nil
}
