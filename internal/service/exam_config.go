package service

import (
	"context"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PreviewQuestion struct {
	ID        int    `json:"id"`
	Question  string `json:"question"`
	Increment *int   `json:"increment,omitempty"`
	Category  string `json:"category,omitempty"`
}

type ConfigPreview struct {
	Config           *models.ExamConfig `json:"config"`
	TotalAvailable   int64              `json:"totalAvailable"`
	PreviewQuestions int                `json:"previewQuestions"`
	Questions        []PreviewQuestion  `json:"questions"`
}

type ExamConfigService struct {
	configs   ExamConfigStore
	questions QuestionStore
}

func NewExamConfigService(configs ExamConfigStore, questions QuestionStore) *ExamConfigService {
	return &ExamConfigService{configs: configs, questions: questions}
}

func parseConfigID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrExamConfigNotFound
	}
	return oid, nil
}

// validateConfig checks the fields present in req. With partial false the
// required fields must all be set.
func validateConfig(req *models.ExamConfigRequest, partial bool) error {
	if partial {
		return invalid(invalidData, checkPresent(req))
	}
	return invalid(invalidData, check(req))
}

func applyConfig(cfg *models.ExamConfig, req *models.ExamConfigRequest) {
	if req.Name != nil {
		cfg.Name = *req.Name
	}
	if req.Description != nil {
		cfg.Description = *req.Description
	}
	if req.Increments != nil {
		cfg.Increments = append([]int(nil), req.Increments...)
	}
	if req.QuestionCount != nil {
		cfg.QuestionCount = *req.QuestionCount
	}
	if req.TimeLimitMinutes != nil {
		limit := *req.TimeLimitMinutes
		cfg.TimeLimitMinutes = &limit
	}
	if req.PassMarkPercent != nil {
		cfg.PassMarkPercent = *req.PassMarkPercent
	}
	if req.RandomizeQuestions != nil {
		cfg.RandomizeQuestions = *req.RandomizeQuestions
	}
	if req.RandomizeAnswers != nil {
		cfg.RandomizeAnswers = *req.RandomizeAnswers
	}
	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
}

func (s *ExamConfigService) List(ctx context.Context) ([]*models.ExamConfig, error) {
	configs, err := s.configs.List(ctx)
	if err != nil {
		return nil, err
	}
	if configs == nil {
		configs = []*models.ExamConfig{}
	}
	return configs, nil
}

func (s *ExamConfigService) Get(ctx context.Context, id string) (*models.ExamConfig, error) {
	oid, err := parseConfigID(id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.FindByID(ctx, oid)
	if repository.IsNotFound(err) {
		return nil, ErrExamConfigNotFound
	}
	return cfg, err
}

func (s *ExamConfigService) Create(ctx context.Context, req *models.ExamConfigRequest, createdBy *bson.ObjectID) (*models.ExamConfig, error) {
	if err := validateConfig(req, false); err != nil {
		return nil, err
	}
	cfg := &models.ExamConfig{
		RandomizeQuestions: true,
		Enabled:            true,
		CreatedBy:          createdBy,
	}
	applyConfig(cfg, req)
	return s.configs.Create(ctx, cfg)
}

// Update applies a partial body to an existing config.
func (s *ExamConfigService) Update(ctx context.Context, id string, req *models.ExamConfigRequest) (*models.ExamConfig, error) {
	if err := validateConfig(req, true); err != nil {
		return nil, err
	}
	cfg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyConfig(cfg, req)
	updated, err := s.configs.Replace(ctx, cfg)
	if repository.IsNotFound(err) {
		return nil, ErrExamConfigNotFound
	}
	return updated, err
}

func (s *ExamConfigService) Delete(ctx context.Context, id string) error {
	oid, err := parseConfigID(id)
	if err != nil {
		return err
	}
	err = s.configs.Delete(ctx, oid)
	if repository.IsNotFound(err) {
		return ErrExamConfigNotFound
	}
	return err
}

// Preview lists the published questions the config would draw from.
func (s *ExamConfigService) Preview(ctx context.Context, id string) (*ConfigPreview, error) {
	cfg, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := s.questions.CountPublished(ctx, cfg.Increments)
	if err != nil {
		return nil, err
	}
	limit := cfg.QuestionCount
	if int64(limit) > total {
		limit = int(total)
	}

	preview := &ConfigPreview{
		Config:         cfg,
		TotalAvailable: total,
		Questions:      []PreviewQuestion{},
	}
	if limit > 0 {
		questions, err := s.questions.FindPublished(ctx, cfg.Increments, limit)
		if err != nil {
			return nil, err
		}
		for _, q := range questions {
			preview.Questions = append(preview.Questions, PreviewQuestion{
				ID:        q.ID,
				Question:  q.Question,
				Increment: q.Increment,
				Category:  q.Category,
			})
		}
	}
	preview.PreviewQuestions = len(preview.Questions)
	return preview, nil
}
