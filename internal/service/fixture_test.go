package service

import (
	"context"
	"testing"
	"time"

	"github.com/ntwari02/proviQuiz/internal/config"
	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

type fixture struct {
	db        *memory.DB
	cache     *memory.Cache
	jwt       *JWTService
	auth      *AuthService
	questions *QuestionService
	exams     *ExamService
	users     *UserService
	catalog   *CatalogService
	configs   *ExamConfigService
	analytics *AnalyticsService
	settings  *SettingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	cache := memory.NewCache()
	publisher := event.NewDisabledPublisher()
	jwtSvc := NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "proviquiz", ExpiresIn: time.Hour})
	examCfg := config.ExamConfig{
		DefaultLimit:     20,
		MaxLimit:         100,
		PassThreshold:    0.6,
		IdempotencyTTL:   time.Hour,
		ResetTokenTTL:    15 * time.Minute,
		SettingsCacheTTL: time.Minute,
	}

	return &fixture{
		db:        db,
		cache:     cache,
		jwt:       jwtSvc,
		auth:      NewAuthService(db.Users(), jwtSvc, publisher, examCfg.ResetTokenTTL),
		questions: NewQuestionService(db.Questions(), nil, publisher, 0),
		exams:     NewExamService(db.Questions(), db.ExamSessions(), cache, publisher, examCfg),
		users:     NewUserService(db.Users(), db.ExamSessions(), publisher),
		catalog:   NewCatalogService(db.Questions(), publisher),
		configs:   NewExamConfigService(db.ExamConfigs(), db.Questions()),
		analytics: NewAnalyticsService(db.Analytics(), db.Users(), db.Questions(), db.ExamSessions(), db.ExamConfigs(), examCfg.PassThreshold),
		settings:  NewSettingsService(db.Settings(), cache, examCfg.SettingsCacheTTL),
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func questionRequest(text, correct string) *models.QuestionRequest {
	return &models.QuestionRequest{
		Question: strPtr(text),
		Options:  &models.Options{A: "Stop", B: "Yield", C: "Go", D: "Turn"},
		Correct:  strPtr(correct),
	}
}

// seedQuestion stores a question directly, bypassing validation.
func (f *fixture) seedQuestion(t *testing.T, q *models.Question) *models.Question {
	t.Helper()
	if q.Status == "" {
		q.Status = models.StatusPublished
	}
	if q.Question == "" {
		q.Question = "Seeded question"
	}
	created, err := f.db.Questions().Insert(context.Background(), q)
	require.NoError(t, err)
	return created
}

func (f *fixture) seedUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	user, err := f.db.Users().Create(context.Background(), &models.User{
		Email:        email,
		PasswordHash: &hash,
		Role:         role,
		Active:       true,
	})
	require.NoError(t, err)
	return user
}
