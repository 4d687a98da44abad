package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ntwari02/proviQuiz/internal/config"
	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository/memory"
	"github.com/ntwari02/proviQuiz/internal/service"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	app *fiber.App
	db  *memory.DB
	svc *Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := memory.NewDB()
	cache := memory.NewCache()
	publisher := event.NewDisabledPublisher()
	examCfg := config.ExamConfig{
		DefaultLimit:     20,
		MaxLimit:         100,
		PassThreshold:    0.6,
		IdempotencyTTL:   time.Hour,
		ResetTokenTTL:    15 * time.Minute,
		SettingsCacheTTL: time.Minute,
	}
	jwtSvc := service.NewJWTService(config.JWTConfig{Secret: "test-secret", Issuer: "proviquiz", ExpiresIn: time.Hour})

	svc := &Services{
		JWT:         jwtSvc,
		Auth:        service.NewAuthService(db.Users(), jwtSvc, publisher, examCfg.ResetTokenTTL),
		Google:      service.NewGoogleService(config.GoogleConfig{}, "http://app.test", db.Users(), cache, jwtSvc, publisher),
		Questions:   service.NewQuestionService(db.Questions(), nil, publisher, 0),
		Exams:       service.NewExamService(db.Questions(), db.ExamSessions(), cache, publisher, examCfg),
		Users:       service.NewUserService(db.Users(), db.ExamSessions(), publisher),
		Catalog:     service.NewCatalogService(db.Questions(), publisher),
		ExamConfigs: service.NewExamConfigService(db.ExamConfigs(), db.Questions()),
		Analytics:   service.NewAnalyticsService(db.Analytics(), db.Users(), db.Questions(), db.ExamSessions(), db.ExamConfigs(), examCfg.PassThreshold),
		Settings:    service.NewSettingsService(db.Settings(), cache, examCfg.SettingsCacheTTL),
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, svc, nil)
	return &testServer{app: app, db: db, svc: svc}
}

type response struct {
	status int
	header http.Header
	raw    []byte
}

func (r *response) object(t *testing.T) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(r.raw, &out), string(r.raw))
	return out
}

func (r *response) array(t *testing.T) []any {
	t.Helper()
	var out []any
	require.NoError(t, json.Unmarshal(r.raw, &out), string(r.raw))
	return out
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) *response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return &response{status: resp.StatusCode, header: resp.Header, raw: raw}
}

// signUp registers a user and returns its token; role upgrades go straight to the store.
func (s *testServer) signUp(t *testing.T, email string, role models.Role) string {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret123",
		"name":     "Test User",
	})
	require.Equal(t, fiber.StatusCreated, resp.status, string(resp.raw))
	body := resp.object(t)

	if role != models.RoleStudent {
		user := body["user"].(map[string]any)
		oid, err := service.ParseUserID(user["id"].(string))
		require.NoError(t, err)
		_, err = s.db.Users().Update(context.Background(), oid, &models.UserPatch{Role: &role})
		require.NoError(t, err)
	}
	return body["token"].(string)
}

func (s *testServer) seedQuestion(t *testing.T, q *models.Question) {
	t.Helper()
	if q.Question == "" {
		q.Question = "Seeded question"
	}
	if q.Status == "" {
		q.Status = models.StatusPublished
	}
	_, err := s.db.Questions().Insert(context.Background(), q)
	require.NoError(t, err)
}

func questionBody(text string) map[string]any {
	return map[string]any{
		"question": text,
		"options":  map[string]string{"a": "Stop", "b": "Yield", "c": "Go", "d": "Turn"},
		"correct":  "a",
		"category": "Signs",
	}
}
