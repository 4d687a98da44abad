package handlers

import (
	"net/http"
	"testing"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedExamBank(t *testing.T, s *testServer) {
	t.Helper()
	img := "https://cdn.example.com/sign.png"
	for i := 1; i <= 40; i++ {
		q := &models.Question{ID: i, Correct: "a"}
		if i%4 == 0 {
			q.ImageURL = &img
		}
		s.seedQuestion(t, q)
	}
}

func submitBody(answers ...map[string]any) map[string]any {
	return map[string]any{
		"mode":        "practice",
		"startedAt":   "2026-03-01T10:00:00Z",
		"completedAt": "2026-03-01T10:04:30Z",
		"answers":     answers,
	}
}

func answer(id int, selected any) map[string]any {
	return map[string]any{"questionId": id, "selected": selected}
}

func TestStartExam(t *testing.T) {
	s := newTestServer(t)
	seedExamBank(t, s)

	testCases := []struct {
		name      string
		method    string
		path      string
		limit     int
		available int
		returned  int
	}{
		{"defaults", http.MethodGet, "/api/exams/start", 20, 40, 20},
		{"images only", http.MethodGet, "/api/exams/start?imageFilter=images", 20, 10, 10},
		{"text in range", http.MethodGet, "/api/exams/start?rangeStart=1&rangeEnd=20&imageFilter=text", 20, 15, 15},
		{"post variant", http.MethodPost, "/api/exams/start?limit=5", 5, 40, 5},
		{"limit is capped", http.MethodGet, "/api/exams/start?limit=1000", 100, 40, 40},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := s.do(t, tc.method, tc.path, "", nil)
			require.Equal(t, fiber.StatusOK, resp.status, string(resp.raw))
			body := resp.object(t)
			assert.EqualValues(t, tc.limit, body["limit"])
			assert.EqualValues(t, tc.available, body["totalAvailable"])
			assert.Len(t, body["questions"].([]any), tc.returned)
		})
	}

	t.Run("bad image filter", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/api/exams/start?imageFilter=video", "", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.status)
		assert.Equal(t, "Invalid imageFilter (must be all, images, or text)", resp.object(t)["message"])
	})
}

func TestSubmitExam(t *testing.T) {
	s := newTestServer(t)
	seedExamBank(t, s)
	token := s.signUp(t, "student@example.com", models.RoleStudent)

	resp := s.do(t, http.MethodPost, "/api/exams/submit", "", submitBody(answer(1, "a")))
	assert.Equal(t, fiber.StatusUnauthorized, resp.status)

	resp = s.do(t, http.MethodPost, "/api/exams/submit", token, map[string]any{"answers": []any{}})
	require.Equal(t, fiber.StatusBadRequest, resp.status)
	assert.Equal(t, "Invalid data", resp.object(t)["message"])

	resp = s.do(t, http.MethodPost, "/api/exams/submit", token, submitBody(
		answer(1, "a"),
		answer(2, "b"),
		answer(3, nil),
		answer(999, "a"),
	))
	require.Equal(t, fiber.StatusCreated, resp.status, string(resp.raw))
	result := resp.object(t)
	assert.EqualValues(t, 2, result["score"])
	assert.EqualValues(t, 4, result["totalQuestions"])
	assert.EqualValues(t, 270, result["durationSeconds"])
	assert.Equal(t, false, result["passed"])
	assert.Len(t, result["answers"].([]any), 4)

	resp = s.do(t, http.MethodGet, "/api/exams/mine", token, nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	mine := resp.array(t)
	require.Len(t, mine, 1)
	assert.Equal(t, result["examId"], mine[0].(map[string]any)["id"])
	assert.Equal(t, "practice", mine[0].(map[string]any)["mode"])

	resp = s.do(t, http.MethodGet, "/api/exams/stats", token, nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	stats := resp.object(t)
	assert.EqualValues(t, 1, stats["examCount"])
	assert.InDelta(t, 0.5, stats["averageScore"], 1e-9)
}

func TestSubmitExamIdempotency(t *testing.T) {
	s := newTestServer(t)
	seedExamBank(t, s)
	token := s.signUp(t, "retry@example.com", models.RoleStudent)
	key := uuid.NewString()

	first := s.do(t, http.MethodPost, "/api/exams/submit", token, submitBody(answer(1, "a")), idempotencyHeader, key)
	require.Equal(t, fiber.StatusCreated, first.status, string(first.raw))

	retry := s.do(t, http.MethodPost, "/api/exams/submit", token, submitBody(answer(1, "b")), idempotencyHeader, key)
	require.Equal(t, fiber.StatusOK, retry.status, string(retry.raw))
	assert.Equal(t, first.object(t)["examId"], retry.object(t)["examId"])
	assert.EqualValues(t, 1, retry.object(t)["score"])

	body := submitBody(answer(1, "a"))
	body["clientSessionId"] = key
	viaBody := s.do(t, http.MethodPost, "/api/exams/submit", token, body)
	require.Equal(t, fiber.StatusOK, viaBody.status)
	assert.Equal(t, first.object(t)["examId"], viaBody.object(t)["examId"])

	fresh := s.do(t, http.MethodPost, "/api/exams/submit", token, submitBody(answer(1, "a")), idempotencyHeader, uuid.NewString())
	require.Equal(t, fiber.StatusCreated, fresh.status)
	assert.NotEqual(t, first.object(t)["examId"], fresh.object(t)["examId"])

	resp := s.do(t, http.MethodGet, "/api/exams/mine", token, nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Len(t, resp.array(t), 2)
}

func TestSubmitExamDistinctKeys(t *testing.T) {
	s := newTestServer(t)
	seedExamBank(t, s)
	token := s.signUp(t, "keys@example.com", models.RoleStudent)

	keys := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}
	ids := make(map[any]bool)
	for _, key := range keys {
		resp := s.do(t, http.MethodPost, "/api/exams/submit", token, submitBody(answer(1, "a")), idempotencyHeader, key)
		require.Equal(t, fiber.StatusCreated, resp.status, string(resp.raw))
		ids[resp.object(t)["examId"]] = true
	}
	assert.Len(t, ids, len(keys))

	retry := s.do(t, http.MethodPost, "/api/exams/submit", token, submitBody(answer(1, "b")), idempotencyHeader, keys[0])
	require.Equal(t, fiber.StatusOK, retry.status, string(retry.raw))
	assert.True(t, ids[retry.object(t)["examId"]])

	resp := s.do(t, http.MethodGet, "/api/exams/mine", token, nil)
	require.Equal(t, fiber.StatusOK, resp.status)
	assert.Len(t, resp.array(t), len(keys))
}
