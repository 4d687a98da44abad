package service

import (
	"context"
	"testing"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func gradedAnswers(correct ...bool) []models.GradedAnswer {
	out := make([]models.GradedAnswer, 0, len(correct))
	for i, ok := range correct {
		out = append(out, models.GradedAnswer{QuestionID: i + 1, Correct: "a", IsCorrect: ok})
	}
	return out
}

func seedExam(t *testing.T, f *fixture, user bson.ObjectID, createdAt time.Time, answers []models.GradedAnswer) {
	t.Helper()
	score := 0
	for _, a := range answers {
		if a.IsCorrect {
			score++
		}
	}
	_, err := f.db.ExamSessions().Create(context.Background(), &models.ExamSession{
		User:            &user,
		Mode:            models.ModePractice,
		Score:           score,
		TotalQuestions:  len(answers),
		DurationSeconds: 60,
		Answers:         answers,
		CreatedAt:       createdAt,
	})
	require.NoError(t, err)
}

func TestAdminOverview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "learner@example.com", models.RoleStudent)
	f.seedQuestion(t, &models.Question{ID: 1, Correct: "a", Increment: intPtr(1)})
	f.seedQuestion(t, &models.Question{ID: 2, Correct: "a", Increment: intPtr(1), Status: models.StatusDraft})
	_, err := f.configs.Create(ctx, configRequest(), nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	seedExam(t, f, user.ID, now, gradedAnswers(true, true))
	seedExam(t, f, user.ID, now, gradedAnswers(true, false))
	seedExam(t, f, user.ID, now.Add(-30*24*time.Hour), gradedAnswers(false, false))

	overview, err := f.analytics.AdminOverview(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, overview.UserCount)
	assert.EqualValues(t, 2, overview.QuestionCount)
	assert.EqualValues(t, 3, overview.ExamCount)
	assert.EqualValues(t, 1, overview.ActiveExamConfigs)
	assert.InDelta(t, 1.0/3.0, overview.PassRate, 1e-9)
	require.Len(t, overview.Trend, 1)
	assert.Equal(t, 2, overview.Trend[0].Exams)
	assert.InDelta(t, 0.75, overview.Trend[0].Accuracy, 1e-9)
	require.Len(t, overview.QuestionsByIncrement, 1)
	assert.Equal(t, 2, overview.QuestionsByIncrement[0].Total)
	assert.Equal(t, 1, overview.QuestionsByIncrement[0].Published)
}

func TestAnalyticsOverview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := bson.NewObjectID()
	f.seedQuestion(t, &models.Question{ID: 1, Correct: "a", Increment: intPtr(1)})
	f.seedQuestion(t, &models.Question{ID: 2, Correct: "a", Increment: intPtr(2)})

	seedExam(t, f, user, time.Now(), gradedAnswers(true, false))
	seedExam(t, f, user, time.Now(), gradedAnswers(true, false))
	seedExam(t, f, user, time.Now(), gradedAnswers(true, true))

	overview, err := f.analytics.Overview(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, overview.TotalExams)
	assert.EqualValues(t, 1, overview.Passed)
	assert.EqualValues(t, 2, overview.Failed)
	assert.InDelta(t, 4.0/6.0, overview.AverageAccuracy, 1e-9)
	require.Len(t, overview.MostFailedQuestions, 1)
	assert.Equal(t, 2, overview.MostFailedQuestions[0].QuestionID)
	assert.Equal(t, 2, overview.MostFailedQuestions[0].MissedCount)
	require.Len(t, overview.AverageByIncrement, 2)
}

func TestPerformanceAndWeakAreas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := bson.NewObjectID()
	f.seedQuestion(t, &models.Question{ID: 1, Correct: "a", Category: "Signs"})
	f.seedQuestion(t, &models.Question{ID: 2, Correct: "a"})

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i++ {
		seedExam(t, f, user, base.Add(time.Duration(i)*time.Minute), gradedAnswers(i%2 == 0, false))
	}
	seedExam(t, f, bson.NewObjectID(), time.Now(), gradedAnswers(true, true))

	perf, err := f.analytics.Performance(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 12, perf.ExamCount)
	assert.Equal(t, 720, perf.TotalDurationSeconds)
	assert.InDelta(t, 6.0/24.0, perf.AverageAccuracy, 1e-9)
	require.Len(t, perf.Recent, 10)
	assert.True(t, perf.Recent[0].CreatedAt.Before(perf.Recent[9].CreatedAt))

	byName := map[string]models.CategoryAccuracy{}
	for _, c := range perf.ByCategory {
		byName[c.Category] = c
	}
	assert.Equal(t, 12, byName["Signs"].Total)
	assert.Equal(t, 6, byName["Signs"].Correct)
	assert.Equal(t, 12, byName["uncategorized"].Total)
	assert.Equal(t, 0, byName["uncategorized"].Correct)

	weak, err := f.analytics.WeakAreas(ctx, user, 0)
	require.NoError(t, err)
	require.Len(t, weak.WorstCategories, 2)
	assert.Equal(t, "uncategorized", weak.WorstCategories[0].Category)
	require.NotEmpty(t, weak.MostMissed)
	assert.Equal(t, 2, weak.MostMissed[0].QuestionID)
	assert.Equal(t, 12, weak.MostMissed[0].MissedCount)
	assert.Equal(t, "uncategorized", weak.MostMissed[0].Category)
}
