//go:build integration

package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Run with: MONGO_TEST_URI=mongodb://localhost:27017 go test -tags integration ./internal/repository/
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database("proviquiz_test_" + bson.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

type seeded struct {
	student bson.ObjectID
}

func intPtr(n int) *int { return &n }

func answer(id int, correct bool) models.GradedAnswer {
	return models.GradedAnswer{QuestionID: id, Correct: "a", IsCorrect: correct}
}

// seed writes three questions and three exams. The student took two exams,
// the third is anonymous.
func seed(t *testing.T, ctx context.Context, db *mongo.Database) seeded {
	t.Helper()
	questions := NewQuestionRepository(db)
	for _, q := range []*models.Question{
		{ID: 1, Question: "Stop sign shape?", Category: "signs", Topic: "shapes", Increment: intPtr(1), Status: models.StatusPublished},
		{ID: 2, Question: "Right of way?", Category: "rules", Increment: intPtr(2), Status: models.StatusPublished},
		{ID: 3, Question: "Overtaking on a bend?", Increment: intPtr(1), Status: models.StatusDraft},
	} {
		_, err := questions.Insert(ctx, q)
		require.NoError(t, err)
	}

	user, err := NewUserRepository(db).Create(ctx, &models.User{Email: "student@example.com", Name: "Student", Role: models.RoleStudent, Active: true})
	require.NoError(t, err)

	exams := NewExamSessionRepository(db)
	for _, e := range []*models.ExamSession{
		{User: &user.ID, Mode: models.ModeTimed, Score: 1, TotalQuestions: 3, DurationSeconds: 60,
			Answers: []models.GradedAnswer{answer(1, false), answer(2, true), answer(3, false)}},
		{User: &user.ID, Mode: models.ModePractice, Score: 1, TotalQuestions: 2, DurationSeconds: 30,
			Answers: []models.GradedAnswer{answer(1, false), answer(2, true)}},
		{Mode: models.ModeTimed, Score: 0, TotalQuestions: 1, DurationSeconds: 10,
			Answers: []models.GradedAnswer{answer(2, false)}},
	} {
		_, err := exams.Create(ctx, e)
		require.NoError(t, err)
	}
	return seeded{student: user.ID}
}

func TestAnalyticsPipelines(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	data := seed(t, ctx, db)
	repo := NewAnalyticsRepository(db)

	t.Run("most missed joins the question", func(t *testing.T) {
		missed, err := repo.MostMissed(ctx, nil, 10)
		require.NoError(t, err)
		require.Len(t, missed, 3)
		assert.Equal(t, models.MissedQuestion{
			QuestionID:  1,
			MissedCount: 2,
			Question:    "Stop sign shape?",
			Category:    "signs",
			Topic:       "shapes",
			Increment:   intPtr(1),
		}, missed[0])
		assert.Equal(t, []int{2, 3}, []int{missed[1].QuestionID, missed[2].QuestionID})
	})

	t.Run("most missed for one user", func(t *testing.T) {
		missed, err := repo.MostMissed(ctx, &data.student, 1)
		require.NoError(t, err)
		require.Len(t, missed, 1)
		assert.Equal(t, 1, missed[0].QuestionID)
		assert.Equal(t, 2, missed[0].MissedCount)
	})

	t.Run("average by increment", func(t *testing.T) {
		rows, err := repo.AverageByIncrement(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, intPtr(1), rows[0].Increment)
		assert.Equal(t, 3, rows[0].TotalQuestions)
		assert.Zero(t, rows[0].AverageAccuracy)
		assert.Equal(t, intPtr(2), rows[1].Increment)
		assert.Equal(t, 3, rows[1].TotalQuestions)
		assert.InDelta(t, 2.0/3.0, rows[1].AverageAccuracy, 1e-9)
	})

	t.Run("accuracy by category", func(t *testing.T) {
		testCases := []struct {
			name       string
			minTotal   int
			worstFirst bool
			want       []string
		}{
			{"by volume", 0, false, []string{"rules", "signs", "uncategorized"}},
			{"worst first", 2, true, []string{"signs", "rules"}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				rows, err := repo.AccuracyBy(ctx, data.student, "category", tc.minTotal, 0, tc.worstFirst)
				require.NoError(t, err)
				names := make([]string, 0, len(rows))
				for _, row := range rows {
					names = append(names, row.Name)
				}
				assert.Equal(t, tc.want, names)
			})
		}
	})

	t.Run("pass stats", func(t *testing.T) {
		stats, err := repo.PassStats(ctx, 0.5)
		require.NoError(t, err)
		assert.Equal(t, &models.PassStats{TotalExams: 3, Passed: 1, TotalCorrect: 2, TotalQuestions: 6}, stats)
	})

	t.Run("user totals", func(t *testing.T) {
		totals, err := repo.UserTotals(ctx, data.student)
		require.NoError(t, err)
		assert.Equal(t, &models.UserTotals{ExamCount: 2, TotalCorrect: 2, TotalQuestions: 5, TotalDurationSeconds: 90}, totals)

		totals, err = repo.UserTotals(ctx, bson.NewObjectID())
		require.NoError(t, err)
		assert.Equal(t, &models.UserTotals{}, totals)
	})

	t.Run("trend", func(t *testing.T) {
		trend, err := repo.Trend(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		exams := 0
		for _, point := range trend {
			exams += point.Exams
		}
		assert.Equal(t, 3, exams)
	})
}

func TestListWithUsers(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	data := seed(t, ctx, db)

	items, total, err := NewExamSessionRepository(db).ListWithUsers(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 3)

	withUser := 0
	for _, item := range items {
		if item.User == nil {
			continue
		}
		withUser++
		assert.Equal(t, data.student.Hex(), item.User.ID)
		assert.Equal(t, "student@example.com", item.User.Email)
	}
	assert.Equal(t, 2, withUser)
}
