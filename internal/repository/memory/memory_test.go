package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func intPtr(n int) *int { return &n }

func seedQuestions(t *testing.T, repo *QuestionRepository, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := repo.Insert(context.Background(), &models.Question{
			ID:       i,
			Question: "Question number",
			Correct:  "a",
			Category: "Signs",
			Status:   models.StatusDraft,
		})
		require.NoError(t, err)
	}
}

func TestQuestionRepositoryInsertDuplicate(t *testing.T) {
	repo := NewDB().Questions()
	seedQuestions(t, repo, 2)

	_, err := repo.Insert(context.Background(), &models.Question{ID: 2})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	_, err = repo.InsertMany(context.Background(), []*models.Question{{ID: 3}, {ID: 3}})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	maxID, err := repo.MaxID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, maxID)
}

func TestQuestionRepositorySoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewDB().Questions()
	seedQuestions(t, repo, 3)

	require.NoError(t, repo.SoftDelete(ctx, 2))
	assert.True(t, repository.IsNotFound(repo.SoftDelete(ctx, 2)))

	_, err := repo.FindByID(ctx, 2)
	assert.True(t, repository.IsNotFound(err))

	items, total, err := repo.List(ctx, models.QuestionListQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 3, items[1].ID)

	stored, ok := repo.Find(2)
	require.True(t, ok)
	assert.True(t, stored.IsDeleted)

	all, err := repo.FindByIDs(ctx, []int{2})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestQuestionRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewDB().Questions()
	seedQuestions(t, repo, 5)
	_, err := repo.Update(ctx, 4, &models.QuestionPatch{Question: strp("Who yields at a roundabout?"), Increment: intPtr(2)})
	require.NoError(t, err)

	testCases := []struct {
		name  string
		query models.QuestionListQuery
		ids   []int
		total int64
	}{
		{"skip and limit", models.QuestionListQuery{Skip: 1, Limit: 2}, []int{2, 3}, 5},
		{"search is case insensitive", models.QuestionListQuery{Search: "ROUNDABOUT"}, []int{4}, 1},
		{"increment", models.QuestionListQuery{Increment: intPtr(2)}, []int{4}, 1},
		{"category", models.QuestionListQuery{Category: "Other"}, []int{}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := repo.List(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.total, total)
			ids := []int{}
			for _, q := range items {
				ids = append(ids, q.ID)
			}
			assert.Equal(t, tc.ids, ids)
		})
	}
}

func strp(s string) *string { return &s }

func TestQuestionRepositoryRenameAndCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewDB().Questions()
	seedQuestions(t, repo, 3)

	updated, err := repo.RenameField(ctx, "category", "Signs", "Road Signs")
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	counts, err := repo.FieldCounts(ctx, "category")
	require.NoError(t, err)
	assert.Equal(t, []models.NameCount{{Name: "Road Signs", QuestionCount: 3}}, counts)

	removed, err := repo.UnsetField(ctx, "category", "Road Signs")
	require.NoError(t, err)
	assert.EqualValues(t, 3, removed)

	counts, err = repo.FieldCounts(ctx, "category")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestQuestionRepositoryReorder(t *testing.T) {
	ctx := context.Background()
	repo := NewDB().Questions()
	seedQuestions(t, repo, 4)

	_, err := repo.AssignIncrement(ctx, []int{1, 2}, 1)
	require.NoError(t, err)
	require.NoError(t, repo.ReorderIncrement(ctx, []int{3, 1}, 1))

	items, err := repo.FindByIncrement(ctx, 1)
	require.NoError(t, err)
	ids := []int{}
	for _, q := range items {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []int{2, 3, 1}, ids)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDB().Users()

	hash := "hash"
	u, err := repo.Create(ctx, &models.User{Email: "a@example.com", PasswordHash: &hash, Role: models.RoleStudent, Active: true})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	token := "0123456789abcdef"
	expires := time.Now().Add(time.Minute)
	_, err = repo.Update(ctx, u.ID, &models.UserPatch{ResetToken: &token, ResetTokenExpires: &expires})
	require.NoError(t, err)

	found, err := repo.FindByResetToken(ctx, token, time.Now())
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindByResetToken(ctx, token, time.Now().Add(2*time.Minute))
	assert.True(t, repository.IsNotFound(err))

	_, err = repo.Update(ctx, bson.NewObjectID(), &models.UserPatch{})
	assert.True(t, repository.IsNotFound(err))
}

func TestExamSessionRepositoryClientSessionID(t *testing.T) {
	ctx := context.Background()
	repo := NewDB().ExamSessions()
	user := bson.NewObjectID()

	_, err := repo.Create(ctx, &models.ExamSession{User: &user, ClientSessionID: "abc"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.ExamSession{User: &user, ClientSessionID: "abc"})
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)

	found, err := repo.FindByClientSessionID(ctx, user, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", found.ClientSessionID)
}

func TestAnalyticsPassStatsAndMostMissed(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	seedQuestions(t, db.Questions(), 2)
	user := bson.NewObjectID()

	exams := []*models.ExamSession{
		{User: &user, Score: 6, TotalQuestions: 10, Answers: []models.GradedAnswer{{QuestionID: 1}, {QuestionID: 2, IsCorrect: true}}},
		{User: &user, Score: 5, TotalQuestions: 10, Answers: []models.GradedAnswer{{QuestionID: 1}}},
		{Score: 0, TotalQuestions: 0},
	}
	for _, e := range exams {
		_, err := db.ExamSessions().Create(ctx, e)
		require.NoError(t, err)
	}

	stats, err := db.Analytics().PassStats(ctx, 0.6)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalExams)
	assert.EqualValues(t, 1, stats.Passed)

	missed, err := db.Analytics().MostMissed(ctx, &user, 10)
	require.NoError(t, err)
	require.Len(t, missed, 1)
	assert.Equal(t, 1, missed[0].QuestionID)
	assert.Equal(t, 2, missed[0].MissedCount)
	assert.Equal(t, "Signs", missed[0].Category)

	byCategory, err := db.Analytics().AccuracyBy(ctx, user, "category", 0, 0, false)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, 3, byCategory[0].Total)
	assert.Equal(t, 1, byCategory[0].Correct)
}

func TestCacheReserveAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	cache := NewCache()
	cache.now = func() time.Time { return now }

	ok, err := cache.Reserve(ctx, "k", "v", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.Reserve(ctx, "k", "other", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	val, err := cache.GetString(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	now = now.Add(2 * time.Minute)
	_, err = cache.GetString(ctx, "k")
	assert.ErrorIs(t, err, repository.ErrCacheMiss)
}
