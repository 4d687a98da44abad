package service

import (
	"context"
	"testing"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func configRequest() *models.ExamConfigRequest {
	return &models.ExamConfigRequest{
		Name:            strPtr("Provisional mock"),
		Increments:      []int{1, 2},
		QuestionCount:   intPtr(5),
		PassMarkPercent: intPtr(60),
	}
}

func TestExamConfigCRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	creator := bson.NewObjectID()

	created, err := f.configs.Create(ctx, configRequest(), &creator)
	require.NoError(t, err)
	assert.True(t, created.RandomizeQuestions)
	assert.True(t, created.Enabled)
	assert.False(t, created.RandomizeAnswers)
	require.NotNil(t, created.CreatedBy)
	assert.Equal(t, creator, *created.CreatedBy)

	got, err := f.configs.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Provisional mock", got.Name)

	disabled := false
	updated, err := f.configs.Update(ctx, created.ID.Hex(), &models.ExamConfigRequest{Enabled: &disabled, TimeLimitMinutes: intPtr(30)})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, "Provisional mock", updated.Name)
	require.NotNil(t, updated.TimeLimitMinutes)
	assert.Equal(t, 30, *updated.TimeLimitMinutes)

	list, err := f.configs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.configs.Delete(ctx, created.ID.Hex()))
	assert.ErrorIs(t, f.configs.Delete(ctx, created.ID.Hex()), ErrExamConfigNotFound)

	_, err = f.configs.Get(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrExamConfigNotFound)
}

func TestExamConfigValidation(t *testing.T) {
	f := newFixture(t)

	testCases := []struct {
		name    string
		mutate  func(r *models.ExamConfigRequest)
		partial bool
		paths   [][]any
	}{
		{"empty name", func(r *models.ExamConfigRequest) { r.Name = strPtr("") }, false, [][]any{{"name"}}},
		{"no increments", func(r *models.ExamConfigRequest) { r.Increments = []int{} }, false, [][]any{{"increments"}}},
		{"bad increment", func(r *models.ExamConfigRequest) { r.Increments = []int{1, 5} }, false, [][]any{{"increments", 1}}},
		{"zero count", func(r *models.ExamConfigRequest) { r.QuestionCount = intPtr(0) }, false, [][]any{{"questionCount"}}},
		{"pass mark", func(r *models.ExamConfigRequest) { r.PassMarkPercent = intPtr(101) }, false, [][]any{{"passMarkPercent"}}},
		{"time limit", func(r *models.ExamConfigRequest) { r.TimeLimitMinutes = intPtr(-1) }, false, [][]any{{"timeLimitMinutes"}}},
		{"missing required", func(r *models.ExamConfigRequest) { *r = models.ExamConfigRequest{} }, false,
			[][]any{{"name"}, {"increments"}, {"questionCount"}, {"passMarkPercent"}}},
		{"partial skips missing", func(r *models.ExamConfigRequest) { *r = models.ExamConfigRequest{PassMarkPercent: intPtr(-1)} }, true,
			[][]any{{"passMarkPercent"}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := configRequest()
			tc.mutate(req)
			verr, ok := IsValidation(validateConfig(req, tc.partial))
			require.True(t, ok)
			var paths [][]any
			for _, issue := range verr.Issues {
				paths = append(paths, issue.Path)
			}
			assert.Equal(t, tc.paths, paths)
		})
	}

	_, err := f.configs.Create(context.Background(), &models.ExamConfigRequest{}, nil)
	_, ok := IsValidation(err)
	assert.True(t, ok)
}

func TestExamConfigPreview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for i := 1; i <= 6; i++ {
		inc := 1 + i%3
		f.seedQuestion(t, &models.Question{ID: i, Correct: "a", Increment: &inc, Category: "Signs"})
	}
	f.seedQuestion(t, &models.Question{ID: 7, Correct: "a", Increment: intPtr(2), Status: models.StatusDraft})

	cfg, err := f.configs.Create(ctx, configRequest(), nil)
	require.NoError(t, err)

	preview, err := f.configs.Preview(ctx, cfg.ID.Hex())
	require.NoError(t, err)
	// increments 1 and 2 among ids 1..6: ids 1, 3, 4, 6
	assert.EqualValues(t, 4, preview.TotalAvailable)
	assert.Equal(t, 4, preview.PreviewQuestions)
	assert.Len(t, preview.Questions, 4)
	for _, q := range preview.Questions {
		require.NotNil(t, q.Increment)
		assert.Contains(t, []int{1, 2}, *q.Increment)
		assert.NotEqual(t, 7, q.ID)
	}

	small, err := f.configs.Update(ctx, cfg.ID.Hex(), &models.ExamConfigRequest{QuestionCount: intPtr(2)})
	require.NoError(t, err)
	preview, err = f.configs.Preview(ctx, small.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 2, preview.PreviewQuestions)
}
