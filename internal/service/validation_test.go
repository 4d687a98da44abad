package service

import (
	"testing"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuePath(t *testing.T) {
	testCases := []struct {
		namespace string
		want      []any
	}{
		{"RegisterRequest.email", []any{"email"}},
		{"SubmitExamRequest.answers[2].questionId", []any{"answers", 2, "questionId"}},
		{"ExamConfigRequest.increments[0]", []any{"increments", 0}},
		{"QuestionRequest.options.c", []any{"options", "c"}},
	}

	for _, tc := range testCases {
		t.Run(tc.namespace, func(t *testing.T) {
			assert.Equal(t, tc.want, issuePath(tc.namespace))
		})
	}
}

func TestCheckMessages(t *testing.T) {
	testCases := []struct {
		name string
		req  any
		want []Issue
	}{
		{
			name: "register",
			req:  models.RegisterRequest{Email: "nope", Password: "123"},
			want: []Issue{
				{Path: []any{"email"}, Message: "Invalid email"},
				{Path: []any{"password"}, Message: "String must contain at least 6 character(s)"},
			},
		},
		{
			name: "missing email",
			req:  models.ForgotPasswordRequest{},
			want: []Issue{{Path: []any{"email"}, Message: "Required"}},
		},
		{
			name: "role enum",
			req:  models.UpdateRoleRequest{Role: "root"},
			want: []Issue{{Path: []any{"role"}, Message: "Invalid enum value. Expected 'student' | 'admin' | 'superadmin', received 'root'"}},
		},
		{
			name: "settings ranges",
			req:  &models.SettingsRequest{LogoURL: strPtr("ftp://logo"), PassingCriteria: intPtr(-1)},
			want: []Issue{
				{Path: []any{"logoUrl"}, Message: "Invalid url"},
				{Path: []any{"passingCriteria"}, Message: "Number must be greater than or equal to 0"},
			},
		},
		{
			name: "empty increments",
			req:  &models.ExamConfigRequest{Name: strPtr("Mock"), Increments: []int{}, QuestionCount: intPtr(0), PassMarkPercent: intPtr(101)},
			want: []Issue{
				{Path: []any{"increments"}, Message: "Array must contain at least 1 element(s)"},
				{Path: []any{"questionCount"}, Message: "Number must be greater than 0"},
				{Path: []any{"passMarkPercent"}, Message: "Number must be less than or equal to 100"},
			},
		},
		{
			name: "valid settings",
			req:  &models.SettingsRequest{LogoURL: strPtr("https://cdn.example.com/logo.png"), PassingCriteria: intPtr(0)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, check(tc.req))
		})
	}
}

func TestCheckPrefix(t *testing.T) {
	list := check(models.QuestionIDsRequest{QuestionIDs: []int{4, 0}}, 3)
	require.Len(t, list, 1)
	assert.Equal(t, []any{3, "questionIds", 1}, list[0].Path)
}

func TestCheckPresent(t *testing.T) {
	testCases := []struct {
		name  string
		req   *models.QuestionRequest
		paths [][]any
	}{
		{"empty body", &models.QuestionRequest{}, nil},
		{"cleared image", &models.QuestionRequest{ImageURL: models.NullableString{Set: true}}, nil},
		{"bad image", &models.QuestionRequest{ImageURL: models.NullableString{Set: true, Valid: true, Value: "not a url"}}, [][]any{{"imageUrl"}}},
		{"short question", &models.QuestionRequest{Question: strPtr("Hi")}, [][]any{{"question"}}},
		{"blank option", &models.QuestionRequest{Options: &models.Options{A: "x", B: "y", C: "z"}}, [][]any{{"options", "d"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var paths [][]any
			for _, issue := range checkPresent(tc.req) {
				paths = append(paths, issue.Path)
			}
			assert.Equal(t, tc.paths, paths)
		})
	}
}
