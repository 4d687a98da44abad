package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestHasImage(t *testing.T) {
	testCases := []struct {
		name     string
		imageURL *string
		expected bool
	}{
		{"nil", nil, false},
		{"empty", strPtr(""), false},
		{"whitespace", strPtr("   "), false},
		{"n/a", strPtr("n/a"), false},
		{"NA uppercase", strPtr("NA"), false},
		{"none padded", strPtr(" None "), false},
		{"dash", strPtr("-"), false},
		{"url", strPtr("https://cdn.example.com/sign.png"), true},
		{"relative path", strPtr("/img/12.jpg"), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, HasImage(tc.imageURL))
		})
	}
}

func TestImageFilterMatch(t *testing.T) {
	withImage := strPtr("https://cdn.example.com/a.png")
	sentinel := strPtr("n/a")

	assert.True(t, ImageFilterAll.Match(withImage))
	assert.True(t, ImageFilterAll.Match(nil))
	assert.True(t, ImageFilterImages.Match(withImage))
	assert.False(t, ImageFilterImages.Match(sentinel))
	assert.True(t, ImageFilterText.Match(sentinel))
	assert.True(t, ImageFilterText.Match(nil))
	assert.False(t, ImageFilterText.Match(withImage))

	assert.True(t, ImageFilter("text").Valid())
	assert.False(t, ImageFilter("video").Valid())
}

func TestNullableString(t *testing.T) {
	var req QuestionRequest

	require.NoError(t, json.Unmarshal([]byte(`{"question":"What does this sign mean?"}`), &req))
	assert.False(t, req.ImageURL.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"imageUrl":null}`), &req))
	assert.True(t, req.ImageURL.Set)
	assert.False(t, req.ImageURL.Valid)

	req = QuestionRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"imageUrl":"https://x.test/a.png"}`), &req))
	assert.True(t, req.ImageURL.Set)
	assert.True(t, req.ImageURL.Valid)
	assert.Equal(t, "https://x.test/a.png", req.ImageURL.Value)
}

func TestFlexTime(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{"rfc3339", `"2024-05-01T10:00:00Z"`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), false},
		{"rfc3339 millis", `"2024-05-01T10:00:00.500Z"`, time.Date(2024, 5, 1, 10, 0, 0, 500_000_000, time.UTC), false},
		{"date only", `"2024-05-01"`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), false},
		{"epoch millis", `1714557600000`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), false},
		{"garbage", `"yesterday"`, time.Time{}, true},
		{"null", `null`, time.Time{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ft FlexTime
			err := ft.UnmarshalJSON([]byte(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(ft.Time), "expected %v, got %v", tc.expected, ft.Time)
		})
	}
}

func TestExamAccuracy(t *testing.T) {
	assert.InDelta(t, 0.7, (&ExamSession{Score: 14, TotalQuestions: 20}).Accuracy(), 1e-9)
	assert.Equal(t, 0.0, (&ExamSession{}).Accuracy())
}
