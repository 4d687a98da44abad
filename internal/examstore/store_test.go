package examstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntwari02/proviQuiz/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func makeQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:   i + 1,
			Text: "question",
			Options: []AnswerOption{
				{ID: "a", Text: "A"},
				{ID: "b", Text: "B", IsCorrect: true},
				{ID: "c", Text: "C"},
				{ID: "d", Text: "D"},
			},
		}
	}
	return qs
}

func TestLifecycle(t *testing.T) {
	clock := newClock()
	s := NewWithClock(clock.Now)
	assert.Equal(t, StatusIdle, s.Status())

	s.StartExam(makeQuestions(20), 1200)
	assert.Equal(t, StatusInProgress, s.Status())

	for i := 1; i <= 20; i++ {
		switch {
		case i <= 14:
			s.SelectAnswer(i, "b")
		case i <= 17:
			s.SelectAnswer(i, "c")
		}
	}

	clock.Advance(5 * time.Minute)
	res := s.SubmitExam()
	require.NotNil(t, res)
	assert.Equal(t, StatusCompleted, s.Status())
	assert.InDelta(t, 70.0, res.ScorePercent, 1e-9)
	assert.Equal(t, 14, res.CorrectCount)
	assert.Equal(t, 6, res.IncorrectCount)
	assert.Equal(t, 20, res.TotalQuestions)
	assert.Equal(t, 5*time.Minute, res.FinishedAt.Sub(res.StartedAt))

	assert.Nil(t, s.SubmitExam(), "completed exams cannot be submitted again")

	s.ResetExam()
	st := s.State()
	assert.Equal(t, StatusIdle, st.Status)
	assert.Empty(t, st.Questions)
	assert.Empty(t, st.SelectedAnswers)
	assert.Nil(t, st.Result)
}

func TestSubmitCapsFinishAtDeadline(t *testing.T) {
	clock := newClock()
	s := NewWithClock(clock.Now)
	s.StartExam(makeQuestions(3), 60)

	clock.Advance(10 * time.Minute)
	res := s.SubmitExam()
	require.NotNil(t, res)
	assert.LessOrEqual(t, res.FinishedAt.Sub(res.StartedAt), 60*time.Second)
	assert.Equal(t, 60*time.Second, res.FinishedAt.Sub(res.StartedAt))
}

func TestSubmitNoop(t *testing.T) {
	s := NewWithClock(newClock().Now)
	assert.Nil(t, s.SubmitExam(), "not started")

	s.StartExam(nil, 60)
	assert.Nil(t, s.SubmitExam(), "no questions")
	assert.Equal(t, StatusInProgress, s.Status())
}

func TestSelectAnswerUpserts(t *testing.T) {
	s := NewWithClock(newClock().Now)
	s.StartExam(makeQuestions(2), 60)

	s.SelectAnswer(1, "a")
	s.SelectAnswer(1, "b")
	s.SelectAnswer(42, "c")

	st := s.State()
	assert.Equal(t, "b", st.SelectedAnswers[1])
	assert.Equal(t, "c", st.SelectedAnswers[42])

	answers := s.Answers()
	require.Len(t, answers, 2)
	require.NotNil(t, answers[0].Selected)
	assert.Equal(t, "b", *answers[0].Selected)
	assert.Nil(t, answers[1].Selected)
}

func TestGoToQuestionClamps(t *testing.T) {
	testCases := []struct {
		name     string
		index    int
		expected int
	}{
		{"negative", -3, 0},
		{"inside", 2, 2},
		{"past end", 10, 4},
	}

	s := NewWithClock(newClock().Now)
	s.StartExam(makeQuestions(5), 60)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s.GoToQuestion(tc.index)
			assert.Equal(t, tc.expected, s.State().CurrentIndex)
		})
	}

	empty := NewWithClock(newClock().Now)
	empty.GoToQuestion(3)
	assert.Equal(t, 0, empty.State().CurrentIndex)
}

func TestRemaining(t *testing.T) {
	clock := newClock()
	s := NewWithClock(clock.Now)
	s.StartExam(makeQuestions(1), 90)
	start := clock.Now()

	assert.Equal(t, 90, s.Remaining(start))
	assert.Equal(t, 89, s.Remaining(start.Add(1500*time.Millisecond)))
	assert.Equal(t, 0, s.Remaining(start.Add(2*time.Minute)))
}

func TestWatchAutoSubmits(t *testing.T) {
	clock := newClock()
	s := NewWithClock(clock.Now)
	s.StartExam(makeQuestions(2), 30)
	clock.Advance(31 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var ticks []int
	submitted := s.Watch(ctx, time.Millisecond, func(rem int) { ticks = append(ticks, rem) })

	assert.True(t, submitted)
	assert.Equal(t, StatusCompleted, s.Status())
	require.NotEmpty(t, ticks)
	assert.Equal(t, 0, ticks[len(ticks)-1])
}

func TestWatchStopsOnCancel(t *testing.T) {
	s := NewWithClock(newClock().Now)
	s.StartExam(makeQuestions(2), 30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, s.Watch(ctx, time.Millisecond, nil))
	assert.Equal(t, StatusInProgress, s.Status())
}

func TestFromAPI(t *testing.T) {
	img := "https://cdn.example.com/sign.png"
	sentinel := "n/a"
	qs := FromAPI([]models.Question{
		{ID: 7, Question: "268. What does a red octagon mean?", Options: models.Options{A: "Stop", B: "Yield", C: "Go", D: "Park"}, Correct: "a", ImageURL: &img},
		{ID: 7, Question: "duplicate"},
		{ID: 8, Question: "12 - Speed limit in town?", Options: models.Options{A: "30", B: "50", C: "70", D: "90"}, Correct: "b", ImageURL: &sentinel},
	})

	require.Len(t, qs, 2)
	assert.Equal(t, "What does a red octagon mean?", qs[0].Text)
	assert.Equal(t, "a", qs[0].CorrectOption())
	assert.Equal(t, img, qs[0].ImageURL)
	assert.Len(t, qs[0].Options, 4)
	assert.Equal(t, "Speed limit in town?", qs[1].Text)
	assert.Equal(t, "b", qs[1].CorrectOption())
	assert.Empty(t, qs[1].ImageURL)
}

func TestStripLeadingNumbering(t *testing.T) {
	testCases := map[string]string{
		"268. Text":   "Text",
		"268) Text":   "Text",
		" 12 : Text":  "Text",
		"No number":   "No number",
		"2024 budget": "2024 budget",
	}
	for in, expected := range testCases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, expected, StripLeadingNumbering(in))
		})
	}
}
