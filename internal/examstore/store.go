// Package examstore holds the state of one exam attempt on the client side:
// the loaded questions, the answers picked so far and the timer anchor.
package examstore

import (
	"context"
	"sync"
	"time"

	"github.com/ntwari02/proviQuiz/internal/grading"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

const (
	DefaultQuestionCount   = 20
	DefaultDurationSeconds = 20 * 60
)

type AnswerOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

type Question struct {
	ID          int            `json:"id"`
	Text        string         `json:"text"`
	Options     []AnswerOption `json:"options"`
	Explanation string         `json:"explanation,omitempty"`
	ImageURL    string         `json:"imageUrl,omitempty"`
}

// CorrectOption returns the id of the option flagged correct, or "".
func (q Question) CorrectOption() string {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o.ID
		}
	}
	return ""
}

type Result struct {
	ScorePercent   float64   `json:"scorePercent"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectCount   int       `json:"correctCount"`
	IncorrectCount int       `json:"incorrectCount"`
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
}

// State is a point-in-time copy of the store.
type State struct {
	Questions       []Question
	Status          Status
	StartedAt       time.Time
	DurationSeconds int
	CurrentIndex    int
	SelectedAnswers map[int]string
	Result          *Result
}

type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	state State
}

func New() *Store {
	return NewWithClock(time.Now)
}

func NewWithClock(now func() time.Time) *Store {
	s := &Store{now: now}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.state = State{
		Status:          StatusIdle,
		SelectedAnswers: map[int]string{},
	}
}

// StartExam discards any previous attempt and starts the clock.
func (s *Store) StartExam(questions []Question, durationSeconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{
		Questions:       append([]Question(nil), questions...),
		Status:          StatusInProgress,
		StartedAt:       s.now(),
		DurationSeconds: durationSeconds,
		SelectedAnswers: map[int]string{},
	}
}

// SelectAnswer records optionID for questionID, replacing any earlier choice.
// The question id is not checked against the loaded set.
func (s *Store) SelectAnswer(questionID int, optionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedAnswers[questionID] = optionID
}

// GoToQuestion moves the cursor, clamped to the loaded questions.
func (s *Store) GoToQuestion(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := len(s.state.Questions) - 1
	if index > last {
		index = last
	}
	if index < 0 {
		index = 0
	}
	s.state.CurrentIndex = index
}

// SubmitExam grades the attempt and completes it. It does nothing unless an
// exam with at least one question is in progress.
func (s *Store) SubmitExam() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked()
}

func (s *Store) submitLocked() *Result {
	st := &s.state
	if st.Status != StatusInProgress || st.StartedAt.IsZero() || len(st.Questions) == 0 {
		return nil
	}

	answers := make([]grading.Answer, 0, len(st.Questions))
	correctByID := make(map[int]string, len(st.Questions))
	for _, q := range st.Questions {
		correctByID[q.ID] = q.CorrectOption()
		a := grading.Answer{QuestionID: q.ID}
		if selected, ok := st.SelectedAnswers[q.ID]; ok {
			a.Selected = &selected
		}
		answers = append(answers, a)
	}
	graded := grading.Grade(answers, correctByID)

	finishedAt := s.now()
	deadline := st.StartedAt.Add(time.Duration(st.DurationSeconds) * time.Second)
	if finishedAt.After(deadline) {
		finishedAt = deadline
	}

	st.Result = &Result{
		ScorePercent:   grading.Accuracy(graded.Score, graded.Total) * 100,
		TotalQuestions: graded.Total,
		CorrectCount:   graded.Score,
		IncorrectCount: graded.Total - graded.Score,
		StartedAt:      st.StartedAt,
		FinishedAt:     finishedAt,
	}
	st.Status = StatusCompleted

	res := *st.Result
	return &res
}

func (s *Store) ResetExam() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// Remaining is the whole seconds left at now, recomputed from the start anchor.
func (s *Store) Remaining(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remainingLocked(now)
}

func (s *Store) remainingLocked(now time.Time) int {
	if s.state.StartedAt.IsZero() {
		return s.state.DurationSeconds
	}
	elapsed := int(now.Sub(s.state.StartedAt) / time.Second)
	if rem := s.state.DurationSeconds - elapsed; rem > 0 {
		return rem
	}
	return 0
}

// Watch polls every interval while the exam is in progress and submits it
// once the time runs out. onTick, when set, receives the remaining seconds.
// It returns true when it submitted the exam itself.
func (s *Store) Watch(ctx context.Context, interval time.Duration, onTick func(remaining int)) bool {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			s.mu.Lock()
			if s.state.Status != StatusInProgress {
				s.mu.Unlock()
				return false
			}
			rem := s.remainingLocked(s.now())
			submitted := false
			if rem == 0 {
				submitted = s.submitLocked() != nil
			}
			s.mu.Unlock()

			if onTick != nil {
				onTick(rem)
			}
			if submitted {
				return true
			}
		}
	}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := s.state
	cp.Questions = append([]Question(nil), s.state.Questions...)
	cp.SelectedAnswers = make(map[int]string, len(s.state.SelectedAnswers))
	for k, v := range s.state.SelectedAnswers {
		cp.SelectedAnswers[k] = v
	}
	if s.state.Result != nil {
		r := *s.state.Result
		cp.Result = &r
	}
	return cp
}

func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Status
}

// Answers lists the selections in question order for submission to the API.
// Unanswered questions carry a nil selection.
func (s *Store) Answers() []grading.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]grading.Answer, 0, len(s.state.Questions))
	for _, q := range s.state.Questions {
		a := grading.Answer{QuestionID: q.ID}
		if selected, ok := s.state.SelectedAnswers[q.ID]; ok {
			a.Selected = &selected
		}
		out = append(out, a)
	}
	return out
}
