// Package grading is the single source of exam scoring. The API grades
// submissions with it authoritatively and the exam client uses it for
// immediate feedback, so both sides always agree.
package grading

import (
	"math"
	"time"
)

// DefaultPassThreshold is the accuracy an exam needs to count as passed.
const DefaultPassThreshold = 0.6

// FallbackCorrect is the answer assumed for a question that no longer exists.
const FallbackCorrect = "a"

type Answer struct {
	QuestionID int
	Selected   *string
}

type GradedAnswer struct {
	QuestionID int
	Selected   *string
	Correct    string
	IsCorrect  bool
}

type Result struct {
	Answers []GradedAnswer
	Score   int
	Total   int
}

// Grade marks every answer against correctByID. Questions absent from the map
// grade against FallbackCorrect; an empty correct value matches nothing. A nil
// selection is wrong. len(Result.Answers) == Result.Total and Score equals the
// number of correct answers.
func Grade(answers []Answer, correctByID map[int]string) Result {
	res := Result{
		Answers: make([]GradedAnswer, 0, len(answers)),
		Total:   len(answers),
	}
	for _, a := range answers {
		correct, ok := correctByID[a.QuestionID]
		if !ok {
			correct = FallbackCorrect
		}
		isCorrect := a.Selected != nil && *a.Selected != "" && *a.Selected == correct
		if isCorrect {
			res.Score++
		}
		res.Answers = append(res.Answers, GradedAnswer{
			QuestionID: a.QuestionID,
			Selected:   a.Selected,
			Correct:    correct,
			IsCorrect:  isCorrect,
		})
	}
	return res
}

// Percent is score/total as a rounded whole percentage.
func Percent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}

// Accuracy is score/total, 0 for an empty exam.
func Accuracy(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total)
}

// Passed reports whether score/total reaches threshold. Empty exams never pass.
func Passed(score, total int, threshold float64) bool {
	if total <= 0 {
		return false
	}
	return float64(score) >= float64(total)*threshold
}

// Duration is the whole seconds between started and completed, never negative.
func Duration(started, completed time.Time) int {
	secs := math.Round(completed.Sub(started).Seconds())
	if secs < 0 {
		return 0
	}
	return int(secs)
}
