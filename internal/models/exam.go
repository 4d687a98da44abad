package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ExamMode string

const (
	ModeTimed    ExamMode = "timed"
	ModePractice ExamMode = "practice"
)

type GradedAnswer struct {
	QuestionID int     `json:"questionId" bson:"questionId"`
	Selected   *string `json:"selected" bson:"selected"`
	Correct    string  `json:"correct" bson:"correct"`
	IsCorrect  bool    `json:"isCorrect" bson:"isCorrect"`
}

type ExamSession struct {
	ID              bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	User            *bson.ObjectID `json:"user,omitempty" bson:"user,omitempty"`
	Mode            ExamMode       `json:"mode" bson:"mode"`
	StartedAt       time.Time      `json:"startedAt" bson:"startedAt"`
	CompletedAt     time.Time      `json:"completedAt" bson:"completedAt"`
	DurationSeconds int            `json:"durationSeconds" bson:"durationSeconds"`
	Score           int            `json:"score" bson:"score"`
	TotalQuestions  int            `json:"totalQuestions" bson:"totalQuestions"`
	Answers         []GradedAnswer `json:"answers,omitempty" bson:"answers"`
	ClientSessionID string         `json:"clientSessionId,omitempty" bson:"clientSessionId,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// Accuracy is score over total, treating an empty exam as one question.
func (e *ExamSession) Accuracy() float64 {
	total := e.TotalQuestions
	if total < 1 {
		total = 1
	}
	return float64(e.Score) / float64(total)
}

// ExamSummary is the list projection used by history endpoints.
type ExamSummary struct {
	ID              string    `json:"id"`
	Score           int       `json:"score"`
	TotalQuestions  int       `json:"totalQuestions"`
	DurationSeconds int       `json:"durationSeconds"`
	Mode            ExamMode  `json:"mode"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (e *ExamSession) Summary() ExamSummary {
	return ExamSummary{
		ID:              e.ID.Hex(),
		Score:           e.Score,
		TotalQuestions:  e.TotalQuestions,
		DurationSeconds: e.DurationSeconds,
		Mode:            e.Mode,
		CreatedAt:       e.CreatedAt,
	}
}
