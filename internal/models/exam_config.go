package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ExamConfig struct {
	ID                 bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name               string         `json:"name" bson:"name"`
	Description        string         `json:"description,omitempty" bson:"description,omitempty"`
	Increments         []int          `json:"increments" bson:"increments"`
	QuestionCount      int            `json:"questionCount" bson:"questionCount"`
	TimeLimitMinutes   *int           `json:"timeLimitMinutes,omitempty" bson:"timeLimitMinutes,omitempty"`
	PassMarkPercent    int            `json:"passMarkPercent" bson:"passMarkPercent"`
	RandomizeQuestions bool           `json:"randomizeQuestions" bson:"randomizeQuestions"`
	RandomizeAnswers   bool           `json:"randomizeAnswers" bson:"randomizeAnswers"`
	Enabled            bool           `json:"enabled" bson:"enabled"`
	CreatedBy          *bson.ObjectID `json:"createdBy,omitempty" bson:"createdBy,omitempty"`
	CreatedAt          time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt" bson:"updatedAt"`
}
