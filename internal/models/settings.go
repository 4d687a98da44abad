package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const DefaultSystemName = "PROVIQUIZ"

type SystemSettings struct {
	ID                    bson.ObjectID `json:"id" bson:"_id,omitempty"`
	SystemName            string        `json:"systemName" bson:"systemName"`
	LogoURL               string        `json:"logoUrl,omitempty" bson:"logoUrl,omitempty"`
	ExamRules             string        `json:"examRules,omitempty" bson:"examRules,omitempty"`
	PassingCriteria       int           `json:"passingCriteria" bson:"passingCriteria"`
	QuestionRandomization bool          `json:"questionRandomization" bson:"questionRandomization"`
	MaintenanceMode       bool          `json:"maintenanceMode" bson:"maintenanceMode"`
	MaintenanceMessage    string        `json:"maintenanceMessage,omitempty" bson:"maintenanceMessage,omitempty"`
	CreatedAt             time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt" bson:"updatedAt"`
}

func DefaultSettings() *SystemSettings {
	now := time.Now()
	return &SystemSettings{
		SystemName:            DefaultSystemName,
		PassingCriteria:       60,
		QuestionRandomization: true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

// PublicSettings is what unauthenticated clients may read.
type PublicSettings struct {
	SystemName         string `json:"systemName"`
	LogoURL            string `json:"logoUrl,omitempty"`
	ExamRules          string `json:"examRules,omitempty"`
	MaintenanceMode    bool   `json:"maintenanceMode"`
	MaintenanceMessage string `json:"maintenanceMessage,omitempty"`
}

func (s *SystemSettings) Public() PublicSettings {
	return PublicSettings{
		SystemName:         s.SystemName,
		LogoURL:            s.LogoURL,
		ExamRules:          s.ExamRules,
		MaintenanceMode:    s.MaintenanceMode,
		MaintenanceMessage: s.MaintenanceMessage,
	}
}
