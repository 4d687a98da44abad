package models

// Auth

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=1"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"min=10"`
	NewPassword string `json:"newPassword" validate:"min=6"`
}

// Questions

// QuestionRequest is both the create and the partial update body. Updates
// only check the keys that were sent.
type QuestionRequest struct {
	ID          *int           `json:"id" validate:"omitempty,gt=0"`
	Question    *string        `json:"question" validate:"required,min=5"`
	Options     *Options       `json:"options" validate:"required"`
	Correct     *string        `json:"correct" validate:"required,oneof=a b c d"`
	Explanation *string        `json:"explanation"`
	Category    *string        `json:"category"`
	Difficulty  *string        `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	ImageURL    NullableString `json:"imageUrl" validate:"omitempty,httpurl"`
	Topic       *string        `json:"topic"`
	Source      *string        `json:"source"`
	Increment   *int           `json:"increment" validate:"omitempty,oneof=1 2 3"`
	Status      *string        `json:"status" validate:"omitempty,oneof=draft published"`
}

type QuestionListQuery struct {
	Limit     int
	Skip      int
	Search    string
	Category  string
	Increment *int
	Status    string
}

type StartExamQuery struct {
	Limit       int
	RangeStart  *int
	RangeEnd    *int
	ImageFilter ImageFilter
}

// Exams

type SubmitAnswer struct {
	QuestionID *int    `json:"questionId" validate:"required"`
	Selected   *string `json:"selected" validate:"omitempty,oneof=a b c d"`
}

type SubmitExamRequest struct {
	Mode            string         `json:"mode" validate:"oneof=timed practice"`
	StartedAt       *FlexTime      `json:"startedAt" validate:"required"`
	CompletedAt     *FlexTime      `json:"completedAt" validate:"required"`
	Answers         []SubmitAnswer `json:"answers" validate:"required,dive"`
	ClientSessionID string         `json:"clientSessionId"`
}

// Admin users

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"oneof=student admin superadmin"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"oneof=student admin superadmin"`
}

type ActivateRequest struct {
	Active bool `json:"active"`
}

type BanRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason"`
}

type AdminResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"min=6"`
}

// Categories, topics and increments

type RenameRequest struct {
	OldName string `json:"oldName" validate:"min=1"`
	NewName string `json:"newName" validate:"min=1"`
}

type QuestionIDsRequest struct {
	QuestionIDs []int `json:"questionIds" validate:"required,dive,gt=0"`
}

type LockRequest struct {
	Locked bool `json:"locked"`
}

// Exam configs

type ExamConfigRequest struct {
	Name               *string `json:"name" validate:"required,min=1"`
	Description        *string `json:"description"`
	Increments         []int   `json:"increments" validate:"required,min=1,dive,oneof=1 2 3"`
	QuestionCount      *int    `json:"questionCount" validate:"required,gt=0"`
	TimeLimitMinutes   *int    `json:"timeLimitMinutes" validate:"omitempty,gt=0"`
	PassMarkPercent    *int    `json:"passMarkPercent" validate:"required,gte=0,lte=100"`
	RandomizeQuestions *bool   `json:"randomizeQuestions"`
	RandomizeAnswers   *bool   `json:"randomizeAnswers"`
	Enabled            *bool   `json:"enabled"`
}

// Settings

type SettingsRequest struct {
	SystemName            *string `json:"systemName" validate:"omitempty,min=1"`
	LogoURL               *string `json:"logoUrl" validate:"omitempty,httpurl"`
	ExamRules             *string `json:"examRules"`
	PassingCriteria       *int    `json:"passingCriteria" validate:"omitempty,gte=0,lte=100"`
	QuestionRandomization *bool   `json:"questionRandomization"`
	MaintenanceMode       *bool   `json:"maintenanceMode"`
	MaintenanceMessage    *string `json:"maintenanceMessage"`
}
