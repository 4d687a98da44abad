package event

const (
	EventTypeExamSubmitted         = "exam.submitted"
	EventTypeQuestionCreated       = "question.created"
	EventTypeQuestionUpdated       = "question.updated"
	EventTypeQuestionDeleted       = "question.deleted"
	EventTypeQuestionsBulkImported = "question.bulk_imported"
	EventTypeUserRegistered        = "user.registered"
	EventTypeUserRoleChanged       = "user.role_changed"
	EventTypeUserBanned            = "user.banned"
	EventTypeUserUnbanned          = "user.unbanned"
	EventTypeUserActivated         = "user.activated"
	EventTypeUserDeactivated       = "user.deactivated"
)

type ExamEvent struct {
	EventType       string `json:"eventType"`
	ExamID          string `json:"examId"`
	UserID          string `json:"userId,omitempty"`
	Mode            string `json:"mode"`
	Score           int    `json:"score"`
	TotalQuestions  int    `json:"totalQuestions"`
	DurationSeconds int    `json:"durationSeconds"`
	Passed          bool   `json:"passed"`
	Timestamp       int64  `json:"timestamp"`
}

type QuestionEvent struct {
	EventType     string   `json:"eventType"`
	QuestionIDs   []int    `json:"questionIds"`
	ChangedFields []string `json:"changedFields,omitempty"`
	ActorID       string   `json:"actorId,omitempty"`
	Timestamp     int64    `json:"timestamp"`
}

type UserEvent struct {
	EventType string `json:"eventType"`
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	Reason    string `json:"reason,omitempty"`
	ActorID   string `json:"actorId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
