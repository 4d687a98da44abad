package models

import "time"

type TrendPoint struct {
	Date     string  `json:"date" bson:"date"`
	Exams    int     `json:"exams" bson:"exams"`
	Accuracy float64 `json:"accuracy" bson:"accuracy"`
}

type IncrementCount struct {
	Increment *int `json:"increment" bson:"_id"`
	Total     int  `json:"total" bson:"total"`
	Published int  `json:"published" bson:"published"`
}

type IncrementStat struct {
	Increment int `json:"increment" bson:"_id"`
	Total     int `json:"total" bson:"total"`
	Published int `json:"published" bson:"published"`
	Draft     int `json:"draft" bson:"draft"`
}

type AdminOverview struct {
	UserCount            int64            `json:"userCount"`
	QuestionCount        int64            `json:"questionCount"`
	ExamCount            int64            `json:"examCount"`
	Trend                []TrendPoint     `json:"trend"`
	QuestionsByIncrement []IncrementCount `json:"questionsByIncrement"`
	PassRate             float64          `json:"passRate"`
	ActiveExamConfigs    int64            `json:"activeExamConfigs"`
}

type MissedQuestion struct {
	QuestionID  int    `json:"questionId" bson:"questionId"`
	MissedCount int    `json:"missedCount" bson:"missedCount"`
	Question    string `json:"question,omitempty" bson:"question,omitempty"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
	Topic       string `json:"topic,omitempty" bson:"topic,omitempty"`
	Increment   *int   `json:"increment,omitempty" bson:"increment,omitempty"`
}

type IncrementAccuracy struct {
	Increment       *int    `json:"increment" bson:"_id"`
	AverageAccuracy float64 `json:"averageAccuracy" bson:"averageAccuracy"`
	TotalQuestions  int     `json:"totalQuestions" bson:"totalQuestions"`
}

type AnalyticsOverview struct {
	TotalExams          int64               `json:"totalExams"`
	Passed              int64               `json:"passed"`
	Failed              int64               `json:"failed"`
	PassRate            float64             `json:"passRate"`
	AverageAccuracy     float64             `json:"averageAccuracy"`
	MostFailedQuestions []MissedQuestion    `json:"mostFailedQuestions"`
	AverageByIncrement  []IncrementAccuracy `json:"averageByIncrement"`
}

// GroupAccuracy is one row of a per-category or per-topic breakdown.
type GroupAccuracy struct {
	Name     string  `json:"-" bson:"_id"`
	Total    int     `json:"total" bson:"total"`
	Correct  int     `json:"correct" bson:"correct"`
	Accuracy float64 `json:"accuracy" bson:"accuracy"`
}

type CategoryAccuracy struct {
	Category string `json:"category"`
	GroupAccuracy
}

type TopicAccuracy struct {
	Topic string `json:"topic"`
	GroupAccuracy
}

type RecentExam struct {
	ID              string    `json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	Mode            ExamMode  `json:"mode,omitempty"`
	Score           int       `json:"score"`
	TotalQuestions  int       `json:"totalQuestions"`
	DurationSeconds int       `json:"durationSeconds"`
	Accuracy        float64   `json:"accuracy"`
}

func (e *ExamSession) Recent() RecentExam {
	return RecentExam{
		ID:              e.ID.Hex(),
		CreatedAt:       e.CreatedAt,
		Mode:            e.Mode,
		Score:           e.Score,
		TotalQuestions:  e.TotalQuestions,
		DurationSeconds: e.DurationSeconds,
		Accuracy:        e.Accuracy(),
	}
}

type Performance struct {
	ExamCount            int                `json:"examCount"`
	AverageAccuracy      float64            `json:"averageAccuracy"`
	TotalDurationSeconds int                `json:"totalDurationSeconds"`
	Recent               []RecentExam       `json:"recent"`
	ByCategory           []CategoryAccuracy `json:"byCategory"`
	ByTopic              []TopicAccuracy    `json:"byTopic"`
}

type WeakAreas struct {
	WorstCategories []CategoryAccuracy `json:"worstCategories"`
	MostMissed      []MissedQuestion   `json:"mostMissed"`
}

type UserProgress struct {
	TotalExams      int          `json:"totalExams"`
	TotalQuestions  int          `json:"totalQuestions"`
	TotalCorrect    int          `json:"totalCorrect"`
	AverageAccuracy float64      `json:"averageAccuracy"`
	RecentExams     []RecentExam `json:"recentExams"`
}

type NameCount struct {
	Name          string `json:"name" bson:"_id"`
	QuestionCount int    `json:"questionCount" bson:"questionCount"`
}

type AdminExamUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

type AdminExamItem struct {
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"createdAt"`
	Mode            ExamMode       `json:"mode"`
	Score           int            `json:"score"`
	TotalQuestions  int            `json:"totalQuestions"`
	DurationSeconds int            `json:"durationSeconds"`
	User            *AdminExamUser `json:"user"`
}

type PassStats struct {
	TotalExams     int64 `bson:"totalExams"`
	Passed         int64 `bson:"passed"`
	TotalCorrect   int64 `bson:"totalCorrect"`
	TotalQuestions int64 `bson:"totalQuestions"`
}

type UserTotals struct {
	ExamCount            int `bson:"examCount"`
	TotalCorrect         int `bson:"totalCorrect"`
	TotalQuestions       int `bson:"totalQuestions"`
	TotalDurationSeconds int `bson:"totalDurationSeconds"`
}
