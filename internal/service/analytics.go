package service

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/grading"
	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	trendDays           = 14
	mostFailedLimit     = 20
	performanceRecent   = 10
	DefaultWeakLimit    = 10
	MaxWeakLimit        = 50
	weakCategoryMinimum = 5
	uncategorized       = "uncategorized"
)

type AnalyticsService struct {
	analytics AnalyticsStore
	users     UserStore
	questions QuestionStore
	exams     ExamSessionStore
	configs   ExamConfigStore
	threshold float64
	now       func() time.Time
}

func NewAnalyticsService(analytics AnalyticsStore, users UserStore, questions QuestionStore, exams ExamSessionStore, configs ExamConfigStore, threshold float64) *AnalyticsService {
	if threshold <= 0 {
		threshold = grading.DefaultPassThreshold
	}
	return &AnalyticsService{
		analytics: analytics,
		users:     users,
		questions: questions,
		exams:     exams,
		configs:   configs,
		threshold: threshold,
		now:       time.Now,
	}
}

func ratio(num, den int64) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// AdminOverview is the dashboard summary.
func (s *AnalyticsService) AdminOverview(ctx context.Context) (*models.AdminOverview, error) {
	var (
		out = &models.AdminOverview{}
		err error
	)
	if out.UserCount, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if out.QuestionCount, err = s.questions.CountActive(ctx); err != nil {
		return nil, err
	}
	if out.ExamCount, err = s.exams.Count(ctx); err != nil {
		return nil, err
	}
	since := s.now().Add(-trendDays * 24 * time.Hour)
	if out.Trend, err = s.analytics.Trend(ctx, since); err != nil {
		return nil, err
	}
	if out.QuestionsByIncrement, err = s.analytics.QuestionsByIncrement(ctx); err != nil {
		return nil, err
	}
	stats, err := s.analytics.PassStats(ctx, s.threshold)
	if err != nil {
		return nil, err
	}
	out.PassRate = ratio(stats.Passed, stats.TotalExams)
	if out.ActiveExamConfigs, err = s.configs.CountEnabled(ctx); err != nil {
		return nil, err
	}

	if out.Trend == nil {
		out.Trend = []models.TrendPoint{}
	}
	if out.QuestionsByIncrement == nil {
		out.QuestionsByIncrement = []models.IncrementCount{}
	}
	return out, nil
}

func (s *AnalyticsService) Overview(ctx context.Context) (*models.AnalyticsOverview, error) {
	stats, err := s.analytics.PassStats(ctx, s.threshold)
	if err != nil {
		return nil, err
	}
	missed, err := s.analytics.MostMissed(ctx, nil, mostFailedLimit)
	if err != nil {
		return nil, err
	}
	byIncrement, err := s.analytics.AverageByIncrement(ctx)
	if err != nil {
		return nil, err
	}
	if missed == nil {
		missed = []models.MissedQuestion{}
	}
	if byIncrement == nil {
		byIncrement = []models.IncrementAccuracy{}
	}

	return &models.AnalyticsOverview{
		TotalExams:          stats.TotalExams,
		Passed:              stats.Passed,
		Failed:              stats.TotalExams - stats.Passed,
		PassRate:            ratio(stats.Passed, stats.TotalExams),
		AverageAccuracy:     ratio(stats.TotalCorrect, stats.TotalQuestions),
		MostFailedQuestions: missed,
		AverageByIncrement:  byIncrement,
	}, nil
}

// Performance reports the user's totals, last exams oldest first, and
// accuracy per category and topic.
func (s *AnalyticsService) Performance(ctx context.Context, user bson.ObjectID) (*models.Performance, error) {
	totals, err := s.analytics.UserTotals(ctx, user)
	if err != nil {
		return nil, err
	}
	exams, err := s.exams.ListByUser(ctx, user, 0, performanceRecent)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.analytics.AccuracyBy(ctx, user, "category", 0, 0, false)
	if err != nil {
		return nil, err
	}
	byTopic, err := s.analytics.AccuracyBy(ctx, user, "topic", 0, 0, false)
	if err != nil {
		return nil, err
	}

	out := &models.Performance{
		ExamCount:            totals.ExamCount,
		AverageAccuracy:      grading.Accuracy(totals.TotalCorrect, max(totals.TotalQuestions, 1)),
		TotalDurationSeconds: totals.TotalDurationSeconds,
		Recent:               make([]models.RecentExam, len(exams)),
		ByCategory:           categoryRows(byCategory),
		ByTopic:              make([]models.TopicAccuracy, 0, len(byTopic)),
	}
	for i, e := range exams {
		out.Recent[len(exams)-1-i] = e.Recent()
	}
	for _, g := range byTopic {
		out.ByTopic = append(out.ByTopic, models.TopicAccuracy{Topic: g.Name, GroupAccuracy: g})
	}
	return out, nil
}

func categoryRows(groups []models.GroupAccuracy) []models.CategoryAccuracy {
	rows := make([]models.CategoryAccuracy, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, models.CategoryAccuracy{Category: g.Name, GroupAccuracy: g})
	}
	return rows
}

func (s *AnalyticsService) WeakAreas(ctx context.Context, user bson.ObjectID, limit int) (*models.WeakAreas, error) {
	limit = ClampLimit(limit, DefaultWeakLimit, MaxWeakLimit)

	worst, err := s.analytics.AccuracyBy(ctx, user, "category", weakCategoryMinimum, limit, true)
	if err != nil {
		return nil, err
	}
	missed, err := s.analytics.MostMissed(ctx, &user, limit)
	if err != nil {
		return nil, err
	}
	for i := range missed {
		if missed[i].Category == "" {
			missed[i].Category = uncategorized
		}
		if missed[i].Topic == "" {
			missed[i].Topic = uncategorized
		}
		missed[i].Increment = nil
	}
	if missed == nil {
		missed = []models.MissedQuestion{}
	}

	return &models.WeakAreas{
		WorstCategories: categoryRows(worst),
		MostMissed:      missed,
	}, nil
}
