package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AnalyticsRepository computes the reporting aggregations by walking exams and
// questions directly.
type AnalyticsRepository struct {
	db *DB
}

func (r *AnalyticsRepository) questionByID() map[int]*models.Question {
	byID := make(map[int]*models.Question, len(r.db.questions))
	for _, q := range r.db.questions {
		byID[q.ID] = q
	}
	return byID
}

func (r *AnalyticsRepository) examsFor(user *bson.ObjectID) []*models.ExamSession {
	if user == nil {
		return r.db.exams
	}
	out := []*models.ExamSession{}
	for _, e := range r.db.exams {
		if sameUser(e.User, *user) {
			out = append(out, e)
		}
	}
	return out
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func (r *AnalyticsRepository) Trend(ctx context.Context, since time.Time) ([]models.TrendPoint, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	type bucket struct{ exams, correct, total int }
	buckets := map[string]*bucket{}
	for _, e := range r.db.exams {
		if e.CreatedAt.Before(since) {
			continue
		}
		day := e.CreatedAt.UTC().Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.exams++
		b.correct += e.Score
		b.total += e.TotalQuestions
	}

	trend := make([]models.TrendPoint, 0, len(buckets))
	for day, b := range buckets {
		trend = append(trend, models.TrendPoint{Date: day, Exams: b.exams, Accuracy: ratio(b.correct, b.total)})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend, nil
}

func (r *AnalyticsRepository) PassStats(ctx context.Context, threshold float64) (*models.PassStats, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stats := &models.PassStats{}
	for _, e := range r.db.exams {
		stats.TotalExams++
		stats.TotalCorrect += int64(e.Score)
		stats.TotalQuestions += int64(e.TotalQuestions)
		if e.TotalQuestions > 0 && float64(e.Score) >= float64(e.TotalQuestions)*threshold {
			stats.Passed++
		}
	}
	return stats, nil
}

func (r *AnalyticsRepository) QuestionsByIncrement(ctx context.Context) ([]models.IncrementCount, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	out := []models.IncrementCount{}
	for increment := 1; increment <= 3; increment++ {
		row := models.IncrementCount{}
		for _, q := range r.db.questions {
			if q.IsDeleted || q.Increment == nil || *q.Increment != increment {
				continue
			}
			row.Total++
			if q.Status == models.StatusPublished {
				row.Published++
			}
		}
		if row.Total > 0 {
			inc := increment
			row.Increment = &inc
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *AnalyticsRepository) MostMissed(ctx context.Context, user *bson.ObjectID, limit int) ([]models.MissedQuestion, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	missed := map[int]int{}
	for _, e := range r.examsFor(user) {
		for _, a := range e.Answers {
			if !a.IsCorrect {
				missed[a.QuestionID]++
			}
		}
	}

	items := make([]models.MissedQuestion, 0, len(missed))
	for id, n := range missed {
		items = append(items, models.MissedQuestion{QuestionID: id, MissedCount: n})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].MissedCount != items[j].MissedCount {
			return items[i].MissedCount > items[j].MissedCount
		}
		return items[i].QuestionID < items[j].QuestionID
	})
	items = window(items, 0, limit)

	byID := r.questionByID()
	for i := range items {
		if q, ok := byID[items[i].QuestionID]; ok {
			items[i].Question = q.Question
			items[i].Category = q.Category
			items[i].Topic = q.Topic
			items[i].Increment = q.Increment
		}
	}
	return items, nil
}

func incrementKey(inc *int) int {
	if inc == nil {
		return 0
	}
	return *inc
}

func (r *AnalyticsRepository) AverageByIncrement(ctx context.Context) ([]models.IncrementAccuracy, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	byID := r.questionByID()
	type acc struct{ correct, total int }
	groups := map[int]*acc{}
	for _, e := range r.db.exams {
		for _, a := range e.Answers {
			var inc *int
			if q, ok := byID[a.QuestionID]; ok {
				inc = q.Increment
			}
			key := incrementKey(inc)
			g, ok := groups[key]
			if !ok {
				g = &acc{}
				groups[key] = g
			}
			g.total++
			if a.IsCorrect {
				g.correct++
			}
		}
	}

	out := make([]models.IncrementAccuracy, 0, len(groups))
	for key, g := range groups {
		row := models.IncrementAccuracy{
			AverageAccuracy: ratio(g.correct, g.total),
			TotalQuestions:  g.total,
		}
		if key != 0 {
			k := key
			row.Increment = &k
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return incrementKey(out[i].Increment) < incrementKey(out[j].Increment) })
	return out, nil
}

func (r *AnalyticsRepository) UserTotals(ctx context.Context, user bson.ObjectID) (*models.UserTotals, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	totals := &models.UserTotals{}
	for _, e := range r.examsFor(&user) {
		totals.ExamCount++
		totals.TotalCorrect += e.Score
		totals.TotalQuestions += e.TotalQuestions
		totals.TotalDurationSeconds += e.DurationSeconds
	}
	return totals, nil
}

func (r *AnalyticsRepository) AccuracyBy(ctx context.Context, user bson.ObjectID, field string, minTotal, limit int, worstFirst bool) ([]models.GroupAccuracy, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	byID := r.questionByID()
	groups := map[string]*models.GroupAccuracy{}
	for _, e := range r.examsFor(&user) {
		for _, a := range e.Answers {
			name := ""
			if q, ok := byID[a.QuestionID]; ok {
				name = questionField(q, field)
			}
			if name == "" {
				name = "uncategorized"
			}
			g, ok := groups[name]
			if !ok {
				g = &models.GroupAccuracy{Name: name}
				groups[name] = g
			}
			g.Total++
			if a.IsCorrect {
				g.Correct++
			}
		}
	}

	out := make([]models.GroupAccuracy, 0, len(groups))
	for _, g := range groups {
		if g.Total < minTotal {
			continue
		}
		g.Accuracy = ratio(g.Correct, g.Total)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if worstFirst {
			if out[i].Accuracy != out[j].Accuracy {
				return out[i].Accuracy < out[j].Accuracy
			}
			if out[i].Total != out[j].Total {
				return out[i].Total > out[j].Total
			}
			return out[i].Name < out[j].Name
		}
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return window(out, 0, limit), nil
}
