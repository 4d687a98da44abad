package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AnalyticsRepository runs the read-only reporting pipelines over exam sessions
// joined with the question bank.
type AnalyticsRepository struct {
	examCollection     *mongo.Collection
	questionCollection *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) *AnalyticsRepository {
	return &AnalyticsRepository{
		examCollection:     db.Collection(ExamSessionsCollection),
		questionCollection: db.Collection(QuestionsCollection),
	}
}

func matchUser(user *bson.ObjectID) []bson.M {
	if user == nil {
		return nil
	}
	return []bson.M{{"$match": bson.M{"user": *user}}}
}

var lookupAnswerQuestion = []bson.M{
	{"$unwind": "$answers"},
	{"$lookup": bson.M{
		"from":         QuestionsCollection,
		"localField":   "answers.questionId",
		"foreignField": "id",
		"as":           "q",
	}},
	{"$unwind": bson.M{"path": "$q", "preserveNullAndEmptyArrays": true}},
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline []bson.M, what string) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", what, err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", what, err)
	}
	return out, nil
}

type trendRow struct {
	ID struct {
		Y int `bson:"y"`
		M int `bson:"m"`
		D int `bson:"d"`
	} `bson:"_id"`
	Exams          int `bson:"exams"`
	TotalCorrect   int `bson:"totalCorrect"`
	TotalQuestions int `bson:"totalQuestions"`
}

// Trend buckets exams created since the given time by UTC calendar day.
func (r *AnalyticsRepository) Trend(ctx context.Context, since time.Time) ([]models.TrendPoint, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"createdAt": bson.M{"$gte": since}}},
		{"$group": bson.M{
			"_id": bson.M{
				"y": bson.M{"$year": "$createdAt"},
				"m": bson.M{"$month": "$createdAt"},
				"d": bson.M{"$dayOfMonth": "$createdAt"},
			},
			"exams":          bson.M{"$sum": 1},
			"totalCorrect":   bson.M{"$sum": "$score"},
			"totalQuestions": bson.M{"$sum": "$totalQuestions"},
		}},
		{"$sort": bson.D{{Key: "_id.y", Value: 1}, {Key: "_id.m", Value: 1}, {Key: "_id.d", Value: 1}}},
	}

	rows, err := aggregate[trendRow](ctx, r.examCollection, pipeline, "exam trend")
	if err != nil {
		return nil, err
	}

	trend := make([]models.TrendPoint, 0, len(rows))
	for _, row := range rows {
		point := models.TrendPoint{
			Date:  time.Date(row.ID.Y, time.Month(row.ID.M), row.ID.D, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			Exams: row.Exams,
		}
		if row.TotalQuestions > 0 {
			point.Accuracy = float64(row.TotalCorrect) / float64(row.TotalQuestions)
		}
		trend = append(trend, point)
	}
	return trend, nil
}

// PassStats counts exams and how many reached threshold accuracy. Exams with
// no questions never pass.
func (r *AnalyticsRepository) PassStats(ctx context.Context, threshold float64) (*models.PassStats, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":            nil,
			"totalExams":     bson.M{"$sum": 1},
			"totalCorrect":   bson.M{"$sum": "$score"},
			"totalQuestions": bson.M{"$sum": "$totalQuestions"},
			"passed": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$gt": bson.A{"$totalQuestions", 0}},
					bson.M{"$gte": bson.A{"$score", bson.M{"$multiply": bson.A{"$totalQuestions", threshold}}}},
				}},
				1,
				0,
			}}},
		}},
	}

	rows, err := aggregate[models.PassStats](ctx, r.examCollection, pipeline, "pass stats")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &models.PassStats{}, nil
	}
	return &rows[0], nil
}

func (r *AnalyticsRepository) QuestionsByIncrement(ctx context.Context) ([]models.IncrementCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"isDeleted": notDeleted, "increment": bson.M{"$in": bson.A{1, 2, 3}}}},
		{"$group": bson.M{
			"_id":       "$increment",
			"total":     bson.M{"$sum": 1},
			"published": bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", "published"}}, 1, 0}}},
		}},
		{"$sort": bson.M{"_id": 1}},
	}
	return aggregate[models.IncrementCount](ctx, r.questionCollection, pipeline, "questions by increment")
}

// MostMissed ranks questions by how often they were answered wrong, optionally
// for a single user.
func (r *AnalyticsRepository) MostMissed(ctx context.Context, user *bson.ObjectID, limit int) ([]models.MissedQuestion, error) {
	pipeline := matchUser(user)
	pipeline = append(pipeline,
		bson.M{"$unwind": "$answers"},
		bson.M{"$match": bson.M{"answers.isCorrect": false}},
		bson.M{"$group": bson.M{
			"_id":         "$answers.questionId",
			"missedCount": bson.M{"$sum": 1},
		}},
		bson.M{"$sort": bson.D{{Key: "missedCount", Value: -1}, {Key: "_id", Value: 1}}},
		bson.M{"$limit": limit},
		bson.M{"$lookup": bson.M{
			"from":         QuestionsCollection,
			"localField":   "_id",
			"foreignField": "id",
			"as":           "q",
		}},
		bson.M{"$unwind": bson.M{"path": "$q", "preserveNullAndEmptyArrays": true}},
		bson.M{"$project": bson.M{
			"_id":         0,
			"questionId":  "$_id",
			"missedCount": 1,
			"question":    "$q.question",
			"category":    "$q.category",
			"topic":       "$q.topic",
			"increment":   "$q.increment",
		}},
	)
	return aggregate[models.MissedQuestion](ctx, r.examCollection, pipeline, "most missed questions")
}

// AverageByIncrement groups answers per exam and increment first, then per increment.
func (r *AnalyticsRepository) AverageByIncrement(ctx context.Context) ([]models.IncrementAccuracy, error) {
	pipeline := append([]bson.M{}, lookupAnswerQuestion...)
	pipeline = append(pipeline,
		bson.M{"$group": bson.M{
			"_id":     bson.M{"examId": "$_id", "increment": "$q.increment"},
			"correct": bson.M{"$sum": bson.M{"$cond": bson.A{"$answers.isCorrect", 1, 0}}},
			"total":   bson.M{"$sum": 1},
		}},
		bson.M{"$group": bson.M{
			"_id":            "$_id.increment",
			"totalCorrect":   bson.M{"$sum": "$correct"},
			"totalQuestions": bson.M{"$sum": "$total"},
		}},
		bson.M{"$sort": bson.M{"_id": 1}},
		bson.M{"$project": bson.M{
			"totalQuestions": 1,
			"averageAccuracy": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$totalQuestions", 0}},
				bson.M{"$divide": bson.A{"$totalCorrect", "$totalQuestions"}},
				0,
			}},
		}},
	)
	return aggregate[models.IncrementAccuracy](ctx, r.examCollection, pipeline, "accuracy by increment")
}

func (r *AnalyticsRepository) UserTotals(ctx context.Context, user bson.ObjectID) (*models.UserTotals, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"user": user}},
		{"$group": bson.M{
			"_id":                  nil,
			"examCount":            bson.M{"$sum": 1},
			"totalCorrect":         bson.M{"$sum": "$score"},
			"totalQuestions":       bson.M{"$sum": "$totalQuestions"},
			"totalDurationSeconds": bson.M{"$sum": "$durationSeconds"},
		}},
	}

	rows, err := aggregate[models.UserTotals](ctx, r.examCollection, pipeline, "user totals")
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &models.UserTotals{}, nil
	}
	return &rows[0], nil
}

// AccuracyBy breaks a user's answers down by a question field. Questions without
// the field are grouped as "uncategorized". Groups with fewer than minTotal
// answers are dropped; worstFirst sorts by ascending accuracy instead of volume.
func (r *AnalyticsRepository) AccuracyBy(ctx context.Context, user bson.ObjectID, field string, minTotal, limit int, worstFirst bool) ([]models.GroupAccuracy, error) {
	pipeline := matchUser(&user)
	pipeline = append(pipeline, lookupAnswerQuestion...)
	pipeline = append(pipeline,
		bson.M{"$group": bson.M{
			"_id":     bson.M{"$ifNull": bson.A{"$q." + field, "uncategorized"}},
			"total":   bson.M{"$sum": 1},
			"correct": bson.M{"$sum": bson.M{"$cond": bson.A{"$answers.isCorrect", 1, 0}}},
		}},
	)
	if minTotal > 0 {
		pipeline = append(pipeline, bson.M{"$match": bson.M{"total": bson.M{"$gte": minTotal}}})
	}
	pipeline = append(pipeline, bson.M{"$addFields": bson.M{
		"accuracy": bson.M{"$cond": bson.A{
			bson.M{"$gt": bson.A{"$total", 0}},
			bson.M{"$divide": bson.A{"$correct", "$total"}},
			0,
		}},
	}})
	if worstFirst {
		pipeline = append(pipeline, bson.M{"$sort": bson.D{{Key: "accuracy", Value: 1}, {Key: "total", Value: -1}}})
	} else {
		pipeline = append(pipeline, bson.M{"$sort": bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.M{"$limit": limit})
	}
	return aggregate[models.GroupAccuracy](ctx, r.examCollection, pipeline, field+" accuracy")
}
