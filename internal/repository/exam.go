package repository

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const ExamSessionsCollection = "examsessions"

type ExamSessionRepository struct {
	collection *mongo.Collection
}

func NewExamSessionRepository(db *mongo.Database) *ExamSessionRepository {
	return &ExamSessionRepository{
		collection: db.Collection(ExamSessionsCollection),
	}
}

func (r *ExamSessionRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "clientSessionId", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{
				"clientSessionId": bson.M{"$type": "string"},
			}),
		},
		{Keys: bson.D{{Key: "answers.questionId", Value: 1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return errorf("failed to create exam session indexes", err)
	}
	return nil
}

func (r *ExamSessionRepository) Create(ctx context.Context, exam *models.ExamSession) (*models.ExamSession, error) {
	if exam.ID.IsZero() {
		exam.ID = bson.NewObjectID()
	}
	now := time.Now()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, exam); err != nil {
		return nil, wrapWriteError(err, "failed to insert exam session")
	}
	return exam, nil
}

func (r *ExamSessionRepository) FindByClientSessionID(ctx context.Context, user bson.ObjectID, clientSessionID string) (*models.ExamSession, error) {
	var exam models.ExamSession
	err := r.collection.FindOne(ctx, bson.M{"user": user, "clientSessionId": clientSessionID}).Decode(&exam)
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

// ListByUser returns the user's exams newest first. A zero limit returns all of them.
func (r *ExamSessionRepository) ListByUser(ctx context.Context, user bson.ObjectID, skip, limit int) ([]*models.ExamSession, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"user": user}, opts)
	if err != nil {
		return nil, errorf("failed to find exam sessions", err)
	}
	defer cursor.Close(ctx)

	exams := []*models.ExamSession{}
	if err := cursor.All(ctx, &exams); err != nil {
		return nil, errorf("failed to decode exam sessions", err)
	}
	return exams, nil
}

func (r *ExamSessionRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errorf("failed to count exam sessions", err)
	}
	return count, nil
}

type adminExamRow struct {
	ID              bson.ObjectID     `bson:"_id"`
	CreatedAt       time.Time         `bson:"createdAt"`
	Mode            models.ExamMode   `bson:"mode"`
	Score           int               `bson:"score"`
	TotalQuestions  int               `bson:"totalQuestions"`
	DurationSeconds int               `bson:"durationSeconds"`
	User            *adminExamUserRow `bson:"userDoc"`
}

type adminExamUserRow struct {
	ID    bson.ObjectID `bson:"_id"`
	Email string        `bson:"email"`
	Name  string        `bson:"name"`
	Role  models.Role   `bson:"role"`
}

// ListWithUsers pages through every exam, newest first, with the taker joined in.
func (r *ExamSessionRepository) ListWithUsers(ctx context.Context, skip, limit int) ([]models.AdminExamItem, int64, error) {
	pipeline := []bson.M{
		{"$sort": bson.M{"createdAt": -1}},
		{"$skip": skip},
		{"$limit": limit},
		{"$lookup": bson.M{
			"from":         UsersCollection,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "userDoc",
		}},
		{"$unwind": bson.M{"path": "$userDoc", "preserveNullAndEmptyArrays": true}},
		{"$project": bson.M{
			"createdAt":       1,
			"mode":            1,
			"score":           1,
			"totalQuestions":  1,
			"durationSeconds": 1,
			"userDoc._id":     1,
			"userDoc.email":   1,
			"userDoc.name":    1,
			"userDoc.role":    1,
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, errorf("failed to aggregate exams", err)
	}
	defer cursor.Close(ctx)

	var rows []adminExamRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, errorf("failed to decode exams", err)
	}

	items := make([]models.AdminExamItem, 0, len(rows))
	for _, row := range rows {
		item := models.AdminExamItem{
			ID:              row.ID.Hex(),
			CreatedAt:       row.CreatedAt,
			Mode:            row.Mode,
			Score:           row.Score,
			TotalQuestions:  row.TotalQuestions,
			DurationSeconds: row.DurationSeconds,
		}
		if row.User != nil && !row.User.ID.IsZero() {
			item.User = &models.AdminExamUser{
				ID:    row.User.ID.Hex(),
				Email: row.User.Email,
				Name:  row.User.Name,
				Role:  row.User.Role,
			}
		}
		items = append(items, item)
	}

	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
