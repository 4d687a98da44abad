package service

import (
	"context"
	"io"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// The store interfaces are satisfied by the Mongo repositories in
// internal/repository and by the in-memory ones in internal/repository/memory.

type QuestionStore interface {
	Insert(ctx context.Context, q *models.Question) (*models.Question, error)
	InsertMany(ctx context.Context, questions []*models.Question) (int, error)
	MaxID(ctx context.Context) (int, error)
	FindByID(ctx context.Context, id int) (*models.Question, error)
	FindByIDs(ctx context.Context, ids []int) ([]*models.Question, error)
	List(ctx context.Context, query models.QuestionListQuery) ([]*models.Question, int64, error)
	Sample(ctx context.Context, size int) ([]*models.Question, error)
	FindPool(ctx context.Context, rangeStart, rangeEnd *int) ([]*models.Question, error)
	Update(ctx context.Context, id int, patch *models.QuestionPatch) (*models.Question, error)
	SoftDelete(ctx context.Context, id int) error
	DeleteBySource(ctx context.Context, source string) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	FieldCounts(ctx context.Context, field string) ([]models.NameCount, error)
	RenameField(ctx context.Context, field, oldName, newName string) (int64, error)
	UnsetField(ctx context.Context, field, name string) (int64, error)
	FindByIncrement(ctx context.Context, increment int) ([]*models.Question, error)
	AssignIncrement(ctx context.Context, ids []int, increment int) (int64, error)
	ReorderIncrement(ctx context.Context, ids []int, increment int) error
	IncrementStats(ctx context.Context) ([]models.IncrementStat, error)
	CountPublished(ctx context.Context, increments []int) (int64, error)
	FindPublished(ctx context.Context, increments []int, limit int) ([]*models.Question, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	Update(ctx context.Context, id bson.ObjectID, patch *models.UserPatch) (*models.User, error)
	List(ctx context.Context, search string, skip, limit int) ([]*models.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

type ExamSessionStore interface {
	Create(ctx context.Context, exam *models.ExamSession) (*models.ExamSession, error)
	FindByClientSessionID(ctx context.Context, user bson.ObjectID, clientSessionID string) (*models.ExamSession, error)
	ListByUser(ctx context.Context, user bson.ObjectID, skip, limit int) ([]*models.ExamSession, error)
	Count(ctx context.Context) (int64, error)
	ListWithUsers(ctx context.Context, skip, limit int) ([]models.AdminExamItem, int64, error)
}

type ExamConfigStore interface {
	Create(ctx context.Context, cfg *models.ExamConfig) (*models.ExamConfig, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.ExamConfig, error)
	List(ctx context.Context) ([]*models.ExamConfig, error)
	Replace(ctx context.Context, cfg *models.ExamConfig) (*models.ExamConfig, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	CountEnabled(ctx context.Context) (int64, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (*models.SystemSettings, error)
	Save(ctx context.Context, settings *models.SystemSettings) (*models.SystemSettings, error)
}

type AnalyticsStore interface {
	Trend(ctx context.Context, since time.Time) ([]models.TrendPoint, error)
	PassStats(ctx context.Context, threshold float64) (*models.PassStats, error)
	QuestionsByIncrement(ctx context.Context) ([]models.IncrementCount, error)
	MostMissed(ctx context.Context, user *bson.ObjectID, limit int) ([]models.MissedQuestion, error)
	AverageByIncrement(ctx context.Context) ([]models.IncrementAccuracy, error)
	UserTotals(ctx context.Context, user bson.ObjectID) (*models.UserTotals, error)
	AccuracyBy(ctx context.Context, user bson.ObjectID, field string, minTotal, limit int, worstFirst bool) ([]models.GroupAccuracy, error)
}

// Cache holds short-lived state: OAuth state nonces, submit idempotency keys
// and the settings document.
type Cache interface {
	SaveStructCached(ctx context.Context, key string, model any, ttl time.Duration) error
	GetStructCached(ctx context.Context, key string, model any) error
	Reserve(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type ImageStore interface {
	Upload(ctx context.Context, questionID int, contentType string, reader io.Reader, size int64) (string, error)
	Remove(ctx context.Context, imageURL string) error
}
