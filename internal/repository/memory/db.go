// Package memory keeps every collection in process memory. It backs the test
// suites and the server when MONGO_URI is empty; data is lost on exit.
package memory

import (
	"strings"
	"sync"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type DB struct {
	mu        sync.RWMutex
	questions []*models.Question
	users     []*models.User
	exams     []*models.ExamSession
	configs   []*models.ExamConfig
	settings  *models.SystemSettings
}

func NewDB() *DB {
	return &DB{}
}

func (db *DB) Questions() *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (db *DB) Users() *UserRepository {
	return &UserRepository{db: db}
}

func (db *DB) ExamSessions() *ExamSessionRepository {
	return &ExamSessionRepository{db: db}
}

func (db *DB) ExamConfigs() *ExamConfigRepository {
	return &ExamConfigRepository{db: db}
}

func (db *DB) Settings() *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (db *DB) Analytics() *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

var errNotFound = mongo.ErrNoDocuments

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// window applies skip and limit the way the Mongo driver does: a zero limit
// means no limit.
func window[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
