package memory

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type SettingsRepository struct {
	db *DB
}

func (r *SettingsRepository) Get(ctx context.Context) (*models.SystemSettings, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.settings == nil {
		r.db.settings = models.DefaultSettings()
		r.db.settings.ID = bson.NewObjectID()
	}
	s := *r.db.settings
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *models.SystemSettings) (*models.SystemSettings, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	saved := *settings
	if r.db.settings != nil {
		saved.ID = r.db.settings.ID
		saved.CreatedAt = r.db.settings.CreatedAt
	} else if saved.ID.IsZero() {
		saved.ID = bson.NewObjectID()
	}
	saved.UpdatedAt = time.Now()
	r.db.settings = &saved

	out := saved
	return &out, nil
}
