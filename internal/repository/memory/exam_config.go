package memory

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ExamConfigRepository struct {
	db *DB
}

func cloneConfig(c *models.ExamConfig) *models.ExamConfig {
	out := *c
	out.Increments = append([]int(nil), c.Increments...)
	return &out
}

func (r *ExamConfigRepository) indexOf(id bson.ObjectID) int {
	for i, c := range r.db.configs {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (r *ExamConfigRepository) Create(ctx context.Context, cfg *models.ExamConfig) (*models.ExamConfig, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if cfg.ID.IsZero() {
		cfg.ID = bson.NewObjectID()
	}
	now := time.Now()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now
	r.db.configs = append(r.db.configs, cloneConfig(cfg))
	return cfg, nil
}

func (r *ExamConfigRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.ExamConfig, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, errNotFound
	}
	return cloneConfig(r.db.configs[i]), nil
}

func (r *ExamConfigRepository) List(ctx context.Context) ([]*models.ExamConfig, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ordered := newestFirst(r.db.configs, func(c *models.ExamConfig) time.Time { return c.CreatedAt })
	for i, c := range ordered {
		ordered[i] = cloneConfig(c)
	}
	return ordered, nil
}

func (r *ExamConfigRepository) Replace(ctx context.Context, cfg *models.ExamConfig) (*models.ExamConfig, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.indexOf(cfg.ID)
	if i < 0 {
		return nil, errNotFound
	}
	cfg.CreatedAt = r.db.configs[i].CreatedAt
	cfg.UpdatedAt = time.Now()
	r.db.configs[i] = cloneConfig(cfg)
	return cfg, nil
}

func (r *ExamConfigRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return errNotFound
	}
	r.db.configs = append(r.db.configs[:i], r.db.configs[i+1:]...)
	return nil
}

func (r *ExamConfigRepository) CountEnabled(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var n int64
	for _, c := range r.db.configs {
		if c.Enabled {
			n++
		}
	}
	return n, nil
}
