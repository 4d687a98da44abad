package repository

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const ExamConfigsCollection = "examconfigs"

type ExamConfigRepository struct {
	collection *mongo.Collection
}

func NewExamConfigRepository(db *mongo.Database) *ExamConfigRepository {
	return &ExamConfigRepository{
		collection: db.Collection(ExamConfigsCollection),
	}
}

func (r *ExamConfigRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "enabled", Value: 1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return errorf("failed to create exam config indexes", err)
	}
	return nil
}

func (r *ExamConfigRepository) Create(ctx context.Context, cfg *models.ExamConfig) (*models.ExamConfig, error) {
	if cfg.ID.IsZero() {
		cfg.ID = bson.NewObjectID()
	}
	now := time.Now()
	cfg.CreatedAt = now
	cfg.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, cfg); err != nil {
		return nil, wrapWriteError(err, "failed to insert exam config")
	}
	return cfg, nil
}

func (r *ExamConfigRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.ExamConfig, error) {
	var cfg models.ExamConfig
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *ExamConfigRepository) List(ctx context.Context) ([]*models.ExamConfig, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errorf("failed to find exam configs", err)
	}
	defer cursor.Close(ctx)

	configs := []*models.ExamConfig{}
	if err := cursor.All(ctx, &configs); err != nil {
		return nil, errorf("failed to decode exam configs", err)
	}
	return configs, nil
}

// Replace writes the whole config back, keeping its creation time.
func (r *ExamConfigRepository) Replace(ctx context.Context, cfg *models.ExamConfig) (*models.ExamConfig, error) {
	cfg.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": cfg.ID}, cfg)
	if err != nil {
		return nil, errorf("failed to update exam config", err)
	}
	if result.MatchedCount == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return cfg, nil
}

func (r *ExamConfigRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errorf("failed to delete exam config", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ExamConfigRepository) CountEnabled(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"enabled": true})
	if err != nil {
		return 0, errorf("failed to count exam configs", err)
	}
	return count, nil
}
