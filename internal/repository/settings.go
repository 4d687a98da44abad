package repository

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const SettingsCollection = "systemsettings"

type SettingsRepository struct {
	collection *mongo.Collection
}

func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection(SettingsCollection),
	}
}

// Get returns the settings document, creating it with defaults on first use.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SystemSettings, error) {
	defaults := models.DefaultSettings()
	update := bson.M{"$setOnInsert": defaults}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var settings models.SystemSettings
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(&settings); err != nil {
		return nil, errorf("failed to load system settings", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *models.SystemSettings) (*models.SystemSettings, error) {
	settings.UpdatedAt = time.Now()

	filter := bson.M{}
	if !settings.ID.IsZero() {
		filter["_id"] = settings.ID
	}

	doc := *settings
	doc.ID = bson.ObjectID{}
	update := bson.M{"$set": doc}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.SystemSettings
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return nil, errorf("failed to save system settings", err)
	}
	return &saved, nil
}
