package repository

import (
	"context"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const UsersCollection = "users"

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(UsersCollection),
	}
}

func (r *UserRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{Keys: bson.D{{Key: "resetToken", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return errorf("failed to create user indexes", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return nil, wrapWriteError(err, "failed to insert user")
	}
	return user, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"googleId": googleID})
}

// FindByResetToken only matches tokens that are still valid at now.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	return r.findOne(ctx, bson.M{
		"resetToken":        token,
		"resetTokenExpires": bson.M{"$gt": now},
	})
}

func (r *UserRepository) Update(ctx context.Context, id bson.ObjectID, patch *models.UserPatch) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}

	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Role != nil {
		set["role"] = *patch.Role
	}
	if patch.PasswordHash != nil {
		set["passwordHash"] = *patch.PasswordHash
	}
	if patch.GoogleID != nil {
		set["googleId"] = *patch.GoogleID
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}
	if patch.Banned != nil {
		set["banned"] = *patch.Banned
	}
	if patch.ClearBan {
		unset["bannedReason"] = ""
		unset["bannedAt"] = ""
	} else {
		if patch.BannedReason != nil {
			set["bannedReason"] = *patch.BannedReason
		}
		if patch.BannedAt != nil {
			set["bannedAt"] = *patch.BannedAt
		}
	}
	if patch.ClearReset {
		unset["resetToken"] = ""
		unset["resetTokenExpires"] = ""
	} else {
		if patch.ResetToken != nil {
			set["resetToken"] = *patch.ResetToken
		}
		if patch.ResetTokenExpires != nil {
			set["resetTokenExpires"] = *patch.ResetTokenExpires
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, err
	}
	if err != nil {
		return nil, wrapWriteError(err, "failed to update user")
	}
	return &updated, nil
}

func (r *UserRepository) List(ctx context.Context, search string, skip, limit int) ([]*models.User, int64, error) {
	filter := bson.M{}
	if search != "" {
		match := containsInsensitive(search)
		filter["$or"] = bson.A{
			bson.M{"email": match},
			bson.M{"name": match},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errorf("failed to find users", err)
	}
	defer cursor.Close(ctx)

	users := []*models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, errorf("failed to decode users", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errorf("failed to count users", err)
	}
	return users, total, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errorf("failed to count users", err)
	}
	return count, nil
}
