package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserRepository struct {
	db *DB
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *UserRepository) findLocked(match func(u *models.User) bool) *models.User {
	for _, u := range r.db.users {
		if match(u) {
			return u
		}
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	clash := r.findLocked(func(u *models.User) bool {
		if u.Email == user.Email {
			return true
		}
		return user.HasGoogle() && u.HasGoogle() && *u.GoogleID == *user.GoogleID
	})
	if clash != nil {
		return nil, repository.ErrDuplicateKey
	}

	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.db.users = append(r.db.users, cloneUser(user))
	return user, nil
}

func (r *UserRepository) findOne(match func(u *models.User) bool) (*models.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if u := r.findLocked(match); u != nil {
		return cloneUser(u), nil
	}
	return nil, errNotFound
}

func (r *UserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.ID == id })
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.HasGoogle() && *u.GoogleID == googleID })
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	return r.findOne(func(u *models.User) bool {
		return u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now)
	})
}

func applyUserPatch(u *models.User, patch *models.UserPatch) {
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.PasswordHash != nil {
		v := *patch.PasswordHash
		u.PasswordHash = &v
	}
	if patch.GoogleID != nil {
		v := *patch.GoogleID
		u.GoogleID = &v
	}
	if patch.Active != nil {
		u.Active = *patch.Active
	}
	if patch.Banned != nil {
		u.Banned = *patch.Banned
	}
	if patch.ClearBan {
		u.BannedReason = nil
		u.BannedAt = nil
	} else {
		if patch.BannedReason != nil {
			v := *patch.BannedReason
			u.BannedReason = &v
		}
		if patch.BannedAt != nil {
			v := *patch.BannedAt
			u.BannedAt = &v
		}
	}
	if patch.ClearReset {
		u.ResetToken = nil
		u.ResetTokenExpires = nil
	} else {
		if patch.ResetToken != nil {
			v := *patch.ResetToken
			u.ResetToken = &v
		}
		if patch.ResetTokenExpires != nil {
			v := *patch.ResetTokenExpires
			u.ResetTokenExpires = &v
		}
	}
}

func (r *UserRepository) Update(ctx context.Context, id bson.ObjectID, patch *models.UserPatch) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u := r.findLocked(func(u *models.User) bool { return u.ID == id })
	if u == nil {
		return nil, errNotFound
	}
	if patch.GoogleID != nil {
		clash := r.findLocked(func(other *models.User) bool {
			return other.ID != id && other.HasGoogle() && *other.GoogleID == *patch.GoogleID
		})
		if clash != nil {
			return nil, repository.ErrDuplicateKey
		}
	}
	applyUserPatch(u, patch)
	u.UpdatedAt = time.Now()
	return cloneUser(u), nil
}

// newestFirst orders by createdAt descending; among equal timestamps the later
// insert wins.
func newestFirst[T any](items []T, createdAt func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return createdAt(out[i]).After(createdAt(out[j])) })
	return out
}

func (r *UserRepository) List(ctx context.Context, search string, skip, limit int) ([]*models.User, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	matched := []*models.User{}
	for _, u := range r.db.users {
		if search == "" || containsFold(u.Email, search) || containsFold(u.Name, search) {
			matched = append(matched, u)
		}
	}
	matched = newestFirst(matched, func(u *models.User) time.Time { return u.CreatedAt })

	page := window(matched, skip, limit)
	for i, u := range page {
		page[i] = cloneUser(u)
	}
	return page, int64(len(matched)), nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return int64(len(r.db.users)), nil
}
