package memory

import (
	"context"
	"strings"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ExamSessionRepository struct {
	db *DB
}

func cloneExam(e *models.ExamSession) *models.ExamSession {
	c := *e
	c.ClientSessionID = strings.Clone(e.ClientSessionID)
	c.Answers = append([]models.GradedAnswer(nil), e.Answers...)
	return &c
}

func sameUser(a *bson.ObjectID, b bson.ObjectID) bool {
	return a != nil && *a == b
}

func (r *ExamSessionRepository) Create(ctx context.Context, exam *models.ExamSession) (*models.ExamSession, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if exam.ClientSessionID != "" && exam.User != nil {
		for _, e := range r.db.exams {
			if sameUser(e.User, *exam.User) && e.ClientSessionID == exam.ClientSessionID {
				return nil, repository.ErrDuplicateKey
			}
		}
	}

	if exam.ID.IsZero() {
		exam.ID = bson.NewObjectID()
	}
	now := time.Now()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	r.db.exams = append(r.db.exams, cloneExam(exam))
	return exam, nil
}

func (r *ExamSessionRepository) FindByClientSessionID(ctx context.Context, user bson.ObjectID, clientSessionID string) (*models.ExamSession, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, e := range r.db.exams {
		if sameUser(e.User, user) && e.ClientSessionID == clientSessionID {
			return cloneExam(e), nil
		}
	}
	return nil, errNotFound
}

func (r *ExamSessionRepository) ListByUser(ctx context.Context, user bson.ObjectID, skip, limit int) ([]*models.ExamSession, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	matched := []*models.ExamSession{}
	for _, e := range r.db.exams {
		if sameUser(e.User, user) {
			matched = append(matched, e)
		}
	}
	matched = newestFirst(matched, func(e *models.ExamSession) time.Time { return e.CreatedAt })

	page := window(matched, skip, limit)
	for i, e := range page {
		page[i] = cloneExam(e)
	}
	return page, nil
}

func (r *ExamSessionRepository) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	return int64(len(r.db.exams)), nil
}

func (r *ExamSessionRepository) ListWithUsers(ctx context.Context, skip, limit int) ([]models.AdminExamItem, int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	ordered := newestFirst(r.db.exams, func(e *models.ExamSession) time.Time { return e.CreatedAt })
	page := window(ordered, skip, limit)

	items := make([]models.AdminExamItem, 0, len(page))
	for _, e := range page {
		item := models.AdminExamItem{
			ID:              e.ID.Hex(),
			CreatedAt:       e.CreatedAt,
			Mode:            e.Mode,
			Score:           e.Score,
			TotalQuestions:  e.TotalQuestions,
			DurationSeconds: e.DurationSeconds,
		}
		if e.User != nil {
			for _, u := range r.db.users {
				if u.ID == *e.User {
					item.User = &models.AdminExamUser{
						ID:    u.ID.Hex(),
						Email: u.Email,
						Name:  u.Name,
						Role:  u.Role,
					}
					break
				}
			}
		}
		items = append(items, item)
	}
	return items, int64(len(r.db.exams)), nil
}
