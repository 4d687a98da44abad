package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"
)

const (
	DefaultUserLimit      = 25
	DefaultUserExamLimit  = 50
	DefaultAdminExamLimit = 25
	progressWindow        = 100
	recentExamCount       = 10
	defaultBanReason      = "No reason provided"
)

type UserPage struct {
	Items []models.UserSummary `json:"items"`
	Total int64                `json:"total"`
}

type AdminExamPage struct {
	Items []models.AdminExamItem `json:"items"`
	Total int64                  `json:"total"`
}

type CreatedUser struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name,omitempty"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

type ActiveUser struct {
	ID     string      `json:"id"`
	Email  string      `json:"email"`
	Name   string      `json:"name,omitempty"`
	Role   models.Role `json:"role"`
	Active bool        `json:"active"`
}

type BannedUser struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Name         string      `json:"name,omitempty"`
	Role         models.Role `json:"role"`
	Banned       bool        `json:"banned"`
	BannedReason *string     `json:"bannedReason"`
	BannedAt     *time.Time  `json:"bannedAt"`
}

type Profile struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name,omitempty"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	HasGoogle bool        `json:"hasGoogle"`
}

// UserService backs the profile endpoint and the admin user console.
type UserService struct {
	users     UserStore
	exams     ExamSessionStore
	publisher event.Publisher
	now       func() time.Time
}

func NewUserService(users UserStore, exams ExamSessionStore, publisher event.Publisher) *UserService {
	return &UserService{
		users:     users,
		exams:     exams,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *UserService) publish(eventType string, user *models.User, reason string, actor *models.User) {
	if s.publisher == nil {
		return
	}
	ev := event.NewUserEvent(eventType, user.ID.Hex(), user.Email, string(user.Role), reason)
	if actor != nil {
		ev.ActorID = actor.ID.Hex()
	}
	if err := s.publisher.PublishUserEvent(ev); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", eventType, err)
	}
}

func (s *UserService) find(ctx context.Context, id string) (*models.User, error) {
	oid, err := ParseUserID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, oid)
	if repository.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) update(ctx context.Context, id string, patch *models.UserPatch) (*models.User, error) {
	oid, err := ParseUserID(id)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Update(ctx, oid, patch)
	if repository.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) Profile(ctx context.Context, id string) (*Profile, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:        user.ID.Hex(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		HasGoogle: user.HasGoogle(),
	}, nil
}

func (s *UserService) List(ctx context.Context, search string, skip, limit int) (*UserPage, error) {
	limit = ClampLimit(limit, DefaultUserLimit, MaxListLimit)
	if skip < 0 {
		skip = 0
	}
	users, total, err := s.users.List(ctx, search, skip, limit)
	if err != nil {
		return nil, err
	}
	items := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		items = append(items, u.Summary())
	}
	return &UserPage{Items: items, Total: total}, nil
}

func (s *UserService) Create(ctx context.Context, req models.CreateUserRequest, actor *models.User) (*CreatedUser, error) {
	req.Email = normalizeEmail(req.Email)
	if req.Role == "" {
		req.Role = string(models.RoleStudent)
	}
	if err := invalid(invalidData, check(req)); err != nil {
		return nil, err
	}
	email := req.Email
	role := models.Role(req.Role)
	if role == models.RoleSuperAdmin && (actor == nil || actor.Role != models.RoleSuperAdmin) {
		return nil, ErrSuperadminOnly
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Create(ctx, &models.User{
		Email:        email,
		Name:         req.Name,
		PasswordHash: &hash,
		Role:         role,
		Active:       true,
	})
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	s.publish(event.EventTypeUserRegistered, user, "admin", actor)

	return &CreatedUser{
		ID:        user.ID.Hex(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}, nil
}

// UpdateRole changes a user's role. Granting or revoking superadmin needs a
// superadmin actor.
func (s *UserService) UpdateRole(ctx context.Context, id string, req models.UpdateRoleRequest, actor *models.User) (*CreatedUser, error) {
	if err := invalid(invalidData, check(req)); err != nil {
		return nil, err
	}
	role := models.Role(req.Role)

	target, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	isSuper := actor != nil && actor.Role == models.RoleSuperAdmin
	if (role == models.RoleSuperAdmin || target.Role == models.RoleSuperAdmin) && !isSuper {
		return nil, ErrSuperadminOnly
	}

	user, err := s.update(ctx, id, &models.UserPatch{Role: &role})
	if err != nil {
		return nil, err
	}
	s.publish(event.EventTypeUserRoleChanged, user, string(target.Role)+"->"+string(role), actor)

	return &CreatedUser{
		ID:        user.ID.Hex(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *UserService) SetActive(ctx context.Context, id string, req models.ActivateRequest, actor *models.User) (*ActiveUser, error) {
	active := req.Active
	user, err := s.update(ctx, id, &models.UserPatch{Active: &active})
	if err != nil {
		return nil, err
	}
	eventType := event.EventTypeUserDeactivated
	if active {
		eventType = event.EventTypeUserActivated
	}
	s.publish(eventType, user, "", actor)

	return &ActiveUser{
		ID:     user.ID.Hex(),
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Active: user.Active,
	}, nil
}

// SetBanned bans with a timestamp and reason, or clears both on unban.
func (s *UserService) SetBanned(ctx context.Context, id string, req models.BanRequest, actor *models.User) (*BannedUser, error) {
	banned := req.Banned
	patch := &models.UserPatch{Banned: &banned}
	if banned {
		reason := req.Reason
		if reason == "" {
			reason = defaultBanReason
		}
		at := s.now()
		patch.BannedReason = &reason
		patch.BannedAt = &at
	} else {
		patch.ClearBan = true
	}

	user, err := s.update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if banned {
		s.publish(event.EventTypeUserBanned, user, *patch.BannedReason, actor)
	} else {
		s.publish(event.EventTypeUserUnbanned, user, "", actor)
	}

	return &BannedUser{
		ID:           user.ID.Hex(),
		Email:        user.Email,
		Name:         user.Name,
		Role:         user.Role,
		Banned:       user.Banned,
		BannedReason: user.BannedReason,
		BannedAt:     user.BannedAt,
	}, nil
}

func (s *UserService) ResetPassword(ctx context.Context, id string, req models.AdminResetPasswordRequest) error {
	if err := invalid(invalidData, check(req)); err != nil {
		return err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !user.HasPassword() && user.HasGoogle() {
		return ErrGoogleOnlyUser
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	_, err = s.users.Update(ctx, user.ID, &models.UserPatch{PasswordHash: &hash})
	return err
}

// Progress summarizes the user's latest exams.
func (s *UserService) Progress(ctx context.Context, id string) (*models.UserProgress, error) {
	oid, err := ParseUserID(id)
	if err != nil {
		return nil, err
	}
	exams, err := s.exams.ListByUser(ctx, oid, 0, progressWindow)
	if err != nil {
		return nil, err
	}

	progress := &models.UserProgress{
		TotalExams:  len(exams),
		RecentExams: make([]models.RecentExam, 0, recentExamCount),
	}
	for i, e := range exams {
		progress.TotalQuestions += e.TotalQuestions
		progress.TotalCorrect += e.Score
		if i < recentExamCount {
			progress.RecentExams = append(progress.RecentExams, e.Recent())
		}
	}
	if progress.TotalQuestions > 0 {
		progress.AverageAccuracy = float64(progress.TotalCorrect) / float64(progress.TotalQuestions)
	}
	return progress, nil
}

func (s *UserService) Exams(ctx context.Context, id string, skip, limit int) ([]models.ExamSummary, error) {
	oid, err := ParseUserID(id)
	if err != nil {
		return nil, err
	}
	if skip < 0 {
		skip = 0
	}
	exams, err := s.exams.ListByUser(ctx, oid, skip, ClampLimit(limit, DefaultUserExamLimit, MaxListLimit))
	if err != nil {
		return nil, err
	}
	out := make([]models.ExamSummary, 0, len(exams))
	for _, e := range exams {
		out = append(out, e.Summary())
	}
	return out, nil
}

func (s *UserService) AllExams(ctx context.Context, skip, limit int) (*AdminExamPage, error) {
	if skip < 0 {
		skip = 0
	}
	items, total, err := s.exams.ListWithUsers(ctx, skip, ClampLimit(limit, DefaultAdminExamLimit, MaxListLimit))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.AdminExamItem{}
	}
	return &AdminExamPage{Items: items, Total: total}, nil
}

// ActorFor loads the caller for role checks.
func (s *UserService) ActorFor(ctx context.Context, id string) (*models.User, error) {
	return s.find(ctx, id)
}
