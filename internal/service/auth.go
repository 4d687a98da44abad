package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ntwari02/proviQuiz/internal/event"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 10

type AuthUser struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Role  models.Role `json:"role,omitempty"`
}

type AuthResult struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type ForgotPasswordResult struct {
	Message    string     `json:"message"`
	ResetToken string     `json:"resetToken,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
}

type AuthService struct {
	users     UserStore
	jwt       *JWTService
	publisher event.Publisher
	resetTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(users UserStore, jwt *JWTService, publisher event.Publisher, resetTTL time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwt:       jwt,
		publisher: publisher,
		resetTTL:  resetTTL,
		now:       time.Now,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(user *models.User, password string) bool {
	return user.HasPassword() && bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)) == nil
}

func newResetToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ParseUserID turns a hex id into an ObjectID; malformed ids read as unknown users.
func ParseUserID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrUserNotFound
	}
	return oid, nil
}

func (s *AuthService) publishUser(eventType string, user *models.User, reason string) {
	if s.publisher == nil {
		return
	}
	ev := event.NewUserEvent(eventType, user.ID.Hex(), user.Email, string(user.Role), reason)
	if err := s.publisher.PublishUserEvent(ev); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", eventType, err)
	}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := invalid(invalidData, check(req)); err != nil {
		return nil, err
	}
	email := req.Email

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
		Role:         models.RoleStudent,
		Active:       true,
	})
	if errors.Is(err, repository.ErrDuplicateKey) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	s.publishUser(event.EventTypeUserRegistered, user, "")

	return &AuthResult{
		Token: token,
		User:  AuthUser{ID: user.ID.Hex(), Email: user.Email, Name: user.Name},
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := invalid(invalidData, check(req)); err != nil {
		return nil, err
	}
	email := req.Email

	user, err := s.users.FindByEmail(ctx, email)
	if repository.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.HasPassword() {
		return nil, ErrGoogleAccount
	}
	if !checkPassword(user, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if err := checkStanding(user); err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID.Hex())
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		Token: token,
		User:  AuthUser{ID: user.ID.Hex(), Email: user.Email, Name: user.Name, Role: user.Role},
	}, nil
}

func checkStanding(user *models.User) error {
	if user.Banned {
		return ErrBanned
	}
	if !user.Active {
		return ErrInactive
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	oid, err := ParseUserID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, oid)
	if repository.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ForgotPassword issues a reset token. The token is returned in the response
// because no mailer is wired in.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*ForgotPasswordResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := invalid(invalidData, check(req)); err != nil {
		return nil, err
	}
	email := req.Email

	user, err := s.users.FindByEmail(ctx, email)
	if repository.IsNotFound(err) {
		return &ForgotPasswordResult{Message: "If that email exists, a reset token has been generated."}, nil
	}
	if err != nil {
		return nil, err
	}

	token, err := newResetToken()
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(s.resetTTL)
	if _, err := s.users.Update(ctx, user.ID, &models.UserPatch{ResetToken: &token, ResetTokenExpires: &expires}); err != nil {
		return nil, err
	}

	return &ForgotPasswordResult{
		Message:    "Reset token generated.",
		ResetToken: token,
		ExpiresAt:  &expires,
	}, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := invalid(invalidData, check(req)); err != nil {
		return err
	}

	user, err := s.users.FindByResetToken(ctx, req.Token, s.now())
	if repository.IsNotFound(err) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	_, err = s.users.Update(ctx, user.ID, &models.UserPatch{PasswordHash: &hash, ClearReset: true})
	return err
}
