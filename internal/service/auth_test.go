package service

import (
	"context"
	"testing"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.auth.Register(ctx, models.RegisterRequest{Email: " Learner@Example.com ", Password: "secret123", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "learner@example.com", res.User.Email)
	assert.Empty(t, res.User.Role)
	assert.NotEmpty(t, res.Token)

	claims, err := f.jwt.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	_, err = f.auth.Register(ctx, models.RegisterRequest{Email: "learner@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := f.auth.Login(ctx, models.LoginRequest{Email: "LEARNER@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, login.User.Role)

	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "learner@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(context.Background(), models.RegisterRequest{Email: "not-an-email", Password: "123"})
	verr, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid data", verr.Message)
	require.Len(t, verr.Issues, 2)
	assert.Equal(t, []any{"email"}, verr.Issues[0].Path)
	assert.Equal(t, []any{"password"}, verr.Issues[1].Path)
}

func TestLoginStanding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	banned := f.seedUser(t, "banned@example.com", models.RoleStudent)
	yes := true
	_, err := f.db.Users().Update(ctx, banned.ID, &models.UserPatch{Banned: &yes})
	require.NoError(t, err)

	inactive := f.seedUser(t, "inactive@example.com", models.RoleStudent)
	no := false
	_, err = f.db.Users().Update(ctx, inactive.ID, &models.UserPatch{Active: &no})
	require.NoError(t, err)

	googleID := "g-1"
	_, err = f.db.Users().Create(ctx, &models.User{Email: "google@example.com", GoogleID: &googleID, Role: models.RoleStudent, Active: true})
	require.NoError(t, err)

	testCases := []struct {
		email string
		want  error
	}{
		{"banned@example.com", ErrBanned},
		{"inactive@example.com", ErrInactive},
		{"google@example.com", ErrGoogleAccount},
	}
	for _, tc := range testCases {
		t.Run(tc.email, func(t *testing.T) {
			_, err := f.auth.Login(ctx, models.LoginRequest{Email: tc.email, Password: "secret123"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "reset@example.com", models.RoleStudent)

	unknown, err := f.auth.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.Empty(t, unknown.ResetToken)
	assert.Equal(t, "If that email exists, a reset token has been generated.", unknown.Message)

	issued, err := f.auth.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "reset@example.com"})
	require.NoError(t, err)
	require.NotEmpty(t, issued.ResetToken)
	require.NotNil(t, issued.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), *issued.ExpiresAt, time.Minute)

	err = f.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: "0123456789abcdef", NewPassword: "newpass1"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	require.NoError(t, f.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: issued.ResetToken, NewPassword: "newpass1"}))

	_, err = f.auth.Login(ctx, models.LoginRequest{Email: "reset@example.com", Password: "newpass1"})
	require.NoError(t, err)

	err = f.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: issued.ResetToken, NewPassword: "again123"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordResetExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, "late@example.com", models.RoleStudent)

	f.auth.now = func() time.Time { return time.Now().Add(-time.Hour) }
	issued, err := f.auth.ForgotPassword(ctx, models.ForgotPasswordRequest{Email: "late@example.com"})
	require.NoError(t, err)

	f.auth.now = time.Now
	err = f.auth.ResetPassword(ctx, models.ResetPasswordRequest{Token: issued.ResetToken, NewPassword: "newpass1"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.seedUser(t, "me@example.com", models.RoleAdmin)

	got, err := f.auth.Me(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", got.Email)

	_, err = f.auth.Me(ctx, "zzz")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
