package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newPrompter(input string) *prompter {
	return &prompter{in: bufio.NewReader(strings.NewReader(input)), out: &bytes.Buffer{}}
}

func TestCollect(t *testing.T) {
	testCases := []struct {
		name     string
		flags    adminInput
		roleText string
		input    string
		want     adminInput
		wantErr  bool
	}{
		{
			name:  "everything prompted",
			input: "Boss@Example.com\nThe Boss\nsecret123\nsuperadmin\n",
			want:  adminInput{Email: "boss@example.com", Name: "The Boss", Password: "secret123", Role: models.RoleSuperAdmin},
		},
		{
			name:     "flags win",
			flags:    adminInput{Email: "ops@example.com", Name: "Ops", Password: "longenough"},
			roleText: "admin",
			want:     adminInput{Email: "ops@example.com", Name: "Ops", Password: "longenough", Role: models.RoleAdmin},
		},
		{
			name:  "unknown role falls back to admin",
			input: "a@example.com\n\nsecret123\nroot\n",
			want:  adminInput{Email: "a@example.com", Password: "secret123", Role: models.RoleAdmin},
		},
		{name: "bad email", input: "nope\n", wantErr: true},
		{name: "short password", input: "a@example.com\n\n123\n", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := collect(newPrompter(tc.input), tc.flags, tc.roleText)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := memory.NewDB().Users()
	in := adminInput{Email: "boss@example.com", Name: "Boss", Password: "secret123", Role: models.RoleAdmin}
	always := func(*models.User) bool { return true }

	user, created, err := ensureAdmin(ctx, users, in, always)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, user.Active)

	t.Run("cancelled update leaves the user alone", func(t *testing.T) {
		promote := in
		promote.Role = models.RoleSuperAdmin
		_, _, err := ensureAdmin(ctx, users, promote, func(*models.User) bool { return false })
		assert.ErrorIs(t, err, errCancelled)

		stored, err := users.FindByEmail(ctx, in.Email)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, stored.Role)
	})

	t.Run("confirmed update promotes and resets the password", func(t *testing.T) {
		promote := adminInput{Email: in.Email, Password: "another-pass", Role: models.RoleSuperAdmin}
		updated, created, err := ensureAdmin(ctx, users, promote, always)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, models.RoleSuperAdmin, updated.Role)
		assert.Equal(t, user.ID, updated.ID)
		require.NotNil(t, updated.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*updated.PasswordHash), []byte("another-pass")))
	})

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
