package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rsvp/internal/helpers"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) EnsureSuperuser(_ context.Context, email, hashed string) (*models.User, error) {
	u, ok := f.users[email]
	if !ok {
		u = &models.User{ID: uuid.New(), Email: email}
		f.users[email] = u
	}
	u.HashedPassword = &hashed
	u.IsActive = true
	u.IsSuperuser = true
	return u, nil
}

func TestEnsureAdminThenLogin(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	svc := NewAuthService(repo, "s3cret", time.Hour, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, " Admin@Example.com ", "Sup3r$ecret"))
	require.Contains(t, repo.users, "admin@example.com")

	res, err := svc.Login(ctx, LoginInput{Email: "ADMIN@example.com", Password: "Sup3r$ecret"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)

	verifier, err := helpers.NewTokenVerifier(ctx, "s3cret", "")
	require.NoError(t, err)
	claims, err := verifier.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3r$ecret"), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	repo := &fakeUserRepo{users: map[string]*models.User{
		"admin@example.com": {ID: uuid.New(), Email: "admin@example.com", HashedPassword: &h, IsActive: true, IsSuperuser: true},
		"guest@example.com": {ID: uuid.New(), Email: "guest@example.com", HashedPassword: &h, IsActive: true},
		"gone@example.com":  {ID: uuid.New(), Email: "gone@example.com", HashedPassword: &h, IsSuperuser: true},
	}}
	svc := NewAuthService(repo, "s3cret", time.Hour, zerolog.Nop())
	ctx := context.Background()

	cases := []LoginInput{
		{Email: "admin@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "Sup3r$ecret"},
		{Email: "guest@example.com", Password: "Sup3r$ecret"},
		{Email: "gone@example.com", Password: "Sup3r$ecret"},
	}
	for _, in := range cases {
		_, err := svc.Login(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidCredentials, in.Email)
	}

	_, err = svc.Login(ctx, LoginInput{Email: "admin@example.com"})
	assert.Contains(t, fieldErrors(t, err), "password")
}

func TestEnsureAdminSkipsWithoutCredentials(t *testing.T) {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	svc := NewAuthService(repo, "s3cret", time.Hour, zerolog.Nop())

	require.NoError(t, svc.EnsureAdmin(context.Background(), "", ""))
	assert.Empty(t, repo.users)
	assert.Error(t, svc.EnsureAdmin(context.Background(), "not-an-email", "Sup3r$ecret"))
}
