package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/role_gate/internal/dbtest"
	"github.com/Skotchmaster/role_gate/internal/models"
	"github.com/Skotchmaster/role_gate/internal/roles"
	"github.com/Skotchmaster/role_gate/pkg/tokens"
)

func newTestRepo(t *testing.T) *GormRepo {
	return &GormRepo{DB: dbtest.New(t)}
}

func createUser(t *testing.T, r *GormRepo, email string, role roles.Role) *models.User {
	t.Helper()
	u := &models.User{Name: "A", Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, r.CreateUserIfNotExists(context.Background(), u))
	return u
}

func newToken(userID string) *models.AccessToken {
	now := time.Now().UTC()
	jti := tokens.NewJTI()
	return &models.AccessToken{
		JTI:       jti,
		TokenHash: tokens.Sha256Hex("raw-" + jti),
		UserID:    userID,
		Name:      "auth_token",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestCreateUserIfNotExists_DuplicateEmail(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	first := createUser(t, r, "a@x.com", roles.Employee)
	require.NotEmpty(t, first.ID)

	dup := &models.User{Name: "B", Email: "a@x.com", PasswordHash: "other", Role: roles.Admin}
	err := r.CreateUserIfNotExists(ctx, dup)
	require.ErrorIs(t, err, ErrUserAlreadyExist)

	stored, err := r.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "A", stored.Name)
	assert.Equal(t, "hash", stored.PasswordHash)
	assert.Equal(t, roles.Employee, stored.Role)
}

func TestFindUser_NotFound(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.FindUserByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = r.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestReplaceUserTokens_KeepsOnlyLatest(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := createUser(t, r, "a@x.com", roles.Manager)
	other := createUser(t, r, "b@x.com", roles.Manager)

	otherTok := newToken(other.ID)
	require.NoError(t, r.ReplaceUserTokens(ctx, other.ID, otherTok))

	first := newToken(u.ID)
	require.NoError(t, r.ReplaceUserTokens(ctx, u.ID, first))
	second := newToken(u.ID)
	require.NoError(t, r.ReplaceUserTokens(ctx, u.ID, second))

	count, err := r.CountUserTokens(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = r.FindToken(ctx, first.JTI, first.TokenHash)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	got, err := r.FindToken(ctx, second.JTI, second.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)

	_, err = r.FindToken(ctx, otherTok.JTI, otherTok.TokenHash)
	assert.NoError(t, err, "other users' sessions survive")
}

func TestReplaceUserTokens_UnknownUser(t *testing.T) {
	r := newTestRepo(t)

	err := r.ReplaceUserTokens(context.Background(), "ghost", newToken("ghost"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindToken_HashMustMatch(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := createUser(t, r, "a@x.com", roles.Admin)

	tok := newToken(u.ID)
	require.NoError(t, r.ReplaceUserTokens(ctx, u.ID, tok))

	_, err := r.FindToken(ctx, tok.JTI, tokens.Sha256Hex("forged"))
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRevokeToken(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	u := createUser(t, r, "a@x.com", roles.Employee)

	tok := newToken(u.ID)
	require.NoError(t, r.ReplaceUserTokens(ctx, u.ID, tok))

	require.NoError(t, r.RevokeToken(ctx, tok.JTI))
	require.NoError(t, r.RevokeToken(ctx, tok.JTI))

	_, err := r.FindToken(ctx, tok.JTI, tok.TokenHash)
	assert.ErrorIs(t, err, ErrTokenNotFound)

	count, err := r.CountUserTokens(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
