package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-jwt-secret")

func TestNewAccessToken_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	exp := now.Add(15 * 24 * time.Hour)
	jti := NewJTI()

	token, err := NewAccessToken("user-1", "manager", jti, now, exp, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := AccessClaimsFromToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, jti, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessClaimsFromToken_Rejects(t *testing.T) {
	t.Parallel()

	now := time.Now()
	valid, err := NewAccessToken("u", "admin", NewJTI(), now, now.Add(time.Hour), testSecret)
	require.NoError(t, err)

	expired, err := NewAccessToken("u", "admin", NewJTI(), now.Add(-2*time.Hour), now.Add(-time.Hour), testSecret)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{Role: "admin"}).SignedString(testSecret)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret []byte
		target error
	}{
		{name: "wrong secret", token: valid, secret: []byte("other"), target: jwt.ErrSignatureInvalid},
		{name: "expired", token: expired, secret: testSecret, target: jwt.ErrTokenExpired},
		{name: "missing exp", token: noExp, secret: testSecret, target: jwt.ErrTokenRequiredClaimMissing},
		{name: "other alg", token: hs512, secret: testSecret, target: ErrUnexpectedSignMethod},
		{name: "garbage", token: "not-a-jwt", secret: testSecret, target: jwt.ErrTokenMalformed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := AccessClaimsFromToken(tt.token, tt.secret)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sha256Hex(""))
	assert.Len(t, Sha256Hex("token"), 64)
	assert.NotEqual(t, NewJTI(), NewJTI())
}
