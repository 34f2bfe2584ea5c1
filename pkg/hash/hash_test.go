package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	h, err := HashPasswordCost("longpass1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "longpass1", h)

	assert.True(t, CheckPassword(h, "longpass1"))
	assert.False(t, CheckPassword(h, "longpass2"))
	assert.False(t, CheckPassword("not-a-hash", "longpass1"))
}

func TestHashPasswordCost_OutOfRangeUsesDefault(t *testing.T) {
	t.Parallel()

	h, err := HashPasswordCost("longpass1", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestHashPassword_LongPasswords(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("p", 80)
	h, err := HashPasswordCost(long, bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, long))

	// differs only after byte 72, which plain bcrypt would ignore
	assert.False(t, CheckPassword(h, strings.Repeat("p", 79)+"q"))
	assert.False(t, CheckPassword(h, strings.Repeat("p", MaxPasswordBytes)))
}

func TestHashPassword_ShortInputIsPlainBcrypt(t *testing.T) {
	t.Parallel()

	h, err := HashPasswordCost("longpass1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("longpass1")))
}
