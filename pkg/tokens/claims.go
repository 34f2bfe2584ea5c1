package tokens

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims is the payload of a bearer token. Subject carries the user id
// and ID the token's JTI, which is what the token store is keyed on.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func NewJTI() string { return uuid.NewString() }
