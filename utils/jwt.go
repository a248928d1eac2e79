package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken mints an HS256 bearer token for an owner id. Token issuing
// normally lives with the identity service; this helper exists for tooling
// and tests.
func GenerateToken(ownerID, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": ownerID,
		"exp": time.Now().Add(time.Hour * 72).Unix(),
	})
	return token.SignedString([]byte(secret))
}
