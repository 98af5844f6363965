package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "shelfbot"

// AccessClaims identify the catalogue owner. There is one owner, so the
// subject is informational and scopes rate limits.
type AccessClaims struct {
	jwt.RegisteredClaims
}

func newAccessClaims(subject, jti string, now time.Time, ttl time.Duration) AccessClaims {
	return AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
