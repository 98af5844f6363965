package jwtutil

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrWeakSecret = fmt.Errorf("AUTH_JWT_SECRET must be at least %d bytes", MinSecretLen)

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) < MinSecretLen {
		return nil, ErrWeakSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 12 * time.Hour
	}
	return &Issuer{cfg: cfg, now: time.Now}, nil
}

// TTL is the lifetime of tokens from SignAccess.
func (i *Issuer) TTL() time.Duration { return i.cfg.AccessTTL }

// SignAccess returns (tokenString, jti).
func (i *Issuer) SignAccess(subject string) (string, string, error) {
	jti, err := randJTI()
	if err != nil {
		return "", "", err
	}
	claims := newAccessClaims(subject, jti, i.now(), i.cfg.AccessTTL)
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Secret)
	return s, jti, err
}

// ParseAccess verifies the HS256 signature, issuer and expiry with leeway.
func (i *Issuer) ParseAccess(tokenStr string) (*AccessClaims, error) {
	parser := jwt.NewParser(
		jwt.WithLeeway(i.cfg.ClockSkew),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	token, err := parser.ParseWithClaims(tokenStr, &AccessClaims{}, func(*jwt.Token) (any, error) {
		return i.cfg.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func randJTI() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
