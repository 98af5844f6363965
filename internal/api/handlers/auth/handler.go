// Package auth issues access tokens for the catalogue owner.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/5w1tchy/shelfbot/internal/api/apperr"
	"github.com/5w1tchy/shelfbot/internal/api/httpx"
	"github.com/5w1tchy/shelfbot/internal/api/middlewares"
	jwtutil "github.com/5w1tchy/shelfbot/internal/security/jwt"
	"github.com/5w1tchy/shelfbot/internal/security/password"
	"go.uber.org/zap"
)

// OwnerSubject is the token subject for the single catalogue owner.
const OwnerSubject = "owner"

type Handler struct {
	issuer    *jwtutil.Issuer
	ownerHash string
	log       *zap.Logger
}

// New returns a Handler checking logins against ownerHash, an argon2id PHC
// string. An empty hash disables login.
func New(issuer *jwtutil.Issuer, ownerHash string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{issuer: issuer, ownerHash: ownerHash, log: log.Named("auth")}
}

type LoginRequest struct {
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Password == "" {
		apperr.WriteStatus(w, r, http.StatusBadRequest, "", "password is required")
		return
	}
	log := middlewares.Logger(r, h.log)

	ok, needsRehash, err := password.Verify(strings.TrimSpace(req.Password), h.ownerHash)
	switch {
	case errors.Is(err, password.ErrNoHash):
		apperr.WriteStatus(w, r, http.StatusServiceUnavailable, "", "login is disabled")
		return
	case err != nil:
		log.Error("owner hash check failed", zap.Error(err))
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "", "")
		return
	case !ok:
		log.Info("login rejected")
		apperr.WriteStatus(w, r, http.StatusUnauthorized, "", "invalid password")
		return
	}
	if needsRehash {
		log.Warn("APP_PASSWORD_HASH is weaker than the current argon2 policy; regenerate it with shelfctl hash-password")
	}

	token, jti, err := h.issuer.SignAccess(OwnerSubject)
	if err != nil {
		log.Error("sign access token", zap.Error(err))
		apperr.WriteStatus(w, r, http.StatusInternalServerError, "", "")
		return
	}
	log.Info("login ok", zap.String("jti", jti))
	httpx.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.issuer.TTL().Seconds()),
	})
}
