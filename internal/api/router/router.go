// Package router assembles the HTTP surface: routes plus the global
// middleware chain.
package router

import (
	"net/http"
	"time"

	"github.com/5w1tchy/shelfbot/internal/api/handlers/auth"
	"github.com/5w1tchy/shelfbot/internal/api/handlers/books"
	"github.com/5w1tchy/shelfbot/internal/api/handlers/chat"
	"github.com/5w1tchy/shelfbot/internal/api/handlers/health"
	mw "github.com/5w1tchy/shelfbot/internal/api/middlewares"
	jwtutil "github.com/5w1tchy/shelfbot/internal/security/jwt"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the built handlers and the knobs the chain needs. RDB may be nil,
// which disables rate limiting.
type Deps struct {
	Log    *zap.Logger
	Issuer *jwtutil.Issuer
	RDB    *redis.Client

	Books  *books.Handler
	Chat   *chat.Handler
	Auth   *auth.Handler
	Health *health.Handler

	ChatRatePerSec float64
	ChatBurst      int
	LoginLimit     int
	LoginWindow    time.Duration
	MaxBody        int64
	Origins        []string
	StrictHeaders  bool
}

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Apply wraps h so that the first middleware listed is the outermost.
func Apply(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func Router(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	mux := http.NewServeMux()
	requireAuth := mw.RequireAuth(d.Issuer)

	d.Health.Register(mux)
	d.Books.Register(mux, requireAuth)

	chatLimit := mw.NewRedisTokenBucket(d.RDB, d.ChatRatePerSec, d.ChatBurst, mw.PerSubjectKey("rl:chat"))
	mux.Handle("POST /chat", Apply(http.HandlerFunc(d.Chat.Chat), requireAuth, chatLimit.Middleware))

	loginLimit := mw.NewRedisSlidingWindow(d.RDB, d.LoginLimit, d.LoginWindow, mw.PerIPKey("rl:login"))
	mux.Handle("POST /auth/login", loginLimit.Middleware(http.HandlerFunc(d.Auth.Login)))

	return Apply(mux,
		mw.Recovery,
		mw.RequestID,
		mw.AccessLog(d.Log),
		mw.ResponseTimeMiddleware,
		mw.SecurityHeaders(d.StrictHeaders),
		mw.Cors(d.Origins),
		mw.HPP(mw.BookQueryParams),
		mw.BodySizeLimit(d.MaxBody),
		mw.Compression,
	)
}
