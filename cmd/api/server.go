package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/5w1tchy/shelfbot/internal/api/handlers/auth"
	"github.com/5w1tchy/shelfbot/internal/api/handlers/books"
	"github.com/5w1tchy/shelfbot/internal/api/handlers/chat"
	"github.com/5w1tchy/shelfbot/internal/api/handlers/health"
	mw "github.com/5w1tchy/shelfbot/internal/api/middlewares"
	"github.com/5w1tchy/shelfbot/internal/api/router"
	"github.com/5w1tchy/shelfbot/internal/assistant"
	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/executor"
	"github.com/5w1tchy/shelfbot/internal/llm"
	"github.com/5w1tchy/shelfbot/internal/logx"
	"github.com/5w1tchy/shelfbot/internal/maintenance"
	"github.com/5w1tchy/shelfbot/internal/metrics/turnqueue"
	"github.com/5w1tchy/shelfbot/internal/platform/openlibrary"
	"github.com/5w1tchy/shelfbot/internal/repository/redisconnect"
	"github.com/5w1tchy/shelfbot/internal/repository/sqlconnect"
	jwtutil "github.com/5w1tchy/shelfbot/internal/security/jwt"
	"github.com/5w1tchy/shelfbot/internal/storage/s3"
	"github.com/5w1tchy/shelfbot/internal/store/bookcache"
	booksstore "github.com/5w1tchy/shelfbot/internal/store/books"
	"github.com/5w1tchy/shelfbot/internal/validate"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	appEnv := envOr("APP_ENV", "development")
	log, err := logx.New(os.Getenv("LOG_LEVEL"), appEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if err := run(log, appEnv); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(log *zap.Logger, appEnv string) error {
	if err := validate.Env(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, w := range validate.HardeningWarnings(appEnv) {
		log.Warn("hardening", zap.String("hint", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlconnect.ConnectDB(ctx)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	log.Info("connected to postgres")

	rdb := connectRedis(ctx, log)
	if rdb != nil {
		defer rdb.Close()
	}

	var store catalog.Store = booksstore.New(db)
	if rdb != nil {
		store = bookcache.New(store, rdb, log)
	}

	covers, err := s3.NewFromEnv(ctx)
	switch {
	case errors.Is(err, s3.ErrDisabled):
		log.Info("cover storage disabled")
	case err != nil:
		return fmt.Errorf("s3: %w", err)
	}

	gw, err := llm.New(ctx, llm.LoadConfig(), log)
	if err != nil {
		return err
	}
	prompts, err := llm.LoadPrompts(os.Getenv("PROMPTS_FILE"))
	if err != nil {
		return err
	}

	opts := []executor.Option{executor.WithConversation(gw)}
	if ol := openlibrary.FromEnv(); ol != nil {
		opts = append(opts, executor.WithEnricher(ol))
		log.Info("open library enrichment enabled")
	}
	exec := executor.New(store, prompts, log, opts...)

	turns := turnqueue.Start(db, turnqueue.Options{Log: log})
	defer turns.Shutdown()
	bot := assistant.New(gw, store, exec, prompts, log, assistant.WithAuditor(turns))

	maintenance.StartTurnRetention(ctx, db, envInt("TURN_RETENTION_DAYS", 30), "03:00", envOr("TZ", "UTC"), log)

	issuer, err := jwtutil.New(jwtutil.LoadConfig())
	if err != nil {
		return err
	}

	var coverStore books.Covers
	if covers != nil {
		coverStore = covers
	}
	handler := router.Router(router.Deps{
		Log:    log,
		Issuer: issuer,
		RDB:    rdb,
		Books:  books.New(store, coverStore, log),
		Chat:   chat.New(bot, log),
		Auth:   auth.New(issuer, os.Getenv("APP_PASSWORD_HASH"), log),
		Health: health.New(readiness(db, rdb)),

		ChatRatePerSec: envFloat("CHAT_RATE_PER_SEC", 0.5),
		ChatBurst:      envInt("CHAT_BURST", 5),
		LoginLimit:     envInt("LOGIN_MAX_ATTEMPTS", 10),
		LoginWindow:    5 * time.Minute,
		MaxBody:        int64(envInt("MAX_BODY_SIZE", int(mw.DefaultMaxBody))),
		Origins:        mw.OriginsFromEnv(),
		StrictHeaders:  appEnv == "production",
	})

	server := &http.Server{
		Addr:              envOr("APP_ADDR", ":3000"),
		Handler:           handler,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ReadHeaderTimeout: 5 * time.Second,
		// chat turns wait on the model
		WriteTimeout: llm.LoadConfig().Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		cert, key := os.Getenv("TLS_CERT_FILE"), os.Getenv("TLS_KEY_FILE")
		log.Info("server listening", zap.String("addr", server.Addr), zap.Bool("tls", cert != ""))
		if cert != "" && key != "" {
			errCh <- server.ListenAndServeTLS(cert, key)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown", zap.Error(err))
	}
	turns.Shutdown()
	log.Info("audit queue drained", zap.Int64("dropped", turns.Dropped()))
	return nil
}

// connectRedis returns nil when Redis is unset or unreachable; the server
// then runs without list caching and rate limits.
func connectRedis(ctx context.Context, log *zap.Logger) *redis.Client {
	rdb, err := redisconnect.FromEnv()
	if errors.Is(err, redisconnect.ErrNotConfigured) {
		log.Warn("redis not configured; caching and rate limiting disabled")
		return nil
	}
	if err != nil {
		log.Warn("redis config invalid; continuing without it", zap.Error(err))
		return nil
	}
	if err := validate.PingRedis(ctx, rdb, 2*time.Second); err != nil {
		log.Warn("redis unreachable; continuing without it", zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	log.Info("connected to redis")
	return rdb
}

func readiness(db *sql.DB, rdb *redis.Client) map[string]health.Check {
	checks := map[string]health.Check{"db": db.PingContext}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil && n > 0 {
		return n
	}
	return def
}

func envFloat(k string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil && f > 0 {
		return f
	}
	return def
}
