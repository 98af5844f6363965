package validate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/shelfbot/internal/security/password"
	"github.com/redis/go-redis/v9"
)

// Env validates configuration the server cannot run without.
// Fail-fast on bad config.
func Env() error {
	if len(os.Getenv("AUTH_JWT_SECRET")) < 32 {
		return errors.New("AUTH_JWT_SECRET must be at least 32 characters")
	}
	if _, err := envDuration("AUTH_ACCESS_TTL", "12h"); err != nil {
		return fmt.Errorf("AUTH_ACCESS_TTL: %w", err)
	}
	if phc := os.Getenv("APP_PASSWORD_HASH"); phc != "" {
		if err := password.CheckPHC(phc); err != nil {
			return fmt.Errorf("APP_PASSWORD_HASH: %w", err)
		}
	}

	if strings.TrimSpace(os.Getenv("LLM_API_KEY")) == "" {
		return errors.New("LLM_API_KEY is required")
	}
	switch p := strings.ToLower(os.Getenv("LLM_PROVIDER")); p {
	case "", "http", "gemini":
	default:
		return fmt.Errorf("LLM_PROVIDER: unknown provider %q", p)
	}
	if _, err := envDuration("LLM_TIMEOUT", "30s"); err != nil {
		return fmt.Errorf("LLM_TIMEOUT: %w", err)
	}

	if err := envMinUint("ARGON2_MEMORY", 19456); err != nil {
		return fmt.Errorf("ARGON2_MEMORY: %w", err)
	}
	if err := envMinUint("ARGON2_ITER", 2); err != nil {
		return fmt.Errorf("ARGON2_ITER: %w", err)
	}
	if err := envMinUint("ARGON2_PAR", 1); err != nil {
		return fmt.Errorf("ARGON2_PAR: %w", err)
	}
	if err := envMinUint("TURN_RETENTION_DAYS", 1); err != nil {
		return fmt.Errorf("TURN_RETENTION_DAYS: %w", err)
	}
	if v := os.Getenv("CHAT_RATE_PER_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err != nil || f <= 0 {
			return fmt.Errorf("CHAT_RATE_PER_SEC: must be a positive number")
		}
	}
	return nil
}

// HardeningWarnings returns non-fatal warnings to log on startup.
func HardeningWarnings(appEnv string) []string {
	var warns []string

	if os.Getenv("APP_PASSWORD_HASH") == "" {
		warns = append(warns, "APP_PASSWORD_HASH not set; POST /auth/login is disabled and write endpoints are unreachable")
	}
	if d, _ := envDuration("AUTH_ACCESS_TTL", "12h"); d > 7*24*time.Hour {
		warns = append(warns, fmt.Sprintf("AUTH_ACCESS_TTL=%s is > 7 days; consider shorter access tokens", d))
	}
	if u := os.Getenv("LLM_BASE_URL"); strings.HasPrefix(u, "http://") {
		warns = append(warns, "LLM_BASE_URL uses http://; the API key travels in clear text")
	}

	if strings.EqualFold(appEnv, "production") {
		if os.Getenv("ARGON2_MEMORY") == "" || os.Getenv("ARGON2_ITER") == "" {
			warns = append(warns, "ARGON2_* not explicitly set; using code defaults")
		}
		if u := os.Getenv("UPSTASH_REDIS_URL"); u != "" && strings.HasPrefix(u, "redis://") {
			warns = append(warns, "UPSTASH_REDIS_URL uses redis:// (no TLS). Prefer rediss:// for TLS")
		}
		if os.Getenv("UPSTASH_REDIS_URL") == "" && os.Getenv("REDIS_ADDR") != "" &&
			(os.Getenv("REDIS_PASSWORD") == "" || os.Getenv("REDIS_USER") == "") {
			warns = append(warns, "REDIS_ADDR provided without REDIS_USER/REDIS_PASSWORD; require auth in production")
		}
		if os.Getenv("CORS_ORIGINS") == "" {
			warns = append(warns, "CORS_ORIGINS not set; only the local dev frontend is allowed")
		}
	}
	return warns
}

// PingRedis checks connectivity with a short timeout.
func PingRedis(ctx context.Context, rdb redis.Cmdable, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return rdb.Ping(ctx).Err()
}

// --- helpers ---

func envDuration(key, def string) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func envMinUint(key string, min uint64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fmt.Errorf("not a number: %v", err)
	}
	if n < min {
		return fmt.Errorf("must be >= %d", min)
	}
	return nil
}
