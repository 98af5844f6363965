package redisconnect

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured means neither UPSTASH_REDIS_URL nor REDIS_ADDR is set.
// Callers run without caching and rate limiting.
var ErrNotConfigured = errors.New("redis not configured")

// Options builds client options from UPSTASH_REDIS_URL, or from
// REDIS_ADDR/REDIS_USER/REDIS_PASSWORD. Set REDIS_TLS=0 for a plain local
// server.
func Options() (*redis.Options, error) {
	if url := os.Getenv("UPSTASH_REDIS_URL"); url != "" {
		// e.g. rediss://default:<token>@host:port
		opt, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("invalid UPSTASH_REDIS_URL: %w", err)
		}
		if opt.TLSConfig == nil && os.Getenv("REDIS_TLS") != "0" {
			opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		opt.DialTimeout = 5 * time.Second
		opt.ReadTimeout = 1 * time.Second
		opt.WriteTimeout = 1 * time.Second
		return opt, nil
	}

	addr := os.Getenv("REDIS_ADDR") // host:port, no scheme
	if addr == "" {
		return nil, ErrNotConfigured
	}
	opt := &redis.Options{
		Addr:         addr,
		Username:     os.Getenv("REDIS_USER"),
		Password:     os.Getenv("REDIS_PASSWORD"),
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	}
	if os.Getenv("REDIS_TLS") != "0" {
		opt.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opt, nil
}

func FromEnv() (*redis.Client, error) {
	opt, err := Options()
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}
