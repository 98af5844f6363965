package jwtutil

import (
	"os"
	"strconv"
	"time"
)

// MinSecretLen is the shortest HS256 secret Issuer accepts.
const MinSecretLen = 32

type Config struct {
	Secret    []byte
	ClockSkew time.Duration
	AccessTTL time.Duration
}

// LoadConfig reads AUTH_JWT_SECRET, AUTH_CLOCK_SKEW_SEC and AUTH_ACCESS_TTL.
func LoadConfig() Config {
	return Config{
		Secret:    []byte(os.Getenv("AUTH_JWT_SECRET")),
		ClockSkew: time.Duration(parseInt("AUTH_CLOCK_SKEW_SEC", 60)) * time.Second,
		AccessTTL: parseDuration("AUTH_ACCESS_TTL", 12*time.Hour),
	}
}

func parseInt(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func parseDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
