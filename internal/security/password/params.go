package password

import (
	"os"
	"strconv"

	"github.com/alexedwards/argon2id"
)

type Params struct {
	Memory      uint32 // kibibytes
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func (p Params) argon2() *argon2id.Params {
	return &argon2id.Params{
		Memory:      p.Memory,
		Iterations:  p.Iterations,
		Parallelism: p.Parallelism,
		SaltLength:  p.SaltLength,
		KeyLength:   p.KeyLength,
	}
}

func loadEnvUint32(key string, def uint32) uint32 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			return uint32(n)
		}
	}
	return def
}

func loadEnvUint8(key string, def uint8) uint8 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil && n > 0 {
			return uint8(n)
		}
	}
	return def
}

// LoadParamsFromEnv reads ARGON2_MEMORY, ARGON2_ITER and ARGON2_PAR.
// Default ~64 MiB, t=3: one login per session does not need more.
func LoadParamsFromEnv() Params {
	return Params{
		Memory:      loadEnvUint32("ARGON2_MEMORY", 65536),
		Iterations:  loadEnvUint32("ARGON2_ITER", 3),
		Parallelism: loadEnvUint8("ARGON2_PAR", 1),
		SaltLength:  16,
		KeyLength:   32,
	}
}
