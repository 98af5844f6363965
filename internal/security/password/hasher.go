package password

import (
	"errors"

	"github.com/alexedwards/argon2id"
)

var policy = LoadParamsFromEnv()

// ErrNoHash means APP_PASSWORD_HASH is unset, so login is disabled.
var ErrNoHash = errors.New("password: no owner hash configured")

// Hash returns a PHC string like `$argon2id$v=19$m=131072,t=3,p=1$...`.
// shelfctl hash-password prints one for APP_PASSWORD_HASH.
func Hash(plain string) (string, error) {
	return argon2id.CreateHash(plain, policy.argon2())
}

// Verify checks plain against the owner's PHC hash and reports whether the
// hash predates the current policy.
func Verify(plain, phc string) (ok bool, needsRehash bool, err error) {
	if phc == "" {
		return false, false, ErrNoHash
	}
	ok, err = argon2id.ComparePasswordAndHash(plain, phc)
	if err != nil || !ok {
		return ok, false, err
	}
	return ok, NeedsRehash(phc), nil
}

func NeedsRehash(phc string) bool {
	stored, _, _, err := argon2id.DecodeHash(phc)
	if err != nil {
		return true
	}
	return stored.Memory < policy.Memory ||
		stored.Iterations < policy.Iterations ||
		stored.Parallelism < policy.Parallelism ||
		stored.SaltLength < policy.SaltLength ||
		stored.KeyLength < policy.KeyLength
}

// CheckPHC reports whether phc parses as an argon2id hash.
func CheckPHC(phc string) error {
	_, _, _, err := argon2id.DecodeHash(phc)
	return err
}
