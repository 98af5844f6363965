package sqlconnect

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPoolFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "")
	p := PoolFromEnv()
	if p.MaxOpen != 10 || p.MaxIdleTime != 5*time.Minute {
		t.Fatalf("defaults: %+v", p)
	}
	t.Setenv("DB_MAX_CONNS", "25")
	if p := PoolFromEnv(); p.MaxOpen != 25 || p.MaxIdle != 25 {
		t.Fatalf("override: %+v", p)
	}
}

func TestConnectDB_NoDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := ConnectDB(context.Background()); !errors.Is(err, ErrNoDSN) {
		t.Fatalf("err = %v, want ErrNoDSN", err)
	}
}
