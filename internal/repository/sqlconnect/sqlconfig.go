package sqlconnect

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var ErrNoDSN = errors.New("DATABASE_URL not set")

// Pool sizing; DB_MAX_CONNS overrides MaxOpen and MaxIdle.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

func PoolFromEnv() Pool {
	p := Pool{MaxOpen: 10, MaxIdle: 10, MaxIdleTime: 5 * time.Minute, MaxLifetime: 30 * time.Minute}
	if n, err := strconv.Atoi(os.Getenv("DB_MAX_CONNS")); err == nil && n > 0 {
		p.MaxOpen, p.MaxIdle = n, n
	}
	return p
}

// ConnectDB opens DATABASE_URL through the pgx stdlib driver and pings it.
func ConnectDB(ctx context.Context) (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, ErrNoDSN
	}
	return Open(ctx, dsn, PoolFromEnv())
}

func Open(ctx context.Context, dsn string, p Pool) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxIdleTime(p.MaxIdleTime)
	db.SetConnMaxLifetime(p.MaxLifetime)
	return db, nil
}
