// Package bookcache wraps a catalog.Store with a versioned Redis copy of the
// full book list. Any write bumps the version so stale lists are never read.
// Redis failures fall through to the wrapped store.
package bookcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const versionKey = "books:ver"

type Store struct {
	next    catalog.Store
	rdb     redis.Cmdable
	log     *zap.Logger
	ttl     time.Duration
	shortTO time.Duration
	warned  atomic.Bool
}

var _ catalog.Store = (*Store)(nil)

// New returns next unchanged when rdb is nil or BOOKS_DISABLE_CACHE=1.
func New(next catalog.Store, rdb redis.Cmdable, log *zap.Logger) catalog.Store {
	if rdb == nil || os.Getenv("BOOKS_DISABLE_CACHE") == "1" {
		return next
	}
	if log == nil {
		log = zap.NewNop()
	}
	ttl := 10 * time.Minute
	if v := os.Getenv("BOOKS_CACHE_TTL"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			ttl = time.Duration(secs) * time.Second
		}
	}
	shortTO := 150 * time.Millisecond
	if v := os.Getenv("BOOKS_CACHE_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			shortTO = time.Duration(ms) * time.Millisecond
		}
	}
	return &Store{next: next, rdb: rdb, log: log.Named("bookcache"), ttl: ttl, shortTO: shortTO}
}

func (s *Store) listKey(ctx context.Context) (string, bool) {
	cctx, cancel := context.WithTimeout(ctx, s.shortTO)
	defer cancel()
	ver, err := s.rdb.Get(cctx, versionKey).Int64()
	// A missing key is version 0 so the first Incr moves readers to a new key.
	if errors.Is(err, redis.Nil) {
		ver = 0
	} else if err != nil {
		s.warnOnce("version read failed; bypassing cache", err)
		return "", false
	}
	return fmt.Sprintf("books:v%d:all", ver), true
}

func (s *Store) List(ctx context.Context) ([]models.Book, error) {
	key, ok := s.listKey(ctx)
	if ok {
		cctx, cancel := context.WithTimeout(ctx, s.shortTO)
		raw, err := s.rdb.Get(cctx, key).Bytes()
		cancel()
		if err == nil {
			var out []models.Book
			if jerr := json.Unmarshal(raw, &out); jerr == nil {
				return out, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.warnOnce("cache get failed", err)
		}
	}

	list, err := s.next.List(ctx)
	if err != nil || !ok {
		return list, err
	}
	if raw, jerr := json.Marshal(list); jerr == nil {
		cctx, cancel := context.WithTimeout(ctx, s.shortTO)
		if err := s.rdb.Set(cctx, key, raw, s.ttl).Err(); err != nil {
			s.warnOnce("cache set failed", err)
		}
		cancel()
	}
	return list, nil
}

func (s *Store) Get(ctx context.Context, id string) (models.Book, error) {
	return s.next.Get(ctx, id)
}

func (s *Store) ExistsByExternalID(ctx context.Context, olid string) (bool, error) {
	return s.next.ExistsByExternalID(ctx, olid)
}

func (s *Store) Create(ctx context.Context, b models.Book) (models.Book, error) {
	out, err := s.next.Create(ctx, b)
	if err == nil {
		s.bump(ctx)
	}
	return out, err
}

func (s *Store) Update(ctx context.Context, id string, b models.Book) error {
	err := s.next.Update(ctx, id, b)
	if err == nil {
		s.bump(ctx)
	}
	return err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.next.Delete(ctx, id)
	if err == nil {
		s.bump(ctx)
	}
	return err
}

// bump runs after a successful write.
func (s *Store) bump(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, s.shortTO)
	defer cancel()
	if err := s.rdb.Incr(cctx, versionKey).Err(); err != nil {
		s.log.Warn("bump version failed", zap.Error(err))
	}
}

func (s *Store) warnOnce(msg string, err error) {
	if s.warned.CompareAndSwap(false, true) {
		s.log.Warn(msg, zap.Error(err))
	}
}
