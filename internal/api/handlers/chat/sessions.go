package chat

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// sessions hands out one weight-1 semaphore per session key so turns from
// the same conversation run in arrival order. Entries are dropped when the
// last waiter leaves.
type sessions struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newSessions() *sessions {
	return &sessions{locks: make(map[string]*sessionLock)}
}

// acquire blocks until key is free or ctx is done. The returned func
// releases the lock and must be called exactly once on success.
func (s *sessions) acquire(ctx context.Context, key string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sessionLock{sem: semaphore.NewWeighted(1)}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		s.leave(key, l)
		return nil, err
	}
	return func() {
		l.sem.Release(1)
		s.leave(key, l)
	}, nil
}

func (s *sessions) leave(key string, l *sessionLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
}

func (s *sessions) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}
