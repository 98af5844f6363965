// Package turnqueue batches assistant command outcomes into the
// assistant_turns table without blocking the chat path.
package turnqueue

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Event is one executed command.
type Event struct {
	TurnID  string
	Seq     int
	Intent  string
	Success bool
	Latency time.Duration
	At      time.Time
}

type Options struct {
	Buffer     int           // default 10000
	Workers    int           // default 2
	BatchSize  int           // default 100
	FlushEvery time.Duration // default 250ms
	WriteTO    time.Duration // default 500ms
	Log        *zap.Logger
}

func (o *Options) defaults() {
	if o.Buffer <= 0 {
		o.Buffer = 10000
	}
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 100
	}
	if o.FlushEvery <= 0 {
		o.FlushEvery = 250 * time.Millisecond
	}
	if o.WriteTO <= 0 {
		o.WriteTO = 500 * time.Millisecond
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
}

type Queue struct {
	db      *sql.DB
	opt     Options
	ch      chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	stop    sync.Once
	dropped atomic.Int64
	log     *zap.Logger
}

const insertTmpl = `INSERT INTO assistant_turns (turn_id, seq, intent, success, latency_ms, created_at) VALUES %s`

// Start spins up the workers. Call Shutdown to flush and stop them.
func Start(db *sql.DB, opt Options) *Queue {
	opt.defaults()
	q := &Queue{
		db:   db,
		opt:  opt,
		ch:   make(chan Event, opt.Buffer),
		done: make(chan struct{}),
		log:  opt.Log.Named("turnqueue"),
	}
	for i := 0; i < opt.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Enqueue never blocks. When the buffer is full the event is dropped and
// false is returned.
func (q *Queue) Enqueue(ev Event) bool {
	if q == nil || ev.TurnID == "" {
		return false
	}
	select {
	case <-q.done:
		return false
	default:
	}
	select {
	case q.ch <- ev:
		return true
	default:
		if n := q.dropped.Add(1); n == 1 || n%1000 == 0 {
			q.log.Warn("buffer full, dropping events", zap.Int64("dropped", n))
		}
		return false
	}
}

// Dropped reports how many events were discarded.
func (q *Queue) Dropped() int64 { return q.dropped.Load() }

// Shutdown signals workers to stop, flushes remaining events and waits.
func (q *Queue) Shutdown() {
	if q == nil {
		return
	}
	q.stop.Do(func() { close(q.done) })
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	tk := time.NewTicker(q.opt.FlushEvery)
	defer tk.Stop()

	batch := make([]Event, 0, q.opt.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := q.insertBatch(batch); err != nil {
			q.log.Warn("insert failed", zap.Int("events", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}
	add := func(ev Event) {
		batch = append(batch, ev)
		if len(batch) >= q.opt.BatchSize {
			flush()
		}
	}

	for {
		select {
		case <-q.done:
			for {
				select {
				case ev := <-q.ch:
					add(ev)
				default:
					flush()
					return
				}
			}
		case ev := <-q.ch:
			add(ev)
		case <-tk.C:
			flush()
		}
	}
}

func (q *Queue) insertBatch(batch []Event) error {
	const cols = 6
	args := make([]any, 0, len(batch)*cols)
	vals := make([]string, 0, len(batch))
	for i, ev := range batch {
		b := i * cols
		vals = append(vals, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)", b+1, b+2, b+3, b+4, b+5, b+6))
		args = append(args, ev.TurnID, ev.Seq, ev.Intent, ev.Success, ev.Latency.Milliseconds(), ev.At)
	}
	ctx, cancel := context.WithTimeout(context.Background(), q.opt.WriteTO)
	defer cancel()
	_, err := q.db.ExecContext(ctx, fmt.Sprintf(insertTmpl, strings.Join(vals, ",")), args...)
	return err
}
