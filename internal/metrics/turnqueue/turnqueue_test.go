package turnqueue

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestQueue_FlushesOnShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO assistant_turns (turn_id, seq, intent, success, latency_ms, created_at) VALUES ($1,$2,$3,$4,$5,$6),($7,$8,$9,$10,$11,$12)`)).
		WithArgs("t1", 0, "add", true, int64(12), at, "t1", 1, "search", false, int64(3), at).
		WillReturnResult(sqlmock.NewResult(0, 2))

	q := Start(db, Options{Workers: 1, FlushEvery: time.Hour})
	if !q.Enqueue(Event{TurnID: "t1", Seq: 0, Intent: "add", Success: true, Latency: 12 * time.Millisecond, At: at}) {
		t.Fatal("enqueue rejected")
	}
	q.Enqueue(Event{TurnID: "t1", Seq: 1, Intent: "search", Latency: 3 * time.Millisecond, At: at})
	q.Shutdown()
	q.Shutdown()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
	if q.Enqueue(Event{TurnID: "t2"}) {
		t.Fatal("enqueue after shutdown should be rejected")
	}
}

func TestQueue_FlushesFullBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO assistant_turns`)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	q := Start(db, Options{Workers: 1, BatchSize: 2, FlushEvery: time.Hour})
	q.Enqueue(Event{TurnID: "a", Intent: "help"})
	q.Enqueue(Event{TurnID: "a", Seq: 1, Intent: "help"})
	q.Shutdown()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestQueue_DropsWhenFull(t *testing.T) {
	q := &Queue{ch: make(chan Event, 1), done: make(chan struct{})}
	q.log = zap.NewNop()
	if !q.Enqueue(Event{TurnID: "a"}) {
		t.Fatal("first enqueue should fit")
	}
	if q.Enqueue(Event{TurnID: "b"}) {
		t.Fatal("second enqueue should be dropped")
	}
	if q.Dropped() != 1 {
		t.Fatalf("dropped = %d, want 1", q.Dropped())
	}
	if q.Enqueue(Event{}) {
		t.Fatal("event without turn id should be ignored")
	}
	var nilQ *Queue
	if nilQ.Enqueue(Event{TurnID: "x"}) {
		t.Fatal("nil queue should reject")
	}
	nilQ.Shutdown()
}
