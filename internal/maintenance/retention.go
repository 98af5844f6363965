// internal/maintenance/retention.go
package maintenance

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// StartTurnRetention runs a daily job at localTime ("HH:MM") in tzName that
// deletes assistant_turns rows older than keepDays.
// Call once at startup: maintenance.StartTurnRetention(ctx, db, 30, "03:00", "UTC", log)
func StartTurnRetention(ctx context.Context, db *sql.DB, keepDays int, localTime, tzName string, log *zap.Logger) {
	if keepDays <= 0 {
		keepDays = 30
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("retention")
	go func() {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			loc = time.Local
		}
		h, m := parseClock(localTime)

		for {
			timer := time.NewTimer(time.Until(nextRun(time.Now().In(loc), h, m)))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				n, err := PruneTurns(ctx, db, keepDays)
				if err != nil {
					log.Warn("prune assistant_turns failed", zap.Error(err))
					continue
				}
				log.Info("assistant_turns pruned", zap.Int64("rows", n), zap.Int("keep_days", keepDays))
			}
		}
	}()
}

// PruneTurns deletes audit rows older than keepDays and reports how many went.
func PruneTurns(ctx context.Context, db *sql.DB, keepDays int) (int64, error) {
	const q = `DELETE FROM assistant_turns WHERE created_at < now() - make_interval(days => $1)`
	res, err := db.ExecContext(ctx, q, keepDays)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// parseClock reads "HH:MM", defaulting to 03:00.
func parseClock(s string) (h, m int) {
	h, m = 3, 0
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return h, m
	}
	if v, err := strconv.Atoi(parts[0]); err == nil && v >= 0 && v < 24 {
		h = v
	}
	if v, err := strconv.Atoi(parts[1]); err == nil && v >= 0 && v < 60 {
		m = v
	}
	return h, m
}

func nextRun(now time.Time, h, m int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
