// Package ledger is the durable side of the pipeline: the append-only
// logbook, the daily totals and the container snapshot.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"containerbeheer/models"
)

// ErrConflict means a conditional update lost against a concurrent mutation
// of the same row. Callers re-fetch the snapshot and retry or report.
var ErrConflict = errors.New("row changed by a concurrent update")

// PersistenceError wraps a failed append or upsert. The caller must roll
// back any in-memory transition and surface the failure; the core never
// continues past a logging failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is the audit log store. Every disposition goes through ApplyHandled
// or ApplyRemoval, which commit the logbook entry, the snapshot effect and
// the daily total as one atomic unit: either the whole transition is
// durable or none of it is, so log and snapshot never diverge and a retry
// after a failure cannot double-log.
type Store interface {
	// Append adds one immutable row to the logbook.
	Append(ctx context.Context, entry models.LogEntry) error

	// UpsertDailyTotal overwrites the given counters of today's row in
	// place, leaving counters it does not name untouched, or appends a new
	// row when the day has none yet.
	UpsertDailyTotal(ctx context.Context, total models.DailyTotal) error

	// DailyActionCounts returns how many dispositions were logged on the
	// given day, keyed by city.
	DailyActionCounts(ctx context.Context, day string) (map[string]int, error)

	// LoadSnapshot returns the current active record set, in snapshot
	// order.
	LoadSnapshot(ctx context.Context) ([]models.ContainerRecord, error)

	// SaveSnapshot replaces the active record set in full, atomically.
	SaveSnapshot(ctx context.Context, records []models.ContainerRecord) error

	// ApplyHandled atomically appends the "handled" entry, flips the
	// handled flag of the first pending row with the entry's name at the
	// given version, and refreshes the day's totals. Returns ErrConflict
	// when the row was changed by another session; nothing is persisted
	// then.
	ApplyHandled(ctx context.Context, entry models.LogEntry, version int64, highFillCount int) error

	// ApplyRemoval atomically appends the "removed" entry, replaces the
	// snapshot with the remaining set and refreshes the day's totals.
	ApplyRemoval(ctx context.Context, entry models.LogEntry, remaining []models.ContainerRecord, highFillCount int) error

	// RecentEntries returns the newest logbook rows, newest first.
	RecentEntries(ctx context.Context, limit int) ([]models.LogEntry, error)
}
