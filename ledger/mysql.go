package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"containerbeheer/common"
	"containerbeheer/models"
)

// MySQLStore is the shared durable store. It is the single source of truth
// for multi-session use; callers re-fetch the snapshot before mutating.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx, so the statement helpers
// below run standalone or inside a disposition transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func (s *MySQLStore) Append(ctx context.Context, entry models.LogEntry) error {
	return appendEntry(ctx, s.db, entry)
}

func appendEntry(ctx context.Context, ex execer, entry models.LogEntry) error {
	result, err := ex.ExecContext(ctx, `INSERT
		INTO logbook (name, address, city, location_code, category, fill_level, action, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Name, entry.Address, entry.City, entry.LocationCode,
		entry.Category, entry.FillLevel, string(entry.Action), entry.Timestamp)
	if err != nil {
		log.Errorf("Failed to append logbook entry for %s: %v", entry.Name, err)
		return &PersistenceError{Op: "logbook append", Err: err}
	}
	common.LogResult("logbook append", result, err, true)
	return nil
}

func (s *MySQLStore) UpsertDailyTotal(ctx context.Context, total models.DailyTotal) error {
	return upsertDailyTotal(ctx, s.db, total)
}

func upsertDailyTotal(ctx context.Context, ex execer, total models.DailyTotal) error {
	counters, err := json.Marshal(total.Counters)
	if err != nil {
		return &PersistenceError{Op: "daily total encode", Err: err}
	}
	// JSON_MERGE_PATCH overwrites only the counters supplied in this call
	// and leaves the others in place.
	_, err = ex.ExecContext(ctx, `INSERT
		INTO daily_totals (day, high_fill_count, counters)
		VALUES (?, ?, CAST(? AS JSON))
		ON DUPLICATE KEY UPDATE
			high_fill_count = ?,
			counters = JSON_MERGE_PATCH(COALESCE(counters, '{}'), CAST(? AS JSON))`,
		total.Day, total.HighFillCount, counters, total.HighFillCount, counters)
	if err != nil {
		log.Errorf("Failed to upsert daily total for %s: %v", total.Day, err)
		return &PersistenceError{Op: "daily total upsert", Err: err}
	}
	return nil
}

func (s *MySQLStore) DailyActionCounts(ctx context.Context, day string) (map[string]int, error) {
	return dailyActionCounts(ctx, s.db, day)
}

func dailyActionCounts(ctx context.Context, ex execer, day string) (map[string]int, error) {
	rows, err := ex.QueryContext(ctx, `SELECT city, COUNT(*)
		FROM logbook
		WHERE DATE(ts) = ?
		GROUP BY city`, day)
	if err != nil {
		return nil, &PersistenceError{Op: "daily action counts", Err: err}
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var city string
		var n int
		if err := rows.Scan(&city, &n); err != nil {
			return nil, &PersistenceError{Op: "daily action counts", Err: err}
		}
		counts[city] = n
	}
	return counts, rows.Err()
}

func (s *MySQLStore) LoadSnapshot(ctx context.Context) ([]models.ContainerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		name, address, city, location_code, category, fill_level,
		latitude, longitude, combo_count, mean_fill, on_route, handled, version
		FROM containers
		ORDER BY id`)
	if err != nil {
		return nil, &PersistenceError{Op: "snapshot load", Err: err}
	}
	defer rows.Close()

	records := make([]models.ContainerRecord, 0, 100)
	for rows.Next() {
		var r models.ContainerRecord
		if err := rows.Scan(&r.Name, &r.Address, &r.City, &r.LocationCode,
			&r.Category, &r.FillLevel, &r.Latitude, &r.Longitude,
			&r.ComboCount, &r.MeanFill, &r.OnRoute, &r.Handled, &r.Version); err != nil {
			return nil, &PersistenceError{Op: "snapshot load", Err: err}
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveSnapshot replaces the whole active set in one transaction, so a failed
// write never leaves a half-written snapshot behind.
func (s *MySQLStore) SaveSnapshot(ctx context.Context, records []models.ContainerRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "snapshot save", Err: err}
	}
	defer tx.Rollback()

	if err := replaceSnapshot(ctx, tx, records); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "snapshot save", Err: err}
	}
	log.Infof("Saved snapshot with %d containers", len(records))
	return nil
}

func replaceSnapshot(ctx context.Context, ex execer, records []models.ContainerRecord) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM containers`); err != nil {
		return &PersistenceError{Op: "snapshot save", Err: err}
	}
	for i := range records {
		r := &records[i]
		if _, err := ex.ExecContext(ctx, `INSERT
			INTO containers (name, address, city, location_code, category, fill_level,
				latitude, longitude, combo_count, mean_fill, on_route, handled, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Name, r.Address, r.City, r.LocationCode, r.Category, r.FillLevel,
			r.Latitude, r.Longitude, r.ComboCount, r.MeanFill, r.OnRoute, r.Handled, r.Version); err != nil {
			return &PersistenceError{Op: "snapshot save", Err: err}
		}
	}
	return nil
}

// setHandled is the conditional-update primitive: it only succeeds when a
// row with the name is still unhandled at the expected version. Names are
// not unique, so the update is pinned to the oldest matching row. A
// concurrent flip of the same row surfaces as ErrConflict instead of a
// silent overwrite.
func setHandled(ctx context.Context, ex execer, name string, version int64) error {
	result, err := ex.ExecContext(ctx, `UPDATE containers
		SET handled = TRUE, version = version + 1
		WHERE name = ? AND handled = FALSE AND version = ?
		ORDER BY id
		LIMIT 1`,
		name, version)
	if err != nil {
		return &PersistenceError{Op: "set handled", Err: err}
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return &PersistenceError{Op: "set handled", Err: err}
	}
	if affected != 1 {
		return ErrConflict
	}
	return nil
}

// ApplyHandled commits the logbook entry, the handled flip and the refreshed
// daily total as one transaction. A conflict or any statement failure rolls
// the whole transition back, so a retry starts from a clean slate.
func (s *MySQLStore) ApplyHandled(ctx context.Context, entry models.LogEntry, version int64, highFillCount int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "handled transition", Err: err}
	}
	defer tx.Rollback()

	if err := appendEntry(ctx, tx, entry); err != nil {
		return err
	}
	if err := setHandled(ctx, tx, entry.Name, version); err != nil {
		return err
	}
	if err := refreshDailyTotal(ctx, tx, entry.Timestamp, highFillCount); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "handled transition", Err: err}
	}
	return nil
}

// ApplyRemoval commits the logbook entry, the shrunken snapshot and the
// refreshed daily total as one transaction.
func (s *MySQLStore) ApplyRemoval(ctx context.Context, entry models.LogEntry, remaining []models.ContainerRecord, highFillCount int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "removal transition", Err: err}
	}
	defer tx.Rollback()

	if err := appendEntry(ctx, tx, entry); err != nil {
		return err
	}
	if err := replaceSnapshot(ctx, tx, remaining); err != nil {
		return err
	}
	if err := refreshDailyTotal(ctx, tx, entry.Timestamp, highFillCount); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "removal transition", Err: err}
	}
	log.Infof("Removed %s, %d containers remain", entry.Name, len(remaining))
	return nil
}

// refreshDailyTotal recounts the day's dispositions from the logbook, which
// inside a transition transaction already includes the entry just appended.
func refreshDailyTotal(ctx context.Context, ex execer, ts time.Time, highFillCount int) error {
	day := ts.Format("2006-01-02")
	counts, err := dailyActionCounts(ctx, ex, day)
	if err != nil {
		return err
	}
	return upsertDailyTotal(ctx, ex, models.DailyTotal{
		Day:           day,
		HighFillCount: highFillCount,
		Counters:      counts,
	})
}

func (s *MySQLStore) RecentEntries(ctx context.Context, limit int) ([]models.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		seq, name, address, city, location_code, category, fill_level, action, ts
		FROM logbook
		ORDER BY seq DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, &PersistenceError{Op: "logbook read", Err: err}
	}
	defer rows.Close()

	entries := make([]models.LogEntry, 0, limit)
	for rows.Next() {
		var e models.LogEntry
		var action string
		var ts time.Time
		if err := rows.Scan(&e.Seq, &e.Name, &e.Address, &e.City, &e.LocationCode,
			&e.Category, &e.FillLevel, &action, &ts); err != nil {
			return nil, &PersistenceError{Op: "logbook read", Err: err}
		}
		e.Action = models.Action(action)
		e.Timestamp = ts
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
