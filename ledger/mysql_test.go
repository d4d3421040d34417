package ledger

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"

	"containerbeheer/models"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
)

func setUp() {
	db, mock, _ = sqlmock.New()
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var testEntry = models.LogEntry{
	Name:         "A",
	Address:      "Kerkstraat 1",
	City:         "Delft",
	LocationCode: "L1",
	Category:     "Glas",
	FillLevel:    85,
	Action:       models.ActionHandled,
	Timestamp:    time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
}

func TestAppend(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)

		mock.ExpectExec("INSERT INTO logbook (.+)").
			WithArgs("A", "Kerkstraat 1", "Delft", "L1", "Glas", 85.0, "handled", testEntry.Timestamp).
			WillReturnResult(sqlmock.NewResult(1, 1))

		if err := store.Append(context.Background(), testEntry); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestAppendFailure(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)

		mock.ExpectExec("INSERT INTO logbook (.+)").
			WillReturnError(errors.New("connection lost"))

		err := store.Append(context.Background(), testEntry)
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("got %v, expected PersistenceError", err)
		}
	})
}

func TestUpsertDailyTotal(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)

		// Same day twice: both calls go through the same upsert statement,
		// so the table keeps one row per day with the latest values.
		counters1 := []byte(`{"Delft":1}`)
		counters2 := []byte(`{"Delft":2}`)
		mock.ExpectExec("INSERT INTO daily_totals (.+) ON DUPLICATE KEY UPDATE (.+)").
			WithArgs("2026-08-30", 3, counters1, 3, counters1).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO daily_totals (.+) ON DUPLICATE KEY UPDATE (.+)").
			WithArgs("2026-08-30", 4, counters2, 4, counters2).
			WillReturnResult(sqlmock.NewResult(1, 2))

		ctx := context.Background()
		if err := store.UpsertDailyTotal(ctx, models.DailyTotal{
			Day: "2026-08-30", HighFillCount: 3, Counters: map[string]int{"Delft": 1},
		}); err != nil {
			t.Fatalf("first upsert failed: %v", err)
		}
		if err := store.UpsertDailyTotal(ctx, models.DailyTotal{
			Day: "2026-08-30", HighFillCount: 4, Counters: map[string]int{"Delft": 2},
		}); err != nil {
			t.Fatalf("second upsert failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestApplyHandled(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)

		// One transaction covers the logbook entry, the conditional flip
		// and the refreshed daily total.
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO logbook (.+)").
			WithArgs("A", "Kerkstraat 1", "Delft", "L1", "Glas", 85.0, "handled", testEntry.Timestamp).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE containers SET handled = TRUE, version = version (.+) ORDER BY id(.+)LIMIT 1").
			WithArgs("A", int64(0)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT city, COUNT(.+) FROM logbook (.+) GROUP BY city").
			WithArgs("2026-08-30").
			WillReturnRows(sqlmock.NewRows([]string{"city", "count"}).AddRow("Delft", 1))
		mock.ExpectExec("INSERT INTO daily_totals (.+) ON DUPLICATE KEY UPDATE (.+)").
			WithArgs("2026-08-30", 2, []byte(`{"Delft":1}`), 2, []byte(`{"Delft":1}`)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		if err := store.ApplyHandled(context.Background(), testEntry, 0, 2); err != nil {
			t.Fatalf("ApplyHandled failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestApplyHandledConflictRollsBack(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)

		// A lost race on the flip aborts the transaction: the logbook
		// entry already written inside it must not survive.
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO logbook (.+)").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("UPDATE containers SET handled = TRUE, version = version (.+)").
			WithArgs("A", int64(0)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := store.ApplyHandled(context.Background(), testEntry, 0, 2)
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("got %v, expected ErrConflict", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestApplyHandledAppendFailureRollsBack(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO logbook (.+)").
			WillReturnError(errors.New("connection lost"))
		mock.ExpectRollback()

		err := store.ApplyHandled(context.Background(), testEntry, 0, 2)
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("got %v, expected PersistenceError", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestApplyRemoval(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)
		entry := testEntry
		entry.Action = models.ActionRemoved
		remaining := []models.ContainerRecord{
			{Name: "B", LocationCode: "L1", Category: "Glas", FillLevel: 60, ComboCount: 1, MeanFill: 60},
		}

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO logbook (.+)").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("DELETE FROM containers").
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec("INSERT INTO containers (.+)").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectQuery("SELECT city, COUNT(.+) FROM logbook (.+) GROUP BY city").
			WithArgs("2026-08-30").
			WillReturnRows(sqlmock.NewRows([]string{"city", "count"}).AddRow("Delft", 1))
		mock.ExpectExec("INSERT INTO daily_totals (.+) ON DUPLICATE KEY UPDATE (.+)").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		if err := store.ApplyRemoval(context.Background(), entry, remaining, 0); err != nil {
			t.Fatalf("ApplyRemoval failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestSaveSnapshotTransaction(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)
		records := []models.ContainerRecord{
			{Name: "A", LocationCode: "L1", Category: "Glas", FillLevel: 85, ComboCount: 1, MeanFill: 85},
		}

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM containers").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("INSERT INTO containers (.+)").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		if err := store.SaveSnapshot(context.Background(), records); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestSaveSnapshotDuplicateNames(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)
		// The fleet export can repeat a container name; rows are keyed by
		// a surrogate id, so both inserts go through.
		records := []models.ContainerRecord{
			{Name: "A", LocationCode: "L1", Category: "Glas", FillLevel: 85},
			{Name: "A", LocationCode: "L2", Category: "Rest", FillLevel: 40},
		}

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM containers").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO containers (.+)").
			WithArgs("A", "", "", "L1", "Glas", 85.0, 0.0, 0.0, 0, 0.0, false, false, int64(0)).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO containers (.+)").
			WithArgs("A", "", "", "L2", "Rest", 40.0, 0.0, 0.0, 0, 0.0, false, false, int64(0)).
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		if err := store.SaveSnapshot(context.Background(), records); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestSaveSnapshotRollsBackOnFailure(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)
		records := []models.ContainerRecord{
			{Name: "A", LocationCode: "L1", Category: "Glas"},
		}

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM containers").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("INSERT INTO containers (.+)").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := store.SaveSnapshot(context.Background(), records)
		var perr *PersistenceError
		if !errors.As(err, &perr) {
			t.Fatalf("got %v, expected PersistenceError", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})
}

func TestLoadSnapshot(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)

		columns := []string{"name", "address", "city", "location_code", "category", "fill_level",
			"latitude", "longitude", "combo_count", "mean_fill", "on_route", "handled", "version"}
		mock.ExpectQuery("SELECT (.+) FROM containers").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("A", "Kerkstraat 1", "Delft", "L1", "Glas", 85.0, 52.0, 4.0, 2, 72.5, true, false, 0).
				AddRow("B", "Kerkstraat 2", "Delft", "L1", "Glas", 60.0, 52.002, 4.0, 2, 72.5, false, true, 1))

		records, err := store.LoadSnapshot(context.Background())
		if err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records, expected 2", len(records))
		}
		if !records[0].OnRoute || records[0].Handled {
			t.Errorf("record A flags wrong: %+v", records[0])
		}
		if records[1].Version != 1 {
			t.Errorf("record B version %d, expected 1", records[1].Version)
		}
	})
}

func TestDailyActionCounts(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)

		mock.ExpectQuery("SELECT city, COUNT(.+) FROM logbook (.+) GROUP BY city").
			WithArgs("2026-08-30").
			WillReturnRows(sqlmock.NewRows([]string{"city", "count"}).
				AddRow("Delft", 2).
				AddRow("Rijswijk", 1))

		counts, err := store.DailyActionCounts(context.Background(), "2026-08-30")
		if err != nil {
			t.Fatalf("DailyActionCounts failed: %v", err)
		}
		if counts["Delft"] != 2 || counts["Rijswijk"] != 1 {
			t.Errorf("unexpected counts %v", counts)
		}
	})
}

func TestRecentEntries(t *testing.T) {
	it(func() {
		store := NewMySQLStore(db)

		columns := []string{"seq", "name", "address", "city", "location_code", "category", "fill_level", "action", "ts"}
		mock.ExpectQuery("SELECT (.+) FROM logbook ORDER BY seq DESC LIMIT (.+)").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(2, "B", "", "Delft", "L1", "Glas", 60.0, "removed", testEntry.Timestamp).
				AddRow(1, "A", "", "Delft", "L1", "Glas", 85.0, "handled", testEntry.Timestamp))

		entries, err := store.RecentEntries(context.Background(), 10)
		if err != nil {
			t.Fatalf("RecentEntries failed: %v", err)
		}
		if len(entries) != 2 || entries[0].Action != models.ActionRemoved {
			t.Errorf("unexpected entries %+v", entries)
		}
	})
}
