package ledger

import (
	"database/sql"
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the ledger tables if they don't exist.
func InitSchema(db *sql.DB) error {
	log.Info("Initializing containerbeheer database schema...")

	// Names are not unique in the source fleet export, so rows carry a
	// surrogate key and name is only an index.
	containersTableSQL := `
	CREATE TABLE IF NOT EXISTS containers(
		id BIGINT NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		address VARCHAR(255),
		city VARCHAR(255),
		location_code VARCHAR(64) NOT NULL,
		category VARCHAR(64) NOT NULL,
		fill_level FLOAT NOT NULL,
		latitude FLOAT NOT NULL,
		longitude FLOAT NOT NULL,
		combo_count INT NOT NULL DEFAULT 1,
		mean_fill FLOAT NOT NULL DEFAULT 0,
		on_route BOOL NOT NULL DEFAULT false,
		handled BOOL NOT NULL DEFAULT false,
		version BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		INDEX name_index (name),
		INDEX location_category_index (location_code, category)
	)`

	if _, err := db.Exec(containersTableSQL); err != nil {
		return fmt.Errorf("failed to create containers table: %w", err)
	}
	log.Info("Containers table created/verified")

	logbookTableSQL := `
	CREATE TABLE IF NOT EXISTS logbook(
		seq BIGINT NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		address VARCHAR(255),
		city VARCHAR(255),
		location_code VARCHAR(64) NOT NULL,
		category VARCHAR(64) NOT NULL,
		fill_level FLOAT NOT NULL,
		action ENUM('handled', 'removed') NOT NULL,
		ts TIMESTAMP NOT NULL,
		PRIMARY KEY (seq),
		INDEX ts_index (ts)
	)`

	if _, err := db.Exec(logbookTableSQL); err != nil {
		return fmt.Errorf("failed to create logbook table: %w", err)
	}
	log.Info("Logbook table created/verified")

	dailyTotalsTableSQL := `
	CREATE TABLE IF NOT EXISTS daily_totals(
		day CHAR(10) NOT NULL,
		high_fill_count INT NOT NULL DEFAULT 0,
		counters JSON,
		PRIMARY KEY (day)
	)`

	if _, err := db.Exec(dailyTotalsTableSQL); err != nil {
		return fmt.Errorf("failed to create daily_totals table: %w", err)
	}
	log.Info("Daily_totals table created/verified")

	return nil
}
