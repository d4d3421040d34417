package common

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"

	"containerbeheer/config"
)

// DBConnect opens the MySQL pool and waits for the database to become
// reachable, with exponential backoff up to a deadline.
func DBConnect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Errorf("Failed to connect to the database: %v", err)
		return nil, err
	}

	maxOpen := envInt("DB_MAX_OPEN_CONNS", 25)
	maxIdle := envInt("DB_MAX_IDLE_CONNS", 10)
	connMaxLifetimeMin := envInt("DB_CONN_MAX_LIFETIME_MIN", 5)
	pingMaxWaitSec := envInt("DB_PING_MAX_WAIT_SEC", 60)

	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if connMaxLifetimeMin > 0 {
		db.SetConnMaxLifetime(time.Duration(connMaxLifetimeMin) * time.Minute)
	}

	deadline := time.Now().Add(time.Duration(pingMaxWaitSec) * time.Second)
	waitInterval := time.Second
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		pingErr := db.PingContext(ctx)
		cancel()
		if pingErr == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("database ping timeout after %ds: %w", pingMaxWaitSec, pingErr)
		}
		log.Warnf("Database connection failed, retrying in %v: %v", waitInterval, pingErr)
		time.Sleep(waitInterval)
		waitInterval *= 2
		if waitInterval > 30*time.Second {
			waitInterval = 30 * time.Second
		}
	}

	log.Infof("Established db connection pool: open=%d idle=%d max_lifetime_min=%d", maxOpen, maxIdle, connMaxLifetimeMin)
	return db, nil
}

func envInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
