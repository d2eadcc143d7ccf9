package database

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gdsc-campus/club-portal/config"
)

func Open(cfg config.Config) (db *sql.DB, err error) {
	// connection string options apply to every pooled connection, a plain
	// PRAGMA would only reach the one it ran on
	db, err = sql.Open("sqlite3", cfg.DBUrl+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return
	}

	return
}
