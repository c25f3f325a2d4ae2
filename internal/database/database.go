package database

import (
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Open connects to the database behind the DSN. postgres:// and postgresql://
// DSNs use the pgx driver; everything else is opened as a sqlite file.
func Open(dsn string) (*sqlx.DB, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// A single connection keeps :memory: databases coherent and keeps
		// the foreign_keys pragma in effect for every statement.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		db.SetMaxOpenConns(10)
	}
	return db, nil
}

// Connect opens the database or exits the process.
func Connect(dsn string) *sqlx.DB {
	db, err := Open(dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}
