package database

import (
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// InitDB opens the store and loads the schema. Pass ":memory:" for a store
// that lives exactly as long as the returned handle.
func InitDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Every new connection to ":memory:" is a new, empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err = loadSchema(db, schema); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// loadSchema executes the SQL schema statements.
func loadSchema(db *sql.DB, content string) error {
	_, err := db.Exec(content)
	return err
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}
