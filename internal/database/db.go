// Package database manages the sqlite snapshot cache for fetched market
// data. Computed portfolios are never persisted; only raw collaborator
// responses are cached so repeated runs avoid refetching.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Use WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Migrate creates the snapshot cache tables.
func (db *DB) Migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS price_history (
		symbol     TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL,
		closes     TEXT NOT NULL,
		PRIMARY KEY (symbol)
	);

	CREATE TABLE IF NOT EXISTS company_facts (
		cik        TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL,
		document   TEXT NOT NULL,
		PRIMARY KEY (cik)
	);

	CREATE TABLE IF NOT EXISTS article_sentiment (
		symbol     TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL,
		negative   REAL NOT NULL,
		neutral    REAL NOT NULL,
		positive   REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_article_sentiment_symbol ON article_sentiment(symbol);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
