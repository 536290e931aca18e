package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connection holds the database connection for one run
type Connection struct {
	DB *sql.DB
}

// NewConnection opens and pings a PostgreSQL connection for dsn
func NewConnection(ctx context.Context, dsn string) (*Connection, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Lookups are sequential, one connection is all a run uses
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Connection{DB: db}, nil
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.DB.Close()
}
