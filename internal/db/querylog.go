package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Query types recorded in weapon_query_logs
const (
	QueryTypeList       = "list"
	QueryTypeLookup     = "lookup"
	QueryTypeSearch     = "search"
	QueryTypeStats      = "stats"
	QueryTypeEfficiency = "efficiency"
)

// QueryLog represents a weapon query log entry
type QueryLog struct {
	RequestID   string
	QueryType   string // one of the QueryType constants
	QueryText   string
	ResultCount int
	LatencyMs   int
	Status      int
}

// QueryLogger logs weapon queries to the weapon_query_logs table
type QueryLogger struct {
	db *sql.DB
}

// NewQueryLogger opens a Postgres connection and returns a query logger
func NewQueryLogger(dsn string) (*QueryLogger, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &QueryLogger{db: db}, nil
}

// EnsureSchema creates the weapon_query_logs table if it does not exist
func (l *QueryLogger) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS weapon_query_logs (
			id           BIGSERIAL PRIMARY KEY,
			request_id   TEXT,
			query_type   TEXT NOT NULL,
			query_text   TEXT,
			result_count INTEGER NOT NULL,
			latency_ms   INTEGER NOT NULL,
			status       INTEGER NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := l.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create weapon_query_logs: %w", err)
	}

	return nil
}

// LogQuery logs a single weapon query
func (l *QueryLogger) LogQuery(ctx context.Context, log *QueryLog) error {
	query := `
		INSERT INTO weapon_query_logs (
			request_id, query_type, query_text, result_count, latency_ms, status
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := l.db.ExecContext(ctx, query,
		log.RequestID,
		log.QueryType,
		log.QueryText,
		log.ResultCount,
		log.LatencyMs,
		log.Status,
	)

	if err != nil {
		return fmt.Errorf("failed to log query: %w", err)
	}

	return nil
}

// Ping checks database connectivity
func (l *QueryLogger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Close closes the database connection
func (l *QueryLogger) Close() error {
	return l.db.Close()
}
