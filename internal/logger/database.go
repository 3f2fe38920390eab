package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/clearmeat/assessment/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConnection implements DatabaseConnection for the telemetry
// database using pgxpool
type PostgresConnection struct {
	pool *pgxpool.Pool
}

// NewPostgresConnection creates a new telemetry database connection using a connection string
func NewPostgresConnection(connectionString string) (DatabaseConnection, error) {
	return newPostgresConnection(connectionString)
}

// newPostgresConnection creates the concrete implementation
func newPostgresConnection(connectionString string) (*PostgresConnection, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse telemetry connection string: %w", err)
	}

	// Tuned for managed cloud Postgres: bounded pool, recycled connections
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	// Disable statement caching to avoid "already exists" errors behind poolers
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec
	config.ConnConfig.StatementCacheCapacity = 0

	config.ConnConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}
		return d.DialContext(ctx, "tcp", addr)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("telemetry database ping failed: %w", err)
	}

	conn := &PostgresConnection{pool: pool}
	if err := conn.createTableIfNotExists(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create telemetry table: %w", err)
	}

	return conn, nil
}

// createTableIfNotExists ensures the telemetry table exists
func (c *PostgresConnection) createTableIfNotExists() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `
		CREATE TABLE IF NOT EXISTS assessment_telemetry (
			id UUID PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,
			severity TEXT,
			message TEXT NOT NULL,
			operation TEXT NOT NULL,
			target_name TEXT,
			process_id TEXT NOT NULL,
			process_type TEXT NOT NULL,
			client_ip TEXT,
			error TEXT,
			metadata JSONB
		)`

	_, err := c.pool.Exec(ctx, query)
	return err
}

// InsertLog stores a log entry in the telemetry table
func (c *PostgresConnection) InsertLog(ctx context.Context, entry *models.LogEntry) error {
	var metadataJSON []byte
	if entry.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal log metadata: %w", err)
		}
	}

	query := `
		INSERT INTO assessment_telemetry
			(id, timestamp, severity, message, operation, target_name, process_id, process_type, client_ip, error, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := c.pool.Exec(ctx, query,
		entry.ID,
		entry.Timestamp,
		nullableString(string(entry.Severity)),
		entry.Message,
		entry.Operation,
		nullableString(entry.TargetName),
		entry.ProcessID,
		string(entry.ProcessType),
		nullableString(entry.ClientIP),
		nullableString(entry.Error),
		metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}

	return nil
}

// Ping verifies the telemetry database connection
func (c *PostgresConnection) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// Close closes the connection pool
func (c *PostgresConnection) Close() error {
	c.pool.Close()
	return nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
