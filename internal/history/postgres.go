package history

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"github.com/UnknownOlympus/meteo/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of *pgxpool.Pool used by PostgresStorage.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStorage keeps the history in the weather_history table.
type PostgresStorage struct {
	db  Database
	log *slog.Logger
}

// NewDatabase opens a connection pool and verifies it with a ping.
func NewDatabase(ctx context.Context, host, port, user, password, name string) (*pgxpool.Pool, error) {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(user, password),
		Host:   net.JoinHostPort(host, port),
		Path:   name,
	}

	pool, err := pgxpool.New(ctx, dsn.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresStorage creates a new instance of PostgresStorage with the provided Database.
func NewPostgresStorage(db Database, log *slog.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, log: log}
}

// Init creates the history table if it does not exist yet.
func (s *PostgresStorage) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS weather_history (
			id SERIAL PRIMARY KEY,
			recorded_at TEXT NOT NULL,
			weather TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create weather history table: %w", err)
	}

	return nil
}

// Save inserts a single history record.
func (s *PostgresStorage) Save(ctx context.Context, record models.HistoryRecord) error {
	query := `
		INSERT INTO weather_history (recorded_at, weather)
		VALUES ($1, $2);
	`

	if _, err := s.db.Exec(ctx, query, record.Date, record.Weather); err != nil {
		return fmt.Errorf("failed to insert weather history record: %w", err)
	}

	s.log.DebugContext(ctx, "Weather saved to database", "date", record.Date)

	return nil
}

// List returns the most recent records, newest first.
func (s *PostgresStorage) List(ctx context.Context, limit int) ([]models.HistoryRecord, error) {
	var records []models.HistoryRecord
	query := `
		SELECT recorded_at, weather
		FROM weather_history
		ORDER BY id DESC
		LIMIT $1;
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query weather history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record models.HistoryRecord
		if errScan := rows.Scan(&record.Date, &record.Weather); errScan != nil {
			return nil, fmt.Errorf("failed to scan weather history record: %w", errScan)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return records, nil
}
