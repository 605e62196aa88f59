package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/denisAlshanov/ytplatform/internal/config"
)

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(cfg *config.PostgresConfig) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	// Build connection string
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pgdb := &PostgresDB{pool: pool}

	if err := pgdb.createTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pgdb, nil
}

func (p *PostgresDB) createTables(ctx context.Context) error {
	createFlagsTable := `
		CREATE TABLE IF NOT EXISTS feature_flags (
			flag_id INTEGER PRIMARY KEY,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := p.pool.Exec(ctx, createFlagsTable); err != nil {
		return fmt.Errorf("failed to create feature_flags table: %w", err)
	}
	return nil
}

// IsOn reports whether flag has an enabled row. Unknown flags are off.
func (p *PostgresDB) IsOn(ctx context.Context, flag int) (bool, error) {
	var enabled bool
	err := p.pool.QueryRow(ctx, `SELECT enabled FROM feature_flags WHERE flag_id = $1`, flag).Scan(&enabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read flag %d: %w", flag, err)
	}
	return enabled, nil
}

func (p *PostgresDB) SetFlag(ctx context.Context, flag int, on bool) error {
	query := `
		INSERT INTO feature_flags (flag_id, enabled, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (flag_id) DO UPDATE SET enabled = EXCLUDED.enabled, updated_at = EXCLUDED.updated_at`

	if _, err := p.pool.Exec(ctx, query, flag, on, time.Now()); err != nil {
		return fmt.Errorf("failed to set flag %d: %w", flag, err)
	}
	return nil
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

func (p *PostgresDB) Close(ctx context.Context) error {
	p.pool.Close()
	return nil
}
