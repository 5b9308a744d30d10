package database

import (
	"context"
	"database/sql"
	"fmt"

	"progression-service/config"

	_ "github.com/lib/pq"
)

type PostgresClient struct {
	db     *sql.DB
	config *config.DBConfig
}

func NewPostgresClient(cfg *config.DBConfig) (*PostgresClient, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{
		db:     db,
		config: cfg,
	}, nil
}

func (c *PostgresClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *PostgresClient) GetDB() *sql.DB {
	return c.db
}

func (c *PostgresClient) InitSchema(ctx context.Context) error {
	createUsersTable := `
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(255) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	`

	// Gamification columns are nullable on purpose: rows written before a
	// column existed read back as NULL and get the documented default applied
	// at load time instead of a backfill migration.
	createProgressionTable := `
		CREATE TABLE IF NOT EXISTS user_progression (
			user_id VARCHAR(255) PRIMARY KEY,
			hearts INTEGER,
			xp INTEGER,
			level INTEGER,
			streak INTEGER,
			streak_freeze_active BOOLEAN,
			streak_freezes_available INTEGER,
			last_heart_regen_time TIMESTAMP,
			quiz_progress JSONB NOT NULL DEFAULT '{}',
			version BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	createAnsweredQuestionsTable := `
		CREATE TABLE IF NOT EXISTS answered_questions (
			id VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			question TEXT NOT NULL,
			options JSONB NOT NULL,
			correct_answer TEXT NOT NULL,
			user_answer TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL,
			difficulty VARCHAR(50) NOT NULL,
			answered_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_answered_questions_user_answered_at
			ON answered_questions(user_id, answered_at DESC);
	`

	createRefreshTokensTable := `
		CREATE TABLE IF NOT EXISTS refresh_tokens (
			token_hash VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id);
	`

	if _, err := c.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, createProgressionTable); err != nil {
		return fmt.Errorf("failed to create user_progression table: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, createAnsweredQuestionsTable); err != nil {
		return fmt.Errorf("failed to create answered_questions table: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, createRefreshTokensTable); err != nil {
		return fmt.Errorf("failed to create refresh_tokens table: %w", err)
	}

	return nil
}
