package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/InQaaaaGit/smart_filter.git/internal/models"
	_ "github.com/lib/pq" // драйвер postgres для database/sql
	"go.uber.org/zap"
)

// Категория классификатора и тип содержимого приходят извне и не ограничены по длине
const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS decisions (` +
		`id VARCHAR(64) PRIMARY KEY,` +
		`request_id VARCHAR(64),` +
		`source_url TEXT NOT NULL,` +
		`status VARCHAR(32) NOT NULL,` +
		`category TEXT,` +
		`content_type TEXT,` +
		`size INTEGER NOT NULL DEFAULT 0,` +
		`created_at TIMESTAMPTZ NOT NULL` +
		`)`
	widenColumnsSQL = `ALTER TABLE decisions ` +
		`ALTER COLUMN category TYPE TEXT, ` +
		`ALTER COLUMN content_type TYPE TEXT`
)

// PostgresStorage реализует DecisionStorage с использованием PostgreSQL
type PostgresStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresStorage создает новый экземпляр PostgresStorage
func NewPostgresStorage(dsn string, logger *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database connection error: %w", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after ping error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("database connection check error: %w", err)
	}

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("Failed to close DB connection after table creation error", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("table creation error: %w", err)
	}

	// Таблицы, созданные раньше с ограниченной длиной, переводятся на TEXT
	if _, err := db.ExecContext(ctx, widenColumnsSQL); err != nil {
		logger.Warn("Failed to widen decisions columns", zap.Error(err))
	}

	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS decisions_created_at_idx ON decisions (created_at DESC)`); err != nil {
		logger.Warn("Failed to create decisions index", zap.Error(err))
	}

	return &PostgresStorage{
		db:     db,
		logger: logger,
	}, nil
}

// Save сохраняет решение в таблицу decisions
func (ps *PostgresStorage) Save(ctx context.Context, d models.Decision) error {
	_, err := ps.db.ExecContext(ctx,
		`INSERT INTO decisions (id, request_id, source_url, status, category, content_type, size, created_at) `+
			`VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.RequestID, d.SourceURL, d.Status, d.Category, d.ContentType, d.Size, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("save decision error: %w", err)
	}
	return nil
}

const selectDecisionSQL = `SELECT id, COALESCE(request_id, ''), source_url, status, COALESCE(category, ''), ` +
	`COALESCE(content_type, ''), size, created_at FROM decisions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (models.Decision, error) {
	var d models.Decision
	err := row.Scan(&d.ID, &d.RequestID, &d.SourceURL, &d.Status, &d.Category, &d.ContentType, &d.Size, &d.CreatedAt)
	return d, err
}

// Get получает решение по идентификатору
func (ps *PostgresStorage) Get(ctx context.Context, id string) (models.Decision, error) {
	d, err := scanDecision(ps.db.QueryRowContext(ctx, selectDecisionSQL+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Decision{}, ErrDecisionNotFound
		}
		return models.Decision{}, fmt.Errorf("get decision error: %w", err)
	}
	return d, nil
}

// Recent возвращает последние решения, новые первыми
func (ps *PostgresStorage) Recent(ctx context.Context, limit int) ([]models.Decision, error) {
	rows, err := ps.db.QueryContext(ctx, selectDecisionSQL+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions error: %w", err)
	}
	defer rows.Close()

	var result []models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision error: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions error: %w", err)
	}
	return result, nil
}

// Close закрывает соединение с базой данных
func (ps *PostgresStorage) Close() error {
	return ps.db.Close()
}

// CheckConnection проверяет соединение с базой данных
func (ps *PostgresStorage) CheckConnection(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}
