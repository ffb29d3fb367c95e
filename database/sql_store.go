package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"financetracker/backend/config"
	"financetracker/backend/migrations"
	"financetracker/backend/models"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

const transactionColumns = "id, date, name, amount, category, created_at, updated_at"

// SQLStore keeps transactions in a SQLite or PostgreSQL table.
type SQLStore struct {
	db      *sql.DB
	dialect migrations.Dialect
	now     func() time.Time
}

// NewSQLStore wraps an already migrated database handle.
func NewSQLStore(db *sql.DB, dialect migrations.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect, now: time.Now}
}

// OpenSQLite opens (or creates) the SQLite database at path and applies migrations.
func OpenSQLite(path string, logger zerolog.Logger) (*SQLStore, error) {
	// Add connection parameters to better handle concurrency
	dsn := path + "?_journal=WAL&_timeout=10000&_busy_timeout=10000"
	db, err := sql.Open(string(migrations.SQLite), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure SQLite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite: %w", err)
	}

	if err := migrations.RunMigrations(db, migrations.SQLite, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Msg("Using SQLite transaction store")
	return NewSQLStore(db, migrations.SQLite), nil
}

// OpenPostgres connects to PostgreSQL and applies migrations.
func OpenPostgres(cfg config.PostgresConfig, logger zerolog.Logger) (*SQLStore, error) {
	connectionString := cfg.ConnectionString()
	logger.Info().Str("dsn", MaskPassword(connectionString)).Msg("Connecting to PostgreSQL")

	db, err := sql.Open(string(migrations.Postgres), connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if err := migrations.RunMigrations(db, migrations.Postgres, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Msg("Successfully connected to PostgreSQL")
	return NewSQLStore(db, migrations.Postgres), nil
}

func (s *SQLStore) Insert(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	now := s.now().UTC()
	t.ID = newID()
	t.Date = t.Date.UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), t.ID, t.Date, t.Name, t.Amount, t.Category, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return t, nil
}

func (s *SQLStore) List(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY date DESC, created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// Delete reads and removes the row inside one database transaction. When two
// callers race, only the one whose DELETE affects the row gets it back.
func (s *SQLStore) Delete(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, s.dialect.Rebind(`
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = ?
	`), id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, ErrNotFound
		}
		return models.Transaction{}, fmt.Errorf("failed to query transaction: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.dialect.Rebind("DELETE FROM transactions WHERE id = ?"), id)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.Transaction{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.Transaction{}, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return models.Transaction{}, fmt.Errorf("error committing transaction: %w", err)
	}

	return t, nil
}

func (s *SQLStore) IsValidID(id string) bool {
	return isValidID(id)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close(context.Context) error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Date, &t.Name, &t.Amount, &t.Category, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Transaction{}, err
	}
	t.Date = t.Date.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}
