package migrations

import (
	"database/sql"
	"fmt"
)

// CreateTransactionsTable creates the single table backing the transaction store.
func CreateTransactionsTable(db *sql.DB, dialect Dialect) error {
	timeType, amountType := "DATETIME", "REAL"
	if dialect == Postgres {
		timeType, amountType = "TIMESTAMPTZ", "DOUBLE PRECISION"
	}

	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			date %[1]s NOT NULL,
			name TEXT NOT NULL,
			amount %[2]s NOT NULL,
			category TEXT NOT NULL,
			created_at %[1]s NOT NULL,
			updated_at %[1]s NOT NULL
		);
	`, timeType, amountType))
	if err != nil {
		return fmt.Errorf("failed to create transactions table: %w", err)
	}
	return nil
}
