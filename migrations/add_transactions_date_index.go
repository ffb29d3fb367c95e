package migrations

import "database/sql"

// AddTransactionsDateIndex backs the date-descending listing.
func AddTransactionsDateIndex(db *sql.DB, _ Dialect) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_date
		ON transactions (date DESC, created_at DESC);
	`)
	return err
}
