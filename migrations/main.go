package migrations

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Dialect names the SQL flavour a migration or query is written for. Its value
// doubles as the database/sql driver name.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// Rebind rewrites ? placeholders into the dialect's positional form.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type migration struct {
	name string
	fn   func(*sql.DB, Dialect) error
}

// all lists every migration in the order it must be applied.
var all = []migration{
	{"create_transactions_table", CreateTransactionsTable},
	{"add_transactions_date_index", AddTransactionsDateIndex},
}

// RunMigrations executes all migrations in the correct order, skipping the
// ones already recorded in the migrations table.
func RunMigrations(db *sql.DB, dialect Dialect, logger zerolog.Logger) error {
	logger.Info().Str("dialect", string(dialect)).Msg("Running migrations...")

	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == Postgres {
		idColumn = "id SERIAL PRIMARY KEY"
	}
	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS migrations (
			%s,
			name TEXT NOT NULL UNIQUE,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, idColumn))
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range all {
		var count int
		err := db.QueryRow(dialect.Rebind("SELECT COUNT(*) FROM migrations WHERE name = ?"), m.name).Scan(&count)
		if err != nil {
			return fmt.Errorf("failed to check migration status: %w", err)
		}

		if count > 0 {
			logger.Debug().Str("migration", m.name).Msg("Skipping already applied migration")
			continue
		}

		logger.Info().Str("migration", m.name).Msg("Applying migration")
		if err := m.fn(db, dialect); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.name, err)
		}

		_, err = db.Exec(dialect.Rebind("INSERT INTO migrations (name) VALUES (?)"), m.name)
		if err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
	}

	logger.Info().Msg("All migrations completed successfully")
	return nil
}
