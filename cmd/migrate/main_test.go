package main

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigratesSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance.db")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("LOG_LEVEL", "info")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), "", &out))
	assert.Contains(t, out.String(), "Migrations completed successfully!")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var applied int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied))
	assert.Equal(t, 2, applied)

	// a second run finds nothing left to apply
	require.NoError(t, run(context.Background(), "", &bytes.Buffer{}))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&applied))
	assert.Equal(t, 2, applied)
}

func TestRunRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")

	err := run(context.Background(), "", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown store driver")
}
