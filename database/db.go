package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"financetracker/backend/config"
	"financetracker/backend/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by Delete when no record has the given id.
var ErrNotFound = errors.New("transaction not found")

// Store is the persistence contract every transaction backend honours.
// List returns a fresh snapshot ordered by date descending, newest insertion
// first on equal dates. Delete removes and returns exactly one record or
// returns ErrNotFound.
type Store interface {
	Insert(ctx context.Context, t models.Transaction) (models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
	Delete(ctx context.Context, id string) (models.Transaction, error)
	IsValidID(id string) bool
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Open connects to the backend selected by cfg.Store.Driver. SQL backends are
// migrated before they are returned.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case "mongo":
		return OpenMongo(ctx, cfg.Mongo, logger)
	case "sqlite":
		return OpenSQLite(cfg.SQLite.Path, logger)
	case "postgres":
		return OpenPostgres(cfg.Postgres, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Identifiers are MongoDB ObjectIDs in every backend so clients see one format.
func newID() string {
	return primitive.NewObjectID().Hex()
}

func isValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

// MaskPassword masks the password in a connection string for logging
func MaskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.Scheme == "" {
		return "[unparseable connection string]"
	}
	return u.Redacted()
}
