package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"financetracker/backend/database"
	"financetracker/backend/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a migrated in-memory SQLite store.
func newTestStore(t *testing.T) database.Store {
	t.Helper()
	store, err := database.OpenSQLite(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })
	return store
}

type publishedEvent struct {
	event string
	id    string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event string, t models.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{event: event, id: t.ID})
	return p.err
}

var errStoreDown = errors.New("connection refused")

// failingStore fails every storage call but accepts any 24 character id.
type failingStore struct{}

func (failingStore) Insert(context.Context, models.Transaction) (models.Transaction, error) {
	return models.Transaction{}, errStoreDown
}

func (failingStore) List(context.Context) ([]models.Transaction, error) {
	return nil, errStoreDown
}

func (failingStore) Delete(context.Context, string) (models.Transaction, error) {
	return models.Transaction{}, errStoreDown
}

func (failingStore) IsValidID(id string) bool {
	return len(id) == 24
}

func coffeeInput() models.TransactionInput {
	return models.TransactionInput{Date: "2024-01-01", Name: "Coffee", Amount: "4.50", Category: "Food & Dining"}
}
