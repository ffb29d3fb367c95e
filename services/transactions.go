package services

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"financetracker/backend/database"
	"financetracker/backend/models"

	"github.com/rs/zerolog"
)

// Event names passed to EventPublisher.
const (
	EventTransactionCreated = "created"
	EventTransactionDeleted = "deleted"
)

// TransactionStore is the subset of database.Store the service needs.
type TransactionStore interface {
	Insert(ctx context.Context, t models.Transaction) (models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
	Delete(ctx context.Context, id string) (models.Transaction, error)
	IsValidID(id string) bool
}

// EventPublisher announces committed changes. Failures are logged, never
// returned to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event string, t models.Transaction) error
}

type TransactionService struct {
	store  TransactionStore
	events EventPublisher
}

// NewTransactionService creates a service over store. events may be nil.
func NewTransactionService(store TransactionStore, events EventPublisher) *TransactionService {
	return &TransactionService{store: store, events: events}
}

// dateLayouts are tried in order when parsing TransactionInput.Date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		d, err := time.Parse(layout, s)
		if err == nil {
			return d.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, strconv.ErrSyntax
	}
	return amount, nil
}

// Create validates in, coerces amount and date, and persists the record.
func (s *TransactionService) Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error) {
	logger := zerolog.Ctx(ctx)

	in.Date = strings.TrimSpace(in.Date)
	in.Name = strings.TrimSpace(in.Name)
	in.Amount = strings.TrimSpace(in.Amount)
	in.Category = strings.TrimSpace(in.Category)

	if in.Date == "" || in.Name == "" || in.Amount == "" || in.Category == "" {
		return models.Transaction{}, &ValidationError{Message: MsgAllFieldsRequired}
	}

	amount, err := parseAmount(in.Amount)
	if err != nil {
		return models.Transaction{}, &ValidationError{Message: "Amount must be a number"}
	}

	date, err := parseDate(in.Date)
	if err != nil {
		return models.Transaction{}, &ValidationError{Message: "Date must be a valid date (YYYY-MM-DD)"}
	}

	created, err := s.store.Insert(ctx, models.Transaction{
		Date:     date,
		Name:     in.Name,
		Amount:   amount,
		Category: in.Category,
	})
	if err != nil {
		return models.Transaction{}, &StoreError{Op: "create", Err: err}
	}

	logger.Info().Str("transaction_id", created.ID).Msg("Transaction created")
	s.publish(ctx, EventTransactionCreated, created)
	return created, nil
}

// List returns every transaction, date descending.
func (s *TransactionService) List(ctx context.Context) ([]models.Transaction, error) {
	transactions, err := s.store.List(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return transactions, nil
}

// Remove deletes the transaction with the given id and returns it.
func (s *TransactionService) Remove(ctx context.Context, id string) (models.Transaction, error) {
	logger := zerolog.Ctx(ctx)

	if !s.store.IsValidID(id) {
		return models.Transaction{}, &InvalidIDError{ID: id}
	}

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.Transaction{}, &NotFoundError{ID: id}
		}
		return models.Transaction{}, &StoreError{Op: "delete", Err: err}
	}

	logger.Info().Str("transaction_id", id).Msg("Transaction deleted successfully")
	s.publish(ctx, EventTransactionDeleted, deleted)
	return deleted, nil
}

func (s *TransactionService) publish(ctx context.Context, event string, t models.Transaction) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event, t); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("event", event).
			Str("transaction_id", t.ID).
			Msg("Failed to publish transaction event")
	}
}
