package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"financetracker/backend/database"
	"financetracker/backend/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// stubCompleter records the prompt it receives and returns a canned reply.
type stubCompleter struct {
	reply  string
	err    error
	system string
	user   string
}

func (c *stubCompleter) Complete(_ context.Context, system, user string) (string, error) {
	c.system, c.user = system, user
	return c.reply, c.err
}

// newTestRouter wires the JSON routes over a migrated in-memory SQLite store.
func newTestRouter(t *testing.T, completer services.Completer) (*mux.Router, database.Store) {
	t.Helper()

	store, err := database.OpenSQLite(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })

	txService := services.NewTransactionService(store, nil)
	txHandler := NewTransactionHandler(txService)
	chatHandler := NewChatHandler(services.NewChatService(txService, completer))

	r := mux.NewRouter()
	r.HandleFunc("/transactions", txHandler.GetTransactions).Methods("GET")
	r.HandleFunc("/transactions", txHandler.AddTransaction).Methods("POST")
	r.HandleFunc("/transactions/{id}", txHandler.DeleteTransaction).Methods("DELETE")
	r.HandleFunc("/summary", txHandler.GetSummary).Methods("GET")
	r.HandleFunc("/categories", GetCategories).Methods("GET")
	r.HandleFunc("/chat", chatHandler.Chat).Methods("POST")
	r.HandleFunc("/health", HealthCheck(store, time.Second)).Methods("GET")
	return r, store
}

// doRequest sends body, JSON-encoded unless it is already a string.
func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}
