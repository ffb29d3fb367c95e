package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"financetracker/backend/database"
	"financetracker/backend/models"
	"financetracker/backend/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnswerer struct {
	reply    string
	err      error
	messages []string
}

func (a *stubAnswerer) Answer(_ context.Context, message string) (string, error) {
	a.messages = append(a.messages, message)
	return a.reply, a.err
}

func newTestViews(t *testing.T, chat Answerer) (*mux.Router, *services.TransactionService) {
	t.Helper()

	store, err := database.OpenSQLite(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })

	svc := services.NewTransactionService(store, nil)
	views, err := NewViews(svc, chat)
	require.NoError(t, err)

	r := mux.NewRouter()
	views.Register(r)
	return r, svc
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	return w
}

func postForm(h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListEmpty(t *testing.T) {
	router, _ := newTestViews(t, &stubAnswerer{})

	w := get(router, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No transactions found. Add some transactions to get started!")
}

func TestAddTransactionForm(t *testing.T) {
	router, svc := newTestViews(t, &stubAnswerer{})

	w := get(router, "/add-transaction")
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range []string{"Food", "Shopping", "Travel"} {
		assert.Contains(t, w.Body.String(), c)
	}

	w = postForm(router, "/add-transaction", url.Values{
		"date": {"2024-01-01"}, "name": {"Coffee"}, "amount": {"-4.50"}, "category": {"Food & Dining"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Transaction added successfully!")
	assert.NotContains(t, w.Body.String(), `value="Coffee"`)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, -4.50, listed[0].Amount)

	w = get(router, "/")
	body := w.Body.String()
	assert.Contains(t, body, "January 1, 2024")
	assert.Contains(t, body, "Coffee")
	assert.Contains(t, body, `class="negative"`)
	assert.Contains(t, body, "-$4.50")
}

func TestAddTransactionFormValidation(t *testing.T) {
	router, svc := newTestViews(t, &stubAnswerer{})

	w := postForm(router, "/add-transaction", url.Values{
		"date": {"2024-01-01"}, "name": {"Coffee"}, "amount": {""}, "category": {"Shopping"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "All fields are required")
	assert.Contains(t, body, `value="Coffee"`)
	assert.Contains(t, body, `value="Shopping" selected`)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRemoveTransactionFlow(t *testing.T) {
	router, svc := newTestViews(t, &stubAnswerer{})

	created, err := svc.Create(context.Background(), models.TransactionInput{
		Date: "2024-03-05", Name: "Train ticket", Amount: "23.10", Category: "Transportation",
	})
	require.NoError(t, err)

	w := get(router, "/remove-transaction")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/remove-transaction/"+created.ID)

	w = get(router, "/remove-transaction/"+created.ID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Are you sure you want to delete this transaction?")
	assert.Contains(t, w.Body.String(), "Train ticket")

	w = postForm(router, "/remove-transaction/"+created.ID, url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/remove-transaction?status=deleted", w.Header().Get("Location"))

	w = get(router, w.Header().Get("Location"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Transaction deleted successfully!")
	assert.NotContains(t, w.Body.String(), "Train ticket")
}

func TestRemoveTransactionErrors(t *testing.T) {
	router, _ := newTestViews(t, &stubAnswerer{})

	w := get(router, "/remove-transaction/65e1f0a4c2b3d4e5f6a7b8c9")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Transaction not found")

	w = postForm(router, "/remove-transaction/65e1f0a4c2b3d4e5f6a7b8c9", url.Values{})
	require.Equal(t, http.StatusSeeOther, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "error", location.Query().Get("status"))
	assert.Equal(t, "Transaction not found", location.Query().Get("reason"))

	w = postForm(router, "/remove-transaction/bogus", url.Values{})
	location, err = url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "Invalid transaction ID format", location.Query().Get("reason"))

	w = get(router, "/remove-transaction?status=error&reason=Transaction+not+found")
	assert.Contains(t, w.Body.String(), "Failed to delete transaction: Transaction not found")
}

func TestAssistantConversation(t *testing.T) {
	chat := &stubAnswerer{reply: "Dining out is your largest category."}
	router, _ := newTestViews(t, chat)

	w := get(router, "/assistant")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "How can I help you today?")

	w = postForm(router, "/assistant", url.Values{
		"sender":  {"user", "bot"},
		"text":    {"Hi", "Hello again"},
		"message": {"Where does my money go?"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Equal(t, []string{"Where does my money go?"}, chat.messages)
	assert.Contains(t, body, "Hello again")
	assert.Contains(t, body, "Where does my money go?")
	assert.Contains(t, body, "Dining out is your largest category.")
	assert.Equal(t, 4, strings.Count(body, `name="sender"`))
}

func TestAssistantUpstreamFailure(t *testing.T) {
	chat := &stubAnswerer{err: errors.New("completion API request failed")}
	router, _ := newTestViews(t, chat)

	w := postForm(router, "/assistant", url.Values{"message": {"How am I doing?"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "having trouble connecting to the server")
}

func TestAssistantIgnoresBlankMessage(t *testing.T) {
	chat := &stubAnswerer{reply: "unused"}
	router, _ := newTestViews(t, chat)

	w := postForm(router, "/assistant", url.Values{"message": {"   "}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, chat.messages)
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:        "$0.00",
		4.5:      "$4.50",
		-3.25:    "-$3.25",
		1234.5:   "$1,234.50",
		-1000000: "-$1,000,000.00",
		999.999:  "$1,000.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatAmount(in), "formatAmount(%v)", in)
	}
}
