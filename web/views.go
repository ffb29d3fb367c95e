package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"financetracker/backend/models"
	"financetracker/backend/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const (
	assistantGreeting = "Hello! I'm your financial assistant. I can help you understand your spending habits and provide financial advice based on your transactions. How can I help you today?"
	assistantApology  = "Sorry, I'm having trouble connecting to the server. Please try again later."
)

type listPage struct {
	Transactions []models.Transaction
	Notice       string
	Error        string
}

type addPage struct {
	Categories []string
	Form       models.TransactionInput
	Notice     string
	Error      string
}

type confirmPage struct {
	Transaction models.Transaction
	Error       string
}

type chatMessage struct {
	Sender string
	Text   string
}

type assistantPage struct {
	Greeting string
	Messages []chatMessage
}

// ListTransactions handles GET /
func (v *Views) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := v.transactions.List(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error fetching transactions")
		v.render(w, r, http.StatusInternalServerError, "transactions", listPage{Error: "Error fetching transactions"})
		return
	}
	v.render(w, r, http.StatusOK, "transactions", listPage{Transactions: transactions})
}

// AddForm handles GET /add-transaction
func (v *Views) AddForm(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, http.StatusOK, "add", addPage{Categories: models.SuggestedCategories})
}

// AddSubmit handles POST /add-transaction
func (v *Views) AddSubmit(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if err := r.ParseForm(); err != nil {
		v.render(w, r, http.StatusBadRequest, "add", addPage{Categories: models.SuggestedCategories, Error: "Invalid form submission"})
		return
	}

	in := models.TransactionInput{
		Date:     r.PostForm.Get("date"),
		Name:     r.PostForm.Get("name"),
		Amount:   r.PostForm.Get("amount"),
		Category: r.PostForm.Get("category"),
	}

	if _, err := v.transactions.Create(r.Context(), in); err != nil {
		page := addPage{Categories: models.SuggestedCategories, Form: in}
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			page.Error = validationErr.Message
			v.render(w, r, http.StatusBadRequest, "add", page)
			return
		}
		logger.Error().Err(err).Msg("Error creating transaction")
		page.Error = "Error creating transaction"
		v.render(w, r, http.StatusInternalServerError, "add", page)
		return
	}

	v.render(w, r, http.StatusOK, "add", addPage{
		Categories: models.SuggestedCategories,
		Notice:     "Transaction added successfully!",
	})
}

// RemoveList handles GET /remove-transaction
func (v *Views) RemoveList(w http.ResponseWriter, r *http.Request) {
	page := listPage{}
	switch r.URL.Query().Get("status") {
	case "deleted":
		page.Notice = "Transaction deleted successfully!"
	case "error":
		reason := r.URL.Query().Get("reason")
		if reason == "" {
			reason = "Error deleting transaction"
		}
		page.Error = "Failed to delete transaction: " + reason
	}

	transactions, err := v.transactions.List(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error fetching transactions")
		page.Error = "Error fetching transactions"
		v.render(w, r, http.StatusInternalServerError, "remove", page)
		return
	}
	page.Transactions = transactions

	v.render(w, r, http.StatusOK, "remove", page)
}

// ConfirmRemove handles GET /remove-transaction/{id}
func (v *Views) ConfirmRemove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	transactions, err := v.transactions.List(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error fetching transactions")
		v.render(w, r, http.StatusInternalServerError, "confirm", confirmPage{Error: "Error fetching transactions"})
		return
	}

	for _, t := range transactions {
		if t.ID == id {
			v.render(w, r, http.StatusOK, "confirm", confirmPage{Transaction: t})
			return
		}
	}
	v.render(w, r, http.StatusNotFound, "confirm", confirmPage{Error: "Transaction not found"})
}

// RemoveSubmit handles POST /remove-transaction/{id} and redirects back to the
// refreshed list.
func (v *Views) RemoveSubmit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	query := url.Values{}

	_, err := v.transactions.Remove(r.Context(), id)
	if err != nil {
		var (
			invalidErr  *services.InvalidIDError
			notFoundErr *services.NotFoundError
		)
		query.Set("status", "error")
		switch {
		case errors.As(err, &invalidErr):
			query.Set("reason", "Invalid transaction ID format")
		case errors.As(err, &notFoundErr):
			query.Set("reason", "Transaction not found")
		default:
			zerolog.Ctx(r.Context()).Error().Err(err).Str("transaction_id", id).Msg("Error deleting transaction")
			query.Set("reason", "Error deleting transaction")
		}
	} else {
		query.Set("status", "deleted")
	}

	http.Redirect(w, r, "/remove-transaction?"+query.Encode(), http.StatusSeeOther)
}

// Assistant handles GET /assistant
func (v *Views) Assistant(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, http.StatusOK, "assistant", assistantPage{Greeting: assistantGreeting})
}

// AssistantSubmit handles POST /assistant. The conversation so far travels in
// paired sender/text hidden fields.
func (v *Views) AssistantSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		v.render(w, r, http.StatusBadRequest, "assistant", assistantPage{Greeting: assistantGreeting})
		return
	}

	page := assistantPage{Greeting: assistantGreeting, Messages: conversation(r.PostForm)}

	message := r.PostForm.Get("message")
	if strings.TrimSpace(message) == "" {
		v.render(w, r, http.StatusOK, "assistant", page)
		return
	}
	page.Messages = append(page.Messages, chatMessage{Sender: "user", Text: message})

	reply, err := v.chat.Answer(r.Context(), message)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Error answering chat message")
		reply = assistantApology
	}
	page.Messages = append(page.Messages, chatMessage{Sender: "bot", Text: reply})

	v.render(w, r, http.StatusOK, "assistant", page)
}

func conversation(form url.Values) []chatMessage {
	senders, texts := form["sender"], form["text"]
	n := min(len(senders), len(texts))

	messages := make([]chatMessage, 0, n+2)
	for i := 0; i < n; i++ {
		sender := senders[i]
		if sender != "user" && sender != "bot" {
			continue
		}
		messages = append(messages, chatMessage{Sender: sender, Text: texts[i]})
	}
	return messages
}
