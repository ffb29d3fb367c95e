package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"financetracker/backend/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// TransactionService is implemented by *services.TransactionService.
type TransactionService interface {
	Create(ctx context.Context, in models.TransactionInput) (models.Transaction, error)
	List(ctx context.Context) ([]models.Transaction, error)
	Remove(ctx context.Context, id string) (models.Transaction, error)
}

// Answerer is implemented by *services.ChatService.
type Answerer interface {
	Answer(ctx context.Context, message string) (string, error)
}

var pages = []string{"transactions", "add", "remove", "confirm", "assistant"}

// Views renders the server-side frontend.
type Views struct {
	transactions TransactionService
	chat         Answerer
	templates    map[string]*template.Template
}

func NewViews(transactions TransactionService, chat Answerer) (*Views, error) {
	funcs := template.FuncMap{
		"formatDate":   formatDate,
		"formatAmount": formatAmount,
		"amountClass":  amountClass,
		"inputDate":    func(t time.Time) string { return t.Format("2006-01-02") },
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		templates[page] = tmpl
	}

	return &Views{transactions: transactions, chat: chat, templates: templates}, nil
}

// Register mounts the views on r.
func (v *Views) Register(r *mux.Router) {
	r.HandleFunc("/", v.ListTransactions).Methods("GET")
	r.HandleFunc("/add-transaction", v.AddForm).Methods("GET")
	r.HandleFunc("/add-transaction", v.AddSubmit).Methods("POST")
	r.HandleFunc("/remove-transaction", v.RemoveList).Methods("GET")
	r.HandleFunc("/remove-transaction/{id}", v.ConfirmRemove).Methods("GET")
	r.HandleFunc("/remove-transaction/{id}", v.RemoveSubmit).Methods("POST")
	r.HandleFunc("/assistant", v.Assistant).Methods("GET")
	r.HandleFunc("/assistant", v.AssistantSubmit).Methods("POST")
}

// render executes page into a buffer so a template error never leaves a
// half-written response.
func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	var buf bytes.Buffer
	if err := v.templates[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func formatDate(t time.Time) string {
	return t.UTC().Format("January 2, 2006")
}

// formatAmount renders a US dollar amount with thousands separators, e.g.
// -$1,234.50.
func formatAmount(amount float64) string {
	d := decimal.NewFromFloat(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	return sign + "$" + b.String() + "." + frac
}

func amountClass(amount float64) string {
	if amount < 0 {
		return "negative"
	}
	return "positive"
}
