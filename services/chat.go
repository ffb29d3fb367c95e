package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"financetracker/backend/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	noTransactionsSummary = "You have no transactions in your database yet."

	systemPreamble = `You are a financial assistant for a finance tracking application.
You help users understand their spending habits and provide financial advice.`

	systemClosing = "Provide helpful, concise responses about the user's financial data and general financial advice."

	recentDateLayout = "1/2/2006"
)

// Completer sends a system turn and a user turn to a chat completion API and
// returns the text of the first completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Summarizer provides the transaction summary used as chat context.
type Summarizer interface {
	Summarize(ctx context.Context) (models.Summary, error)
}

// ChatService answers questions about the user's transactions.
type ChatService struct {
	summarizer Summarizer
	completer  Completer
}

func NewChatService(summarizer Summarizer, completer Completer) *ChatService {
	return &ChatService{summarizer: summarizer, completer: completer}
}

// Answer forwards message, with the current transaction summary as context,
// to the completion API. Failures of the API come back as *UpstreamError.
func (c *ChatService) Answer(ctx context.Context, message string) (string, error) {
	logger := zerolog.Ctx(ctx)

	if strings.TrimSpace(message) == "" {
		return "", &EmptyMessageError{}
	}

	summary, err := c.summarizer.Summarize(ctx)
	if err != nil {
		return "", err
	}
	logger.Debug().Int("transactions", summary.Count).Msg("Built chat context")

	reply, err := c.completer.Complete(ctx, BuildSystemPrompt(summary), message)
	if err != nil {
		var upstream *UpstreamError
		if !errors.As(err, &upstream) {
			upstream = &UpstreamError{Message: err.Error(), Err: err}
		}
		return "", upstream
	}

	return reply, nil
}

// BuildSystemPrompt wraps the rendered summary in the assistant persona.
func BuildSystemPrompt(summary models.Summary) string {
	return systemPreamble + "\n\n" + RenderSummary(summary) + "\n\n" + systemClosing
}

// RenderSummary renders the fixed-format context block: counts, total,
// categories and up to five recent transactions, or a single sentence when
// there is nothing stored.
func RenderSummary(summary models.Summary) string {
	if summary.Count == 0 {
		return noTransactionsSummary
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d transactions in your database.\n", summary.Count)
	fmt.Fprintf(&b, "Total amount: $%s\n", summary.TotalAmount.StringFixed(2))
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(summary.DistinctCategories, ", "))
	b.WriteString("\nRecent transactions:")
	for _, t := range summary.Recent {
		fmt.Fprintf(&b, "\n- %s: $%s for %s (%s)",
			t.Date.Format(recentDateLayout),
			decimal.NewFromFloat(t.Amount).StringFixed(2),
			t.Name,
			t.Category,
		)
	}
	return b.String()
}
