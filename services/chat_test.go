package services

import (
	"context"
	"errors"
	"testing"

	"financetracker/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply  string
	err    error
	calls  int
	system string
	user   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.system = system
	f.user = user
	return f.reply, f.err
}

type staticSummarizer struct {
	summary models.Summary
	err     error
}

func (s staticSummarizer) Summarize(context.Context) (models.Summary, error) {
	return s.summary, s.err
}

func TestRenderSummaryEmpty(t *testing.T) {
	rendered := RenderSummary(BuildSummary(nil))

	assert.Equal(t, "You have no transactions in your database yet.", rendered)
	assert.NotContains(t, rendered, "Total amount")
}

func TestRenderSummary(t *testing.T) {
	summary := BuildSummary([]models.Transaction{
		tx("2024-01-02", "Lunch", -3.25, "Food & Dining"),
		tx("2024-01-01", "Coffee", 4.5, "Food & Dining"),
		tx("2023-12-24", "Gift", 20, "Shopping"),
	})

	expected := "You have 3 transactions in your database.\n" +
		"Total amount: $21.25\n" +
		"Categories: Food & Dining, Shopping\n" +
		"\n" +
		"Recent transactions:\n" +
		"- 1/2/2024: $-3.25 for Lunch (Food & Dining)\n" +
		"- 1/1/2024: $4.50 for Coffee (Food & Dining)\n" +
		"- 12/24/2023: $20.00 for Gift (Shopping)"
	assert.Equal(t, expected, RenderSummary(summary))
}

func TestAnswerRejectsEmptyMessage(t *testing.T) {
	completer := &fakeCompleter{reply: "unused"}
	chat := NewChatService(staticSummarizer{}, completer)

	for _, message := range []string{"", "   ", "\n\t"} {
		_, err := chat.Answer(context.Background(), message)
		var empty *EmptyMessageError
		assert.ErrorAs(t, err, &empty)
	}
	assert.Zero(t, completer.calls)
}

func TestAnswerSendsSummaryAndMessage(t *testing.T) {
	svc := NewTransactionService(newTestStore(t), nil)
	_, err := svc.Create(context.Background(), coffeeInput())
	require.NoError(t, err)

	completer := &fakeCompleter{reply: "You spent $4.50 on coffee."}
	chat := NewChatService(svc, completer)

	reply, err := chat.Answer(context.Background(), "How am I doing?")
	require.NoError(t, err)

	assert.Equal(t, "You spent $4.50 on coffee.", reply)
	assert.Equal(t, "How am I doing?", completer.user)
	assert.Contains(t, completer.system, "You are a financial assistant for a finance tracking application.")
	assert.Contains(t, completer.system, "You have 1 transactions in your database.")
	assert.Contains(t, completer.system, "- 1/1/2024: $4.50 for Coffee (Food & Dining)")
}

func TestAnswerWithNoTransactions(t *testing.T) {
	completer := &fakeCompleter{reply: "Add some transactions first."}
	chat := NewChatService(staticSummarizer{summary: BuildSummary(nil)}, completer)

	_, err := chat.Answer(context.Background(), "Where does my money go?")
	require.NoError(t, err)
	assert.Contains(t, completer.system, "You have no transactions in your database yet.")
	assert.NotContains(t, completer.system, "Total amount")
}

func TestAnswerWrapsCompleterFailures(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	chat := NewChatService(staticSummarizer{summary: BuildSummary(nil)}, &fakeCompleter{err: cause})

	_, err := chat.Answer(context.Background(), "How am I doing?")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Zero(t, upstream.Status)
	assert.ErrorIs(t, err, cause)
}

func TestAnswerKeepsUpstreamStatus(t *testing.T) {
	cause := &UpstreamError{Status: 429, Message: "Rate limit reached"}
	chat := NewChatService(staticSummarizer{summary: BuildSummary(nil)}, &fakeCompleter{err: cause})

	_, err := chat.Answer(context.Background(), "How am I doing?")
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 429, upstream.Status)
	assert.Contains(t, upstream.Error(), "Rate limit reached")
}

func TestAnswerPropagatesStoreErrors(t *testing.T) {
	completer := &fakeCompleter{}
	chat := NewChatService(NewTransactionService(failingStore{}, nil), completer)

	_, err := chat.Answer(context.Background(), "How am I doing?")
	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Zero(t, completer.calls)
}
