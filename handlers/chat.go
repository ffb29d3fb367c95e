package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"financetracker/backend/services"

	"github.com/rs/zerolog"
)

// Answerer is implemented by *services.ChatService.
type Answerer interface {
	Answer(ctx context.Context, message string) (string, error)
}

type ChatHandler struct {
	chat Answerer
}

func NewChatHandler(chat Answerer) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Err(err).Msg("Invalid chat request body")
		writeMessage(w, r, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.chat.Answer(r.Context(), req.Message)
	if err != nil {
		var emptyErr *services.EmptyMessageError
		if errors.As(err, &emptyErr) {
			writeMessage(w, r, http.StatusBadRequest, "Message is required")
			return
		}
		logger.Error().Err(err).Msg("Error in chat endpoint")
		writeErrorCause(w, r, http.StatusInternalServerError, "Error processing your request", err)
		return
	}

	writeJSON(w, r, http.StatusOK, chatResponse{Response: reply})
}
