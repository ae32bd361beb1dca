package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/cloudmeet/agent-bot-go/internal/command"
)

// CommandDispatcher routes one parsed chat request and renders the reply.
type CommandDispatcher interface {
	Handle(ctx context.Context, req command.Request) command.Reply
}

type WebhookHandler struct {
	dispatcher CommandDispatcher
}

func NewWebhookHandler(dispatcher CommandDispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// Webhook receives one bot API update. Anything the agent does not handle is
// acknowledged with 200 and an empty body so the platform never retries it.
func (h *WebhookHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Warn().Err(err).Msg("invalid webhook request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot || msg.Content() == "" {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}

	if msg.Chat.Type != "private" {
		// Codes are personal; the agent only talks in direct chats.
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}

	log.Info().
		Int64("updateId", update.UpdateID).
		Int64("userId", msg.From.ID).
		Str("text", truncate(msg.Content(), 50)).
		Msg("received webhook update")

	reply := h.dispatcher.Handle(r.Context(), command.Request{
		UserID:    msg.From.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
		Text:      msg.Content(),
	})

	writeJSON(w, http.StatusOK, NewWebhookReply(msg.Chat.ID, reply.Text, reply.Keyboard))
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
