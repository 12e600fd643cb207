package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"primitives-gateway/primitives/application"
	"primitives-gateway/primitives/domain"
)

type sendRequest struct {
	ID      string `json:"id,omitempty"`
	From    string `json:"from"`
	To      string `json:"to"`
	Content string `json:"content"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func toResponse(m domain.Message) messageResponse {
	return messageResponse{
		ID:        m.ID,
		From:      m.SenderID,
		To:        m.ReceiverID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

type mailboxAPI struct {
	inbox application.InboxService
	seq   atomic.Uint64
}

func newMailboxAPI(inbox application.InboxService) *mailboxAPI {
	return &mailboxAPI{inbox: inbox}
}

func (a *mailboxAPI) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /messages", a.handleSend)
	mux.HandleFunc("GET /messages/{receiver}", a.handleReceive)
	return mux
}

func (a *mailboxAPI) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	req.To = strings.TrimSpace(req.To)
	if req.To == "" {
		http.Error(w, "to is required", http.StatusBadRequest)
		return
	}
	if req.ID == "" {
		req.ID = "m-" + strconv.FormatUint(a.seq.Add(1), 10)
	}

	msg := a.inbox.Send(domain.Message{
		ID:         req.ID,
		SenderID:   req.From,
		ReceiverID: req.To,
		Content:    req.Content,
	})
	writeJSON(w, http.StatusAccepted, toResponse(msg))
}

// handleReceive faz long-poll: responde 200 com a mensagem, 204 se o tempo acabar
// e 409 se já houver outro receive aberto para o mesmo destinatário.
// Se o cliente desconectar o ctx da request cancela a espera.
func (a *mailboxAPI) handleReceive(w http.ResponseWriter, r *http.Request) {
	receiver := r.PathValue("receiver")

	msg, outcome, err := a.inbox.Receive(r.Context(), receiver)
	if errors.Is(err, domain.ErrReceiverBusy) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch outcome {
	case domain.Delivered:
		writeJSON(w, http.StatusOK, toResponse(msg))
	case domain.TimedOut:
		w.WriteHeader(http.StatusNoContent)
	default:
		// cliente foi embora; não há para quem responder
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
