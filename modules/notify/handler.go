package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/notifyhub/pkg/logger"
)

// identityHeader carries the caller's email on the HTTP and websocket
// surface.
const identityHeader = "X-USER"

// Handler exposes the notification read API and the email enqueue API.
type Handler struct {
	svc      *Service
	producer *Producer
	log      *slog.Logger
}

// NewHandler creates the HTTP handler set.
func NewHandler(svc *Service, producer *Producer, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, producer: producer, log: log}
}

// FindByRole lists the members the role query resolves to. The role
// argument is passed through to the service, which pins the lookup to the
// admin role.
func (h *Handler) FindByRole(w http.ResponseWriter, r *http.Request) {
	_, members, err := h.svc.MembersForRole(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, members)
}

// UnreadCount returns the caller's unread notification count.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	email, ok := h.identity(w, r)
	if !ok {
		return
	}
	count, err := h.svc.UnreadCount(r.Context(), email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// MarkAllRead flips every unread notification of the caller to read.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	email, ok := h.identity(w, r)
	if !ok {
		return
	}
	if err := h.svc.MarkAllRead(r.Context(), email); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// History returns the caller's full notification history in creation order.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	email, ok := h.identity(w, r)
	if !ok {
		return
	}
	history, err := h.svc.History(r.Context(), email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if history == nil {
		history = []Notification{}
	}
	h.writeJSON(w, http.StatusOK, history)
}

// SendText enqueues a plain-text email request.
func (h *Handler) SendText(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, h.producer.SendText)
}

// SendHTML enqueues an HTML email request.
func (h *Handler) SendHTML(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, h.producer.SendHTML)
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, send func(ctx context.Context, req EmailRequest) error) {
	var req EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := send(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// identity extracts the caller's email from the X-USER header, answering
// 400 when absent.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (string, bool) {
	email := r.Header.Get(identityHeader)
	if email == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrMissingIdentity.Error()})
		return "", false
	}
	return email, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrMemberNotFound), errors.Is(err, ErrRoleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrUnknownRoleType), errors.Is(err, ErrInvalidEmailRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			logger.Event(r.URL.Path), logger.Error(err))
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("failed to encode response", logger.Error(err))
	}
}
