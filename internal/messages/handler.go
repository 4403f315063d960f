package messages

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teamkoubyte/Koubyte-sub001/internal/httpx"
	"github.com/teamkoubyte/Koubyte-sub001/internal/middleware"
	"github.com/teamkoubyte/Koubyte-sub001/internal/transport"
	"github.com/teamkoubyte/Koubyte-sub001/internal/validation"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, val: val, log: log}
}

func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req ContactRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("contact submit: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("contact submit: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msg, err := h.service.SubmitContact(ctx, req)
	if err != nil {
		log.Error("contact submit: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("contact submit: ok", slog.String("message_id", msg.ID))
	transport.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) AdminListContacts(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.ListContacts(ctx, r.URL.Query().Get("status"))
	if err != nil {
		log.Error("admin contacts list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": list})
}

func (h *Handler) AdminUpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req ContactStatusRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin contacts status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin contacts status: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msg, err := h.service.UpdateContactStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "message not found", nil)
			return
		}
		log.Error("admin contacts status: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin contacts status: ok", slog.String("message_id", msg.ID), slog.String("status", msg.Status))
	transport.WriteJSON(w, http.StatusOK, msg)
}

func (h *Handler) SendChat(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req ChatRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("chat send: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("chat send: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msg, err := h.service.SendChat(ctx, ident.UserID, req.Body, false)
	if err != nil {
		log.Error("chat send: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, msg)
}

func (h *Handler) MyThread(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	thread, err := h.service.Thread(ctx, ident.UserID, false)
	if err != nil {
		log.Error("chat thread: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": thread})
}

func (h *Handler) AdminListThreads(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	threads, err := h.service.Threads(ctx)
	if err != nil {
		log.Error("admin chat threads: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"threads": threads})
}

func (h *Handler) AdminThread(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing user id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	thread, err := h.service.Thread(ctx, userID, true)
	if err != nil {
		log.Error("admin chat thread: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": thread})
}

func (h *Handler) AdminReply(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing user id", nil)
		return
	}

	var req ChatRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin chat reply: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin chat reply: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	msg, err := h.service.SendChat(ctx, userID, req.Body, true)
	if err != nil {
		log.Error("admin chat reply: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, msg)
}

// Notifications returns the caller's feed, or the back office feed for
// admins.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 20, 100)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var userID *string
	if !ident.IsAdmin() {
		id := ident.UserID
		userID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.Notifications(ctx, userID, limit, offset)
	if err != nil {
		log.Error("notifications list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"notifications": list})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	n, err := h.service.MarkNotificationRead(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "notification not found", nil)
			return
		}
		log.Error("notifications read: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
