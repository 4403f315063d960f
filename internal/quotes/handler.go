package quotes

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teamkoubyte/Koubyte-sub001/internal/httpx"
	"github.com/teamkoubyte/Koubyte-sub001/internal/mailer"
	"github.com/teamkoubyte/Koubyte-sub001/internal/middleware"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
	"github.com/teamkoubyte/Koubyte-sub001/internal/transport"
	"github.com/teamkoubyte/Koubyte-sub001/internal/validation"
)

type Handler struct {
	service     *Service
	mail        mailer.Mailer
	notifyEmail string
	val         *validation.Validator
	log         *slog.Logger
}

func NewHandler(service *Service, mail mailer.Mailer, notifyEmail string, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, mail: mail, notifyEmail: notifyEmail, val: val, log: log}
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("quotes submit: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("quotes submit: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	var userID *string
	if ident, ok := middleware.IdentityFromContext(r.Context()); ok {
		id := ident.UserID
		userID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	quote, err := h.service.Submit(ctx, req, userID)
	if err != nil {
		log.Error("quotes submit: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("quotes submit: ok", slog.String("quote_id", quote.ID), slog.String("service", quote.Service))
	go h.notifyAdmin(quote)
	transport.WriteJSON(w, http.StatusCreated, quote)
}

func (h *Handler) notifyAdmin(quote models.Quote) {
	if h.notifyEmail == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if msg, err := mailer.AdminQuoteMessage(quote, h.notifyEmail); err != nil {
		h.log.Error("quotes admin mail: template error", slog.String("quote_id", quote.ID), slog.String("error", err.Error()))
	} else if _, err := h.mail.Send(ctx, msg); err != nil {
		h.log.Error("quotes admin mail: send failed", slog.String("quote_id", quote.ID), slog.String("error", err.Error()))
	}
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.ListAdmin(ctx, r.URL.Query().Get("status"))
	if err != nil {
		log.Error("admin quotes list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"quotes": list})
}

func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req StatusUpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin quotes status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin quotes status: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	quote, err := h.service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "quote not found", nil)
			return
		}
		log.Error("admin quotes status: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin quotes status: ok", slog.String("quote_id", quote.ID), slog.String("status", quote.Status))
	transport.WriteJSON(w, http.StatusOK, quote)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
