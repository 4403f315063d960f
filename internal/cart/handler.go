package cart

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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view, err := h.service.Get(ctx, ident.UserID)
	if err != nil {
		log.Error("cart get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req AddRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("cart add: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("cart add: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Add(ctx, ident.UserID, req); err != nil {
		if errors.Is(err, ErrUnknownService) {
			transport.WriteError(w, http.StatusNotFound, "service not found", nil)
			return
		}
		log.Error("cart add: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	view, err := h.service.Get(ctx, ident.UserID)
	if err != nil {
		log.Error("cart add: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("cart add: ok", slog.String("service_id", req.ServiceID), slog.Int("quantity", req.Quantity))
	transport.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	serviceID := chi.URLParam(r, "serviceId")
	if serviceID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing service id", nil)
		return
	}

	var req QuantityRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("cart update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("cart update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.UpdateQuantity(ctx, ident.UserID, serviceID, req.Quantity); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			transport.WriteError(w, http.StatusNotFound, "cart item not found", nil)
			return
		}
		log.Error("cart update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	view, err := h.service.Get(ctx, ident.UserID)
	if err != nil {
		log.Error("cart update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	serviceID := chi.URLParam(r, "serviceId")
	if serviceID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing service id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Remove(ctx, ident.UserID, serviceID); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			transport.WriteError(w, http.StatusNotFound, "cart item not found", nil)
			return
		}
		log.Error("cart remove: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	view, err := h.service.Get(ctx, ident.UserID)
	if err != nil {
		log.Error("cart remove: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Clear(ctx, ident.UserID); err != nil {
		log.Error("cart clear: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("cart clear: ok")
	transport.WriteJSON(w, http.StatusOK, View{Items: []Line{}})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
