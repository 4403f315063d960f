package discounts

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

// Validate is the preview call used by the checkout page. It never consumes
// a use.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req ValidateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("discounts validate: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("discounts validate: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp, err := h.service.Validate(ctx, req)
	if err != nil {
		status, message := rejectionFor(err)
		if status == http.StatusInternalServerError {
			log.Error("discounts validate: database error", slog.String("error", err.Error()))
		} else {
			log.Warn("discounts validate: rejected", slog.String("code", NormalizeCode(req.Code)), slog.String("reason", message))
		}
		transport.WriteError(w, status, message, nil)
		return
	}

	log.Info("discounts validate: ok", slog.String("code", resp.Code), slog.Int64("discount", resp.DiscountAmount))
	transport.WriteJSON(w, http.StatusOK, resp)
}

func rejectionFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "discount code not found"
	case errors.Is(err, ErrInactive):
		return http.StatusBadRequest, "discount code inactive"
	case errors.Is(err, ErrNotYetValid):
		return http.StatusBadRequest, "discount code not yet valid"
	case errors.Is(err, ErrExpired):
		return http.StatusBadRequest, "discount code expired"
	case errors.Is(err, ErrExhausted):
		return http.StatusBadRequest, "discount code usage limit reached"
	case errors.Is(err, ErrBelowMinimum):
		return http.StatusBadRequest, "order total below discount minimum"
	default:
		return http.StatusInternalServerError, "database error"
	}
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	codes, err := h.service.List(ctx)
	if err != nil {
		log.Error("admin discounts list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"discountCodes": codes})
}

func (h *Handler) AdminCreate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin discounts create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin discounts create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	code, err := h.service.Create(ctx, req)
	if err != nil {
		if errors.Is(err, ErrDuplicateCode) {
			transport.WriteError(w, http.StatusConflict, "discount code already exists", nil)
			return
		}
		log.Error("admin discounts create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin discounts create: ok", slog.String("discount_id", code.ID), slog.String("code", code.Code))
	transport.WriteJSON(w, http.StatusCreated, code)
}

func (h *Handler) AdminUpdate(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req UpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin discounts update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin discounts update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	code, err := h.service.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "discount code not found", nil)
			return
		}
		log.Error("admin discounts update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin discounts update: ok", slog.String("discount_id", code.ID))
	transport.WriteJSON(w, http.StatusOK, code)
}

func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "discount code not found", nil)
			return
		}
		log.Error("admin discounts delete: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin discounts delete: ok", slog.String("discount_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
