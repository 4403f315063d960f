package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teamkoubyte/Koubyte-sub001/internal/cache"
	"github.com/teamkoubyte/Koubyte-sub001/internal/httpx"
	"github.com/teamkoubyte/Koubyte-sub001/internal/mailer"
	"github.com/teamkoubyte/Koubyte-sub001/internal/middleware"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
	"github.com/teamkoubyte/Koubyte-sub001/internal/transport"
	"github.com/teamkoubyte/Koubyte-sub001/internal/validation"
)

const availabilityCacheTTL = 60 * time.Second

type Handler struct {
	service *Service
	cache   cache.Cache
	mail    mailer.Mailer
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, c cache.Cache, mail mailer.Mailer, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, cache: c, mail: mail, val: val, log: log}
}

// Availability serves the public slot picker. Responses are cached per day
// and invalidated on booking and on admin status changes.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	date := r.URL.Query().Get("date")
	if date == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing date", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cacheKey := "availability:" + date
	if raw, ok, err := h.cache.Get(ctx, cacheKey); err == nil && ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		return
	}

	avail, err := h.service.Availability(ctx, date)
	if err != nil {
		log.Warn("appointments availability: invalid date", slog.String("date", date))
		transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
		return
	}

	if raw, err := json.Marshal(avail); err == nil {
		if err := h.cache.Set(ctx, cacheKey, raw, availabilityCacheTTL); err != nil {
			log.Warn("appointments availability: cache set failed", slog.String("error", err.Error()))
		}
	}

	transport.WriteJSON(w, http.StatusOK, avail)
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("appointments book: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("appointments book: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	var userID *string
	if ident, ok := middleware.IdentityFromContext(r.Context()); ok {
		id := ident.UserID
		userID = &id
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	appt, err := h.service.Book(ctx, req, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotTaken):
			log.Warn("appointments book: slot taken", slog.String("date", req.Date), slog.String("time", req.Time))
			transport.WriteError(w, http.StatusConflict, "slot already booked", nil)
		case errors.Is(err, ErrDateInPast), errors.Is(err, ErrSlotPast):
			transport.WriteError(w, http.StatusBadRequest, "slot is in the past", nil)
		case errors.Is(err, ErrSlotNotInCatalog):
			transport.WriteError(w, http.StatusBadRequest, "unknown time slot", nil)
		default:
			log.Error("appointments book: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	if err := h.cache.Delete(ctx, "availability:"+appt.Date); err != nil {
		log.Warn("appointments book: cache invalidation failed", slog.String("error", err.Error()))
	}

	go h.sendConfirmation(appt.ID, appt)

	log.Info("appointments book: ok",
		slog.String("appointment_id", appt.ID),
		slog.String("date", appt.Date),
		slog.String("time", appt.Time),
	)
	transport.WriteJSON(w, http.StatusCreated, appt)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	appts, err := h.service.ListMine(ctx, ident.UserID)
	if err != nil {
		log.Error("appointments list mine: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"appointments": appts})
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	appts, err := h.service.ListAdmin(ctx, r.URL.Query().Get("status"))
	if err != nil {
		log.Error("admin appointments list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"appointments": appts})
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
		log.Warn("admin appointments status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin appointments status: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	appt, err := h.service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			transport.WriteError(w, http.StatusBadRequest, "invalid status transition", nil)
		default:
			log.Error("admin appointments status: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	if err := h.cache.Delete(ctx, "availability:"+appt.Date); err != nil {
		log.Warn("admin appointments status: cache invalidation failed", slog.String("error", err.Error()))
	}

	log.Info("admin appointments status: ok", slog.String("appointment_id", appt.ID), slog.String("status", appt.Status))
	transport.WriteJSON(w, http.StatusOK, appt)
}

func (h *Handler) sendConfirmation(id string, appt models.Appointment) {
	msg, err := mailer.AppointmentConfirmationMessage(appt)
	if err != nil {
		h.log.Error("appointments mail: template error", slog.String("appointment_id", id), slog.String("error", err.Error()))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := h.mail.Send(ctx, msg); err != nil {
		h.log.Error("appointments mail: send failed", slog.String("appointment_id", id), slog.String("error", err.Error()))
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
