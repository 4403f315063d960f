package payments

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

type IntentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
}

type ConfirmRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
	Outcome   string `json:"outcome" validate:"omitempty,oneof=success failure"`
}

type Handler struct {
	service *Service
	mail    mailer.Mailer
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, mail mailer.Mailer, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, mail: mail, val: val, log: log}
}

func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req IntentRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("payments intent: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("payments intent: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	var requesterID string
	var isAdmin bool
	if ident, ok := middleware.IdentityFromContext(r.Context()); ok {
		requesterID = ident.UserID
		isAdmin = ident.IsAdmin()
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	intent, err := h.service.CreateIntent(ctx, req.OrderID, requesterID, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound), errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "order not found", nil)
		case errors.Is(err, ErrForbidden):
			transport.WriteError(w, http.StatusForbidden, "not your order", nil)
		case errors.Is(err, ErrInvalidTransition):
			transport.WriteError(w, http.StatusConflict, "payment already settled", nil)
		default:
			log.Error("payments intent: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("payments intent: ok", slog.String("payment_id", intent.PaymentID), slog.String("order_id", intent.OrderID))
	transport.WriteJSON(w, http.StatusOK, intent)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req ConfirmRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("payments confirm: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("payments confirm: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var payment models.Payment
	var err error
	if req.Outcome == "failure" {
		payment, err = h.service.MarkFailed(ctx, req.PaymentID)
	} else {
		payment, err = h.service.Confirm(ctx, req.PaymentID)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "payment not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			transport.WriteError(w, http.StatusConflict, "payment not in a confirmable state", nil)
		default:
			log.Error("payments confirm: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("payments confirm: ok", slog.String("payment_id", payment.ID), slog.String("status", payment.Status))
	transport.WriteJSON(w, http.StatusOK, payment)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 50, 200)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.ListAdmin(ctx, r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		log.Error("admin payments list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"payments": list})
}

func (h *Handler) AdminRefund(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	payment, order, err := h.service.Refund(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "payment not found", nil)
		case errors.Is(err, ErrAlreadyRefunded):
			transport.WriteError(w, http.StatusConflict, "payment already refunded", nil)
		case errors.Is(err, ErrNotRefundable):
			transport.WriteError(w, http.StatusBadRequest, "payment not refundable", nil)
		default:
			log.Error("admin payments refund: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	go h.sendRefundMail(order, payment.Amount)

	log.Info("admin payments refund: ok", slog.String("payment_id", payment.ID), slog.Int64("amount", payment.Amount))
	transport.WriteJSON(w, http.StatusOK, payment)
}

func (h *Handler) sendRefundMail(order models.Order, amount int64) {
	msg, err := mailer.RefundConfirmationMessage(order, amount)
	if err != nil {
		h.log.Error("payments refund mail: template error", slog.String("order_id", order.ID), slog.String("error", err.Error()))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := h.mail.Send(ctx, msg); err != nil {
		h.log.Error("payments refund mail: send failed", slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
