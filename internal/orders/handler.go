package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teamkoubyte/Koubyte-sub001/internal/discounts"
	"github.com/teamkoubyte/Koubyte-sub001/internal/httpx"
	"github.com/teamkoubyte/Koubyte-sub001/internal/mailer"
	"github.com/teamkoubyte/Koubyte-sub001/internal/middleware"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
	"github.com/teamkoubyte/Koubyte-sub001/internal/transport"
	"github.com/teamkoubyte/Koubyte-sub001/internal/validation"
)

// NotificationSink receives back office notifications for new orders. The
// messages package provides the real implementation.
type NotificationSink interface {
	Push(ctx context.Context, n models.Notification) error
}

type Handler struct {
	service       *Service
	mail          mailer.Mailer
	notifications NotificationSink
	notifyEmail   string
	val           *validation.Validator
	log           *slog.Logger
}

func NewHandler(service *Service, mail mailer.Mailer, notifications NotificationSink, notifyEmail string, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service:       service,
		mail:          mail,
		notifications: notifications,
		notifyEmail:   notifyEmail,
		val:           val,
		log:           log,
	}
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req CheckoutRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("orders checkout: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("orders checkout: validation error")
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

	order, err := h.service.Checkout(ctx, userID, req)
	if err != nil {
		status, message := checkoutRejection(err)
		if status == http.StatusInternalServerError {
			log.Error("orders checkout: database error", slog.String("error", err.Error()))
		} else {
			log.Warn("orders checkout: rejected", slog.String("reason", message))
		}
		transport.WriteError(w, status, message, nil)
		return
	}

	go h.afterCheckout(order)

	log.Info("orders checkout: ok",
		slog.String("order_id", order.ID),
		slog.String("order_number", order.OrderNumber),
		slog.Int64("final_amount", order.FinalAmount),
	)
	transport.WriteJSON(w, http.StatusCreated, order)
}

func checkoutRejection(err error) (int, string) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return http.StatusBadRequest, "cart is empty"
	case errors.Is(err, ErrNoItems):
		return http.StatusBadRequest, "no items in order"
	case errors.Is(err, ErrUnknownService):
		return http.StatusBadRequest, "service not found or inactive"
	case errors.Is(err, ErrDiscountConflict), errors.Is(err, discounts.ErrExhausted):
		return http.StatusConflict, "discount code usage limit reached"
	case errors.Is(err, discounts.ErrNotFound):
		return http.StatusNotFound, "discount code not found"
	case errors.Is(err, discounts.ErrInactive):
		return http.StatusBadRequest, "discount code inactive"
	case errors.Is(err, discounts.ErrNotYetValid):
		return http.StatusBadRequest, "discount code not yet valid"
	case errors.Is(err, discounts.ErrExpired):
		return http.StatusBadRequest, "discount code expired"
	case errors.Is(err, discounts.ErrBelowMinimum):
		return http.StatusBadRequest, "order total below discount minimum"
	default:
		return http.StatusInternalServerError, "database error"
	}
}

// afterCheckout handles the side effects that must not block or fail the
// order itself: the customer confirmation, the back office alert and the
// in-app notification.
func (h *Handler) afterCheckout(order models.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if msg, err := mailer.OrderConfirmationMessage(order); err != nil {
		h.log.Error("orders mail: template error", slog.String("order_id", order.ID), slog.String("error", err.Error()))
	} else if _, err := h.mail.Send(ctx, msg); err != nil {
		h.log.Error("orders mail: send failed", slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}

	if h.notifyEmail != "" {
		if msg, err := mailer.AdminOrderMessage(order, h.notifyEmail); err != nil {
			h.log.Error("orders admin mail: template error", slog.String("order_id", order.ID), slog.String("error", err.Error()))
		} else if _, err := h.mail.Send(ctx, msg); err != nil {
			h.log.Error("orders admin mail: send failed", slog.String("order_id", order.ID), slog.String("error", err.Error()))
		}
	}

	if h.notifications != nil {
		n := models.Notification{
			ID:        uuid.NewString(),
			Kind:      "order",
			Title:     "Nieuwe bestelling",
			Body:      fmt.Sprintf("Bestelling %s van %s, %s", order.OrderNumber, order.CustomerName, mailer.Euros(order.FinalAmount)),
			CreatedAt: time.Now(),
		}
		if err := h.notifications.Push(ctx, n); err != nil {
			h.log.Error("orders notification: push failed", slog.String("order_id", order.ID), slog.String("error", err.Error()))
		}
	}
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := h.service.ListMine(ctx, ident.UserID, limit, offset)
	if err != nil {
		log.Error("orders list mine: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"orders": list})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.service.Get(ctx, id, ident.UserID, ident.IsAdmin())
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "order not found", nil)
		case errors.Is(err, ErrForbidden):
			transport.WriteError(w, http.StatusForbidden, "not your order", nil)
		default:
			log.Error("orders get: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}
	transport.WriteJSON(w, http.StatusOK, order)
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
		log.Error("admin orders list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"orders": list})
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
		log.Warn("admin orders status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin orders status: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			transport.WriteError(w, http.StatusNotFound, "order not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			transport.WriteError(w, http.StatusBadRequest, "invalid status transition", nil)
		default:
			log.Error("admin orders status: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("admin orders status: ok", slog.String("order_id", order.ID), slog.String("status", order.Status))
	transport.WriteJSON(w, http.StatusOK, order)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
