package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

var (
	ErrNotFound          = errors.New("payment not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrForbidden         = errors.New("not your order")
	ErrInvalidTransition = errors.New("invalid payment state")
	ErrNotRefundable     = errors.New("payment not refundable")
	ErrAlreadyRefunded   = errors.New("payment already refunded")
)

// Intent is what the checkout page needs to drive the payment flow. In demo
// mode the reference is a locally generated identifier, with a real provider
// it would be the provider's intent id.
type Intent struct {
	PaymentID   string `json:"paymentId"`
	OrderID     string `json:"orderId"`
	Provider    string `json:"provider"`
	ProviderRef string `json:"providerRef"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	Demo        bool   `json:"demo"`
}

type Service struct {
	repo     Repository
	demo     bool
	location *time.Location
}

// NewService runs in demo mode when no provider secret is configured.
func NewService(repo Repository, secretKey string, location *time.Location) *Service {
	return &Service{repo: repo, demo: secretKey == "", location: location}
}

func (s *Service) Demo() bool { return s.demo }

// CreateIntent moves the order's pending payment to processing and hands the
// client a reference to confirm against.
func (s *Service) CreateIntent(ctx context.Context, orderID, requesterID string, isAdmin bool) (Intent, error) {
	order, err := s.repo.GetOrder(ctx, strings.TrimSpace(orderID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Intent{}, ErrOrderNotFound
		}
		return Intent{}, err
	}
	if !isAdmin && order.UserID != nil && *order.UserID != requesterID {
		return Intent{}, ErrForbidden
	}

	payment, err := s.repo.GetByOrderID(ctx, order.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Intent{}, ErrNotFound
		}
		return Intent{}, err
	}

	switch payment.Status {
	case models.PaymentStatusPending:
		ref := "demo_" + uuid.NewString()
		payment, err = s.repo.SetProcessing(ctx, payment.ID, ref)
		if err != nil {
			return Intent{}, err
		}
	case models.PaymentStatusProcessing:
		// Idempotent, the client may retry after a dropped connection.
	default:
		return Intent{}, ErrInvalidTransition
	}

	return Intent{
		PaymentID:   payment.ID,
		OrderID:     payment.OrderID,
		Provider:    payment.Provider,
		ProviderRef: payment.ProviderRef,
		Amount:      payment.Amount,
		Status:      payment.Status,
		Demo:        s.demo,
	}, nil
}

// Confirm settles a processing payment. With a real provider this is where
// the webhook or capture check would live.
func (s *Service) Confirm(ctx context.Context, paymentID string) (models.Payment, error) {
	payment, err := s.repo.GetByID(ctx, strings.TrimSpace(paymentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, ErrNotFound
		}
		return models.Payment{}, err
	}
	if payment.Status != models.PaymentStatusProcessing {
		return models.Payment{}, ErrInvalidTransition
	}
	return s.repo.Complete(ctx, payment.ID)
}

func (s *Service) MarkFailed(ctx context.Context, paymentID string) (models.Payment, error) {
	payment, err := s.repo.GetByID(ctx, strings.TrimSpace(paymentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, ErrNotFound
		}
		return models.Payment{}, err
	}
	if payment.Status != models.PaymentStatusPending && payment.Status != models.PaymentStatusProcessing {
		return models.Payment{}, ErrInvalidTransition
	}
	return s.repo.Fail(ctx, payment.ID)
}

// Refund is admin-only and works exactly once, from completed.
func (s *Service) Refund(ctx context.Context, paymentID string) (models.Payment, models.Order, error) {
	payment, err := s.repo.GetByID(ctx, strings.TrimSpace(paymentID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, models.Order{}, ErrNotFound
		}
		return models.Payment{}, models.Order{}, err
	}
	switch payment.Status {
	case models.PaymentStatusRefunded:
		return models.Payment{}, models.Order{}, ErrAlreadyRefunded
	case models.PaymentStatusCompleted:
	default:
		return models.Payment{}, models.Order{}, ErrNotRefundable
	}

	now := time.Now().In(s.location)
	payment, err = s.repo.Refund(ctx, payment.ID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Payment{}, models.Order{}, ErrAlreadyRefunded
		}
		return models.Payment{}, models.Order{}, err
	}

	order, err := s.repo.GetOrder(ctx, payment.OrderID)
	if err != nil {
		return payment, models.Order{}, err
	}
	return payment, order, nil
}

func (s *Service) ListAdmin(ctx context.Context, status string, limit, offset int) ([]models.Payment, error) {
	return s.repo.ListAll(ctx, strings.ToLower(strings.TrimSpace(status)), limit, offset)
}
