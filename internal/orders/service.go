package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/cart"
	"github.com/teamkoubyte/Koubyte-sub001/internal/catalog"
	"github.com/teamkoubyte/Koubyte-sub001/internal/discounts"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNoItems           = errors.New("no items in order")
	ErrUnknownService    = errors.New("service not found or inactive")
	ErrDiscountConflict  = errors.New("discount code no longer available")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrForbidden         = errors.New("not your order")
)

type CheckoutItem struct {
	ServiceID string `json:"serviceId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

// CheckoutRequest covers both flows: authenticated customers check out
// their persisted cart and leave Items empty, guests post Items directly.
// IsGuest forces the guest flow even when a session is present, so a logged
// in customer can order for someone else without touching their cart.
type CheckoutRequest struct {
	IsGuest      bool           `json:"isGuest"`
	Name         string         `json:"name" validate:"required,max=120"`
	Email        string         `json:"email" validate:"required,email"`
	Phone        string         `json:"phone" validate:"omitempty,phone"`
	DiscountCode string         `json:"discountCode" validate:"omitempty,max=40"`
	Items        []CheckoutItem `json:"items" validate:"omitempty,dive"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed cancelled"`
}

var allowedTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusCompleted, models.OrderStatusCancelled},
	models.OrderStatusCompleted:  {},
	models.OrderStatusCancelled:  {},
}

func TransitionAllowed(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type Service struct {
	repo      Repository
	cartRepo  cart.Repository
	services  catalog.Repository
	discounts discounts.Repository
	provider  string
	location  *time.Location
}

func NewService(repo Repository, cartRepo cart.Repository, services catalog.Repository, discountRepo discounts.Repository, provider string, location *time.Location) *Service {
	return &Service{
		repo:      repo,
		cartRepo:  cartRepo,
		services:  services,
		discounts: discountRepo,
		provider:  provider,
		location:  location,
	}
}

// Checkout builds the order from authoritative catalog prices, never from
// amounts sent by the client. The discount code is re-checked here even if
// the customer already previewed it, because validity can change between
// preview and purchase.
func (s *Service) Checkout(ctx context.Context, userID *string, req CheckoutRequest) (models.Order, error) {
	if req.IsGuest {
		userID = nil
	}
	lines, err := s.resolveLines(ctx, userID, req.Items)
	if err != nil {
		return models.Order{}, err
	}

	now := time.Now().In(s.location)
	var total int64
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ID:          uuid.NewString(),
			ServiceID:   line.service.ID,
			ServiceName: line.service.Name,
			UnitPrice:   line.service.Price,
			Quantity:    line.quantity,
		})
		total += line.service.Price * int64(line.quantity)
	}

	var discountAmount int64
	var discountCodeID *string
	if req.DiscountCode != "" {
		code, err := s.discounts.GetByCode(ctx, discounts.NormalizeCode(req.DiscountCode))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Order{}, discounts.ErrNotFound
			}
			return models.Order{}, err
		}
		if err := discounts.Check(code, total, now); err != nil {
			return models.Order{}, err
		}
		discountAmount = discounts.Amount(code, total)
		discountCodeID = &code.ID
	}

	order := models.Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		CustomerName:   strings.TrimSpace(req.Name),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(req.Email)),
		CustomerPhone:  strings.TrimSpace(req.Phone),
		Items:          items,
		TotalAmount:    total,
		DiscountAmount: discountAmount,
		FinalAmount:    total - discountAmount,
		DiscountCodeID: discountCodeID,
		Status:         models.OrderStatusPending,
		PaymentStatus:  models.OrderPaymentPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	payment := &models.Payment{
		ID:        uuid.NewString(),
		Provider:  s.provider,
		Amount:    order.FinalAmount,
		Status:    models.PaymentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &order, payment, userID); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

type resolvedLine struct {
	service  models.Service
	quantity int
}

func (s *Service) resolveLines(ctx context.Context, userID *string, posted []CheckoutItem) ([]resolvedLine, error) {
	type want struct {
		serviceID string
		quantity  int
	}
	var wants []want

	if userID != nil {
		items, err := s.cartRepo.ListByUser(ctx, *userID)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, ErrEmptyCart
		}
		for _, it := range items {
			wants = append(wants, want{serviceID: it.ServiceID, quantity: it.Quantity})
		}
	} else {
		if len(posted) == 0 {
			return nil, ErrNoItems
		}
		for _, it := range posted {
			wants = append(wants, want{serviceID: it.ServiceID, quantity: it.Quantity})
		}
	}

	ids := make([]string, 0, len(wants))
	for _, w := range wants {
		ids = append(ids, w.serviceID)
	}
	services, err := s.services.GetActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	lines := make([]resolvedLine, 0, len(wants))
	for _, w := range wants {
		svc, ok := byID[w.serviceID]
		if !ok {
			return nil, ErrUnknownService
		}
		lines = append(lines, resolvedLine{service: svc, quantity: w.quantity})
	}
	return lines, nil
}

func (s *Service) ListMine(ctx context.Context, userID string, limit, offset int) ([]models.Order, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// Get returns the order if the requester owns it or is an admin.
func (s *Service) Get(ctx context.Context, id string, requesterID string, isAdmin bool) (models.Order, error) {
	order, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	if !isAdmin {
		if order.UserID == nil || *order.UserID != requesterID {
			return models.Order{}, ErrForbidden
		}
	}
	return order, nil
}

func (s *Service) ListAdmin(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	return s.repo.ListAll(ctx, strings.ToLower(strings.TrimSpace(status)), limit, offset)
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (models.Order, error) {
	order, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	if !TransitionAllowed(order.Status, status) {
		return models.Order{}, ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, order.ID, status)
}
