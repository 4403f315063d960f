package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/catalog"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrUnknownService  = errors.New("service not found or inactive")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

type AddRequest struct {
	ServiceID string `json:"serviceId" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=99"`
}

// Line is a cart row joined with its live service so the frontend never
// has to stitch prices together itself.
type Line struct {
	ServiceID   string `json:"serviceId"`
	ServiceName string `json:"serviceName"`
	Slug        string `json:"slug"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	Subtotal    int64  `json:"subtotal"`
}

type View struct {
	Items     []Line `json:"items"`
	ItemCount int    `json:"itemCount"`
	Total     int64  `json:"total"`
}

type Service struct {
	repo     Repository
	services catalog.Repository
	location *time.Location
}

func NewService(repo Repository, services catalog.Repository, location *time.Location) *Service {
	return &Service{repo: repo, services: services, location: location}
}

func (s *Service) Add(ctx context.Context, userID string, req AddRequest) error {
	if req.Quantity < 1 {
		return ErrInvalidQuantity
	}

	services, err := s.services.GetActiveByIDs(ctx, []string{req.ServiceID})
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return ErrUnknownService
	}

	now := time.Now().In(s.location)
	item := models.CartItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ServiceID: req.ServiceID,
		Quantity:  req.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.repo.Upsert(ctx, &item)
}

// Get resolves each line against the current catalog. Lines whose service
// has been deactivated or removed are dropped from the view and from the
// stored cart.
func (s *Service) Get(ctx context.Context, userID string) (View, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return View{}, err
	}
	if len(items) == 0 {
		return View{Items: []Line{}}, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ServiceID)
	}
	services, err := s.services.GetActiveByIDs(ctx, ids)
	if err != nil {
		return View{}, err
	}
	byID := make(map[string]models.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	view := View{Items: []Line{}}
	for _, it := range items {
		svc, ok := byID[it.ServiceID]
		if !ok {
			if err := s.repo.Remove(ctx, userID, it.ServiceID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return View{}, err
			}
			continue
		}
		line := Line{
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			Slug:        svc.Slug,
			UnitPrice:   svc.Price,
			Quantity:    it.Quantity,
			Subtotal:    svc.Price * int64(it.Quantity),
		}
		view.Items = append(view.Items, line)
		view.ItemCount += it.Quantity
		view.Total += line.Subtotal
	}
	return view, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, serviceID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	err := s.repo.UpdateQuantity(ctx, userID, serviceID, quantity)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return err
}

func (s *Service) Remove(ctx context.Context, userID, serviceID string) error {
	err := s.repo.Remove(ctx, userID, serviceID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return err
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.repo.Clear(ctx, userID)
}
