package discounts

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
	ErrNotFound      = errors.New("discount code not found")
	ErrInactive      = errors.New("discount code inactive")
	ErrNotYetValid   = errors.New("discount code not yet valid")
	ErrExpired       = errors.New("discount code expired")
	ErrExhausted     = errors.New("discount code usage limit reached")
	ErrBelowMinimum  = errors.New("order total below discount minimum")
	ErrDuplicateCode = errors.New("discount code already exists")
)

type ValidateRequest struct {
	Code        string `json:"code" validate:"required,max=40"`
	TotalAmount int64  `json:"totalAmount" validate:"gte=0"`
}

type ValidateResponse struct {
	Valid          bool   `json:"valid"`
	Code           string `json:"code"`
	Type           string `json:"type"`
	Value          int64  `json:"value"`
	DiscountAmount int64  `json:"discountAmount"`
	FinalAmount    int64  `json:"finalAmount"`
}

type CreateRequest struct {
	Code       string     `json:"code" validate:"required,max=40"`
	Type       string     `json:"type" validate:"required,oneof=percentage fixed"`
	Value      int64      `json:"value" validate:"required,gt=0"`
	MinAmount  *int64     `json:"minAmount" validate:"omitempty,gte=0"`
	MaxUses    *int       `json:"maxUses" validate:"omitempty,gt=0"`
	ValidFrom  *time.Time `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil"`
	Active     *bool      `json:"active"`
}

type UpdateRequest struct {
	Value      *int64     `json:"value" validate:"omitempty,gt=0"`
	MinAmount  *int64     `json:"minAmount" validate:"omitempty,gte=0"`
	MaxUses    *int       `json:"maxUses" validate:"omitempty,gt=0"`
	ValidFrom  *time.Time `json:"validFrom"`
	ValidUntil *time.Time `json:"validUntil"`
	Active     *bool      `json:"active"`
}

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{repo: repo, location: location}
}

// Check runs the validity state machine in its fixed order: exists, active,
// window, usage limit, minimum amount. The first failing rule wins. It never
// mutates usage counters; consumption happens at order commit.
func Check(code models.DiscountCode, totalAmount int64, now time.Time) error {
	if !code.Active {
		return ErrInactive
	}
	if code.ValidFrom != nil && now.Before(*code.ValidFrom) {
		return ErrNotYetValid
	}
	if code.ValidUntil != nil && now.After(*code.ValidUntil) {
		return ErrExpired
	}
	if code.MaxUses != nil && code.UsedCount >= *code.MaxUses {
		return ErrExhausted
	}
	if code.MinAmount != nil && totalAmount < *code.MinAmount {
		return ErrBelowMinimum
	}
	return nil
}

// Amount computes the discount in cents, clamped so the final amount never
// drops below zero. Percentage values round down.
func Amount(code models.DiscountCode, totalAmount int64) int64 {
	var discount int64
	switch code.Type {
	case models.DiscountTypePercentage:
		discount = totalAmount * code.Value / 100
	case models.DiscountTypeFixed:
		discount = code.Value
	}
	if discount > totalAmount {
		discount = totalAmount
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *Service) Validate(ctx context.Context, req ValidateRequest) (ValidateResponse, error) {
	code, err := s.repo.GetByCode(ctx, NormalizeCode(req.Code))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ValidateResponse{}, ErrNotFound
		}
		return ValidateResponse{}, err
	}

	if err := Check(code, req.TotalAmount, time.Now().In(s.location)); err != nil {
		return ValidateResponse{}, err
	}

	discount := Amount(code, req.TotalAmount)
	return ValidateResponse{
		Valid:          true,
		Code:           code.Code,
		Type:           code.Type,
		Value:          code.Value,
		DiscountAmount: discount,
		FinalAmount:    req.TotalAmount - discount,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]models.DiscountCode, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (models.DiscountCode, error) {
	now := time.Now().In(s.location)
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	code := models.DiscountCode{
		ID:         uuid.NewString(),
		Code:       NormalizeCode(req.Code),
		Type:       req.Type,
		Value:      req.Value,
		MinAmount:  req.MinAmount,
		MaxUses:    req.MaxUses,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
		Active:     active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, &code); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.DiscountCode{}, ErrDuplicateCode
		}
		return models.DiscountCode{}, err
	}
	return code, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (models.DiscountCode, error) {
	code, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DiscountCode{}, ErrNotFound
		}
		return models.DiscountCode{}, err
	}

	if req.Value != nil {
		code.Value = *req.Value
	}
	if req.MinAmount != nil {
		code.MinAmount = req.MinAmount
	}
	if req.MaxUses != nil {
		code.MaxUses = req.MaxUses
	}
	if req.ValidFrom != nil {
		code.ValidFrom = req.ValidFrom
	}
	if req.ValidUntil != nil {
		code.ValidUntil = req.ValidUntil
	}
	if req.Active != nil {
		code.Active = *req.Active
	}
	code.UpdatedAt = time.Now().In(s.location)

	if err := s.repo.Update(ctx, &code); err != nil {
		return models.DiscountCode{}, err
	}
	return code, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
