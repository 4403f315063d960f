package quotes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

var ErrNotFound = errors.New("quote not found")

type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	Service     string `json:"service" validate:"required,max=120"`
	Budget      string `json:"budget" validate:"max=60"`
	Description string `json:"description" validate:"required,max=4000"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending sent accepted rejected"`
}

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{repo: repo, location: location}
}

func (s *Service) Submit(ctx context.Context, req CreateRequest, userID *string) (models.Quote, error) {
	now := time.Now().In(s.location)
	quote := models.Quote{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		Service:     strings.TrimSpace(req.Service),
		Budget:      strings.TrimSpace(req.Budget),
		Description: strings.TrimSpace(req.Description),
		Status:      models.QuoteStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, &quote); err != nil {
		return models.Quote{}, err
	}
	return quote, nil
}

func (s *Service) ListAdmin(ctx context.Context, status string) ([]models.Quote, error) {
	return s.repo.ListAll(ctx, strings.ToLower(strings.TrimSpace(status)))
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (models.Quote, error) {
	quote, err := s.repo.UpdateStatus(ctx, strings.TrimSpace(id), status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Quote{}, ErrNotFound
		}
		return models.Quote{}, err
	}
	return quote, nil
}
