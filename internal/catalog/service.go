package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
	"github.com/teamkoubyte/Koubyte-sub001/internal/utils"
)

var (
	ErrNotFound      = errors.New("service not found")
	ErrDuplicateSlug = errors.New("service slug already exists")
)

type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=160"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required,max=80"`
	Price       int64  `json:"price" validate:"gte=0"`
	Active      *bool  `json:"active"`
}

type UpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=160"`
	Description *string `json:"description"`
	Category    *string `json:"category" validate:"omitempty,max=80"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	Active      *bool   `json:"active"`
}

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{repo: repo, location: location}
}

func (s *Service) ListPublic(ctx context.Context) ([]models.Service, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) ListAdmin(ctx context.Context) ([]models.Service, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (models.Service, error) {
	svc, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Service{}, ErrNotFound
		}
		return models.Service{}, err
	}
	return svc, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (models.Service, error) {
	now := time.Now().In(s.location)
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	svc := models.Service{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Slug:        utils.Slugify(req.Name),
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, &svc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Service{}, ErrDuplicateSlug
		}
		return models.Service{}, err
	}
	return svc, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (models.Service, error) {
	svc, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Service{}, ErrNotFound
		}
		return models.Service{}, err
	}

	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
		svc.Slug = utils.Slugify(svc.Name)
	}
	if req.Description != nil {
		svc.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		svc.Category = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}
	svc.UpdatedAt = time.Now().In(s.location)

	if err := s.repo.Update(ctx, &svc); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Service{}, ErrDuplicateSlug
		}
		return models.Service{}, err
	}
	return svc, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteCascade(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
