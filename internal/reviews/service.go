package reviews

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
	ErrNotFound  = errors.New("review not found")
	ErrForbidden = errors.New("not your review")
)

type CreateRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Service string `json:"service" validate:"required,max=120"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

type UpdateRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{repo: repo, location: location}
}

// Create always lands unapproved. Nothing a visitor or customer sends can
// make a review public without moderation.
func (s *Service) Create(ctx context.Context, req CreateRequest, userID *string) (models.Review, error) {
	now := time.Now().In(s.location)
	review := models.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(req.Name),
		Service:   strings.TrimSpace(req.Service),
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		Approved:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, &review); err != nil {
		return models.Review{}, err
	}
	return review, nil
}

// Update lets the author rework their review. The edit drops it back out
// of the public list until an admin approves it again.
func (s *Service) Update(ctx context.Context, id, userID string, req UpdateRequest) (models.Review, error) {
	review, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Review{}, ErrNotFound
		}
		return models.Review{}, err
	}
	if review.UserID == nil || *review.UserID != userID {
		return models.Review{}, ErrForbidden
	}

	review.Rating = req.Rating
	review.Comment = strings.TrimSpace(req.Comment)
	review.Approved = false
	review.UpdatedAt = time.Now().In(s.location)
	if err := s.repo.Update(ctx, &review); err != nil {
		return models.Review{}, err
	}
	return review, nil
}

func (s *Service) ListPublic(ctx context.Context, limit, offset int) ([]models.Review, error) {
	return s.repo.ListApproved(ctx, limit, offset)
}

func (s *Service) ListAdmin(ctx context.Context) ([]models.Review, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Approve(ctx context.Context, id string) (models.Review, error) {
	review, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Review{}, ErrNotFound
		}
		return models.Review{}, err
	}
	review.Approved = true
	review.UpdatedAt = time.Now().In(s.location)
	if err := s.repo.Update(ctx, &review); err != nil {
		return models.Review{}, err
	}
	return review, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
