package blog

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
	ErrNotFound      = errors.New("blog post not found")
	ErrDuplicateSlug = errors.New("blog post slug already exists")
)

type CreateRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Excerpt string `json:"excerpt" validate:"max=500"`
	Body    string `json:"body" validate:"required"`
}

type UpdateRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Excerpt string `json:"excerpt" validate:"max=500"`
	Body    string `json:"body" validate:"required"`
}

type PublishRequest struct {
	Published bool `json:"published"`
}

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{repo: repo, location: location}
}

func (s *Service) ListPublished(ctx context.Context, limit, offset int) ([]models.BlogPost, error) {
	return s.repo.ListPublished(ctx, limit, offset)
}

// GetBySlug serves a published post and counts the view. The count is best
// effort, a failed increment never hides the post.
func (s *Service) GetBySlug(ctx context.Context, slug string) (models.BlogPost, error) {
	post, err := s.repo.GetPublishedBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BlogPost{}, ErrNotFound
		}
		return models.BlogPost{}, err
	}
	if err := s.repo.IncrementViews(ctx, post.ID); err == nil {
		post.Views++
	}
	return post, nil
}

func (s *Service) ListAdmin(ctx context.Context) ([]models.BlogPost, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (models.BlogPost, error) {
	now := time.Now().In(s.location)
	post := models.BlogPost{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Slug:      utils.Slugify(req.Title),
		Excerpt:   strings.TrimSpace(req.Excerpt),
		Body:      req.Body,
		Published: false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, &post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.BlogPost{}, ErrDuplicateSlug
		}
		return models.BlogPost{}, err
	}
	return post, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (models.BlogPost, error) {
	post, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BlogPost{}, ErrNotFound
		}
		return models.BlogPost{}, err
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Slug = utils.Slugify(req.Title)
	post.Excerpt = strings.TrimSpace(req.Excerpt)
	post.Body = req.Body
	post.UpdatedAt = time.Now().In(s.location)

	if err := s.repo.Update(ctx, &post); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.BlogPost{}, ErrDuplicateSlug
		}
		return models.BlogPost{}, err
	}
	return post, nil
}

// SetPublished toggles visibility. The first publish stamps PublishedAt;
// republishing later keeps the original date.
func (s *Service) SetPublished(ctx context.Context, id string, published bool) (models.BlogPost, error) {
	post, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.BlogPost{}, ErrNotFound
		}
		return models.BlogPost{}, err
	}

	post.Published = published
	if published && post.PublishedAt == nil {
		now := time.Now().In(s.location)
		post.PublishedAt = &now
	}
	post.UpdatedAt = time.Now().In(s.location)

	if err := s.repo.Update(ctx, &post); err != nil {
		return models.BlogPost{}, err
	}
	return post, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
