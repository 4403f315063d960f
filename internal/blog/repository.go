package blog

import (
	"context"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, post *models.BlogPost) error
	GetByID(ctx context.Context, id string) (models.BlogPost, error)
	GetPublishedBySlug(ctx context.Context, slug string) (models.BlogPost, error)
	ListPublished(ctx context.Context, limit, offset int) ([]models.BlogPost, error)
	ListAll(ctx context.Context) ([]models.BlogPost, error)
	IncrementViews(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *GormRepository) Update(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	return post, err
}

func (r *GormRepository) GetPublishedBySlug(ctx context.Context, slug string) (models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).
		Where("slug = ? AND published = ?", slug, true).
		First(&post).Error
	return post, err
}

func (r *GormRepository) ListPublished(ctx context.Context, limit, offset int) ([]models.BlogPost, error) {
	var list []models.BlogPost
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("published_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *GormRepository) ListAll(ctx context.Context) ([]models.BlogPost, error) {
	var list []models.BlogPost
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

// IncrementViews is a single atomic update, concurrent readers never lose
// a count.
func (r *GormRepository) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.BlogPost{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BlogPost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
