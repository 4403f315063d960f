package reviews

import (
	"context"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id string) (models.Review, error)
	ListApproved(ctx context.Context, limit, offset int) ([]models.Review, error)
	ListAll(ctx context.Context) ([]models.Review, error)
	Delete(ctx context.Context, id string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *GormRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	return review, err
}

func (r *GormRepository) ListApproved(ctx context.Context, limit, offset int) ([]models.Review, error) {
	var list []models.Review
	err := r.db.WithContext(ctx).
		Where("approved = ?", true).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// ListAll puts pending reviews first so moderation work is at the top.
func (r *GormRepository) ListAll(ctx context.Context) ([]models.Review, error) {
	var list []models.Review
	err := r.db.WithContext(ctx).
		Order("approved ASC, created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
