package quotes

import (
	"context"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	Create(ctx context.Context, quote *models.Quote) error
	GetByID(ctx context.Context, id string) (models.Quote, error)
	ListAll(ctx context.Context, status string) ([]models.Quote, error)
	UpdateStatus(ctx context.Context, id, status string) (models.Quote, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error
	return quote, err
}

func (r *GormRepository) ListAll(ctx context.Context, status string) ([]models.Quote, error) {
	var list []models.Quote
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id, status string) (models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&quote).Error; err != nil {
			return err
		}
		quote.Status = status
		return tx.Model(&quote).Update("status", status).Error
	})
	return quote, err
}
