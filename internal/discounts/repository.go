package discounts

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	Create(ctx context.Context, code *models.DiscountCode) error
	Update(ctx context.Context, code *models.DiscountCode) error
	GetByID(ctx context.Context, id string) (models.DiscountCode, error)
	GetByCode(ctx context.Context, code string) (models.DiscountCode, error)
	List(ctx context.Context) ([]models.DiscountCode, error)
	Delete(ctx context.Context, id string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, code *models.DiscountCode) error {
	return r.db.WithContext(ctx).Create(code).Error
}

func (r *GormRepository) Update(ctx context.Context, code *models.DiscountCode) error {
	return r.db.WithContext(ctx).Save(code).Error
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (models.DiscountCode, error) {
	var c models.DiscountCode
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return models.DiscountCode{}, err
	}
	return c, nil
}

func (r *GormRepository) GetByCode(ctx context.Context, code string) (models.DiscountCode, error) {
	var c models.DiscountCode
	if err := r.db.WithContext(ctx).First(&c, "code = ?", strings.ToUpper(code)).Error; err != nil {
		return models.DiscountCode{}, err
	}
	return c, nil
}

func (r *GormRepository) List(ctx context.Context) ([]models.DiscountCode, error) {
	var codes []models.DiscountCode
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&codes).Error
	return codes, err
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.DiscountCode{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
