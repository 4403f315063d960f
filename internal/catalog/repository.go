package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	Create(ctx context.Context, service *models.Service) error
	Update(ctx context.Context, service *models.Service) error
	GetByID(ctx context.Context, id string) (models.Service, error)
	GetBySlug(ctx context.Context, slug string) (models.Service, error)
	GetActiveByIDs(ctx context.Context, ids []string) ([]models.Service, error)
	ListActive(ctx context.Context) ([]models.Service, error)
	ListAll(ctx context.Context) ([]models.Service, error)
	// DeleteCascade removes the service and any cart lines referencing it in
	// one transaction.
	DeleteCascade(ctx context.Context, id string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *GormRepository) Update(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Save(service).Error
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return models.Service{}, err
	}
	return s, nil
}

func (r *GormRepository) GetBySlug(ctx context.Context, slug string) (models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, "slug = ?", slug).Error; err != nil {
		return models.Service{}, err
	}
	return s, nil
}

func (r *GormRepository) GetActiveByIDs(ctx context.Context, ids []string) ([]models.Service, error) {
	services := make([]models.Service, 0, len(ids))
	if len(ids) == 0 {
		return services, nil
	}
	err := r.db.WithContext(ctx).
		Where("id IN ? AND active = ?", ids, true).
		Find(&services).Error
	return services, err
}

func (r *GormRepository) ListActive(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&services).Error
	return services, err
}

func (r *GormRepository) ListAll(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&services).Error
	return services, err
}

func (r *GormRepository) DeleteCascade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Service{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
