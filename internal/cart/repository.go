package cart

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	Upsert(ctx context.Context, item *models.CartItem) error
	GetItem(ctx context.Context, userID, serviceID string) (models.CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, serviceID string, quantity int) error
	Remove(ctx context.Context, userID, serviceID string) error
	Clear(ctx context.Context, userID string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Upsert folds a repeat add of the same service into the existing line by
// bumping its quantity.
func (r *GormRepository) Upsert(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "service_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", item.Quantity),
				"updated_at": item.UpdatedAt,
			}),
		}).
		Create(item).Error
}

func (r *GormRepository) GetItem(ctx context.Context, userID, serviceID string) (models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		First(&item).Error
	return item, err
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *GormRepository) UpdateQuantity(ctx context.Context, userID, serviceID string, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepository) Remove(ctx context.Context, userID, serviceID string) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepository) Clear(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
