package orders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	Create(ctx context.Context, order *models.Order, payment *models.Payment, clearCartUserID *string) error
	GetByID(ctx context.Context, id string) (models.Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Order, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (models.Order, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create persists the order, its payment row, the discount consumption and
// the cart wipe in one transaction, so a failed step never leaves a
// half-booked order behind. The order number comes from a per-year counter
// row locked for the duration of the transaction.
func (r *GormRepository) Create(ctx context.Context, order *models.Order, payment *models.Payment, clearCartUserID *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextOrderNumber(tx, order.CreatedAt.Year())
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		if order.DiscountCodeID != nil {
			res := tx.Model(&models.DiscountCode{}).
				Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", *order.DiscountCodeID).
				Update("used_count", gorm.Expr("used_count + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrDiscountConflict
			}
		}

		if payment != nil {
			payment.OrderID = order.ID
			if err := tx.Create(payment).Error; err != nil {
				return err
			}
		}

		if clearCartUserID != nil {
			if err := tx.Where("user_id = ?", *clearCartUserID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func nextOrderNumber(tx *gorm.DB, year int) (string, error) {
	var counter models.OrderCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year = ?", year).
		First(&counter).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		counter = models.OrderCounter{Year: year, Seq: 1}
		if err := tx.Create(&counter).Error; err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	default:
		counter.Seq++
		if err := tx.Save(&counter).Error; err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("ORD-%d-%04d", year, counter.Seq), nil
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	return order, err
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	return orders, err
}

func (r *GormRepository) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Limit(limit).Offset(offset).Find(&orders).Error
	return orders, err
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id, status string) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
			return err
		}
		order.Status = status
		return tx.Model(&models.Order{}).Where("id = ?", id).Update("status", status).Error
	})
	return order, err
}
