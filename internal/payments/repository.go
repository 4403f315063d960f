package payments

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (models.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (models.Payment, error)
	GetOrder(ctx context.Context, orderID string) (models.Order, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]models.Payment, error)
	SetProcessing(ctx context.Context, id, providerRef string) (models.Payment, error)
	Complete(ctx context.Context, id string) (models.Payment, error)
	Fail(ctx context.Context, id string) (models.Payment, error)
	Refund(ctx context.Context, id string, at time.Time) (models.Payment, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	return p, err
}

func (r *GormRepository) GetByOrderID(ctx context.Context, orderID string) (models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&p).Error
	return p, err
}

func (r *GormRepository) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", orderID).First(&order).Error
	return order, err
}

func (r *GormRepository) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Payment, error) {
	var list []models.Payment
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *GormRepository) SetProcessing(ctx context.Context, id, providerRef string) (models.Payment, error) {
	return r.update(ctx, id, map[string]interface{}{
		"status":       models.PaymentStatusProcessing,
		"provider_ref": providerRef,
	})
}

// Complete marks the payment and flips the order to paid in one transaction.
func (r *GormRepository) Complete(ctx context.Context, id string) (models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		if err := tx.Model(&p).Update("status", models.PaymentStatusCompleted).Error; err != nil {
			return err
		}
		p.Status = models.PaymentStatusCompleted
		return tx.Model(&models.Order{}).
			Where("id = ?", p.OrderID).
			Update("payment_status", models.OrderPaymentPaid).Error
	})
	return p, err
}

func (r *GormRepository) Fail(ctx context.Context, id string) (models.Payment, error) {
	return r.update(ctx, id, map[string]interface{}{"status": models.PaymentStatusFailed})
}

// Refund flips both the payment and the order, guarded so a second refund
// attempt on the same payment touches nothing.
func (r *GormRepository) Refund(ctx context.Context, id string, at time.Time) (models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", id, models.PaymentStatusCompleted).
			Updates(map[string]interface{}{
				"status":      models.PaymentStatusRefunded,
				"refunded_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", p.OrderID).
			Update("payment_status", models.OrderPaymentRefunded).Error
	})
	return p, err
}

func (r *GormRepository) update(ctx context.Context, id string, fields map[string]interface{}) (models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		if err := tx.Model(&p).Updates(fields).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&p).Error
	})
	return p, err
}
