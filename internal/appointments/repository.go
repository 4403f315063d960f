package appointments

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (models.Appointment, error)
	// BookedTimes returns the time labels of non-cancelled appointments on a
	// date.
	BookedTimes(ctx context.Context, date string) ([]string, error)
	ListByUser(ctx context.Context, userID string) ([]models.Appointment, error)
	ListAll(ctx context.Context, status string) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id, status string, slotKey *string) (models.Appointment, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts inside a transaction that first locks the same-date rows,
// narrowing the check-then-act window; the unique slot_key index is the hard
// backstop and surfaces as gorm.ErrDuplicatedKey.
func (r *GormRepository) Create(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var clash int64
		err := tx.Model(&models.Appointment{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("date = ? AND time = ? AND status <> ?", appt.Date, appt.Time, models.AppointmentStatusCancelled).
			Count(&clash).Error
		if err != nil {
			return err
		}
		if clash > 0 {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(appt).Error
	})
}

func (r *GormRepository) GetByID(ctx context.Context, id string) (models.Appointment, error) {
	var a models.Appointment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return models.Appointment{}, err
	}
	return a, nil
}

func (r *GormRepository) BookedTimes(ctx context.Context, date string) ([]string, error) {
	var times []string
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("date = ? AND status <> ?", date, models.AppointmentStatusCancelled).
		Pluck("time", &times).Error
	return times, err
}

func (r *GormRepository) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&appts).Error
	return appts, err
}

func (r *GormRepository) ListAll(ctx context.Context, status string) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var appts []models.Appointment
	err := q.Order("created_at DESC").Find(&appts).Error
	return appts, err
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id, status string, slotKey *string) (models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			return err
		}
		appt.Status = status
		appt.SlotKey = slotKey
		return tx.Model(&appt).Select("status", "slot_key", "updated_at").Updates(map[string]interface{}{
			"status":   status,
			"slot_key": slotKey,
		}).Error
	})
	if err != nil {
		return models.Appointment{}, err
	}
	return appt, nil
}
