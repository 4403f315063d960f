package messages

import (
	"context"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	CreateContact(ctx context.Context, msg *models.ContactMessage) error
	ListContacts(ctx context.Context, status string) ([]models.ContactMessage, error)
	UpdateContactStatus(ctx context.Context, id, status string) (models.ContactMessage, error)

	CreateChat(ctx context.Context, msg *models.ChatMessage) error
	ListChatByUser(ctx context.Context, userID string) ([]models.ChatMessage, error)
	ListChatThreads(ctx context.Context) ([]string, error)
	MarkChatRead(ctx context.Context, userID string, fromAdmin bool) error

	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID *string, limit, offset int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (models.Notification, error)
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateContact(ctx context.Context, msg *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *GormRepository) ListContacts(ctx context.Context, status string) ([]models.ContactMessage, error) {
	var list []models.ContactMessage
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}

func (r *GormRepository) UpdateContactStatus(ctx context.Context, id, status string) (models.ContactMessage, error) {
	var msg models.ContactMessage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&msg).Error; err != nil {
			return err
		}
		msg.Status = status
		return tx.Model(&msg).Update("status", status).Error
	})
	return msg, err
}

func (r *GormRepository) CreateChat(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *GormRepository) ListChatByUser(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	var list []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// ListChatThreads returns the user ids with at least one message, most
// recent conversation first.
func (r *GormRepository) ListChatThreads(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Select("user_id").
		Group("user_id").
		Order("MAX(created_at) DESC").
		Pluck("user_id", &ids).Error
	return ids, err
}

// MarkChatRead flags one side of a thread as read: the admin reads the
// customer's messages (fromAdmin false), the customer reads the admin's.
func (r *GormRepository) MarkChatRead(ctx context.Context, userID string, fromAdmin bool) error {
	return r.db.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("user_id = ? AND from_admin = ? AND read = ?", userID, fromAdmin, false).
		Update("read", true).Error
}

func (r *GormRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// ListNotifications with a nil userID returns the back office feed, the
// rows not addressed to any specific user.
func (r *GormRepository) ListNotifications(ctx context.Context, userID *string, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if userID == nil {
		q = q.Where("user_id IS NULL")
	} else {
		q = q.Where("user_id = ?", *userID)
	}
	err := q.Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *GormRepository) MarkNotificationRead(ctx context.Context, id string) (models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&n).Error; err != nil {
			return err
		}
		n.Read = true
		return tx.Model(&n).Update("read", true).Error
	})
	return n, err
}
