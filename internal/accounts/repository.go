package accounts

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type Repository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	SetRole(ctx context.Context, id, role string) (models.User, error)

	IssueVerification(ctx context.Context, token *models.VerificationToken) error
	LatestVerification(ctx context.Context, userID string) (models.VerificationToken, error)
	MarkEmailVerified(ctx context.Context, userID string, now time.Time) error

	IssuePasswordReset(ctx context.Context, token *models.PasswordResetToken) error
	LatestPasswordReset(ctx context.Context, userID string) (models.PasswordResetToken, error)
	CompletePasswordReset(ctx context.Context, userID, newHash string, now time.Time) error

	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, now time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string, now time.Time) error

	HasFinancialRecordsSince(ctx context.Context, userID string, since time.Time) (bool, error)
	AnonymizeUser(ctx context.Context, userID string, placeholderEmail, placeholderName, scrambledHash string) error
	HardDeleteUser(ctx context.Context, userID string) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormRepository) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return user, err
}

func (r *GormRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, err
}

func (r *GormRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *GormRepository) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *GormRepository) SetRole(ctx context.Context, id, role string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		user.Role = role
		return tx.Model(&user).Update("role", role).Error
	})
	return user, err
}

// IssueVerification supersedes any code still open for the user, so only
// the freshest code ever verifies.
func (r *GormRepository) IssueVerification(ctx context.Context, token *models.VerificationToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.VerificationToken{}).
			Where("user_id = ? AND used = ?", token.UserID, false).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

func (r *GormRepository) LatestVerification(ctx context.Context, userID string) (models.VerificationToken, error) {
	var token models.VerificationToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND used = ?", userID, false).
		Order("created_at DESC").
		First(&token).Error
	return token, err
}

func (r *GormRepository) MarkEmailVerified(ctx context.Context, userID string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"email_verified":    true,
				"email_verified_at": now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&models.VerificationToken{}).
			Where("user_id = ?", userID).
			Update("used", true).Error
	})
}

func (r *GormRepository) IssuePasswordReset(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PasswordResetToken{}).
			Where("user_id = ? AND used = ?", token.UserID, false).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
}

func (r *GormRepository) LatestPasswordReset(ctx context.Context, userID string) (models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND used = ?", userID, false).
		Order("created_at DESC").
		First(&token).Error
	return token, err
}

// CompletePasswordReset swaps the hash, burns every outstanding reset code
// and kills all sessions in one transaction.
func (r *GormRepository) CompletePasswordReset(ctx context.Context, userID, newHash string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("password_hash", newHash).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.PasswordResetToken{}).
			Where("user_id = ?", userID).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND revoked_at IS NULL", userID).
			Update("revoked_at", now).Error
	})
}

func (r *GormRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *GormRepository) GetRefreshToken(ctx context.Context, tokenHash string) (models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error
	return token, err
}

func (r *GormRepository) RevokeRefreshToken(ctx context.Context, id string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now).Error
}

func (r *GormRepository) RevokeAllRefreshTokens(ctx context.Context, userID string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", now).Error
}

func (r *GormRepository) HasFinancialRecordsSince(ctx context.Context, userID string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count > 0, err
}

// AnonymizeUser scrubs the account but keeps the user row and its orders,
// for accounting retention. Everything else personal goes.
func (r *GormRepository) AnonymizeUser(ctx context.Context, userID string, placeholderEmail, placeholderName, scrambledHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"email":          placeholderEmail,
				"name":           placeholderName,
				"phone":          "",
				"address":        "",
				"password_hash":  scrambledHash,
				"email_verified": false,
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"customer_name":  placeholderName,
				"customer_email": placeholderEmail,
				"customer_phone": "",
			}).Error; err != nil {
			return err
		}
		return deletePersonalRecords(tx, userID)
	})
}

// HardDeleteUser removes the account and every record it owns, orders and
// payments included.
func (r *GormRepository) HardDeleteUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orderIDs []string
		if err := tx.Model(&models.Order{}).
			Where("user_id = ?", userID).
			Pluck("id", &orderIDs).Error; err != nil {
			return err
		}
		if len(orderIDs) > 0 {
			if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id IN ?", orderIDs).Delete(&models.Payment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", orderIDs).Delete(&models.Order{}).Error; err != nil {
				return err
			}
		}
		if err := deletePersonalRecords(tx, userID); err != nil {
			return err
		}
		return tx.Where("id = ?", userID).Delete(&models.User{}).Error
	})
}

func deletePersonalRecords(tx *gorm.DB, userID string) error {
	owned := []interface{}{
		&models.CartItem{},
		&models.Appointment{},
		&models.Review{},
		&models.Quote{},
		&models.ChatMessage{},
		&models.Notification{},
		&models.VerificationToken{},
		&models.PasswordResetToken{},
		&models.RefreshToken{},
	}
	for _, model := range owned {
		if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
			return fmt.Errorf("delete user records: %w", err)
		}
	}
	return nil
}
