package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the schema for every entity. Runtime
// endpoints never touch the schema; this runs once at process start.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Service{},
		&User{},
		&RefreshToken{},
		&VerificationToken{},
		&PasswordResetToken{},
		&Appointment{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&DiscountCode{},
		&Review{},
		&Quote{},
		&ContactMessage{},
		&ChatMessage{},
		&Notification{},
		&BlogPost{},
		&CartItem{},
		&OrderCounter{},
	)
}
