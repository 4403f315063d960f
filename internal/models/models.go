package models

import "time"

const (
	RoleClient = "client"
	RoleAdmin  = "admin"

	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"

	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"

	OrderPaymentPending  = "pending"
	OrderPaymentPaid     = "paid"
	OrderPaymentRefunded = "refunded"

	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
	PaymentStatusRefunded   = "refunded"

	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"

	QuoteStatusPending  = "pending"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"

	MessageStatusNew      = "new"
	MessageStatusRead     = "read"
	MessageStatusArchived = "archived"
)

// All monetary amounts are euro cents.

type Service struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"index" json:"category"`
	Price       int64  `gorm:"not null" json:"price"`
	Active      bool   `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type User struct {
	ID              string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash    string     `gorm:"not null" json:"-"`
	Name            string     `gorm:"not null" json:"name"`
	Phone           string     `json:"phone,omitempty"`
	Address         string     `json:"address,omitempty"`
	Role            string     `gorm:"type:varchar(16);not null;default:'client'" json:"role"`
	EmailVerified   bool       `gorm:"not null;default:false" json:"emailVerified"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type RefreshToken struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string     `gorm:"type:varchar(36);not null;index" json:"userId"`
	TokenHash string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type VerificationToken struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	Code      string    `gorm:"type:varchar(6);not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}

type PasswordResetToken struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	Code      string    `gorm:"type:varchar(6);not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	Used      bool      `gorm:"not null;default:false" json:"used"`
	CreatedAt time.Time `json:"createdAt"`
}

// Appointment.SlotKey is "date|time" while the appointment occupies its slot
// and is cleared on cancellation, so the unique index only guards live
// bookings.
type Appointment struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      *string   `gorm:"type:varchar(36);index" json:"userId,omitempty"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null" json:"email"`
	Phone       string    `json:"phone"`
	Date        string    `gorm:"type:varchar(10);not null;index" json:"date"`
	Time        string    `gorm:"type:varchar(5);not null" json:"time"`
	SlotKey     *string   `gorm:"type:varchar(16);uniqueIndex" json:"-"`
	Service     string    `gorm:"not null" json:"service"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Order struct {
	ID             string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderNumber    string      `gorm:"uniqueIndex;not null" json:"orderNumber"`
	UserID         *string     `gorm:"type:varchar(36);index" json:"userId,omitempty"`
	CustomerName   string      `gorm:"not null" json:"customerName"`
	CustomerEmail  string      `gorm:"not null" json:"customerEmail"`
	CustomerPhone  string      `json:"customerPhone,omitempty"`
	Items          []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount    int64       `gorm:"not null" json:"totalAmount"`
	DiscountAmount int64       `gorm:"not null;default:0" json:"discountAmount"`
	FinalAmount    int64       `gorm:"not null" json:"finalAmount"`
	DiscountCodeID *string     `gorm:"type:varchar(36)" json:"discountCodeId,omitempty"`
	Status         string      `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	PaymentStatus  string      `gorm:"type:varchar(16);not null;default:'pending'" json:"paymentStatus"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

type OrderItem struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID     string `gorm:"type:varchar(36);not null;index" json:"orderId"`
	ServiceID   string `gorm:"type:varchar(36);not null" json:"serviceId"`
	ServiceName string `gorm:"not null" json:"serviceName"`
	UnitPrice   int64  `gorm:"not null" json:"unitPrice"`
	Quantity    int    `gorm:"not null;check:quantity > 0" json:"quantity"`
}

type Payment struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrderID     string     `gorm:"type:varchar(36);not null;index" json:"orderId"`
	Provider    string     `gorm:"type:varchar(32);not null" json:"provider"`
	ProviderRef string     `json:"providerRef,omitempty"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Status      string     `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	RefundedAt  *time.Time `json:"refundedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type DiscountCode struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Code       string     `gorm:"uniqueIndex;not null" json:"code"`
	Type       string     `gorm:"type:varchar(16);not null" json:"type"`
	Value      int64      `gorm:"not null" json:"value"`
	MinAmount  *int64     `json:"minAmount,omitempty"`
	MaxUses    *int       `json:"maxUses,omitempty"`
	UsedCount  int        `gorm:"not null;default:0" json:"usedCount"`
	ValidFrom  *time.Time `json:"validFrom,omitempty"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
	Active     bool       `gorm:"not null;default:true" json:"active"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Review struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    *string   `gorm:"type:varchar(36);index" json:"userId,omitempty"`
	Name      string    `gorm:"not null" json:"name"`
	Service   string    `gorm:"not null" json:"service"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	Approved  bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Quote struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      *string   `gorm:"type:varchar(36);index" json:"userId,omitempty"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `gorm:"not null" json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Service     string    `gorm:"not null" json:"service"`
	Budget      string    `json:"budget,omitempty"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Status      string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ContactMessage struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `gorm:"not null" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Status    string    `gorm:"type:varchar(16);not null;default:'new';index" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatMessage struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	FromAdmin bool      `gorm:"not null;default:false" json:"fromAdmin"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type Notification struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    *string   `gorm:"type:varchar(36);index" json:"userId,omitempty"`
	Kind      string    `gorm:"type:varchar(32);not null" json:"kind"`
	Title     string    `gorm:"not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

type BlogPost struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Slug        string     `gorm:"uniqueIndex;not null" json:"slug"`
	Excerpt     string     `gorm:"type:text" json:"excerpt"`
	Body        string     `gorm:"type:text;not null" json:"body"`
	Published   bool       `gorm:"not null;default:false;index" json:"published"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Views       int64      `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_service" json:"userId"`
	ServiceID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_user_service" json:"serviceId"`
	Quantity  int       `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderCounter backs the year-scoped human readable order numbers.
type OrderCounter struct {
	Year int `gorm:"primaryKey"`
	Seq  int `gorm:"not null"`
}
