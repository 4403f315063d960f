package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

func seedPayment(t *testing.T, gdb *gorm.DB, status string) models.Payment {
	t.Helper()
	order := models.Order{
		ID:            uuid.NewString(),
		OrderNumber:   "ORD-2026-" + uuid.NewString()[:4],
		CustomerName:  "Jan Peeters",
		CustomerEmail: "jan@example.be",
		TotalAmount:   9000,
		FinalAmount:   9000,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.OrderPaymentPending,
	}
	if err := gdb.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	payment := models.Payment{
		ID:       uuid.NewString(),
		OrderID:  order.ID,
		Provider: "demo",
		Amount:   9000,
		Status:   status,
	}
	if err := gdb.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return payment
}

func TestRepoRefundExactlyOnce(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	payment := seedPayment(t, gdb, models.PaymentStatusCompleted)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	refunded, err := repo.Refund(ctx, payment.ID, at)
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if refunded.Status != models.PaymentStatusRefunded {
		t.Errorf("status = %s, want refunded", refunded.Status)
	}
	if refunded.RefundedAt == nil {
		t.Error("RefundedAt not set")
	}

	var order models.Order
	if err := gdb.First(&order, "id = ?", payment.OrderID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.PaymentStatus != models.OrderPaymentRefunded {
		t.Errorf("order payment status = %s, want refunded", order.PaymentStatus)
	}

	// The conditional update matches zero rows the second time.
	if _, err := repo.Refund(ctx, payment.ID, at.Add(time.Hour)); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("second Refund error = %v, want ErrRecordNotFound", err)
	}
	var after models.Payment
	if err := gdb.First(&after, "id = ?", payment.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if after.RefundedAt == nil || !after.RefundedAt.Equal(at) {
		t.Errorf("RefundedAt = %v, want original %v", after.RefundedAt, at)
	}
}

func TestRepoRefundRequiresCompleted(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewRepository(gdb)

	payment := seedPayment(t, gdb, models.PaymentStatusPending)
	if _, err := repo.Refund(context.Background(), payment.ID, time.Now()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Refund error = %v, want ErrRecordNotFound", err)
	}

	var after models.Payment
	if err := gdb.First(&after, "id = ?", payment.ID).Error; err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if after.Status != models.PaymentStatusPending {
		t.Errorf("status = %s, want pending untouched", after.Status)
	}
}

func TestRepoCompleteMarksOrderPaid(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewRepository(gdb)

	payment := seedPayment(t, gdb, models.PaymentStatusProcessing)
	completed, err := repo.Complete(context.Background(), payment.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if completed.Status != models.PaymentStatusCompleted {
		t.Errorf("status = %s, want completed", completed.Status)
	}

	var order models.Order
	if err := gdb.First(&order, "id = ?", payment.OrderID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.PaymentStatus != models.OrderPaymentPaid {
		t.Errorf("order payment status = %s, want paid", order.PaymentStatus)
	}
}
