package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type fakeRepo struct {
	payments map[string]models.Payment
	orders   map[string]models.Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{payments: map[string]models.Payment{}, orders: map[string]models.Order{}}
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (models.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return models.Payment{}, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetByOrderID(ctx context.Context, orderID string) (models.Payment, error) {
	for _, p := range f.payments {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return models.Payment{}, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetOrder(ctx context.Context, orderID string) (models.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return models.Order{}, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (f *fakeRepo) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) SetProcessing(ctx context.Context, id, providerRef string) (models.Payment, error) {
	p := f.payments[id]
	p.Status = models.PaymentStatusProcessing
	p.ProviderRef = providerRef
	f.payments[id] = p
	return p, nil
}

func (f *fakeRepo) Complete(ctx context.Context, id string) (models.Payment, error) {
	p := f.payments[id]
	p.Status = models.PaymentStatusCompleted
	f.payments[id] = p
	o := f.orders[p.OrderID]
	o.PaymentStatus = models.OrderPaymentPaid
	f.orders[p.OrderID] = o
	return p, nil
}

func (f *fakeRepo) Fail(ctx context.Context, id string) (models.Payment, error) {
	p := f.payments[id]
	p.Status = models.PaymentStatusFailed
	f.payments[id] = p
	return p, nil
}

func (f *fakeRepo) Refund(ctx context.Context, id string, at time.Time) (models.Payment, error) {
	p := f.payments[id]
	if p.Status != models.PaymentStatusCompleted {
		return models.Payment{}, gorm.ErrRecordNotFound
	}
	p.Status = models.PaymentStatusRefunded
	p.RefundedAt = &at
	f.payments[id] = p
	o := f.orders[p.OrderID]
	o.PaymentStatus = models.OrderPaymentRefunded
	f.orders[p.OrderID] = o
	return p, nil
}

func seeded() *fakeRepo {
	repo := newFakeRepo()
	userID := "user-1"
	repo.orders["order-1"] = models.Order{
		ID:            "order-1",
		UserID:        &userID,
		CustomerEmail: "jan@example.be",
		FinalAmount:   9000,
		PaymentStatus: models.OrderPaymentPending,
	}
	repo.payments["pay-1"] = models.Payment{
		ID:      "pay-1",
		OrderID: "order-1",
		Amount:  9000,
		Status:  models.PaymentStatusPending,
	}
	return repo
}

func TestCreateIntent(t *testing.T) {
	repo := seeded()
	svc := NewService(repo, "", time.UTC)

	intent, err := svc.CreateIntent(context.Background(), "order-1", "user-1", false)
	if err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}
	if intent.Status != models.PaymentStatusProcessing {
		t.Errorf("status = %s, want processing", intent.Status)
	}
	if !strings.HasPrefix(intent.ProviderRef, "demo_") {
		t.Errorf("providerRef = %q", intent.ProviderRef)
	}
	if !intent.Demo {
		t.Error("demo = false with no secret key")
	}
}

func TestCreateIntentIdempotent(t *testing.T) {
	repo := seeded()
	svc := NewService(repo, "", time.UTC)

	first, err := svc.CreateIntent(context.Background(), "order-1", "user-1", false)
	if err != nil {
		t.Fatalf("first CreateIntent() error = %v", err)
	}
	second, err := svc.CreateIntent(context.Background(), "order-1", "user-1", false)
	if err != nil {
		t.Fatalf("second CreateIntent() error = %v", err)
	}
	if first.ProviderRef != second.ProviderRef {
		t.Errorf("retry changed providerRef: %q then %q", first.ProviderRef, second.ProviderRef)
	}
}

func TestCreateIntentForbidden(t *testing.T) {
	svc := NewService(seeded(), "", time.UTC)
	if _, err := svc.CreateIntent(context.Background(), "order-1", "someone-else", false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("CreateIntent() error = %v, want ErrForbidden", err)
	}
}

func TestConfirmMarksOrderPaid(t *testing.T) {
	repo := seeded()
	svc := NewService(repo, "", time.UTC)

	if _, err := svc.CreateIntent(context.Background(), "order-1", "user-1", false); err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}
	payment, err := svc.Confirm(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if payment.Status != models.PaymentStatusCompleted {
		t.Errorf("payment status = %s, want completed", payment.Status)
	}
	if repo.orders["order-1"].PaymentStatus != models.OrderPaymentPaid {
		t.Errorf("order payment status = %s, want paid", repo.orders["order-1"].PaymentStatus)
	}
}

func TestConfirmRequiresProcessing(t *testing.T) {
	svc := NewService(seeded(), "", time.UTC)
	if _, err := svc.Confirm(context.Background(), "pay-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Confirm() on pending error = %v, want ErrInvalidTransition", err)
	}
}

func TestRefundLifecycle(t *testing.T) {
	repo := seeded()
	svc := NewService(repo, "", time.UTC)

	if _, _, err := svc.Refund(context.Background(), "pay-1"); !errors.Is(err, ErrNotRefundable) {
		t.Fatalf("Refund() on pending error = %v, want ErrNotRefundable", err)
	}

	if _, err := svc.CreateIntent(context.Background(), "order-1", "user-1", false); err != nil {
		t.Fatalf("CreateIntent() error = %v", err)
	}
	if _, err := svc.Confirm(context.Background(), "pay-1"); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	payment, order, err := svc.Refund(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("Refund() error = %v", err)
	}
	if payment.Status != models.PaymentStatusRefunded || payment.RefundedAt == nil {
		t.Errorf("payment = %+v", payment)
	}
	if order.ID != "order-1" {
		t.Errorf("order = %+v", order)
	}
	if repo.orders["order-1"].PaymentStatus != models.OrderPaymentRefunded {
		t.Errorf("order payment status = %s, want refunded", repo.orders["order-1"].PaymentStatus)
	}

	if _, _, err := svc.Refund(context.Background(), "pay-1"); !errors.Is(err, ErrAlreadyRefunded) {
		t.Fatalf("second Refund() error = %v, want ErrAlreadyRefunded", err)
	}
}

func TestMarkFailed(t *testing.T) {
	repo := seeded()
	svc := NewService(repo, "", time.UTC)

	payment, err := svc.MarkFailed(context.Background(), "pay-1")
	if err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
	if payment.Status != models.PaymentStatusFailed {
		t.Errorf("status = %s, want failed", payment.Status)
	}
	if _, err := svc.MarkFailed(context.Background(), "pay-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("MarkFailed() on failed error = %v, want ErrInvalidTransition", err)
	}
}
