package orders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/discounts"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type fakeOrderRepo struct {
	orders  map[string]models.Order
	seq     int
	cleared []string
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]models.Order{}}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order, payment *models.Payment, clearCartUserID *string) error {
	f.seq++
	order.OrderNumber = fmt.Sprintf("ORD-%d-%04d", order.CreatedAt.Year(), f.seq)
	f.orders[order.ID] = *order
	if clearCartUserID != nil {
		f.cleared = append(f.cleared, *clearCartUserID)
	}
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id string) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id, status string) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, gorm.ErrRecordNotFound
	}
	o.Status = status
	f.orders[id] = o
	return o, nil
}

type fakeCartRepo struct {
	items map[string][]models.CartItem
}

func (f *fakeCartRepo) Upsert(ctx context.Context, item *models.CartItem) error { return nil }
func (f *fakeCartRepo) GetItem(ctx context.Context, userID, serviceID string) (models.CartItem, error) {
	return models.CartItem{}, gorm.ErrRecordNotFound
}
func (f *fakeCartRepo) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	return f.items[userID], nil
}
func (f *fakeCartRepo) UpdateQuantity(ctx context.Context, userID, serviceID string, quantity int) error {
	return nil
}
func (f *fakeCartRepo) Remove(ctx context.Context, userID, serviceID string) error { return nil }
func (f *fakeCartRepo) Clear(ctx context.Context, userID string) error {
	delete(f.items, userID)
	return nil
}

type fakeCatalogRepo struct {
	services map[string]models.Service
}

func (f *fakeCatalogRepo) Create(ctx context.Context, service *models.Service) error { return nil }
func (f *fakeCatalogRepo) Update(ctx context.Context, service *models.Service) error { return nil }
func (f *fakeCatalogRepo) GetByID(ctx context.Context, id string) (models.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return models.Service{}, gorm.ErrRecordNotFound
	}
	return svc, nil
}
func (f *fakeCatalogRepo) GetBySlug(ctx context.Context, slug string) (models.Service, error) {
	return models.Service{}, gorm.ErrRecordNotFound
}
func (f *fakeCatalogRepo) GetActiveByIDs(ctx context.Context, ids []string) ([]models.Service, error) {
	var out []models.Service
	for _, id := range ids {
		if svc, ok := f.services[id]; ok && svc.Active {
			out = append(out, svc)
		}
	}
	return out, nil
}
func (f *fakeCatalogRepo) ListActive(ctx context.Context) ([]models.Service, error) { return nil, nil }
func (f *fakeCatalogRepo) ListAll(ctx context.Context) ([]models.Service, error)    { return nil, nil }
func (f *fakeCatalogRepo) DeleteCascade(ctx context.Context, id string) error       { return nil }

type fakeDiscountRepo struct {
	codes map[string]models.DiscountCode
}

func (f *fakeDiscountRepo) Create(ctx context.Context, code *models.DiscountCode) error { return nil }
func (f *fakeDiscountRepo) Update(ctx context.Context, code *models.DiscountCode) error { return nil }
func (f *fakeDiscountRepo) GetByID(ctx context.Context, id string) (models.DiscountCode, error) {
	return models.DiscountCode{}, gorm.ErrRecordNotFound
}
func (f *fakeDiscountRepo) GetByCode(ctx context.Context, code string) (models.DiscountCode, error) {
	c, ok := f.codes[code]
	if !ok {
		return models.DiscountCode{}, gorm.ErrRecordNotFound
	}
	return c, nil
}
func (f *fakeDiscountRepo) List(ctx context.Context) ([]models.DiscountCode, error) { return nil, nil }
func (f *fakeDiscountRepo) Delete(ctx context.Context, id string) error             { return nil }

func testService(orderRepo *fakeOrderRepo, cartItems map[string][]models.CartItem) *Service {
	services := map[string]models.Service{
		"svc-1": {ID: "svc-1", Name: "Computer reparatie", Price: 5000, Active: true},
		"svc-2": {ID: "svc-2", Name: "Netwerk installatie", Price: 2000, Active: true},
	}
	codes := map[string]models.DiscountCode{
		"SAVE10": {ID: "dc-1", Code: "SAVE10", Type: models.DiscountTypePercentage, Value: 10, Active: true},
	}
	return NewService(
		orderRepo,
		&fakeCartRepo{items: cartItems},
		&fakeCatalogRepo{services: services},
		&fakeDiscountRepo{codes: codes},
		"demo",
		time.UTC,
	)
}

func guestRequest() CheckoutRequest {
	return CheckoutRequest{
		Name:  "Jan Peeters",
		Email: "jan@example.be",
		Items: []CheckoutItem{
			{ServiceID: "svc-1", Quantity: 1},
			{ServiceID: "svc-2", Quantity: 2},
		},
	}
}

func TestGuestCheckoutTotals(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := testService(repo, nil)

	order, err := svc.Checkout(context.Background(), nil, guestRequest())
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if order.TotalAmount != 9000 {
		t.Errorf("total = %d, want 9000", order.TotalAmount)
	}
	if order.FinalAmount != 9000 || order.DiscountAmount != 0 {
		t.Errorf("final = %d, discount = %d", order.FinalAmount, order.DiscountAmount)
	}
	if order.OrderNumber == "" {
		t.Error("order number not assigned")
	}
	if order.Status != models.OrderStatusPending || order.PaymentStatus != models.OrderPaymentPending {
		t.Errorf("status = %s/%s, want pending/pending", order.Status, order.PaymentStatus)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	if order.Items[0].UnitPrice != 5000 || order.Items[0].ServiceName != "Computer reparatie" {
		t.Errorf("item snapshot = %+v", order.Items[0])
	}
}

func TestGuestCheckoutIgnoresClientPrices(t *testing.T) {
	// Prices always come from the catalog. A guest posting only IDs and
	// quantities has no way to influence the amounts.
	repo := newFakeOrderRepo()
	svc := testService(repo, nil)

	req := guestRequest()
	req.Items = []CheckoutItem{{ServiceID: "svc-2", Quantity: 3}}

	order, err := svc.Checkout(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if order.TotalAmount != 6000 {
		t.Errorf("total = %d, want 6000", order.TotalAmount)
	}
}

func TestCheckoutWithDiscount(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := testService(repo, nil)

	req := guestRequest()
	req.Items = []CheckoutItem{{ServiceID: "svc-1", Quantity: 2}}
	req.DiscountCode = "save10"

	order, err := svc.Checkout(context.Background(), nil, req)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if order.TotalAmount != 10000 || order.DiscountAmount != 1000 || order.FinalAmount != 9000 {
		t.Errorf("amounts = %d/%d/%d, want 10000/1000/9000",
			order.TotalAmount, order.DiscountAmount, order.FinalAmount)
	}
	if order.DiscountCodeID == nil || *order.DiscountCodeID != "dc-1" {
		t.Errorf("discount code id = %v", order.DiscountCodeID)
	}
}

func TestCheckoutUnknownDiscount(t *testing.T) {
	svc := testService(newFakeOrderRepo(), nil)
	req := guestRequest()
	req.DiscountCode = "NOPE"
	if _, err := svc.Checkout(context.Background(), nil, req); !errors.Is(err, discounts.ErrNotFound) {
		t.Fatalf("Checkout() error = %v, want discounts.ErrNotFound", err)
	}
}

func TestAuthenticatedCheckoutUsesCart(t *testing.T) {
	userID := "user-1"
	cartItems := map[string][]models.CartItem{
		userID: {
			{UserID: userID, ServiceID: "svc-1", Quantity: 1},
			{UserID: userID, ServiceID: "svc-2", Quantity: 1},
		},
	}
	repo := newFakeOrderRepo()
	svc := testService(repo, cartItems)

	req := guestRequest()
	req.Items = nil

	order, err := svc.Checkout(context.Background(), &userID, req)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if order.TotalAmount != 7000 {
		t.Errorf("total = %d, want 7000", order.TotalAmount)
	}
	if order.UserID == nil || *order.UserID != userID {
		t.Errorf("order.UserID = %v", order.UserID)
	}
	if len(repo.cleared) != 1 || repo.cleared[0] != userID {
		t.Errorf("cart not cleared: %v", repo.cleared)
	}
}

func TestGuestFlagOverridesSession(t *testing.T) {
	// A logged in customer sending isGuest checks out the posted items,
	// leaves their stored cart alone and gets a detached order.
	userID := "user-1"
	cartItems := map[string][]models.CartItem{
		userID: {
			{UserID: userID, ServiceID: "svc-2", Quantity: 5},
		},
	}
	repo := newFakeOrderRepo()
	svc := testService(repo, cartItems)

	req := guestRequest()
	req.IsGuest = true
	req.Items = []CheckoutItem{{ServiceID: "svc-1", Quantity: 1}}

	order, err := svc.Checkout(context.Background(), &userID, req)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if order.TotalAmount != 5000 {
		t.Errorf("total = %d, want 5000 from posted items, not the cart", order.TotalAmount)
	}
	if order.UserID != nil {
		t.Errorf("order.UserID = %v, want nil", *order.UserID)
	}
	if len(repo.cleared) != 0 {
		t.Errorf("cart cleared for %v, want untouched", repo.cleared)
	}
}

func TestAuthenticatedCheckoutEmptyCart(t *testing.T) {
	userID := "user-1"
	svc := testService(newFakeOrderRepo(), map[string][]models.CartItem{})
	req := guestRequest()
	req.Items = nil
	if _, err := svc.Checkout(context.Background(), &userID, req); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("Checkout() error = %v, want ErrEmptyCart", err)
	}
}

func TestGuestCheckoutNoItems(t *testing.T) {
	svc := testService(newFakeOrderRepo(), nil)
	req := guestRequest()
	req.Items = nil
	if _, err := svc.Checkout(context.Background(), nil, req); !errors.Is(err, ErrNoItems) {
		t.Fatalf("Checkout() error = %v, want ErrNoItems", err)
	}
}

func TestCheckoutUnknownService(t *testing.T) {
	svc := testService(newFakeOrderRepo(), nil)
	req := guestRequest()
	req.Items = []CheckoutItem{{ServiceID: "svc-missing", Quantity: 1}}
	if _, err := svc.Checkout(context.Background(), nil, req); !errors.Is(err, ErrUnknownService) {
		t.Fatalf("Checkout() error = %v, want ErrUnknownService", err)
	}
}

func TestGetOwnership(t *testing.T) {
	userID := "user-1"
	repo := newFakeOrderRepo()
	svc := testService(repo, map[string][]models.CartItem{
		userID: {{UserID: userID, ServiceID: "svc-1", Quantity: 1}},
	})

	req := guestRequest()
	req.Items = nil
	order, err := svc.Checkout(context.Background(), &userID, req)
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	if _, err := svc.Get(context.Background(), order.ID, "someone-else", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("Get() by stranger error = %v, want ErrForbidden", err)
	}
	if _, err := svc.Get(context.Background(), order.ID, "someone-else", true); err != nil {
		t.Errorf("Get() by admin error = %v", err)
	}
	if _, err := svc.Get(context.Background(), order.ID, userID, false); err != nil {
		t.Errorf("Get() by owner error = %v", err)
	}
}

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.OrderStatusPending, models.OrderStatusProcessing, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusPending, models.OrderStatusCompleted, false},
		{models.OrderStatusProcessing, models.OrderStatusCompleted, true},
		{models.OrderStatusProcessing, models.OrderStatusCancelled, true},
		{models.OrderStatusCompleted, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusProcessing, false},
	}
	for _, tc := range cases {
		if got := TransitionAllowed(tc.from, tc.to); got != tc.ok {
			t.Errorf("TransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}
