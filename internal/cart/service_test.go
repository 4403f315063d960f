package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type fakeCartRepo struct {
	items []models.CartItem
}

func (f *fakeCartRepo) Upsert(ctx context.Context, item *models.CartItem) error {
	for i, it := range f.items {
		if it.UserID == item.UserID && it.ServiceID == item.ServiceID {
			f.items[i].Quantity += item.Quantity
			return nil
		}
	}
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeCartRepo) GetItem(ctx context.Context, userID, serviceID string) (models.CartItem, error) {
	for _, it := range f.items {
		if it.UserID == userID && it.ServiceID == serviceID {
			return it, nil
		}
	}
	return models.CartItem{}, gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, it := range f.items {
		if it.UserID == userID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeCartRepo) UpdateQuantity(ctx context.Context, userID, serviceID string, quantity int) error {
	for i, it := range f.items {
		if it.UserID == userID && it.ServiceID == serviceID {
			f.items[i].Quantity = quantity
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) Remove(ctx context.Context, userID, serviceID string) error {
	for i, it := range f.items {
		if it.UserID == userID && it.ServiceID == serviceID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeCartRepo) Clear(ctx context.Context, userID string) error {
	var kept []models.CartItem
	for _, it := range f.items {
		if it.UserID != userID {
			kept = append(kept, it)
		}
	}
	f.items = kept
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

func newCartService() (*Service, *fakeCartRepo, *fakeCatalogRepo) {
	repo := &fakeCartRepo{}
	catalogRepo := &fakeCatalogRepo{services: map[string]models.Service{
		"svc-1": {ID: "svc-1", Name: "Computer Reparatie", Slug: "computer-reparatie", Price: 4900, Active: true},
		"svc-2": {ID: "svc-2", Name: "Wifi Optimalisatie", Slug: "wifi-optimalisatie", Price: 6900, Active: true},
	}}
	loc, _ := time.LoadLocation("Europe/Brussels")
	return NewService(repo, catalogRepo, loc), repo, catalogRepo
}

func TestAddAndTotals(t *testing.T) {
	svc, _, _ := newCartService()
	ctx := context.Background()

	if err := svc.Add(ctx, "user-1", AddRequest{ServiceID: "svc-1", Quantity: 2}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Add(ctx, "user-1", AddRequest{ServiceID: "svc-2", Quantity: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	view, err := svc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if view.ItemCount != 3 {
		t.Fatalf("item count = %d, want 3", view.ItemCount)
	}
	if view.Total != 2*4900+6900 {
		t.Fatalf("total = %d, want %d", view.Total, 2*4900+6900)
	}
}

func TestAddMergesDuplicate(t *testing.T) {
	svc, repo, _ := newCartService()
	ctx := context.Background()

	if err := svc.Add(ctx, "user-1", AddRequest{ServiceID: "svc-1", Quantity: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Add(ctx, "user-1", AddRequest{ServiceID: "svc-1", Quantity: 2}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if len(repo.items) != 1 {
		t.Fatalf("rows = %d, want 1 merged row", len(repo.items))
	}
	if repo.items[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", repo.items[0].Quantity)
	}
}

func TestAddUnknownService(t *testing.T) {
	svc, _, _ := newCartService()

	err := svc.Add(context.Background(), "user-1", AddRequest{ServiceID: "svc-404", Quantity: 1})
	if !errors.Is(err, ErrUnknownService) {
		t.Fatalf("err = %v, want ErrUnknownService", err)
	}
}

func TestGetDropsDeactivatedLines(t *testing.T) {
	svc, repo, catalogRepo := newCartService()
	ctx := context.Background()

	if err := svc.Add(ctx, "user-1", AddRequest{ServiceID: "svc-1", Quantity: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Add(ctx, "user-1", AddRequest{ServiceID: "svc-2", Quantity: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	stale := catalogRepo.services["svc-2"]
	stale.Active = false
	catalogRepo.services["svc-2"] = stale

	view, err := svc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ServiceID != "svc-1" {
		t.Fatalf("items = %+v, want only svc-1", view.Items)
	}
	if len(repo.items) != 1 {
		t.Fatalf("stored rows = %d, want stale line removed", len(repo.items))
	}
}

func TestUpdateQuantity(t *testing.T) {
	svc, repo, _ := newCartService()
	ctx := context.Background()

	if err := svc.Add(ctx, "user-1", AddRequest{ServiceID: "svc-1", Quantity: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.UpdateQuantity(ctx, "user-1", "svc-1", 5); err != nil {
		t.Fatalf("UpdateQuantity: %v", err)
	}
	if repo.items[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", repo.items[0].Quantity)
	}

	if err := svc.UpdateQuantity(ctx, "user-1", "svc-2", 2); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
	if err := svc.UpdateQuantity(ctx, "user-1", "svc-1", 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	svc, repo, _ := newCartService()
	ctx := context.Background()

	if err := svc.Add(ctx, "user-1", AddRequest{ServiceID: "svc-1", Quantity: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := svc.Add(ctx, "user-2", AddRequest{ServiceID: "svc-2", Quantity: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := svc.Remove(ctx, "user-1", "svc-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := svc.Remove(ctx, "user-1", "svc-1"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}

	if err := svc.Clear(ctx, "user-2"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("rows = %d, want empty", len(repo.items))
	}
}
