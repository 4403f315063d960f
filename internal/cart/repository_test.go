package cart

import (
	"context"
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

func cartRow(userID, serviceID string, quantity int) *models.CartItem {
	now := time.Now()
	return &models.CartItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ServiceID: serviceID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepoUpsertMergesSameService(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Upsert(ctx, cartRow("user-1", "svc-1", 1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	// Second add of the same service lands on the (user_id, service_id)
	// unique index and bumps the stored quantity instead.
	if err := repo.Upsert(ctx, cartRow("user-1", "svc-1", 2)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	items, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("rows = %d, want 1 merged row", len(items))
	}
	if items[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", items[0].Quantity)
	}
}

func TestRepoUpsertKeepsDistinctLines(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Upsert(ctx, cartRow("user-1", "svc-1", 1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, cartRow("user-1", "svc-2", 1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Upsert(ctx, cartRow("user-2", "svc-1", 4)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	items, err := repo.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("rows for user-1 = %d, want 2", len(items))
	}

	other, err := repo.GetItem(ctx, "user-2", "svc-1")
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if other.Quantity != 4 {
		t.Errorf("user-2 quantity = %d, want its own row with 4", other.Quantity)
	}
}
