package discounts

import (
	"errors"
	"testing"
	"time"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestAmountPercentage(t *testing.T) {
	code := models.DiscountCode{Type: models.DiscountTypePercentage, Value: 10}
	// SAVE10 on €100.00
	if got := Amount(code, 10000); got != 1000 {
		t.Fatalf("expected 1000 cents discount, got %d", got)
	}
	if final := int64(10000) - Amount(code, 10000); final != 9000 {
		t.Fatalf("expected final 9000, got %d", final)
	}
}

func TestAmountPercentageRoundsDown(t *testing.T) {
	code := models.DiscountCode{Type: models.DiscountTypePercentage, Value: 10}
	if got := Amount(code, 999); got != 99 {
		t.Fatalf("expected 99, got %d", got)
	}
}

func TestAmountFixedClamped(t *testing.T) {
	code := models.DiscountCode{Type: models.DiscountTypeFixed, Value: 5000}
	if got := Amount(code, 3000); got != 3000 {
		t.Fatalf("fixed discount must clamp to total, got %d", got)
	}
	if final := int64(3000) - Amount(code, 3000); final != 0 {
		t.Fatalf("final amount must floor at zero, got %d", final)
	}
}

func TestAmountFixedNormal(t *testing.T) {
	code := models.DiscountCode{Type: models.DiscountTypeFixed, Value: 500}
	if got := Amount(code, 3000); got != 500 {
		t.Fatalf("expected 500, got %d", got)
	}
}

func TestCheckOrdering(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name  string
		code  models.DiscountCode
		total int64
		want  error
	}{
		{
			name: "inactive wins over window",
			code: models.DiscountCode{Active: false, ValidUntil: &past},
			want: ErrInactive,
		},
		{
			name: "not yet valid",
			code: models.DiscountCode{Active: true, ValidFrom: &future},
			want: ErrNotYetValid,
		},
		{
			name: "expired",
			code: models.DiscountCode{Active: true, ValidUntil: &past},
			want: ErrExpired,
		},
		{
			name: "exhausted",
			code: models.DiscountCode{Active: true, MaxUses: intPtr(3), UsedCount: 3},
			want: ErrExhausted,
		},
		{
			name:  "below minimum",
			code:  models.DiscountCode{Active: true, MinAmount: int64Ptr(5000)},
			total: 4999,
			want:  ErrBelowMinimum,
		},
		{
			name:  "valid with all constraints",
			code:  models.DiscountCode{Active: true, ValidFrom: &past, ValidUntil: &future, MaxUses: intPtr(3), UsedCount: 2, MinAmount: int64Ptr(1000)},
			total: 1000,
			want:  nil,
		},
		{
			name: "unconstrained valid",
			code: models.DiscountCode{Active: true},
			want: nil,
		},
	}

	for _, c := range cases {
		err := Check(c.code, c.total, now)
		if !errors.Is(err, c.want) && !(err == nil && c.want == nil) {
			t.Fatalf("%s: got %v, want %v", c.name, err, c.want)
		}
	}
}

func TestCheckBoundaryUsage(t *testing.T) {
	code := models.DiscountCode{Active: true, MaxUses: intPtr(5), UsedCount: 4}
	if err := Check(code, 0, time.Now()); err != nil {
		t.Fatalf("one use left should validate: %v", err)
	}
	code.UsedCount = 5
	if err := Check(code, 0, time.Now()); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  save10 "); got != "SAVE10" {
		t.Fatalf("expected SAVE10, got %q", got)
	}
}
