package schedule

import (
	"testing"
	"time"
)

func mustLoadLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Europe/Brussels")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestCatalogShape(t *testing.T) {
	slots := Catalog()
	if len(slots) != 9 {
		t.Fatalf("expected 9 slots, got %d", len(slots))
	}
	if slots[0] != "09:00" || slots[len(slots)-1] != "17:00" {
		t.Fatalf("unexpected boundary slots: %v", slots)
	}
}

func TestPartitionEmptyBookings(t *testing.T) {
	available, taken := Partition(nil)
	if len(available) != 9 {
		t.Fatalf("expected full catalog available, got %d", len(available))
	}
	if len(taken) != 0 {
		t.Fatalf("expected no taken slots, got %v", taken)
	}
}

func TestPartitionSingleBooking(t *testing.T) {
	available, taken := Partition([]string{"14:00"})
	if len(available) != 8 {
		t.Fatalf("expected 8 available slots, got %d: %v", len(available), available)
	}
	for _, s := range available {
		if s == "14:00" {
			t.Fatalf("14:00 should not be available")
		}
	}
	if len(taken) != 1 || taken[0] != "14:00" {
		t.Fatalf("unexpected taken slots: %v", taken)
	}
}

func TestPartitionCoversCatalog(t *testing.T) {
	booked := []string{"09:00", "12:00", "17:00", "08:00"} // 08:00 not in catalog
	available, taken := Partition(booked)
	if len(available)+len(taken) != len(Catalog()) {
		t.Fatalf("partition does not cover catalog: %d + %d", len(available), len(taken))
	}
	seen := make(map[string]bool)
	for _, s := range available {
		seen[s] = true
	}
	for _, s := range taken {
		if seen[s] {
			t.Fatalf("slot %s in both partitions", s)
		}
	}
}

func TestPartitionFullyBooked(t *testing.T) {
	available, taken := Partition(Catalog())
	if len(available) != 0 {
		t.Fatalf("expected no availability, got %v", available)
	}
	if len(taken) != 9 {
		t.Fatalf("expected 9 taken slots, got %d", len(taken))
	}
}

func TestInCatalog(t *testing.T) {
	if !InCatalog("14:00") {
		t.Fatalf("14:00 should be in catalog")
	}
	if InCatalog("14:30") {
		t.Fatalf("14:30 should not be in catalog")
	}
	if InCatalog("08:00") {
		t.Fatalf("08:00 should not be in catalog")
	}
}

func TestIsDatePast(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, loc)

	past, err := IsDatePast("2026-02-03", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if !past {
		t.Fatalf("expected date to be past")
	}

	past, err = IsDatePast("2026-02-04", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if past {
		t.Fatalf("expected date to be not past")
	}

	if _, err := IsDatePast("04-02-2026", loc, now); err == nil {
		t.Fatalf("expected invalid date error")
	}
}

func TestIsSlotPast(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, loc)

	past, err := IsSlotPast("2026-02-04", "09:00", loc, now)
	if err != nil {
		t.Fatalf("IsSlotPast error: %v", err)
	}
	if !past {
		t.Fatalf("expected slot to be past")
	}

	past, err = IsSlotPast("2026-02-04", "11:00", loc, now)
	if err != nil {
		t.Fatalf("IsSlotPast error: %v", err)
	}
	if past {
		t.Fatalf("expected slot to be future")
	}
}

func TestSlotKey(t *testing.T) {
	if got := SlotKey("2025-06-10", "14:00"); got != "2025-06-10|14:00" {
		t.Fatalf("unexpected slot key %q", got)
	}
}
