package schedule

import (
	"errors"
	"time"
)

var (
	ErrInvalidDate = errors.New("invalid date format")
	ErrInvalidTime = errors.New("invalid time format")
)

// catalog is the fixed ordered list of bookable time labels for a day. Nine
// hourly slots, 09:00 through 17:00.
var catalog = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00",
}

func Catalog() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

func CatalogSize() int {
	return len(catalog)
}

func InCatalog(timeStr string) bool {
	for _, s := range catalog {
		if s == timeStr {
			return true
		}
	}
	return false
}

// Partition splits the catalog into available and booked slots for a day,
// given the times of the non-cancelled appointments on that date. Unknown
// labels in booked are ignored; the two returned lists always cover the
// catalog exactly.
func Partition(booked []string) (available, taken []string) {
	reserved := make(map[string]bool, len(booked))
	for _, b := range booked {
		reserved[b] = true
	}

	available = make([]string, 0, len(catalog))
	taken = make([]string, 0, len(booked))
	for _, s := range catalog {
		if reserved[s] {
			taken = append(taken, s)
		} else {
			available = append(available, s)
		}
	}
	return available, taken
}

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

func ParseDateTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return time.Time{}, ErrInvalidTime
	}
	if _, err := ParseDate(dateStr, loc); err != nil {
		return time.Time{}, err
	}

	parsed, err := time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return parsed, nil
}

func IsDatePast(dateStr string, loc *time.Location, now time.Time) (bool, error) {
	date, err := ParseDate(dateStr, loc)
	if err != nil {
		return false, err
	}
	startToday := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	return date.Before(startToday), nil
}

func IsSlotPast(dateStr, timeStr string, loc *time.Location, now time.Time) (bool, error) {
	slot, err := ParseDateTime(dateStr, timeStr, loc)
	if err != nil {
		return false, err
	}
	return !slot.After(now.In(loc)), nil
}

// SlotKey is the value stored on live appointments to back the unique slot
// guard in the database.
func SlotKey(dateStr, timeStr string) string {
	return dateStr + "|" + timeStr
}
