package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

type fakeRepo struct {
	appts  map[string]models.Appointment
	booked map[string][]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{appts: map[string]models.Appointment{}, booked: map[string][]string{}}
}

func (f *fakeRepo) Create(ctx context.Context, appt *models.Appointment) error {
	for _, t := range f.booked[appt.Date] {
		if t == appt.Time {
			return gorm.ErrDuplicatedKey
		}
	}
	f.appts[appt.ID] = *appt
	f.booked[appt.Date] = append(f.booked[appt.Date], appt.Time)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (models.Appointment, error) {
	appt, ok := f.appts[id]
	if !ok {
		return models.Appointment{}, gorm.ErrRecordNotFound
	}
	return appt, nil
}

func (f *fakeRepo) BookedTimes(ctx context.Context, date string) ([]string, error) {
	return f.booked[date], nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appts {
		if a.UserID != nil && *a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListAll(ctx context.Context, status string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.appts {
		if status == "" || a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id, status string, slotKey *string) (models.Appointment, error) {
	appt, ok := f.appts[id]
	if !ok {
		return models.Appointment{}, gorm.ErrRecordNotFound
	}
	appt.Status = status
	appt.SlotKey = slotKey
	f.appts[id] = appt
	return appt, nil
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func validRequest() CreateRequest {
	return CreateRequest{
		Name:    "Jan Peeters",
		Email:   "jan@example.be",
		Date:    futureDate(),
		Time:    "10:00",
		Service: "Netwerk installatie",
	}
}

func TestBook(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)

	appt, err := svc.Book(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	if appt.Status != models.AppointmentStatusPending {
		t.Errorf("status = %q, want pending", appt.Status)
	}
	if appt.SlotKey == nil || *appt.SlotKey != futureDate()+"|10:00" {
		t.Errorf("slot key not set: %v", appt.SlotKey)
	}
	if appt.Email != "jan@example.be" {
		t.Errorf("email = %q", appt.Email)
	}
}

func TestBookSlotTaken(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)

	if _, err := svc.Book(context.Background(), validRequest(), nil); err != nil {
		t.Fatalf("first Book() error = %v", err)
	}
	if _, err := svc.Book(context.Background(), validRequest(), nil); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("second Book() error = %v, want ErrSlotTaken", err)
	}
}

func TestBookRejectsPastDate(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)
	req := validRequest()
	req.Date = "2020-01-15"
	if _, err := svc.Book(context.Background(), req, nil); !errors.Is(err, ErrDateInPast) {
		t.Fatalf("Book() error = %v, want ErrDateInPast", err)
	}
}

func TestBookRejectsUnknownSlot(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)
	req := validRequest()
	req.Time = "10:30"
	if _, err := svc.Book(context.Background(), req, nil); !errors.Is(err, ErrSlotNotInCatalog) {
		t.Fatalf("Book() error = %v, want ErrSlotNotInCatalog", err)
	}
}

func TestAvailabilityFullyOpen(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)

	avail, err := svc.Availability(context.Background(), futureDate())
	if err != nil {
		t.Fatalf("Availability() error = %v", err)
	}
	if avail.TotalSlots != 9 || avail.AvailableCount != 9 || avail.BookedCount != 0 {
		t.Errorf("counts = %d/%d/%d, want 9/9/0", avail.TotalSlots, avail.AvailableCount, avail.BookedCount)
	}
}

func TestAvailabilityAfterBooking(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)

	if _, err := svc.Book(context.Background(), validRequest(), nil); err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	avail, err := svc.Availability(context.Background(), futureDate())
	if err != nil {
		t.Fatalf("Availability() error = %v", err)
	}
	if avail.AvailableCount != 8 || avail.BookedCount != 1 {
		t.Errorf("counts = %d available, %d booked, want 8 and 1", avail.AvailableCount, avail.BookedCount)
	}
	if len(avail.BookedSlots) != 1 || avail.BookedSlots[0] != "10:00" {
		t.Errorf("bookedSlots = %v", avail.BookedSlots)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.AppointmentStatusPending, models.AppointmentStatusConfirmed, true},
		{models.AppointmentStatusPending, models.AppointmentStatusCancelled, true},
		{models.AppointmentStatusPending, models.AppointmentStatusCompleted, false},
		{models.AppointmentStatusConfirmed, models.AppointmentStatusCompleted, true},
		{models.AppointmentStatusConfirmed, models.AppointmentStatusCancelled, true},
		{models.AppointmentStatusCompleted, models.AppointmentStatusCancelled, false},
		{models.AppointmentStatusCancelled, models.AppointmentStatusPending, false},
	}
	for _, tc := range cases {
		if got := TransitionAllowed(tc.from, tc.to); got != tc.ok {
			t.Errorf("TransitionAllowed(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestCancellationFreesSlot(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, time.UTC)

	appt, err := svc.Book(context.Background(), validRequest(), nil)
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), appt.ID, models.AppointmentStatusCancelled)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if updated.SlotKey != nil {
		t.Errorf("slot key not cleared on cancellation: %v", *updated.SlotKey)
	}
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := NewService(newFakeRepo(), time.UTC)
	if _, err := svc.UpdateStatus(context.Background(), "nope", models.AppointmentStatusConfirmed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateStatus() error = %v, want ErrNotFound", err)
	}
}
