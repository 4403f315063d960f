package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
	"github.com/teamkoubyte/Koubyte-sub001/internal/schedule"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrDateInPast        = errors.New("date in the past")
	ErrSlotNotInCatalog  = errors.New("slot not in catalog")
	ErrSlotPast          = errors.New("slot already passed")
	ErrSlotTaken         = errors.New("slot already booked")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type CreateRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	Date        string `json:"date" validate:"required,date"`
	Time        string `json:"time" validate:"required,clock"`
	Service     string `json:"service" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}

type Availability struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
	BookedSlots    []string `json:"bookedSlots"`
	TotalSlots     int      `json:"totalSlots"`
	AvailableCount int      `json:"availableCount"`
	BookedCount    int      `json:"bookedCount"`
}

// allowedTransitions encodes the appointment lifecycle. Cancelled is terminal;
// completed can only be reached from confirmed.
var allowedTransitions = map[string][]string{
	models.AppointmentStatusPending:   {models.AppointmentStatusConfirmed, models.AppointmentStatusCancelled},
	models.AppointmentStatusConfirmed: {models.AppointmentStatusCompleted, models.AppointmentStatusCancelled},
	models.AppointmentStatusCompleted: {},
	models.AppointmentStatusCancelled: {},
}

func TransitionAllowed(from, to string) bool {
	for _, t := range allowedTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{repo: repo, location: location}
}

// Availability is a pure set-difference of the fixed slot catalog against the
// day's non-cancelled bookings. A fully booked day yields an empty available
// list, which is a normal response, not an error.
func (s *Service) Availability(ctx context.Context, date string) (Availability, error) {
	if _, err := schedule.ParseDate(date, s.location); err != nil {
		return Availability{}, err
	}

	booked, err := s.repo.BookedTimes(ctx, date)
	if err != nil {
		return Availability{}, err
	}

	available, taken := schedule.Partition(booked)
	return Availability{
		Date:           date,
		AvailableSlots: available,
		BookedSlots:    taken,
		TotalSlots:     schedule.CatalogSize(),
		AvailableCount: len(available),
		BookedCount:    len(taken),
	}, nil
}

func (s *Service) Book(ctx context.Context, req CreateRequest, userID *string) (models.Appointment, error) {
	now := time.Now()

	past, err := schedule.IsDatePast(req.Date, s.location, now)
	if err != nil {
		return models.Appointment{}, err
	}
	if past {
		return models.Appointment{}, ErrDateInPast
	}

	if !schedule.InCatalog(req.Time) {
		return models.Appointment{}, ErrSlotNotInCatalog
	}

	slotPast, err := schedule.IsSlotPast(req.Date, req.Time, s.location, now)
	if err != nil {
		return models.Appointment{}, err
	}
	if slotPast {
		return models.Appointment{}, ErrSlotPast
	}

	booked, err := s.repo.BookedTimes(ctx, req.Date)
	if err != nil {
		return models.Appointment{}, err
	}
	for _, b := range booked {
		if b == req.Time {
			return models.Appointment{}, ErrSlotTaken
		}
	}

	key := schedule.SlotKey(req.Date, req.Time)
	created := now.In(s.location)
	appt := models.Appointment{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       strings.TrimSpace(req.Phone),
		Date:        req.Date,
		Time:        req.Time,
		SlotKey:     &key,
		Service:     strings.TrimSpace(req.Service),
		Description: strings.TrimSpace(req.Description),
		Status:      models.AppointmentStatusPending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	if err := s.repo.Create(ctx, &appt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Appointment{}, ErrSlotTaken
		}
		return models.Appointment{}, err
	}
	return appt, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]models.Appointment, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAdmin(ctx context.Context, status string) ([]models.Appointment, error) {
	return s.repo.ListAll(ctx, strings.ToLower(strings.TrimSpace(status)))
}

// UpdateStatus applies the lifecycle; cancelling releases the slot by
// clearing the slot key so the unique guard frees up for a new booking.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (models.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, err
	}

	if !TransitionAllowed(appt.Status, status) {
		return models.Appointment{}, ErrInvalidTransition
	}

	slotKey := appt.SlotKey
	if status == models.AppointmentStatusCancelled {
		slotKey = nil
	}

	updated, err := s.repo.UpdateStatus(ctx, appt.ID, status, slotKey)
	if err != nil {
		return models.Appointment{}, err
	}
	return updated, nil
}
