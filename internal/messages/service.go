package messages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

var ErrNotFound = errors.New("message not found")

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=4000"`
}

type ContactStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read archived"`
}

type ChatRequest struct {
	Body string `json:"body" validate:"required,max=4000"`
}

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{repo: repo, location: location}
}

func (s *Service) SubmitContact(ctx context.Context, req ContactRequest) (models.ContactMessage, error) {
	msg := models.ContactMessage{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Subject:   strings.TrimSpace(req.Subject),
		Message:   strings.TrimSpace(req.Message),
		Status:    models.MessageStatusNew,
		CreatedAt: time.Now().In(s.location),
	}
	if err := s.repo.CreateContact(ctx, &msg); err != nil {
		return models.ContactMessage{}, err
	}
	return msg, nil
}

func (s *Service) ListContacts(ctx context.Context, status string) ([]models.ContactMessage, error) {
	return s.repo.ListContacts(ctx, strings.ToLower(strings.TrimSpace(status)))
}

func (s *Service) UpdateContactStatus(ctx context.Context, id, status string) (models.ContactMessage, error) {
	msg, err := s.repo.UpdateContactStatus(ctx, strings.TrimSpace(id), status)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ContactMessage{}, ErrNotFound
		}
		return models.ContactMessage{}, err
	}
	return msg, nil
}

// SendChat appends to the thread keyed by the customer's user id. Reading
// your own side makes no sense, so new messages start unread for the
// other side only.
func (s *Service) SendChat(ctx context.Context, userID, body string, fromAdmin bool) (models.ChatMessage, error) {
	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		FromAdmin: fromAdmin,
		Body:      strings.TrimSpace(body),
		CreatedAt: time.Now().In(s.location),
	}
	if err := s.repo.CreateChat(ctx, &msg); err != nil {
		return models.ChatMessage{}, err
	}
	return msg, nil
}

// Thread returns the conversation and marks the other side's messages read.
func (s *Service) Thread(ctx context.Context, userID string, asAdmin bool) ([]models.ChatMessage, error) {
	list, err := s.repo.ListChatByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkChatRead(ctx, userID, !asAdmin); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *Service) Threads(ctx context.Context) ([]string, error) {
	return s.repo.ListChatThreads(ctx)
}

// Push implements the notification sink used by the order flow.
func (s *Service) Push(ctx context.Context, n models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().In(s.location)
	}
	return s.repo.CreateNotification(ctx, &n)
}

func (s *Service) Notifications(ctx context.Context, userID *string, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) (models.Notification, error) {
	n, err := s.repo.MarkNotificationRead(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Notification{}, ErrNotFound
		}
		return models.Notification{}, err
	}
	return n, nil
}
