package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teamkoubyte/Koubyte-sub001/internal/auth"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
)

const codeTTL = 15 * time.Minute

// financialRetention is how long orders keep an erased account from being
// hard deleted. Within the window the account is anonymized instead.
const financialRetention = 90 * 24 * time.Hour

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrCodeInvalid        = errors.New("invalid code")
	ErrCodeExpired        = errors.New("code expired")
	ErrSessionInvalid     = errors.New("session invalid")
	ErrSelfRoleChange     = errors.New("cannot change own role")
	ErrSelfDelete         = errors.New("cannot delete own account")
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,password"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,digits6"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,digits6"`
	Password string `json:"password" validate:"required,password"`
}

type ProfileUpdateRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Address string `json:"address" validate:"max=300"`
}

type EraseRequest struct {
	Password string `json:"password" validate:"required"`
}

type AdminCreateRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	Role     string `json:"role" validate:"required,oneof=client admin"`
}

type RoleRequest struct {
	Role string `json:"role" validate:"required,oneof=client admin"`
}

type TokenPair struct {
	Access  string
	Refresh string
}

type Service struct {
	repo     Repository
	jwt      *auth.Manager
	location *time.Location
}

func NewService(repo Repository, jwt *auth.Manager, location *time.Location) *Service {
	return &Service{repo: repo, jwt: jwt, location: location}
}

// Register creates the unverified account and returns the verification code
// for the caller to mail out.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (models.User, string, error) {
	now := time.Now().In(s.location)
	user := models.User{
		ID:        uuid.NewString(),
		Email:     normalizeEmail(req.Email),
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      models.RoleClient,
		CreatedAt: now,
		UpdatedAt: now,
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.User{}, "", err
	}
	user.PasswordHash = hash

	if err := s.repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, "", ErrEmailTaken
		}
		return models.User{}, "", err
	}

	code, err := s.issueVerification(ctx, user.ID, now)
	if err != nil {
		return models.User{}, "", err
	}
	return user, code, nil
}

func (s *Service) issueVerification(ctx context.Context, userID string, now time.Time) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}
	token := models.VerificationToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Code:      code,
		ExpiresAt: now.Add(codeTTL),
		CreatedAt: now,
	}
	if err := s.repo.IssueVerification(ctx, &token); err != nil {
		return "", err
	}
	return code, nil
}

func (s *Service) VerifyEmail(ctx context.Context, req VerifyRequest) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	token, err := s.repo.LatestVerification(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return err
	}
	now := time.Now().In(s.location)
	if token.Code != req.Code {
		return ErrCodeInvalid
	}
	if now.After(token.ExpiresAt) {
		return ErrCodeExpired
	}
	return s.repo.MarkEmailVerified(ctx, user.ID, now)
}

// ResendVerification issues a fresh code, superseding the previous one.
func (s *Service) ResendVerification(ctx context.Context, email string) (models.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, "", ErrUserNotFound
		}
		return models.User{}, "", err
	}
	if user.EmailVerified {
		return models.User{}, "", ErrAlreadyVerified
	}

	code, err := s.issueVerification(ctx, user.ID, time.Now().In(s.location))
	if err != nil {
		return models.User{}, "", err
	}
	return user, code, nil
}

// Login requires a verified email. The same error covers a wrong password
// and an unknown address, an unverified account is told apart so the
// frontend can offer a resend.
func (s *Service) Login(ctx context.Context, req LoginRequest) (models.User, TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, TokenPair{}, ErrInvalidCredentials
		}
		return models.User{}, TokenPair{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return models.User{}, TokenPair{}, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return models.User{}, TokenPair{}, ErrEmailNotVerified
	}

	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

func (s *Service) issueSession(ctx context.Context, user models.User) (TokenPair, error) {
	access, err := s.jwt.NewAccessToken(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, err
	}

	tokenID := uuid.NewString()
	refresh, err := s.jwt.NewRefreshToken(user.ID, user.Role, tokenID)
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now().In(s.location)
	row := models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: auth.HashToken(tokenID),
		ExpiresAt: now.Add(s.jwt.RefreshTTL),
		CreatedAt: now,
	}
	if err := s.repo.CreateRefreshToken(ctx, &row); err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh rotates: the presented token's row is revoked and a new pair is
// issued, so a replayed refresh token dies on second use.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (models.User, TokenPair, error) {
	claims, err := s.jwt.Parse(refreshToken)
	if err != nil || claims.ID == "" {
		return models.User{}, TokenPair{}, ErrSessionInvalid
	}

	row, err := s.repo.GetRefreshToken(ctx, auth.HashToken(claims.ID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, TokenPair{}, ErrSessionInvalid
		}
		return models.User{}, TokenPair{}, err
	}
	now := time.Now().In(s.location)
	if row.RevokedAt != nil || now.After(row.ExpiresAt) {
		return models.User{}, TokenPair{}, ErrSessionInvalid
	}

	user, err := s.repo.GetUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, TokenPair{}, ErrSessionInvalid
		}
		return models.User{}, TokenPair{}, err
	}

	if err := s.repo.RevokeRefreshToken(ctx, row.ID, now); err != nil {
		return models.User{}, TokenPair{}, err
	}
	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return models.User{}, TokenPair{}, err
	}
	return user, pair, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.Parse(refreshToken)
	if err != nil || claims.ID == "" {
		return nil
	}
	row, err := s.repo.GetRefreshToken(ctx, auth.HashToken(claims.ID))
	if err != nil {
		return nil
	}
	return s.repo.RevokeRefreshToken(ctx, row.ID, time.Now().In(s.location))
}

// ForgotPassword returns the reset code for mailing. Unknown addresses
// surface ErrUserNotFound; the handler answers them identically to known
// ones so the endpoint cannot be used to probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) (models.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, "", ErrUserNotFound
		}
		return models.User{}, "", err
	}

	now := time.Now().In(s.location)
	code, err := GenerateCode()
	if err != nil {
		return models.User{}, "", err
	}
	token := models.PasswordResetToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(codeTTL),
		CreatedAt: now,
	}
	if err := s.repo.IssuePasswordReset(ctx, &token); err != nil {
		return models.User{}, "", err
	}
	return user, code, nil
}

func (s *Service) ResetPassword(ctx context.Context, req ResetRequest) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return err
	}

	token, err := s.repo.LatestPasswordReset(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return err
	}
	now := time.Now().In(s.location)
	if token.Code != req.Code {
		return ErrCodeInvalid
	}
	if now.After(token.ExpiresAt) {
		return ErrCodeExpired
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	return s.repo.CompletePasswordReset(ctx, user.ID, hash, now)
}

func (s *Service) Profile(ctx context.Context, userID string) (models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, req ProfileUpdateRequest) (models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	user.Name = strings.TrimSpace(req.Name)
	user.Phone = strings.TrimSpace(req.Phone)
	user.Address = strings.TrimSpace(req.Address)
	user.UpdatedAt = time.Now().In(s.location)

	if err := s.repo.UpdateUser(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Erase fulfils an account deletion request. While recent orders exist the
// account is anonymized so the financial records stay intact; otherwise it
// is removed outright with everything it owns.
func (s *Service) Erase(ctx context.Context, userID, password string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return ErrInvalidCredentials
	}

	now := time.Now().In(s.location)
	recent, err := s.repo.HasFinancialRecordsSince(ctx, userID, now.Add(-financialRetention))
	if err != nil {
		return err
	}

	if recent {
		scrambled, err := auth.HashPassword(uuid.NewString())
		if err != nil {
			return err
		}
		return s.repo.AnonymizeUser(ctx, userID,
			"verwijderd-"+userID+"@anoniem.koubyte.be",
			"Verwijderde klant",
			scrambled,
		)
	}
	return s.repo.HardDeleteUser(ctx, userID)
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.repo.ListUsers(ctx, limit, offset)
}

// AdminCreate makes a pre-verified account, for staff onboarding.
func (s *Service) AdminCreate(ctx context.Context, req AdminCreateRequest) (models.User, error) {
	now := time.Now().In(s.location)
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		ID:              uuid.NewString(),
		Email:           normalizeEmail(req.Email),
		PasswordHash:    hash,
		Name:            strings.TrimSpace(req.Name),
		Role:            req.Role,
		EmailVerified:   true,
		EmailVerifiedAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}
	return user, nil
}

// SetRole refuses to change the acting admin's own role, so the last admin
// cannot lock the back office.
func (s *Service) SetRole(ctx context.Context, actingAdminID, targetID, role string) (models.User, error) {
	if actingAdminID == targetID {
		return models.User{}, ErrSelfRoleChange
	}
	user, err := s.repo.SetRole(ctx, targetID, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Service) AdminDelete(ctx context.Context, actingAdminID, targetID string) error {
	if actingAdminID == targetID {
		return ErrSelfDelete
	}
	if _, err := s.repo.GetUserByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.repo.HardDeleteUser(ctx, targetID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
