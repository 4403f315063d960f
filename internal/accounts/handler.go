package accounts

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teamkoubyte/Koubyte-sub001/internal/auth"
	"github.com/teamkoubyte/Koubyte-sub001/internal/httpx"
	"github.com/teamkoubyte/Koubyte-sub001/internal/mailer"
	"github.com/teamkoubyte/Koubyte-sub001/internal/middleware"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
	"github.com/teamkoubyte/Koubyte-sub001/internal/transport"
	"github.com/teamkoubyte/Koubyte-sub001/internal/validation"
)

const RefreshCookie = "kb_refresh"

type Handler struct {
	service      *Service
	mail         mailer.Mailer
	jwt          *auth.Manager
	cookieSecure bool
	val          *validation.Validator
	log          *slog.Logger
}

func NewHandler(service *Service, mail mailer.Mailer, jwt *auth.Manager, cookieSecure bool, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service:      service,
		mail:         mail,
		jwt:          jwt,
		cookieSecure: cookieSecure,
		val:          val,
		log:          log,
	}
}

func (h *Handler) setSessionCookies(w http.ResponseWriter, pair TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessCookie,
		Value:    pair.Access,
		Path:     "/",
		MaxAge:   int(h.jwt.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    pair.Refresh,
		Path:     "/api/auth",
		MaxAge:   int(h.jwt.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: middleware.AccessCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: h.cookieSecure, SameSite: http.SameSiteLaxMode})
	http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: "", Path: "/api/auth", MaxAge: -1, HttpOnly: true, Secure: h.cookieSecure, SameSite: http.SameSiteLaxMode})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req RegisterRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth register: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth register: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, code, err := h.service.Register(ctx, req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			transport.WriteError(w, http.StatusConflict, "email already registered", nil)
			return
		}
		log.Error("auth register: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	go h.sendVerificationMail(user, code)

	log.Info("auth register: ok", slog.String("user_id", user.ID))
	transport.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) sendVerificationMail(user models.User, code string) {
	msg, err := mailer.VerificationMessage(user, code)
	if err != nil {
		h.log.Error("auth verification mail: template error", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := h.mail.Send(ctx, msg); err != nil {
		h.log.Error("auth verification mail: send failed", slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req VerifyRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth verify: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth verify: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.VerifyEmail(ctx, req); err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrCodeInvalid):
			transport.WriteError(w, http.StatusBadRequest, "invalid code", nil)
		case errors.Is(err, ErrCodeExpired):
			transport.WriteError(w, http.StatusBadRequest, "code expired", nil)
		case errors.Is(err, ErrAlreadyVerified):
			transport.WriteError(w, http.StatusConflict, "email already verified", nil)
		default:
			log.Error("auth verify: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("auth verify: ok")
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req EmailRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth resend: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth resend: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, code, err := h.service.ResendVerification(ctx, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyVerified):
			transport.WriteError(w, http.StatusConflict, "email already verified", nil)
			return
		case errors.Is(err, ErrUserNotFound):
			// Same response as success, the endpoint does not confirm
			// whether an address is registered.
		default:
			log.Error("auth resend: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
			return
		}
	} else {
		go h.sendVerificationMail(user, code)
	}

	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req LoginRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth login: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth login: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, pair, err := h.service.Login(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			log.Warn("auth login: invalid credentials")
			transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		case errors.Is(err, ErrEmailNotVerified):
			transport.WriteError(w, http.StatusForbidden, "email not verified", nil)
		default:
			log.Error("auth login: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	h.setSessionCookies(w, pair)
	log.Info("auth login: ok", slog.String("user_id", user.ID))
	transport.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	cookie, err := r.Cookie(RefreshCookie)
	if err != nil || cookie.Value == "" {
		transport.WriteError(w, http.StatusUnauthorized, "session invalid", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, pair, err := h.service.Refresh(ctx, cookie.Value)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			h.clearSessionCookies(w)
			transport.WriteError(w, http.StatusUnauthorized, "session invalid", nil)
			return
		}
		log.Error("auth refresh: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	h.setSessionCookies(w, pair)
	log.Info("auth refresh: ok", slog.String("user_id", user.ID))
	transport.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if cookie, err := r.Cookie(RefreshCookie); err == nil && cookie.Value != "" {
		if err := h.service.Logout(ctx, cookie.Value); err != nil {
			log.Error("auth logout: database error", slog.String("error", err.Error()))
		}
	}

	h.clearSessionCookies(w)
	log.Info("auth logout: ok")
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req EmailRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth forgot: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth forgot: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, code, err := h.service.ForgotPassword(ctx, req.Email)
	switch {
	case err == nil:
		go h.sendResetMail(user, code)
	case errors.Is(err, ErrUserNotFound):
		// Indistinguishable from success on purpose.
	default:
		log.Error("auth forgot: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handler) sendResetMail(user models.User, code string) {
	msg, err := mailer.PasswordResetMessage(user, code)
	if err != nil {
		h.log.Error("auth reset mail: template error", slog.String("user_id", user.ID), slog.String("error", err.Error()))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := h.mail.Send(ctx, msg); err != nil {
		h.log.Error("auth reset mail: send failed", slog.String("user_id", user.ID), slog.String("error", err.Error()))
	}
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req ResetRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth reset: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth reset: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.ResetPassword(ctx, req); err != nil {
		switch {
		case errors.Is(err, ErrCodeInvalid):
			transport.WriteError(w, http.StatusBadRequest, "invalid code", nil)
		case errors.Is(err, ErrCodeExpired):
			transport.WriteError(w, http.StatusBadRequest, "code expired", nil)
		default:
			log.Error("auth reset: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("auth reset: ok")
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "password reset"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.service.Profile(ctx, ident.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.clearSessionCookies(w)
			transport.WriteError(w, http.StatusUnauthorized, "session invalid", nil)
			return
		}
		log.Error("auth me: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req ProfileUpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth profile update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth profile update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.service.UpdateProfile(ctx, ident.UserID, req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			transport.WriteError(w, http.StatusNotFound, "user not found", nil)
			return
		}
		log.Error("auth profile update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("auth profile update: ok", slog.String("user_id", user.ID))
	transport.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) Erase(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}

	var req EraseRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("auth erase: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("auth erase: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.Erase(ctx, ident.UserID, req.Password); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			transport.WriteError(w, http.StatusUnauthorized, "invalid credentials", nil)
		case errors.Is(err, ErrUserNotFound):
			transport.WriteError(w, http.StatusNotFound, "user not found", nil)
		default:
			log.Error("auth erase: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	h.clearSessionCookies(w)
	log.Info("auth erase: ok", slog.String("user_id", ident.UserID))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "erased"})
}

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 50, 200)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, err := h.service.ListUsers(ctx, limit, offset)
	if err != nil {
		log.Error("admin users list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (h *Handler) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	var req AdminCreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin users create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin users create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	user, err := h.service.AdminCreate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			transport.WriteError(w, http.StatusConflict, "email already registered", nil)
			return
		}
		log.Error("admin users create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin users create: ok", slog.String("user_id", user.ID), slog.String("role", user.Role))
	transport.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req RoleRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin users role: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("admin users role: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.service.SetRole(ctx, ident.UserID, id, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfRoleChange):
			transport.WriteError(w, http.StatusBadRequest, "cannot change own role", nil)
		case errors.Is(err, ErrUserNotFound):
			transport.WriteError(w, http.StatusNotFound, "user not found", nil)
		default:
			log.Error("admin users role: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("admin users role: ok", slog.String("user_id", user.ID), slog.String("role", user.Role))
	transport.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	ident, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "authentication required", nil)
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	if err := h.service.AdminDelete(ctx, ident.UserID, id); err != nil {
		switch {
		case errors.Is(err, ErrSelfDelete):
			transport.WriteError(w, http.StatusBadRequest, "cannot delete own account", nil)
		case errors.Is(err, ErrUserNotFound):
			transport.WriteError(w, http.StatusNotFound, "user not found", nil)
		default:
			log.Error("admin users delete: database error", slog.String("error", err.Error()))
			transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		}
		return
	}

	log.Info("admin users delete: ok", slog.String("user_id", id))
	transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
