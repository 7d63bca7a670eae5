// Package handler exposes the auth service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"roster-portal/internal/audit"
	"roster-portal/internal/identity/service"
	"roster-portal/internal/telemetry"
	telemetrydomain "roster-portal/internal/telemetry/domain"
)

// HTTPHandler serves the /api/auth routes.
type HTTPHandler struct {
	svc     *service.AuthService
	auditor audit.AuditLogger
	emitter telemetry.EventEmitter
}

// NewHTTPHandler returns a handler for the auth routes. auditor and emitter
// may be nil; the routes then skip audit/telemetry.
func NewHTTPHandler(svc *service.AuthService, auditor audit.AuditLogger, emitter telemetry.EventEmitter) *HTTPHandler {
	return &HTTPHandler{svc: svc, auditor: auditor, emitter: emitter}
}

// Register mounts the auth routes on the router.
func (h *HTTPHandler) Register(r fiber.Router) {
	r.Post("/check-username", h.CheckUsername)
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
	r.Post("/register/send-code", h.SendRegistrationCode)
	r.Post("/register/verify-code", h.VerifyRegistrationCode)
	r.Post("/register", h.RegisterAccount)
	r.Post("/reset/send-code", h.SendPasswordResetCode)
	r.Post("/reset/verify", h.VerifyResetCode)
}

type checkUsernameRequest struct {
	Phone string `json:"phone"`
}

type checkUsernameResponse struct {
	Exists              bool `json:"exists"`
	HasPlayerAssignment bool `json:"hasPlayerAssignment"`
}

// CheckUsername handles POST /api/auth/check-username.
func (h *HTTPHandler) CheckUsername(c *fiber.Ctx) error {
	var req checkUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	res, err := h.svc.CheckUsername(c.UserContext(), req.Phone)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	return c.JSON(checkUsernameResponse{
		Exists:              res.Exists,
		HasPlayerAssignment: res.HasPlayerAssignment,
	})
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	UserID       string    `json:"userId"`
	PlayerID     string    `json:"playerId,omitempty"`
}

// Login handles POST /api/auth/login.
func (h *HTTPHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	res, err := h.svc.Login(c.UserContext(), req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) && h.auditor != nil {
			h.auditor.LogEvent(c.UserContext(), "", "login_failure", "session", phoneMetadata(req.Phone))
		}
		return h.respondServiceError(c, err)
	}
	h.logAndEmit(c, res.UserID, "login", "session", phoneMetadata(req.Phone))
	return c.JSON(toTokenResponse(res))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /api/auth/refresh.
func (h *HTTPHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	res, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	return c.JSON(toTokenResponse(res))
}

// Logout handles POST /api/auth/logout. The body is optional; without a
// refresh token the session from the Bearer token is revoked.
func (h *HTTPHandler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	_ = c.BodyParser(&req)
	if err := h.svc.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return h.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type sendCodeRequest struct {
	Phone string `json:"phone"`
}

type sendCodeResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

// SendRegistrationCode handles POST /api/auth/register/send-code.
func (h *HTTPHandler) SendRegistrationCode(c *fiber.Ctx) error {
	var req sendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	res, err := h.svc.SendRegistrationCode(c.UserContext(), req.Phone)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	h.logAndEmit(c, "", "otp_sent", "otp_challenge", phoneMetadata(req.Phone))
	return c.JSON(sendCodeResponse{ExpiresAt: res.ExpiresAt})
}

type verifyCodeRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// VerifyRegistrationCode handles POST /api/auth/register/verify-code. The
// client calls this before showing the profile form; the code is checked
// against the stored hash, never on the client.
func (h *HTTPHandler) VerifyRegistrationCode(c *fiber.Ctx) error {
	var req verifyCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	if err := h.svc.VerifyRegistrationCode(c.UserContext(), req.Phone, req.Code); err != nil {
		return h.respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type registerRequest struct {
	Phone     string `json:"phone"`
	Code      string `json:"code"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// RegisterAccount handles POST /api/auth/register. The code must have been
// verified via the verify step first; verification happens here again against
// the stored hash, never on the client.
func (h *HTTPHandler) RegisterAccount(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	res, err := h.svc.Register(c.UserContext(), req.Phone, req.Password, req.Code, req.FirstName, req.LastName)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	h.logAndEmit(c, res.UserID, "register", "user", phoneMetadata(req.Phone))
	return c.Status(fiber.StatusCreated).JSON(toTokenResponse(res))
}

// SendPasswordResetCode handles POST /api/auth/reset/send-code.
func (h *HTTPHandler) SendPasswordResetCode(c *fiber.Ctx) error {
	var req sendCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	res, err := h.svc.SendPasswordResetCode(c.UserContext(), req.Phone)
	if err != nil {
		return h.respondServiceError(c, err)
	}
	h.logAndEmit(c, "", "otp_sent", "otp_challenge", phoneMetadata(req.Phone))
	return c.JSON(sendCodeResponse{ExpiresAt: res.ExpiresAt})
}

type resetVerifyRequest struct {
	Phone       string `json:"phone"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// VerifyResetCode handles POST /api/auth/reset/verify.
func (h *HTTPHandler) VerifyResetCode(c *fiber.Ctx) error {
	var req resetVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
	}
	if err := h.svc.VerifyResetCode(c.UserContext(), req.Phone, req.Code, req.NewPassword); err != nil {
		return h.respondServiceError(c, err)
	}
	h.logAndEmit(c, "", "password_reset", "user", phoneMetadata(req.Phone))
	return c.SendStatus(fiber.StatusNoContent)
}

func toTokenResponse(res *service.AuthResult) tokenResponse {
	return tokenResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		UserID:       res.UserID,
		PlayerID:     res.PlayerID,
	}
}

func phoneMetadata(phone string) string {
	b, _ := json.Marshal(map[string]string{"phone": phone})
	return string(b)
}

func (h *HTTPHandler) logAndEmit(c *fiber.Ctx, userID, action, resource, metadata string) {
	ctx := c.UserContext()
	if h.auditor != nil {
		h.auditor.LogEvent(ctx, userID, action, resource, metadata)
	}
	if h.emitter != nil {
		event := telemetrydomain.NewEvent(action, "server")
		event.UserID = userID
		event.Metadata = json.RawMessage(metadata)
		telemetry.EmitAsync(h.emitter, event)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorResponse{Error: message, Code: code})
}

// respondServiceError maps auth service sentinels to HTTP statuses with
// machine-readable codes the client switches on.
func (h *HTTPHandler) respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidPhone):
		return respondError(c, fiber.StatusBadRequest, "PHONE_INVALID", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return respondError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	case errors.Is(err, service.ErrInvalidRefreshToken), errors.Is(err, service.ErrRefreshTokenReuse):
		return respondError(c, fiber.StatusUnauthorized, "INVALID_REFRESH_TOKEN", err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		return respondError(c, fiber.StatusNotFound, "USER_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrPhoneAlreadyRegistered):
		return respondError(c, fiber.StatusConflict, "PHONE_TAKEN", err.Error())
	case errors.Is(err, service.ErrRateLimited):
		return respondError(c, fiber.StatusTooManyRequests, "RATE_LIMITED", err.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		return respondError(c, fiber.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", err.Error())
	case errors.Is(err, service.ErrCodeExpired):
		return respondError(c, fiber.StatusBadRequest, "CODE_EXPIRED", err.Error())
	case errors.Is(err, service.ErrCodeInvalid):
		return respondError(c, fiber.StatusBadRequest, "CODE_INVALID", err.Error())
	case errors.Is(err, service.ErrCodeNotVerified):
		return respondError(c, fiber.StatusBadRequest, "CODE_NOT_VERIFIED", err.Error())
	default:
		// Validation errors from the service surface as 400s; anything else is a 500.
		if isValidationError(err) {
			return respondError(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
		}
		return respondError(c, fiber.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

// isValidationError reports whether err came from input validation rather than
// infrastructure. Service validation errors are plain errors.New values.
func isValidationError(err error) bool {
	msg := err.Error()
	switch msg {
	case "name is required",
		"name has invalid characters",
		"password must be at least 8 characters",
		"password must contain at least one letter",
		"password must contain at least one digit":
		return true
	}
	return false
}
