package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"roster-portal/internal/devotp"
	otpcore "roster-portal/internal/otp"
	otpdomain "roster-portal/internal/otp/domain"
	"roster-portal/internal/otp/sms"
	"roster-portal/internal/policy/engine"
	"roster-portal/internal/security"
	"roster-portal/internal/server/middleware"
	sessiondomain "roster-portal/internal/session/domain"
	userdomain "roster-portal/internal/user/domain"
)

// Sentinel errors for the auth service; handler maps them to HTTP status codes.
var (
	ErrPhoneAlreadyRegistered = errors.New("phone already registered")
	ErrInvalidPhone           = errors.New("invalid phone number")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidRefreshToken    = errors.New("invalid or expired refresh token")
	ErrRefreshTokenReuse      = errors.New("refresh token reuse detected; all sessions revoked")
	ErrUserNotFound           = errors.New("no account for this phone")
	ErrRateLimited            = errors.New("code recently sent; wait before requesting another")
	ErrTooManyAttempts        = errors.New("too many verification attempts")
	ErrCodeExpired            = errors.New("verification code expired")
	ErrCodeInvalid            = errors.New("verification code invalid")
	ErrCodeNotVerified        = errors.New("phone not verified")
)

// phonePattern matches the local mobile format the portal accepts: 09 followed
// by nine digits. The phone doubles as the account username.
var phonePattern = regexp.MustCompile(`^09\d{9}$`)

// CheckResult is the outcome of CheckUsername: whether an account exists for
// the phone and whether it is already bound to a roster player.
type CheckResult struct {
	Exists              bool
	HasPlayerAssignment bool
}

// AuthResult holds the outcome of Login, Register, or Refresh.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	PlayerID     string
}

// ChallengeResult reports when the issued OTP challenge stops being valid.
// Clients derive their resend countdown from ExpiresAt.
type ChallengeResult struct {
	ExpiresAt time.Time
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByPhone(ctx context.Context, phone string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// OTPRepo is the minimal OTP challenge repository needed by the auth service.
type OTPRepo interface {
	Create(ctx context.Context, c *otpdomain.Challenge) error
	GetLatest(ctx context.Context, phone string, purpose otpdomain.Purpose) (*otpdomain.Challenge, error)
	IncrementAttempts(ctx context.Context, id string) (int, error)
	MarkVerified(ctx context.Context, id string) error
	MarkConsumed(ctx context.Context, id string) error
	InvalidateForPhone(ctx context.Context, phone string, purpose otpdomain.Purpose) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
	RevokeAllSessionsByUser(ctx context.Context, userID string) error
	UpdateRefreshToken(ctx context.Context, sessionID, jti, refreshTokenHash string) error
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// AuthService implements phone-first onboarding: username check, OTP
// challenges, registration, login, password reset, refresh, and logout.
type AuthService struct {
	userRepo    UserRepo
	otpRepo     OTPRepo
	sessionRepo SessionRepo
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	policies    engine.Evaluator
	sender      sms.Sender
	devStore    devotp.Store // non-nil only when dev OTP mode is enabled
	namePattern *regexp.Regexp
	otpTTL      time.Duration
	refreshTTL  time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
// devStore may be nil; when set, codes are stored for dev retrieval instead of
// being sent over SMS.
func NewAuthService(
	userRepo UserRepo,
	otpRepo OTPRepo,
	sessionRepo SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	policies engine.Evaluator,
	sender sms.Sender,
	devStore devotp.Store,
	namePattern *regexp.Regexp,
	otpTTL, refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		otpRepo:     otpRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		policies:    policies,
		sender:      sender,
		devStore:    devStore,
		namePattern: namePattern,
		otpTTL:      otpTTL,
		refreshTTL:  refreshTTL,
	}
}

// CheckUsername reports whether an account exists for the phone. The flow uses
// this to route to login (existing) or registration (new).
func (s *AuthService) CheckUsername(ctx context.Context, phone string) (*CheckResult, error) {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return &CheckResult{
		Exists:              user != nil,
		HasPlayerAssignment: user.HasPlayerAssignment(),
	}, nil
}

// Login authenticates with phone/password, creates a session, and returns tokens.
func (s *AuthService) Login(ctx context.Context, phone, password string) (*AuthResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status != userdomain.UserStatusActive || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

// SendRegistrationCode issues an OTP challenge for a phone that has no account
// yet. A new challenge supersedes any previous one for the phone.
func (s *AuthService) SendRegistrationCode(ctx context.Context, phone string) (*ChallengeResult, error) {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return nil, ErrPhoneAlreadyRegistered
	}
	return s.sendCode(ctx, phone, otpdomain.PurposeRegister)
}

// VerifyRegistrationCode checks the submitted code against the open
// registration challenge. On success the challenge is marked verified and can
// authorize a single Register call.
func (s *AuthService) VerifyRegistrationCode(ctx context.Context, phone, code string) error {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return err
	}
	return s.verifyCode(ctx, phone, code, otpdomain.PurposeRegister)
}

// Register creates the account after a verified registration challenge, then
// logs the new user in. The challenge is consumed so it cannot authorize a
// second registration.
func (s *AuthService) Register(ctx context.Context, phone, password, code, firstName, lastName string) (*AuthResult, error) {
	phone = strings.TrimSpace(phone)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	if err := s.validateName(firstName); err != nil {
		return nil, err
	}
	if err := s.validateName(lastName); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	existing, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneAlreadyRegistered
	}
	challenge, err := s.otpRepo.GetLatest(ctx, phone, otpdomain.PurposeRegister)
	if err != nil {
		return nil, err
	}
	if challenge == nil || !challenge.Verified || challenge.Consumed {
		return nil, ErrCodeNotVerified
	}
	if !otpcore.DigestEqual(code, challenge.CodeHash) {
		return nil, ErrCodeInvalid
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:            uuid.New().String(),
		Phone:         phone,
		PhoneVerified: true,
		FirstName:     firstName,
		LastName:      lastName,
		Role:          userdomain.RolePlayer,
		Status:        userdomain.UserStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hashed
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.otpRepo.MarkConsumed(ctx, challenge.ID); err != nil {
		return nil, err
	}
	return s.openSession(ctx, user)
}

// SendPasswordResetCode issues an OTP challenge for an existing account.
func (s *AuthService) SendPasswordResetCode(ctx context.Context, phone string) (*ChallengeResult, error) {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.sendCode(ctx, phone, otpdomain.PurposeReset)
}

// VerifyResetCode checks the reset code and, on success, replaces the account
// password and revokes all existing sessions for the user.
func (s *AuthService) VerifyResetCode(ctx context.Context, phone, code, newPassword string) error {
	phone = strings.TrimSpace(phone)
	if err := validatePhone(phone); err != nil {
		return err
	}
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if err := s.verifyCode(ctx, phone, code, otpdomain.PurposeReset); err != nil {
		return err
	}
	challenge, err := s.otpRepo.GetLatest(ctx, phone, otpdomain.PurposeReset)
	if err != nil {
		return err
	}
	if challenge == nil {
		return ErrCodeInvalid
	}
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	if err := s.otpRepo.MarkConsumed(ctx, challenge.ID); err != nil {
		return err
	}
	// The old password no longer authenticates; neither should old sessions.
	return s.sessionRepo.RevokeAllSessionsByUser(ctx, user.ID)
}

// Refresh validates the refresh token, rotates it, and returns new tokens.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}
	sessionID, jti, userID, err := s.tokens.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	sess, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.RevokedAt != nil {
		return nil, ErrInvalidRefreshToken
	}
	if sess.RefreshJti != jti {
		_ = s.sessionRepo.RevokeAllSessionsByUser(ctx, userID)
		return nil, ErrRefreshTokenReuse
	}
	if sess.RefreshTokenHash != "" && !security.TokenDigestEqual(refreshToken, sess.RefreshTokenHash) {
		return nil, ErrInvalidRefreshToken
	}
	now := time.Now().UTC()
	_ = s.sessionRepo.UpdateLastSeen(ctx, sessionID, now)
	newRefresh, newJti, _, err := s.tokens.IssueRefresh(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.sessionRepo.UpdateRefreshToken(ctx, sessionID, newJti, security.TokenDigest(newRefresh)); err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, userID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    accessExp,
		UserID:       userID,
	}, nil
}

// Logout revokes the session identified by the refresh token or by the access token in context.
// If refreshToken is non-empty, validates it and revokes that session.
// If refreshToken is empty and the auth middleware set session_id in context (Bearer access token), revokes that session.
// Otherwise no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		sessionID, _, _, err := s.tokens.ValidateRefresh(refreshToken)
		if err != nil {
			return nil
		}
		return s.sessionRepo.Revoke(ctx, sessionID)
	}
	sessionID, ok := middleware.GetSessionID(ctx)
	if !ok {
		return nil
	}
	return s.sessionRepo.Revoke(ctx, sessionID)
}

func (s *AuthService) sendCode(ctx context.Context, phone string, purpose otpdomain.Purpose) (*ChallengeResult, error) {
	decision, err := s.policies.EvaluateOnboarding(ctx, phone, string(purpose))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	latest, err := s.otpRepo.GetLatest(ctx, phone, purpose)
	if err != nil {
		return nil, err
	}
	if latest != nil && !latest.Consumed {
		cooldown := time.Duration(decision.ResendCooldownSeconds) * time.Second
		if now.Sub(latest.CreatedAt) < cooldown {
			return nil, ErrRateLimited
		}
	}
	if err := s.otpRepo.InvalidateForPhone(ctx, phone, purpose); err != nil {
		return nil, err
	}
	code, err := otpcore.GenerateCode()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(s.otpTTL)
	challenge := &otpdomain.Challenge{
		ID:        uuid.New().String(),
		Phone:     phone,
		Purpose:   purpose,
		CodeHash:  otpcore.Digest(code),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.otpRepo.Create(ctx, challenge); err != nil {
		return nil, err
	}
	if s.devStore != nil {
		s.devStore.Put(ctx, phone, code, expiresAt)
	} else if err := s.sender.SendCode(ctx, phone, code); err != nil {
		return nil, err
	}
	return &ChallengeResult{ExpiresAt: expiresAt}, nil
}

func (s *AuthService) verifyCode(ctx context.Context, phone, code string, purpose otpdomain.Purpose) error {
	challenge, err := s.otpRepo.GetLatest(ctx, phone, purpose)
	if err != nil {
		return err
	}
	if challenge == nil || challenge.Consumed {
		return ErrCodeInvalid
	}
	decision, err := s.policies.EvaluateOnboarding(ctx, phone, string(purpose))
	if err != nil {
		return err
	}
	if challenge.Attempts >= decision.MaxVerifyAttempts {
		return ErrTooManyAttempts
	}
	if challenge.Expired(time.Now().UTC()) {
		return ErrCodeExpired
	}
	if !otpcore.DigestEqual(code, challenge.CodeHash) {
		attempts, incErr := s.otpRepo.IncrementAttempts(ctx, challenge.ID)
		if incErr != nil {
			return incErr
		}
		if attempts >= decision.MaxVerifyAttempts {
			return ErrTooManyAttempts
		}
		return ErrCodeInvalid
	}
	return s.otpRepo.MarkVerified(ctx, challenge.ID)
}

func (s *AuthService) openSession(ctx context.Context, user *userdomain.User) (*AuthResult, error) {
	sessionID := uuid.New().String()
	now := time.Now().UTC()
	refreshToken, jti, _, err := s.tokens.IssueRefresh(sessionID, user.ID)
	if err != nil {
		return nil, err
	}
	accessToken, _, accessExp, err := s.tokens.IssueAccess(sessionID, user.ID)
	if err != nil {
		return nil, err
	}
	sess := &sessiondomain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		ExpiresAt:        now.Add(s.refreshTTL),
		RefreshJti:       jti,
		RefreshTokenHash: security.TokenDigest(refreshToken),
		CreatedAt:        now,
	}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    accessExp,
		UserID:       user.ID,
		PlayerID:     user.PlayerID,
	}, nil
}

func validatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

func (s *AuthService) validateName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}
	if s.namePattern != nil && !s.namePattern.MatchString(name) {
		return errors.New("name has invalid characters")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return errors.New("password must contain at least one letter")
	}
	if !hasDigit {
		return errors.New("password must contain at least one digit")
	}
	return nil
}
