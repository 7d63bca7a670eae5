package flow

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"
	"unicode"
)

var (
	phonePattern = regexp.MustCompile(`^09\d{9}$`)
	codePattern  = regexp.MustCompile(`^\d{6}$`)
)

// FieldError is a stage-local validation or business failure attached to one
// input. The stage does not transition and the form stays editable.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Controller orchestrates the onboarding wizard: it owns the active stage,
// the shared Identity, the resend countdown, and the pending-request guard.
// All mutating operations are serialized; a submit that arrives while another
// request for the same flow is in flight returns ErrRequestPending and
// produces no network call.
type Controller struct {
	client      Client
	checkpoints CheckpointStore
	namePattern *regexp.Regexp

	// tickInterval is one second in production; tests shorten it.
	tickInterval time.Duration
	onTick       func(remaining int)

	mu         sync.Mutex
	stage      Stage
	identity   Identity
	userID     string
	challenge  *OtpChallenge
	countdown  *Countdown
	assignment PlayerAssignment
	otpProof   string
	resetMode  bool
	pending    bool
	closed     bool
}

// NewController builds a wizard rooted at the phone stage. If the checkpoint
// store holds a snapshot from a prior redirect, the wizard resumes from it.
func NewController(client Client, checkpoints CheckpointStore, namePattern *regexp.Regexp) *Controller {
	c := &Controller{
		client:       client,
		checkpoints:  checkpoints,
		namePattern:  namePattern,
		tickInterval: time.Second,
		stage:        StagePhone,
	}
	if checkpoints != nil {
		if cp, ok := checkpoints.Load(); ok {
			c.stage = cp.Stage
			c.identity = cp.Identity
			c.userID = cp.UserID
		}
	}
	return c
}

// SetTickHandler registers a callback invoked with the remaining seconds on
// every countdown tick. Must be set before the first SMS dispatch.
func (c *Controller) SetTickHandler(f func(remaining int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = f
}

// Stage returns the active stage.
func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Identity returns the shared identity context.
func (c *Controller) Identity() Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// RemainingSeconds returns the seconds left on the resend cooldown, 0 when no
// countdown is running or it has finished.
func (c *Controller) RemainingSeconds() int {
	c.mu.Lock()
	cd := c.countdown
	c.mu.Unlock()
	if cd == nil {
		return 0
	}
	return cd.Remaining()
}

// ResendAvailable reports whether the resend action is actionable.
func (c *Controller) ResendAvailable() bool {
	return c.RemainingSeconds() == 0
}

// Assignment returns the current player-picker selection.
func (c *Controller) Assignment() PlayerAssignment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assignment
}

// SubmitPhone validates the phone locally, checks whether the account exists,
// and branches: existing accounts go to LOGIN, new phones get an SMS and go to
// VERIFY. A malformed phone never reaches the network.
func (c *Controller) SubmitPhone(ctx context.Context, phone string) error {
	if err := c.begin(StagePhone); err != nil {
		return err
	}
	if !phonePattern.MatchString(phone) {
		c.settle(nil)
		return &FieldError{Field: "phone", Message: "phone must match 09xxxxxxxxx"}
	}

	res, err := c.client.CheckUsername(ctx, phone)
	if err != nil {
		c.settle(nil)
		return &FieldError{Field: "phone", Message: "could not check phone, try again"}
	}

	if res.Exists {
		return c.settle(func() {
			c.identity = Identity{Phone: phone, Exists: true, HasPlayerAssignment: res.HasPlayerAssignment}
			c.stage = StageLogin
		})
	}

	if err := c.client.SendRegistrationCode(ctx, phone); err != nil {
		c.settle(nil)
		if err == ErrRateLimited {
			return &FieldError{Field: "phone", Message: "too many requests, wait before retrying"}
		}
		return &FieldError{Field: "phone", Message: "could not send verification code"}
	}
	return c.settle(func() {
		c.identity = Identity{Phone: phone}
		c.openChallenge()
		c.stage = StageVerify
	})
}

// SubmitPassword attempts login for an existing account. Invalid credentials
// stay in LOGIN with a password field error; success advances to player
// assignment or completion.
func (c *Controller) SubmitPassword(ctx context.Context, password string) error {
	if err := c.begin(StageLogin); err != nil {
		return err
	}
	if !passwordOK(password) {
		c.settle(nil)
		return &FieldError{Field: "password", Message: "password must be at least 8 characters with a letter and a digit"}
	}

	userID, err := c.client.Login(ctx, c.snapshotIdentity().Phone, password)
	if err != nil {
		c.settle(nil)
		if err == ErrUnauthorized {
			return &FieldError{Field: "password", Message: "invalid credentials"}
		}
		return fmt.Errorf("login: %w", err)
	}
	return c.settle(func() {
		c.identity.Verified = true
		c.userID = userID
		c.advanceAfterAuth()
	})
}

// StartPasswordReset dispatches a reset code for the current phone and moves
// into the verification stage in reset mode. Structurally the same challenge
// loop as registration verification.
func (c *Controller) StartPasswordReset(ctx context.Context) error {
	if err := c.begin(StageLogin); err != nil {
		return err
	}
	err := c.client.SendPasswordResetCode(ctx, c.snapshotIdentity().Phone)
	if err != nil {
		c.settle(nil)
		if err == ErrRateLimited {
			return &FieldError{Field: "phone", Message: "too many requests, wait before retrying"}
		}
		return fmt.Errorf("send reset code: %w", err)
	}
	return c.settle(func() {
		c.resetMode = true
		c.openChallenge()
		c.stage = StageVerify
	})
}

// SubmitCode verifies the entered registration code server-side. The code is
// never compared locally. Success advances to REGISTER; every failure keeps
// the stage with a field error on the code input.
func (c *Controller) SubmitCode(ctx context.Context, code string) error {
	if err := c.begin(StageVerify); err != nil {
		return err
	}
	if c.snapshotResetMode() {
		c.settle(nil)
		return ErrWrongStage
	}
	if !codePattern.MatchString(code) {
		c.settle(nil)
		return &FieldError{Field: "code", Message: "code must be 6 digits"}
	}

	err := c.client.VerifyCode(ctx, c.snapshotIdentity().Phone, code)
	if err != nil {
		c.settle(nil)
		if fe := codeFieldError(err); fe != nil {
			return fe
		}
		return fmt.Errorf("verify code: %w", err)
	}
	return c.settle(func() {
		c.identity.Verified = true
		c.otpProof = code
		c.closeChallenge()
		c.stage = StageRegister
	})
}

// SubmitResetCode completes the password-reset loop: it verifies the code and
// sets the new password in one call, then returns to LOGIN.
func (c *Controller) SubmitResetCode(ctx context.Context, code, newPassword string) error {
	if err := c.begin(StageVerify); err != nil {
		return err
	}
	if !c.snapshotResetMode() {
		c.settle(nil)
		return ErrWrongStage
	}
	if !codePattern.MatchString(code) {
		c.settle(nil)
		return &FieldError{Field: "code", Message: "code must be 6 digits"}
	}
	if !passwordOK(newPassword) {
		c.settle(nil)
		return &FieldError{Field: "password", Message: "password must be at least 8 characters with a letter and a digit"}
	}

	err := c.client.VerifyResetCode(ctx, c.snapshotIdentity().Phone, code, newPassword)
	if err != nil {
		c.settle(nil)
		if fe := codeFieldError(err); fe != nil {
			return fe
		}
		return fmt.Errorf("verify reset code: %w", err)
	}
	return c.settle(func() {
		c.resetMode = false
		c.closeChallenge()
		c.stage = StageLogin
	})
}

// Resend re-dispatches the SMS and restarts the cooldown at 60. It is only
// actionable once the previous countdown has reached zero; the prior code no
// longer verifies after a resend.
func (c *Controller) Resend(ctx context.Context) error {
	if err := c.begin(StageVerify); err != nil {
		return err
	}
	c.mu.Lock()
	ready := c.countdown == nil || c.countdown.Finished()
	resetMode := c.resetMode
	phone := c.identity.Phone
	c.mu.Unlock()
	if !ready {
		c.settle(nil)
		return ErrRateLimited
	}

	var err error
	if resetMode {
		err = c.client.SendPasswordResetCode(ctx, phone)
	} else {
		err = c.client.SendRegistrationCode(ctx, phone)
	}
	if err != nil {
		c.settle(nil)
		if err == ErrRateLimited {
			return &FieldError{Field: "code", Message: "too many requests, wait before retrying"}
		}
		return fmt.Errorf("resend code: %w", err)
	}
	return c.settle(func() {
		c.openChallenge()
	})
}

// SubmitRegistration validates the profile fields locally and finalizes the
// account with the verified phone and OTP proof from the verification stage.
func (c *Controller) SubmitRegistration(ctx context.Context, firstName, lastName, password string) error {
	if err := c.begin(StageRegister); err != nil {
		return err
	}
	if err := c.validateName("firstName", firstName); err != nil {
		c.settle(nil)
		return err
	}
	if err := c.validateName("lastName", lastName); err != nil {
		c.settle(nil)
		return err
	}
	if !passwordOK(password) {
		c.settle(nil)
		return &FieldError{Field: "password", Message: "password must be at least 8 characters with a letter and a digit"}
	}

	c.mu.Lock()
	phone, proof := c.identity.Phone, c.otpProof
	c.mu.Unlock()

	userID, err := c.client.Register(ctx, phone, password, proof, firstName, lastName)
	if err != nil {
		c.settle(nil)
		if err == ErrConflict {
			return &FieldError{Field: "phone", Message: "phone is already registered"}
		}
		if fe := codeFieldError(err); fe != nil {
			return fe
		}
		return fmt.Errorf("register: %w", err)
	}
	return c.settle(func() {
		c.otpProof = ""
		c.userID = userID
		c.advanceAfterAuth()
	})
}

// SelectPlayer records the picker selection. Confirmation is a separate,
// explicit step.
func (c *Controller) SelectPlayer(playerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrFlowClosed
	}
	if c.stage != StageAssignPlayer {
		return ErrWrongStage
	}
	c.assignment = PlayerAssignment{CandidatePlayerID: playerID}
	return nil
}

// ConfirmAssignment binds the selected player to the authenticated account.
// On conflict or transport failure the selection is preserved for retry; on
// success the checkpoint is cleared and the flow completes.
func (c *Controller) ConfirmAssignment(ctx context.Context) error {
	if err := c.begin(StageAssignPlayer); err != nil {
		return err
	}
	c.mu.Lock()
	playerID := c.assignment.CandidatePlayerID
	userID := c.userID
	c.mu.Unlock()
	if playerID == "" {
		c.settle(nil)
		return &FieldError{Field: "player", Message: "select a player first"}
	}

	err := c.client.SetPlayerID(ctx, userID, playerID)
	if err != nil {
		c.settle(nil)
		if err == ErrConflict {
			return &FieldError{Field: "player", Message: "a player is already linked to this account"}
		}
		return fmt.Errorf("assign player: %w", err)
	}
	return c.settle(func() {
		c.assignment.Confirmed = true
		c.identity.HasPlayerAssignment = true
		c.finish()
	})
}

// Close tears the wizard down: the countdown is cancelled and any in-flight
// request's effect on state is discarded. Idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	c.challenge = nil
	c.otpProof = ""
}

// begin acquires the single-outstanding-request slot for stage, or rejects
// the submit without side effects.
func (c *Controller) begin(stage Stage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrFlowClosed
	}
	if c.stage != stage {
		return ErrWrongStage
	}
	if c.pending {
		return ErrRequestPending
	}
	c.pending = true
	return nil
}

// settle releases the pending slot and applies the state transition, unless
// the flow was closed while the request was in flight.
func (c *Controller) settle(apply func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	if c.closed {
		return ErrFlowClosed
	}
	if apply != nil {
		apply()
	}
	return nil
}

// openChallenge replaces the active challenge and restarts the countdown at
// the full cooldown. Caller holds no lock guarantees; invoked under settle.
func (c *Controller) openChallenge() {
	if c.countdown != nil {
		c.countdown.Stop()
	}
	c.challenge = &OtpChallenge{IssuedAt: time.Now().UTC(), CooldownSeconds: resendCooldownSeconds}
	c.countdown = newCountdown(resendCooldownSeconds, c.tickInterval, c.onTick)
}

// closeChallenge discards the challenge and countdown on stage exit. The
// transient code never outlives the verification stage.
func (c *Controller) closeChallenge() {
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
	c.challenge = nil
}

// advanceAfterAuth routes an authenticated identity to the player picker or
// straight to completion.
func (c *Controller) advanceAfterAuth() {
	if c.identity.HasPlayerAssignment {
		c.finish()
		return
	}
	c.stage = StageAssignPlayer
	if c.checkpoints != nil {
		_ = c.checkpoints.Save(Checkpoint{Stage: c.stage, Identity: c.identity, UserID: c.userID})
	}
}

// finish completes the flow: the session checkpoint is cleared and the stage
// becomes terminal.
func (c *Controller) finish() {
	if c.checkpoints != nil {
		_ = c.checkpoints.Clear()
	}
	c.stage = StageDone
}

func (c *Controller) snapshotIdentity() Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

func (c *Controller) snapshotResetMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resetMode
}

func (c *Controller) validateName(field, value string) error {
	if len([]rune(value)) < 2 {
		return &FieldError{Field: field, Message: "must be at least 2 characters"}
	}
	if c.namePattern != nil && !c.namePattern.MatchString(value) {
		return &FieldError{Field: field, Message: "contains characters outside the allowed script"}
	}
	return nil
}

// codeFieldError maps the verification failure classes onto the code input.
// Unknown errors return nil so callers can wrap them as transport failures.
func codeFieldError(err error) error {
	switch err {
	case ErrCodeInvalid:
		return &FieldError{Field: "code", Message: "code is incorrect"}
	case ErrCodeExpired:
		return &FieldError{Field: "code", Message: "code has expired, request a new one"}
	case ErrNotFound:
		return &FieldError{Field: "code", Message: "phone no longer resolves to a pending verification"}
	case ErrRateLimited:
		return &FieldError{Field: "code", Message: "too many attempts, request a new code"}
	}
	return nil
}

func passwordOK(password string) bool {
	if len(password) < 8 {
		return false
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
	return hasLetter && hasDigit
}
