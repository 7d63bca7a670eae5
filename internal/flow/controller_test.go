package flow

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"
)

var testNamePattern = regexp.MustCompile(`^[\p{Arabic}\x{200C} ]{2,}$`)

// stubClient is a configurable Client fake. Every call is counted; behavior
// comes from the optional func fields.
type stubClient struct {
	mu    sync.Mutex
	calls map[string]int

	checkFn       func(phone string) (*CheckResult, error)
	loginFn       func(phone, password string) (string, error)
	sendRegFn     func(phone string) error
	verifyFn      func(phone, code string) error
	registerFn    func(phone, password, code, firstName, lastName string) (string, error)
	sendResetFn   func(phone string) error
	verifyResetFn func(phone, code, newPassword string) error
	searchFn      func(query string) ([]Player, error)
	setPlayerFn   func(userID, playerID string) error
}

func (c *stubClient) record(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[name]++
}

func (c *stubClient) callCount(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func (c *stubClient) totalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func (c *stubClient) CheckUsername(ctx context.Context, phone string) (*CheckResult, error) {
	c.record("checkUsername")
	if c.checkFn != nil {
		return c.checkFn(phone)
	}
	return &CheckResult{}, nil
}

func (c *stubClient) Login(ctx context.Context, phone, password string) (string, error) {
	c.record("login")
	if c.loginFn != nil {
		return c.loginFn(phone, password)
	}
	return "user-1", nil
}

func (c *stubClient) SendRegistrationCode(ctx context.Context, phone string) error {
	c.record("sendRegistrationCode")
	if c.sendRegFn != nil {
		return c.sendRegFn(phone)
	}
	return nil
}

func (c *stubClient) VerifyCode(ctx context.Context, phone, code string) error {
	c.record("verifyCode")
	if c.verifyFn != nil {
		return c.verifyFn(phone, code)
	}
	return nil
}

func (c *stubClient) Register(ctx context.Context, phone, password, code, firstName, lastName string) (string, error) {
	c.record("register")
	if c.registerFn != nil {
		return c.registerFn(phone, password, code, firstName, lastName)
	}
	return "user-1", nil
}

func (c *stubClient) SendPasswordResetCode(ctx context.Context, phone string) error {
	c.record("sendPasswordResetCode")
	if c.sendResetFn != nil {
		return c.sendResetFn(phone)
	}
	return nil
}

func (c *stubClient) VerifyResetCode(ctx context.Context, phone, code, newPassword string) error {
	c.record("verifyResetCode")
	if c.verifyResetFn != nil {
		return c.verifyResetFn(phone, code, newPassword)
	}
	return nil
}

func (c *stubClient) SearchPlayers(ctx context.Context, query string) ([]Player, error) {
	c.record("searchPlayers")
	if c.searchFn != nil {
		return c.searchFn(query)
	}
	return nil, nil
}

func (c *stubClient) SetPlayerID(ctx context.Context, userID, playerID string) error {
	c.record("setPlayerId")
	if c.setPlayerFn != nil {
		return c.setPlayerFn(userID, playerID)
	}
	return nil
}

// newTestController freezes the countdown so cooldown state is deterministic.
func newTestController(t *testing.T, client Client) (*Controller, *MemoryCheckpointStore) {
	t.Helper()
	store := NewMemoryCheckpointStore()
	c := NewController(client, store, testNamePattern)
	c.tickInterval = time.Hour
	t.Cleanup(c.Close)
	return c, store
}

// advanceToVerify submits a new phone and lands the wizard in VERIFY.
func advanceToVerify(t *testing.T, c *Controller, phone string) {
	t.Helper()
	if err := c.SubmitPhone(context.Background(), phone); err != nil {
		t.Fatalf("SubmitPhone(%q): %v", phone, err)
	}
	if got := c.Stage(); got != StageVerify {
		t.Fatalf("stage = %s, want %s", got, StageVerify)
	}
}

func TestSubmitPhoneRejectsMalformedWithoutNetworkCall(t *testing.T) {
	stub := &stubClient{}
	c, _ := newTestController(t, stub)

	for _, phone := range []string{
		"", "0912", "9121234567", "091234567", "0912345678a", "091200000000", "+989120000000",
	} {
		err := c.SubmitPhone(context.Background(), phone)
		var fe *FieldError
		if !errors.As(err, &fe) || fe.Field != "phone" {
			t.Fatalf("SubmitPhone(%q) = %v, want phone field error", phone, err)
		}
	}
	if n := stub.totalCalls(); n != 0 {
		t.Fatalf("malformed phones triggered %d network calls, want 0", n)
	}
	if got := c.Stage(); got != StagePhone {
		t.Fatalf("stage = %s, want %s", got, StagePhone)
	}
}

func TestSubmitPhoneExistingAccountGoesToLogin(t *testing.T) {
	stub := &stubClient{
		checkFn: func(phone string) (*CheckResult, error) {
			return &CheckResult{Exists: true, HasPlayerAssignment: true}, nil
		},
	}
	c, _ := newTestController(t, stub)

	if err := c.SubmitPhone(context.Background(), "09120000000"); err != nil {
		t.Fatalf("SubmitPhone: %v", err)
	}
	if got := c.Stage(); got != StageLogin {
		t.Fatalf("stage = %s, want %s", got, StageLogin)
	}
	id := c.Identity()
	if !id.Exists || id.Phone != "09120000000" || !id.HasPlayerAssignment {
		t.Fatalf("identity = %+v", id)
	}
	if n := stub.callCount("sendRegistrationCode"); n != 0 {
		t.Fatalf("SMS dispatched for an existing account: %d calls", n)
	}
}

func TestSubmitPhoneNewAccountGoesToVerifyWithFullCooldown(t *testing.T) {
	stub := &stubClient{}
	c, _ := newTestController(t, stub)

	advanceToVerify(t, c, "09129999999")
	if n := stub.callCount("sendRegistrationCode"); n != 1 {
		t.Fatalf("sendRegistrationCode called %d times, want 1", n)
	}
	if got := c.RemainingSeconds(); got != 60 {
		t.Fatalf("RemainingSeconds() = %d, want 60", got)
	}
	if c.ResendAvailable() {
		t.Fatal("resend must not be actionable during the cooldown")
	}
}

func TestSubmitPhoneSendFailureStaysInPhone(t *testing.T) {
	stub := &stubClient{
		sendRegFn: func(phone string) error { return ErrRateLimited },
	}
	c, _ := newTestController(t, stub)

	err := c.SubmitPhone(context.Background(), "09129999999")
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "phone" {
		t.Fatalf("SubmitPhone = %v, want phone field error", err)
	}
	if got := c.Stage(); got != StagePhone {
		t.Fatalf("stage = %s, want %s", got, StagePhone)
	}
}

func TestSubmitCodeMismatchStaysInVerify(t *testing.T) {
	stub := &stubClient{
		verifyFn: func(phone, code string) error {
			if code != "654321" {
				return ErrCodeInvalid
			}
			return nil
		},
	}
	c, _ := newTestController(t, stub)
	advanceToVerify(t, c, "09129999999")

	err := c.SubmitCode(context.Background(), "123456")
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "code" {
		t.Fatalf("SubmitCode = %v, want code field error", err)
	}
	if got := c.Stage(); got != StageVerify {
		t.Fatalf("stage = %s, want %s", got, StageVerify)
	}

	if err := c.SubmitCode(context.Background(), "654321"); err != nil {
		t.Fatalf("SubmitCode with issued code: %v", err)
	}
	if got := c.Stage(); got != StageRegister {
		t.Fatalf("stage = %s, want %s", got, StageRegister)
	}
}

func TestSubmitCodeExpired(t *testing.T) {
	stub := &stubClient{
		verifyFn: func(phone, code string) error { return ErrCodeExpired },
	}
	c, _ := newTestController(t, stub)
	advanceToVerify(t, c, "09129999999")

	err := c.SubmitCode(context.Background(), "111111")
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "code" {
		t.Fatalf("SubmitCode = %v, want code field error", err)
	}
	if got := c.Stage(); got != StageVerify {
		t.Fatalf("stage = %s, want %s", got, StageVerify)
	}
}

func TestSubmitCodeTransportFailureSurfacesError(t *testing.T) {
	transportErr := errors.New("connection reset by peer")
	stub := &stubClient{
		verifyFn: func(phone, code string) error { return transportErr },
	}
	c, _ := newTestController(t, stub)
	advanceToVerify(t, c, "09129999999")

	err := c.SubmitCode(context.Background(), "123456")
	if err == nil {
		t.Fatal("SubmitCode returned nil for a transport failure")
	}
	if !errors.Is(err, transportErr) {
		t.Fatalf("SubmitCode = %v, want wrapped %v", err, transportErr)
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		t.Fatalf("transport failure surfaced as field error %v", fe)
	}
	if got := c.Stage(); got != StageVerify {
		t.Fatalf("stage = %s, want %s", got, StageVerify)
	}
}

func TestSubmitResetCodeTransportFailureSurfacesError(t *testing.T) {
	transportErr := errors.New("read timeout")
	stub := &stubClient{
		checkFn: func(phone string) (*CheckResult, error) {
			return &CheckResult{Exists: true}, nil
		},
		verifyResetFn: func(phone, code, newPassword string) error { return transportErr },
	}
	c, _ := newTestController(t, stub)
	if err := c.SubmitPhone(context.Background(), "09120000000"); err != nil {
		t.Fatalf("SubmitPhone: %v", err)
	}
	if err := c.StartPasswordReset(context.Background()); err != nil {
		t.Fatalf("StartPasswordReset: %v", err)
	}

	err := c.SubmitResetCode(context.Background(), "123456", "newpass99")
	if err == nil {
		t.Fatal("SubmitResetCode returned nil for a transport failure")
	}
	if !errors.Is(err, transportErr) {
		t.Fatalf("SubmitResetCode = %v, want wrapped %v", err, transportErr)
	}
	if got := c.Stage(); got != StageVerify {
		t.Fatalf("stage = %s, want %s", got, StageVerify)
	}
}

func TestSubmitCodeWrongLengthSkipsNetwork(t *testing.T) {
	stub := &stubClient{}
	c, _ := newTestController(t, stub)
	advanceToVerify(t, c, "09129999999")

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		err := c.SubmitCode(context.Background(), code)
		var fe *FieldError
		if !errors.As(err, &fe) {
			t.Fatalf("SubmitCode(%q) = %v, want field error", code, err)
		}
	}
	if n := stub.callCount("verifyCode"); n != 0 {
		t.Fatalf("verifyCode called %d times for malformed codes, want 0", n)
	}
}

func TestRegistrationAdvancesToPlayerAssignment(t *testing.T) {
	stub := &stubClient{}
	c, store := newTestController(t, stub)
	advanceToVerify(t, c, "09129999999")
	if err := c.SubmitCode(context.Background(), "654321"); err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}

	var gotCode string
	stub.registerFn = func(phone, password, code, firstName, lastName string) (string, error) {
		gotCode = code
		return "user-1", nil
	}
	if err := c.SubmitRegistration(context.Background(), "علی", "رضایی", "pass1234"); err != nil {
		t.Fatalf("SubmitRegistration: %v", err)
	}
	if gotCode != "654321" {
		t.Fatalf("register received code %q, want the verified code", gotCode)
	}
	if got := c.Stage(); got != StageAssignPlayer {
		t.Fatalf("stage = %s, want %s", got, StageAssignPlayer)
	}
	if _, ok := store.Load(); !ok {
		t.Fatal("expected a checkpoint to be saved when entering player assignment")
	}
}

func TestRegistrationValidatesLocally(t *testing.T) {
	stub := &stubClient{}
	c, _ := newTestController(t, stub)
	advanceToVerify(t, c, "09129999999")
	if err := c.SubmitCode(context.Background(), "654321"); err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}

	cases := []struct {
		name                          string
		firstName, lastName, password string
		wantField                     string
	}{
		{"short first name", "ع", "رضایی", "pass1234", "firstName"},
		{"latin first name", "Ali", "رضایی", "pass1234", "firstName"},
		{"short last name", "علی", "ر", "pass1234", "lastName"},
		{"short password", "علی", "رضایی", "p1", "password"},
		{"password without digit", "علی", "رضایی", "passwords", "password"},
		{"password without letter", "علی", "رضایی", "12345678", "password"},
	}
	for _, tc := range cases {
		err := c.SubmitRegistration(context.Background(), tc.firstName, tc.lastName, tc.password)
		var fe *FieldError
		if !errors.As(err, &fe) || fe.Field != tc.wantField {
			t.Errorf("%s: got %v, want %s field error", tc.name, err, tc.wantField)
		}
	}
	if n := stub.callCount("register"); n != 0 {
		t.Fatalf("register called %d times for invalid input, want 0", n)
	}
	if got := c.Stage(); got != StageRegister {
		t.Fatalf("stage = %s, want %s", got, StageRegister)
	}
}

func TestConfirmAssignmentCompletesFlow(t *testing.T) {
	stub := &stubClient{}
	c, store := newTestController(t, stub)
	advanceToVerify(t, c, "09129999999")
	if err := c.SubmitCode(context.Background(), "654321"); err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}
	if err := c.SubmitRegistration(context.Background(), "علی", "رضایی", "pass1234"); err != nil {
		t.Fatalf("SubmitRegistration: %v", err)
	}

	if err := c.SelectPlayer("player-7"); err != nil {
		t.Fatalf("SelectPlayer: %v", err)
	}
	if err := c.ConfirmAssignment(context.Background()); err != nil {
		t.Fatalf("ConfirmAssignment: %v", err)
	}
	if n := stub.callCount("setPlayerId"); n != 1 {
		t.Fatalf("setPlayerId called %d times, want exactly 1", n)
	}
	if got := c.Stage(); got != StageDone {
		t.Fatalf("stage = %s, want %s", got, StageDone)
	}
	if _, ok := store.Load(); ok {
		t.Fatal("checkpoint must be cleared on completion")
	}
}

func TestConfirmAssignmentConflictPreservesSelection(t *testing.T) {
	stub := &stubClient{
		setPlayerFn: func(userID, playerID string) error { return ErrConflict },
	}
	c, _ := newTestController(t, stub)
	advanceToVerify(t, c, "09129999999")
	if err := c.SubmitCode(context.Background(), "654321"); err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}
	if err := c.SubmitRegistration(context.Background(), "علی", "رضایی", "pass1234"); err != nil {
		t.Fatalf("SubmitRegistration: %v", err)
	}
	if err := c.SelectPlayer("player-7"); err != nil {
		t.Fatalf("SelectPlayer: %v", err)
	}

	err := c.ConfirmAssignment(context.Background())
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "player" {
		t.Fatalf("ConfirmAssignment = %v, want player field error", err)
	}
	if got := c.Stage(); got != StageAssignPlayer {
		t.Fatalf("stage = %s, want %s", got, StageAssignPlayer)
	}
	if got := c.Assignment().CandidatePlayerID; got != "player-7" {
		t.Fatalf("selection = %q, want preserved %q", got, "player-7")
	}
}

func TestLoginAdvancesByAssignmentState(t *testing.T) {
	t.Run("without player goes to assignment", func(t *testing.T) {
		stub := &stubClient{
			checkFn: func(phone string) (*CheckResult, error) {
				return &CheckResult{Exists: true}, nil
			},
		}
		c, _ := newTestController(t, stub)
		if err := c.SubmitPhone(context.Background(), "09120000000"); err != nil {
			t.Fatalf("SubmitPhone: %v", err)
		}
		if err := c.SubmitPassword(context.Background(), "pass1234"); err != nil {
			t.Fatalf("SubmitPassword: %v", err)
		}
		if got := c.Stage(); got != StageAssignPlayer {
			t.Fatalf("stage = %s, want %s", got, StageAssignPlayer)
		}
	})

	t.Run("with player completes", func(t *testing.T) {
		stub := &stubClient{
			checkFn: func(phone string) (*CheckResult, error) {
				return &CheckResult{Exists: true, HasPlayerAssignment: true}, nil
			},
		}
		c, store := newTestController(t, stub)
		if err := c.SubmitPhone(context.Background(), "09120000000"); err != nil {
			t.Fatalf("SubmitPhone: %v", err)
		}
		if err := c.SubmitPassword(context.Background(), "pass1234"); err != nil {
			t.Fatalf("SubmitPassword: %v", err)
		}
		if got := c.Stage(); got != StageDone {
			t.Fatalf("stage = %s, want %s", got, StageDone)
		}
		if _, ok := store.Load(); ok {
			t.Fatal("checkpoint must be cleared on completion")
		}
	})
}

func TestLoginWrongPasswordStaysInLogin(t *testing.T) {
	stub := &stubClient{
		checkFn: func(phone string) (*CheckResult, error) {
			return &CheckResult{Exists: true}, nil
		},
		loginFn: func(phone, password string) (string, error) { return "", ErrUnauthorized },
	}
	c, _ := newTestController(t, stub)
	if err := c.SubmitPhone(context.Background(), "09120000000"); err != nil {
		t.Fatalf("SubmitPhone: %v", err)
	}

	err := c.SubmitPassword(context.Background(), "wrongpw99")
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "password" {
		t.Fatalf("SubmitPassword = %v, want password field error", err)
	}
	if got := c.Stage(); got != StageLogin {
		t.Fatalf("stage = %s, want %s", got, StageLogin)
	}
}

func TestDoubleSubmitProducesOneNetworkCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	stub := &stubClient{
		checkFn: func(phone string) (*CheckResult, error) {
			return &CheckResult{Exists: true, HasPlayerAssignment: true}, nil
		},
		loginFn: func(phone, password string) (string, error) {
			close(started)
			<-release
			return "user-1", nil
		},
	}
	c, _ := newTestController(t, stub)
	if err := c.SubmitPhone(context.Background(), "09120000000"); err != nil {
		t.Fatalf("SubmitPhone: %v", err)
	}

	first := make(chan error, 1)
	go func() { first <- c.SubmitPassword(context.Background(), "pass1234") }()
	<-started

	if err := c.SubmitPassword(context.Background(), "pass1234"); err != ErrRequestPending {
		t.Fatalf("duplicate submit = %v, want ErrRequestPending", err)
	}
	close(release)
	if err := <-first; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if n := stub.callCount("login"); n != 1 {
		t.Fatalf("login called %d times, want 1", n)
	}
}

func TestResendBlockedDuringCooldown(t *testing.T) {
	stub := &stubClient{}
	c, _ := newTestController(t, stub)
	advanceToVerify(t, c, "09129999999")

	if err := c.Resend(context.Background()); err != ErrRateLimited {
		t.Fatalf("Resend during cooldown = %v, want ErrRateLimited", err)
	}
	if n := stub.callCount("sendRegistrationCode"); n != 1 {
		t.Fatalf("sendRegistrationCode called %d times, want 1", n)
	}
}

func TestResendAfterCooldownRestartsAtSixty(t *testing.T) {
	stub := &stubClient{}
	store := NewMemoryCheckpointStore()
	c := NewController(stub, store, testNamePattern)
	c.tickInterval = time.Millisecond
	t.Cleanup(c.Close)

	advanceToVerify(t, c, "09129999999")
	waitFor(t, func() bool { return c.ResendAvailable() })

	c.tickInterval = time.Hour
	if err := c.Resend(context.Background()); err != nil {
		t.Fatalf("Resend: %v", err)
	}
	if n := stub.callCount("sendRegistrationCode"); n != 2 {
		t.Fatalf("sendRegistrationCode called %d times, want 2", n)
	}
	if got := c.RemainingSeconds(); got != 60 {
		t.Fatalf("RemainingSeconds() after resend = %d, want 60", got)
	}
}

func TestPasswordResetLoop(t *testing.T) {
	stub := &stubClient{
		checkFn: func(phone string) (*CheckResult, error) {
			return &CheckResult{Exists: true}, nil
		},
	}
	c, _ := newTestController(t, stub)
	if err := c.SubmitPhone(context.Background(), "09120000000"); err != nil {
		t.Fatalf("SubmitPhone: %v", err)
	}

	if err := c.StartPasswordReset(context.Background()); err != nil {
		t.Fatalf("StartPasswordReset: %v", err)
	}
	if got := c.Stage(); got != StageVerify {
		t.Fatalf("stage = %s, want %s", got, StageVerify)
	}
	if err := c.SubmitCode(context.Background(), "654321"); err != ErrWrongStage {
		t.Fatalf("SubmitCode in reset mode = %v, want ErrWrongStage", err)
	}

	if err := c.SubmitResetCode(context.Background(), "654321", "newpass99"); err != nil {
		t.Fatalf("SubmitResetCode: %v", err)
	}
	if got := c.Stage(); got != StageLogin {
		t.Fatalf("stage = %s, want %s", got, StageLogin)
	}
	if n := stub.callCount("verifyResetCode"); n != 1 {
		t.Fatalf("verifyResetCode called %d times, want 1", n)
	}
}

func TestCloseDiscardsInFlightEffects(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	stub := &stubClient{
		checkFn: func(phone string) (*CheckResult, error) {
			return &CheckResult{Exists: true}, nil
		},
		loginFn: func(phone, password string) (string, error) {
			close(started)
			<-release
			return "user-1", nil
		},
	}
	store := NewMemoryCheckpointStore()
	c := NewController(stub, store, testNamePattern)
	c.tickInterval = time.Hour
	if err := c.SubmitPhone(context.Background(), "09120000000"); err != nil {
		t.Fatalf("SubmitPhone: %v", err)
	}

	result := make(chan error, 1)
	go func() { result <- c.SubmitPassword(context.Background(), "pass1234") }()
	<-started

	c.Close()
	close(release)
	if err := <-result; err != ErrFlowClosed {
		t.Fatalf("in-flight submit after Close = %v, want ErrFlowClosed", err)
	}
	if got := c.Stage(); got != StageLogin {
		t.Fatalf("stage mutated after Close: %s", got)
	}
	if err := c.SubmitPassword(context.Background(), "pass1234"); err != ErrFlowClosed {
		t.Fatalf("submit on closed flow = %v, want ErrFlowClosed", err)
	}
}

func TestControllerResumesFromCheckpoint(t *testing.T) {
	store := NewMemoryCheckpointStore()
	if err := store.Save(Checkpoint{
		Stage:    StageAssignPlayer,
		Identity: Identity{Phone: "09129999999", Verified: true},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	c := NewController(&stubClient{}, store, testNamePattern)
	t.Cleanup(c.Close)
	if got := c.Stage(); got != StageAssignPlayer {
		t.Fatalf("stage = %s, want resumed %s", got, StageAssignPlayer)
	}
	if got := c.Identity().Phone; got != "09129999999" {
		t.Fatalf("identity phone = %q, want restored", got)
	}
}

func TestResumedControllerAssignsWithRestoredUser(t *testing.T) {
	store := NewMemoryCheckpointStore()
	if err := store.Save(Checkpoint{
		Stage:    StageAssignPlayer,
		Identity: Identity{Phone: "09129999999", Verified: true},
		UserID:   "user-42",
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	var gotUserID string
	stub := &stubClient{
		setPlayerFn: func(userID, playerID string) error {
			gotUserID = userID
			return nil
		},
	}
	c := NewController(stub, store, testNamePattern)
	t.Cleanup(c.Close)

	if err := c.SelectPlayer("player-7"); err != nil {
		t.Fatalf("SelectPlayer: %v", err)
	}
	if err := c.ConfirmAssignment(context.Background()); err != nil {
		t.Fatalf("ConfirmAssignment after resume: %v", err)
	}
	if gotUserID != "user-42" {
		t.Fatalf("setPlayerId received user %q, want the checkpointed user", gotUserID)
	}
	if got := c.Stage(); got != StageDone {
		t.Fatalf("stage = %s, want %s", got, StageDone)
	}
}

func TestOperationsRejectWrongStage(t *testing.T) {
	c, _ := newTestController(t, &stubClient{})

	if err := c.SubmitPassword(context.Background(), "pass1234"); err != ErrWrongStage {
		t.Fatalf("SubmitPassword in PHONE = %v, want ErrWrongStage", err)
	}
	if err := c.SubmitCode(context.Background(), "123456"); err != ErrWrongStage {
		t.Fatalf("SubmitCode in PHONE = %v, want ErrWrongStage", err)
	}
	if err := c.SelectPlayer("player-1"); err != ErrWrongStage {
		t.Fatalf("SelectPlayer in PHONE = %v, want ErrWrongStage", err)
	}
	if err := c.Resend(context.Background()); err != ErrWrongStage {
		t.Fatalf("Resend in PHONE = %v, want ErrWrongStage", err)
	}
}
