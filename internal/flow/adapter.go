package flow

import (
	"context"
	"errors"

	identityservice "roster-portal/internal/identity/service"
	playerservice "roster-portal/internal/player/service"
)

// ServiceClient adapts the auth and player services to the wizard's Client
// surface, translating their sentinel errors into the flow failure classes.
// It is stateless; the controller owns the authenticated user ID (and persists
// it through the checkpoint) and passes it back in for player assignment.
type ServiceClient struct {
	auth    *identityservice.AuthService
	players *playerservice.PlayerService
}

// NewServiceClient wires the wizard directly onto the in-process services.
func NewServiceClient(auth *identityservice.AuthService, players *playerservice.PlayerService) *ServiceClient {
	return &ServiceClient{auth: auth, players: players}
}

func (c *ServiceClient) CheckUsername(ctx context.Context, phone string) (*CheckResult, error) {
	res, err := c.auth.CheckUsername(ctx, phone)
	if err != nil {
		return nil, mapAuthErr(err)
	}
	return &CheckResult{Exists: res.Exists, HasPlayerAssignment: res.HasPlayerAssignment}, nil
}

func (c *ServiceClient) Login(ctx context.Context, phone, password string) (string, error) {
	res, err := c.auth.Login(ctx, phone, password)
	if err != nil {
		return "", mapAuthErr(err)
	}
	return res.UserID, nil
}

func (c *ServiceClient) SendRegistrationCode(ctx context.Context, phone string) error {
	_, err := c.auth.SendRegistrationCode(ctx, phone)
	return mapAuthErr(err)
}

func (c *ServiceClient) VerifyCode(ctx context.Context, phone, code string) error {
	return mapAuthErr(c.auth.VerifyRegistrationCode(ctx, phone, code))
}

func (c *ServiceClient) Register(ctx context.Context, phone, password, code, firstName, lastName string) (string, error) {
	res, err := c.auth.Register(ctx, phone, password, code, firstName, lastName)
	if err != nil {
		return "", mapAuthErr(err)
	}
	return res.UserID, nil
}

func (c *ServiceClient) SendPasswordResetCode(ctx context.Context, phone string) error {
	_, err := c.auth.SendPasswordResetCode(ctx, phone)
	return mapAuthErr(err)
}

func (c *ServiceClient) VerifyResetCode(ctx context.Context, phone, code, newPassword string) error {
	return mapAuthErr(c.auth.VerifyResetCode(ctx, phone, code, newPassword))
}

func (c *ServiceClient) SearchPlayers(ctx context.Context, query string) ([]Player, error) {
	found, err := c.players.Search(ctx, query)
	if err != nil {
		return nil, mapPlayerErr(err)
	}
	out := make([]Player, 0, len(found))
	for _, p := range found {
		out = append(out, Player{
			ID:           p.ID,
			FullName:     p.FullName(),
			ClubName:     p.ClubName,
			JerseyNumber: p.JerseyNumber,
		})
	}
	return out, nil
}

func (c *ServiceClient) SetPlayerID(ctx context.Context, userID, playerID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return mapPlayerErr(c.players.AssignSelf(ctx, userID, playerID))
}

func mapAuthErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, identityservice.ErrInvalidCredentials):
		return ErrUnauthorized
	case errors.Is(err, identityservice.ErrRateLimited):
		return ErrRateLimited
	case errors.Is(err, identityservice.ErrTooManyAttempts):
		return ErrRateLimited
	case errors.Is(err, identityservice.ErrCodeInvalid),
		errors.Is(err, identityservice.ErrCodeNotVerified):
		return ErrCodeInvalid
	case errors.Is(err, identityservice.ErrCodeExpired):
		return ErrCodeExpired
	case errors.Is(err, identityservice.ErrUserNotFound):
		return ErrNotFound
	case errors.Is(err, identityservice.ErrPhoneAlreadyRegistered):
		return ErrConflict
	}
	return err
}

func mapPlayerErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playerservice.ErrPlayerNotFound),
		errors.Is(err, playerservice.ErrUserNotFound):
		return ErrNotFound
	case errors.Is(err, playerservice.ErrAlreadyAssigned):
		return ErrConflict
	case errors.Is(err, playerservice.ErrSelfAssignmentDisabled):
		return ErrUnauthorized
	}
	return err
}
