package service

import (
	"context"
	"errors"

	"roster-portal/internal/player/domain"
	"roster-portal/internal/policy/engine"
	userdomain "roster-portal/internal/user/domain"
	userrepository "roster-portal/internal/user/repository"
)

// Sentinel errors for the player service; handler maps them to HTTP status codes.
var (
	ErrPlayerNotFound         = errors.New("player not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrAlreadyAssigned        = errors.New("account already linked to a player")
	ErrSelfAssignmentDisabled = errors.New("self assignment is disabled by policy")
)

// searchLimit caps results per query; the picker UI shows a short list.
const searchLimit = 20

// PlayerRepo is the minimal player repository needed by the player service.
type PlayerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Player, error)
	Search(ctx context.Context, query string, limit int) ([]*domain.Player, error)
}

// UserRepo is the minimal user repository needed by the player service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	SetPlayerID(ctx context.Context, userID, playerID string, onlyIfUnset bool) error
}

// PlayerService implements roster search and linking accounts to players.
type PlayerService struct {
	playerRepo PlayerRepo
	userRepo   UserRepo
	policies   engine.Evaluator
}

// NewPlayerService returns a PlayerService with the given dependencies.
func NewPlayerService(playerRepo PlayerRepo, userRepo UserRepo, policies engine.Evaluator) *PlayerService {
	return &PlayerService{
		playerRepo: playerRepo,
		userRepo:   userRepo,
		policies:   policies,
	}
}

// Search returns roster players matching the free-text query. An empty query
// returns no results rather than the whole roster.
func (s *PlayerService) Search(ctx context.Context, query string) ([]*domain.Player, error) {
	if query == "" {
		return nil, nil
	}
	return s.playerRepo.Search(ctx, query, searchLimit)
}

// AssignSelf links the calling user's account to a roster player. The link is
// one-time: an account that already has a player keeps it and gets
// ErrAlreadyAssigned.
func (s *PlayerService) AssignSelf(ctx context.Context, userID, playerID string) error {
	decision, err := s.policies.EvaluateOnboarding(ctx, "", "assign")
	if err != nil {
		return err
	}
	if !decision.AllowSelfAssignment {
		return ErrSelfAssignmentDisabled
	}
	return s.assign(ctx, userID, playerID, true)
}

// AdminAssign links any user's account to a roster player. Unlike AssignSelf
// it may overwrite an existing link.
func (s *PlayerService) AdminAssign(ctx context.Context, userID, playerID string) error {
	return s.assign(ctx, userID, playerID, false)
}

func (s *PlayerService) assign(ctx context.Context, userID, playerID string, onlyIfUnset bool) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return err
	}
	if player == nil {
		return ErrPlayerNotFound
	}
	if err := s.userRepo.SetPlayerID(ctx, userID, playerID, onlyIfUnset); err != nil {
		if errors.Is(err, userrepository.ErrPlayerAlreadyAssigned) {
			return ErrAlreadyAssigned
		}
		return err
	}
	return nil
}
