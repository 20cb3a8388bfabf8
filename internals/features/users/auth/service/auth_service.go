package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	authModel "shopfloor_backend/internals/features/users/auth/model"
	"shopfloor_backend/internals/helpers/apperr"
)

// ErrInvalidCredentials covers unknown usernames and wrong passwords alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Store finders return (nil, nil) when missing.
type Store interface {
	FindTeamUserByUsername(ctx context.Context, username string) (*authModel.TeamUserModel, error)
	FindTeamUser(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error)
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *authModel.TeamUserModel
}

type Service struct {
	store  Store
	tokens *TokenService
	log    zerolog.Logger
}

func NewService(store Store, tokens *TokenService, logger zerolog.Logger) *Service {
	return &Service{store: store, tokens: tokens, log: logger.With().Str("component", "auth").Logger()}
}

func (s *Service) Tokens() *TokenService { return s.tokens }

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.store.FindTeamUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil || !CheckPassword(u.TeamUserPasswordHash, password) {
		s.log.Info().Str("username", username).Msg("login refused")
		return nil, ErrInvalidCredentials
	}
	if !u.TeamUserIsActive {
		return nil, apperr.Forbidden("account %s is disabled", u.TeamUserUsername)
	}

	tok, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("team_user_id", u.TeamUserID.String()).Str("role", u.TeamUserRole).Msg("login")
	return &LoginResult{AccessToken: tok, ExpiresAt: exp, User: u}, nil
}

// Me returns the account behind a token; disabled accounts are refused.
func (s *Service) Me(ctx context.Context, id uuid.UUID) (*authModel.TeamUserModel, error) {
	u, err := s.store.FindTeamUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("team user %s not found", id)
	}
	if !u.TeamUserIsActive {
		return nil, apperr.Forbidden("account %s is disabled", u.TeamUserUsername)
	}
	return u, nil
}

// IsActive backs the per-request account check of the JWT middleware.
func (s *Service) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	u, err := s.store.FindTeamUser(ctx, id)
	if err != nil {
		return false, err
	}
	return u != nil && u.TeamUserIsActive, nil
}
