package service

import (
	"context"
	"fmt"

	"dmserver/internal/domain"
	"dmserver/internal/security"
)

// AuthService handles registration, login, and logout. Presence transitions
// on login/logout go through the PresenceTracker, which owns them.
type AuthService struct {
	users    domain.UserStore
	presence *PresenceTracker
	tokens   *security.TokenService
	hash     *security.PasswordHasher
}

func NewAuthService(
	users domain.UserStore,
	presence *PresenceTracker,
	tokens *security.TokenService,
	hash *security.PasswordHasher,
) *AuthService {
	return &AuthService{
		users:    users,
		presence: presence,
		tokens:   tokens,
		hash:     hash,
	}
}

type RegisterInput struct {
	Nickname string
	FullName string
	Password string
}

type LoginInput struct {
	Nickname string
	Password string
}

type TokenResponse struct {
	AccessToken string
	TokenType   string
	User        *domain.User
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Nickname == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: nickname and password are required", domain.ErrInvalidInput)
	}

	if existing, err := s.users.FindByNickname(ctx, in.Nickname); err != nil {
		return nil, fmt.Errorf("check nickname: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: nickname %q", domain.ErrConflict, in.Nickname)
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Nickname:       in.Nickname,
		FullName:       in.FullName,
		HashedPassword: hashed,
		Status:         domain.StatusOffline,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*TokenResponse, error) {
	user, err := s.users.FindByNickname(ctx, in.Nickname)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: incorrect nickname or password", domain.ErrUnauthorized)
	}

	if err := s.hash.Verify(in.Password, user.HashedPassword); err != nil {
		return nil, fmt.Errorf("%w: incorrect nickname or password", domain.ErrUnauthorized)
	}

	if err := s.presence.SetOnline(ctx, user.Nickname); err != nil {
		return nil, fmt.Errorf("set online: %w", err)
	}
	user.Status = domain.StatusOnline

	token, err := s.tokens.CreateForUser(user.Nickname)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, nickname string) error {
	return s.presence.SetOffline(ctx, nickname)
}
