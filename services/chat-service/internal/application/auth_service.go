package application

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"local-chat/services/chat-service/internal/application/dto"
	"local-chat/services/chat-service/internal/domain"
	"local-chat/services/chat-service/internal/session"

	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type AuthService struct {
	userRepo        domain.UserRepository
	tokenService    domain.TokenService
	passwordService domain.PasswordService
}

func NewAuthService(
	userRepo domain.UserRepository,
	tokenService domain.TokenService,
	passwordService domain.PasswordService,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		tokenService:    tokenService,
		passwordService: passwordService,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterReq) (*dto.RegisterResp, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.passwordService.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	}
	if err := s.userRepo.Save(ctx, u); err != nil {
		return nil, err
	}
	return &dto.RegisterResp{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}

// Login answers ErrInvalidCredentials for both an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginReq) (*dto.LoginResp, error) {
	u, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.passwordService.Compare(u.PasswordHash, req.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(u.ID, u.Email)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResp, error) {
	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	u, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return s.issue(u.ID, u.Email)
}

// Authenticate turns a bearer access token into the calling Principal.
func (s *AuthService) Authenticate(token string) (session.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return session.Principal{}, domain.ErrUnauthenticated
	}
	claims, err := s.tokenService.ValidateAccessToken(token)
	if err != nil {
		return session.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return session.Principal{UserID: claims.UserID, Email: claims.Email}, nil
}

func (s *AuthService) issue(userID, email string) (*dto.LoginResp, error) {
	access, err := s.tokenService.GenerateAccessToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tokenService.GenerateRefreshToken(userID, email)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &dto.LoginResp{
		AccessToken:  access.Token,
		RefreshToken: refresh.Token,
		ExpiresAt:    access.ExpiresAt.Unix(),
		UserID:       userID,
	}, nil
}
