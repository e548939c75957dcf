package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/domains/auth/model"
	"portfolio-backend/pkg/cache"
	"portfolio-backend/pkg/jwt"
)

type AuthService interface {
	// Login checks the admin credential. clientIP keys the failed-login lockout.
	Login(ctx context.Context, req model.LoginRequest, clientIP string) (*model.LoginResponse, error)
}

type TokenIssuer interface {
	GenerateAccessToken(subject, role string) (string, time.Time, error)
}

type authService struct {
	admin   config.AdminConfig
	tokens  TokenIssuer
	lockout *loginLockout
}

// NewAuthService builds the admin login service. A nil cache disables the lockout.
func NewAuthService(admin config.AdminConfig, tokens TokenIssuer, c cache.Cache) AuthService {
	return &authService{admin: admin, tokens: tokens, lockout: newLoginLockout(c, admin)}
}

func (s *authService) Login(ctx context.Context, req model.LoginRequest, clientIP string) (*model.LoginResponse, error) {
	if s.admin.PasswordHash == "" {
		return nil, model.ErrLoginDisabled
	}
	if remaining, locked := s.lockout.locked(ctx, clientIP); locked {
		return nil, &model.LoginLockedError{RetryAfter: remaining}
	}
	if err := req.Validate(); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if req.Username != "" && subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.admin.Username)) != 1 {
		log.Warn().Str("ip", clientIP).Msg("Admin login rejected: unknown username")
		s.lockout.recordFailure(ctx, clientIP)
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(req.Password)); err != nil {
		log.Warn().Str("ip", clientIP).Msg("Admin login rejected: wrong password")
		s.lockout.recordFailure(ctx, clientIP)
		return nil, model.ErrInvalidCredentials
	}
	s.lockout.reset(ctx, clientIP)

	token, expiresAt, err := s.tokens.GenerateAccessToken(s.admin.Username, jwt.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	log.Info().Str("username", s.admin.Username).Msg("Admin logged in")
	return &model.LoginResponse{AccessToken: token, TokenType: "Bearer", ExpiresAt: expiresAt}, nil
}
