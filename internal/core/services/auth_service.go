package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

// AuthService exchanges the owner password for an API token.
type AuthService struct {
	owner  domain.Owner
	tokens *TokenService
}

func NewAuthService(passwordHash string, tokens *TokenService) *AuthService {
	return &AuthService{
		owner:  domain.Owner{PasswordHash: passwordHash},
		tokens: tokens,
	}
}

func (s *AuthService) Login(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.owner.CheckPassword(password); err != nil {
		return "", err
	}
	return s.tokens.GenerateToken(domain.OwnerSubject)
}
