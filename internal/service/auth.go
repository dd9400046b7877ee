package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/laundry_service/internal/domain"
	"github.com/Skotchmaster/laundry_service/internal/hash"
	"github.com/Skotchmaster/laundry_service/internal/models"
	"github.com/Skotchmaster/laundry_service/internal/repo"
	"github.com/Skotchmaster/laundry_service/pkg/tokens"
)

const DefaultTokenTTL = 24 * time.Hour

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
	Now       func() time.Time
}

func NewAuthService(r *repo.GormRepo, secret []byte, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{Repo: r, JWTSecret: secret, TokenTTL: ttl, Now: time.Now}
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, time.Time, *models.User, error) {
	u, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		return "", time.Time{}, nil, domain.ErrInvalidCredentials
	}

	token, exp, err := tokens.NewAccessToken(s.JWTSecret, u.ID, string(u.Role), clock(s.Now), s.TokenTTL)
	if err != nil {
		return "", time.Time{}, nil, fmt.Errorf("sign access token: %w", err)
	}
	return token, exp, u, nil
}
