package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/auth"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/repomanager"
)

// UserService covers registration and login. Everything else about session
// management stays outside the core.
type UserService struct {
	repos           repomanager.RepositoryManager
	secretKey       []byte
	tokenValidity   time.Duration
	dailyVoiceLimit int
}

func NewUserService(repos repomanager.RepositoryManager, secretKey []byte, tokenValidity time.Duration, dailyVoiceLimit int) *UserService {
	return &UserService{
		repos:           repos,
		secretKey:       secretKey,
		tokenValidity:   tokenValidity,
		dailyVoiceLimit: dailyVoiceLimit,
	}
}

func (s *UserService) Register(ctx context.Context, username, password, defaultCurrency string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}
	if _, err := s.repos.Users().GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username already taken", common.ErrValidation)
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}

	user := &models.User{
		ID:              uuid.NewString(),
		Username:        username,
		PasswordHash:    hash,
		DefaultCurrency: defaultCurrency,
		DailyVoiceLimit: s.dailyVoiceLimit,
	}
	if err := s.repos.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login returns a signed access token for valid credentials.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repos.Users().GetByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return "", common.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", common.ErrUnauthorized
	}
	return auth.GenerateToken(user.ID, s.secretKey, s.tokenValidity)
}
