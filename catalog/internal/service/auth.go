package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"locallibrary/catalog/internal/errs"
	"locallibrary/catalog/internal/model"
	"locallibrary/catalog/internal/repository"
	"locallibrary/pkg/auth"
)

const sessionTTL = 24 * time.Hour

type AuthService struct {
	log  *zap.Logger
	repo repository.Repository
}

func NewAuthService(repo repository.Repository, log *zap.Logger) *AuthService {
	return &AuthService{
		log:  log,
		repo: repo,
	}
}

func (s *AuthService) Register(ctx context.Context, req model.UserCreateRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	role := req.Role
	if role == "" {
		role = auth.RoleMember
	}
	return s.repo.CreateUser(ctx, model.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Email:        req.Email,
		Role:         role,
	})
}

// Authorize checks credentials and issues a session token.
func (s *AuthService) Authorize(ctx context.Context, req model.AuthRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetUser(ctx, req.Username)
	if err != nil {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}

	token, expiresAt, err := auth.NewSessionToken(user.Username, user.Role, user.Email, sessionTTL)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{
		ExpiresAt:   expiresAt.Unix(),
		AccessToken: token,
	}, nil
}
