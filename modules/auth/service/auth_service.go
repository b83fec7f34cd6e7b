package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"timechart/core/config"
	"timechart/core/constants"
	"timechart/core/errors"
	"timechart/core/logger"
	"timechart/core/utils"
	"timechart/modules/auth/dto"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, *errors.AppError)
}

// AuthService authenticates the administrator account configured in the
// environment and issues the admin-scoped API token.
type AuthService struct {
	cfg config.AuthConfig
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{cfg: cfg}
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, *errors.AppError) {
	_, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if req.Username == "" || req.Password == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "username and password are required", nil)
	}
	if req.Username != s.cfg.AdminUsername {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid credentials", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("AuthService:Login:BadPassword", "username", req.Username)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "invalid credentials", nil)
	}

	token, err := utils.GenerateToken(req.Username, constants.ScopeTokenAdmin)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "issue token failed", err)
	}
	return &dto.LoginResponse{
		Token:     token,
		ExpiresIn: s.cfg.TokenTTLMinutes * 60,
	}, nil
}
