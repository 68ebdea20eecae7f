package auth

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dcastroh/stockpilot-backend/internal/users"
	"github.com/dcastroh/stockpilot-backend/pkg/auth"
	"github.com/dcastroh/stockpilot-backend/pkg/config"
	"github.com/dcastroh/stockpilot-backend/pkg/db/models"
	apperrors "github.com/dcastroh/stockpilot-backend/pkg/errors"
	"github.com/dcastroh/stockpilot-backend/pkg/logger"
	"github.com/dcastroh/stockpilot-backend/pkg/security"
)

// LoginInput carries credentials for a sign-in attempt.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the issued token plus the account it belongs to.
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// Service handles staff authentication.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
}

type service struct {
	repo users.Repository
	jwt  config.JWTConfig
	now  func() time.Time
	logg *logger.Logger
}

// NewService builds the auth service.
func NewService(repo users.Repository, jwt config.JWTConfig, logg *logger.Logger) Service {
	if repo == nil {
		panic("auth: users repository is required")
	}
	return &service{repo: repo, jwt: jwt, now: time.Now, logg: logg}
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" || input.Password == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to load account")
	}
	if !user.IsActive {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "account is disabled")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to verify password")
	}
	if !ok {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "email", input.Email), "failed login attempt")
		}
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now().UTC()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "failed to mint access token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// login still succeeds; last_login_at is informational
		if s.logg != nil {
			s.logg.Error(s.logg.WithUserID(ctx, user.ID.String()), "failed to stamp last login", err)
		}
	} else {
		user.LastLoginAt = &now
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithUserID(ctx, user.ID.String()), map[string]any{
			"role": string(user.Role),
		})
		s.logg.Info(logCtx, "user logged in")
	}

	return &LoginResult{
		AccessToken: token,
		ExpiresAt:   now.Add(time.Duration(s.jwt.ExpirationMinutes) * time.Minute),
		User:        user,
	}, nil
}
