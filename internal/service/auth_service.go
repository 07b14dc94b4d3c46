package service

import (
	"context"
	"ctlab_backend/internal/config"
	"ctlab_backend/internal/model"
	"ctlab_backend/internal/repository"
	"ctlab_backend/internal/util"
	"ctlab_backend/pkg/logger"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *UserView `json:"user"`
}

// UserView is the public part of a user.
type UserView struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Theme     string     `json:"theme"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func NewUserView(u *model.User) *UserView {
	return &UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Theme:     u.Theme,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

type AuthService struct {
	UserRepo    *repository.UserRepository
	SessionRepo *repository.SessionRepository
	Cfg         *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, sessionRepo *repository.SessionRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:    userRepo,
		SessionRepo: sessionRepo,
		Cfg:         cfg,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*UserView, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	if len(username) < 3 || len(username) > 50 {
		return nil, util.NewError(util.KindInvalidInput, "username must be 3 to 50 characters")
	}
	if len(in.Password) < 8 {
		return nil, util.NewError(util.KindInvalidInput, "password must be at least 8 characters")
	}

	_, err := s.UserRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.DatabaseError("failed to check email", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, util.WrapError(util.KindInternal, "failed to hash password", err)
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
		Theme:    util.ThemeLight,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrEmailRegistered
		}
		return nil, util.DatabaseError("failed to create user", err)
	}

	logger.Log.Info("User registered", zap.Uint("user_id", user.ID))
	return NewUserView(user), nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.UserRepo.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, util.DatabaseError("failed to fetch user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, claims, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, util.WrapError(util.KindInternal, "failed to issue token", err)
	}

	now := time.Now()
	if err := s.UserRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		logger.Log.Warn("Failed to update last login", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      NewUserView(user),
	}, nil
}

// Authenticate parses the bearer token and rejects revoked ones.
// When the revocation store is unreachable a validly signed, unexpired token is accepted.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.Claims, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	revoked, err := s.SessionRepo.IsRevoked(ctx, claims.ID)
	if err != nil {
		logger.Log.Warn("Session store unavailable, skipping revocation check",
			zap.Uint("user_id", claims.UserID),
			zap.Error(err),
		)
		return claims, nil
	}
	if revoked {
		return nil, util.ErrTokenInvalid
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil || claims.ID == "" {
		return util.ErrTokenInvalid
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.SessionRepo.Revoke(ctx, claims.ID, ttl); err != nil {
		return util.WrapError(util.KindInternal, "failed to revoke session", err)
	}
	return nil
}
