package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const minPasswordLen = 6

type UserRepo interface {
	CreateUserWithCart(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	FindRefreshByJTI(ctx context.Context, jti string) (*models.RefreshToken, error)
	SaveRefreshToken(ctx context.Context, t *models.RefreshToken) error
	RotateRefreshToken(ctx context.Context, oldJTI string, next *models.RefreshToken) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

type AuthService struct {
	Repo   UserRepo
	Events EventPublisher

	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	now func() time.Time
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

func (s *AuthService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Register creates the user and its empty cart atomically.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("password is required: %w", ErrValidation)
	}
	if len([]rune(password)) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUserWithCart(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("a user with that username already exists: %w", ErrValidation)
		}
		return nil, err
	}

	l.Info("user_registered", "user_id", user.ID)
	publish(ctx, s.Events, TopicUsers, user.ID, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}

	res, next, err := s.issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveRefreshToken(ctx, next); err != nil {
		return nil, err
	}
	return res, nil
}

// Refresh exchanges a live refresh token for a new pair. The presented token
// is revoked in the same transaction that stores its successor.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
	}

	stored, err := s.Repo.FindRefreshByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown jti", ErrInvalidRefreshToken)
		}
		return nil, err
	}
	presented := tokens.Sha256Hex(refreshToken)
	if stored.UserID != userID || subtle.ConstantTimeCompare([]byte(stored.Token), []byte(presented)) != 1 {
		return nil, fmt.Errorf("%w: token does not match its record", ErrInvalidRefreshToken)
	}

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d no longer exists", ErrInvalidRefreshToken, userID)
		}
		return nil, err
	}

	res, next, err := s.issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, claims.ID, next); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRefreshToken, err)
		}
		return nil, err
	}
	return res, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, tokens.Sha256Hex(refreshToken))
}

func (s *AuthService) issue(userID uint, username string) (*LoginResult, *models.RefreshToken, error) {
	now := s.clock()

	access, accessExp, err := tokens.SignAccess(userID, username, s.JWTSecret, now, s.AccessTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("sign access token: %w", err)
	}
	jti := tokens.NewJTI()
	refresh, refreshExp, err := tokens.SignRefresh(userID, jti, s.RefreshSecret, now, s.RefreshTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("sign refresh token: %w", err)
	}

	stored := &models.RefreshToken{
		Token:     tokens.Sha256Hex(refresh),
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: refreshExp.UTC(),
	}
	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, stored, nil
}
