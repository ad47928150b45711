package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthConfig holds the token settings of AuthService.
type AuthConfig struct {
	JWTSecret      string
	Issuer         string
	AccessTokenTTL time.Duration
}

type authServiceImpl struct {
	cfg       AuthConfig
	tokenRepo interfaces.TokenRepository
	logger    *zap.Logger
	now       func() time.Time
}

// Compile-time check
var _ AuthService = (*authServiceImpl)(nil)

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthConfig, tokenRepo interfaces.TokenRepository, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		cfg:       cfg,
		tokenRepo: tokenRepo,
		logger:    logger.Named("AuthService"),
		now:       time.Now,
	}
}

// IssueAccessToken signs an access token for user and records it in the token store.
func (s *authServiceImpl) IssueAccessToken(ctx context.Context, user *models.UserData) (*models.LoginResult, error) {
	if user == nil {
		return nil, models.ErrUnauthorized
	}
	log := s.logger.With(zap.Int64("userID", user.UserID))

	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)
	tokenID := uuid.New().String()

	claims := &models.Claims{
		UserID:   user.UserID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   strconv.FormatInt(user.UserID, 10),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		log.Error("Failed to sign access token", zap.Error(err))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	if err := s.tokenRepo.SetToken(ctx, user.UserID, tokenID, s.cfg.AccessTokenTTL); err != nil {
		log.Error("Failed to store access token", zap.Error(err))
		return nil, fmt.Errorf("failed to store access token: %w", err)
	}

	log.Debug("Access token issued", zap.String("tokenID", tokenID))
	return &models.LoginResult{User: user, JWT: signed, ExpiresAt: expiresAt.Unix()}, nil
}

// VerifyAccessToken parses the token and checks that it has not been revoked.
func (s *authServiceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithIssuer(s.cfg.Issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			s.logger.Debug("Access token expired")
			return nil, models.ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenMalformed) {
			s.logger.Warn("Access token malformed")
			return nil, models.ErrTokenMalformed
		}
		s.logger.Warn("Failed to parse access token", zap.Error(err))
		return nil, models.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, models.ErrTokenInvalid
	}

	if _, err := s.tokenRepo.GetUserIDByTokenID(ctx, claims.ID); err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Debug("Access token revoked", zap.String("tokenID", claims.ID))
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error checking access token existence: %w", err)
	}
	return claims, nil
}

// Logout revokes the token carried by claims. Revoking an unknown token is not an error.
func (s *authServiceImpl) Logout(ctx context.Context, claims *models.Claims) error {
	if claims == nil || claims.ID == "" {
		return models.ErrTokenInvalid
	}
	deleted, err := s.tokenRepo.DeleteToken(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Failed to revoke access token", zap.String("tokenID", claims.ID), zap.Error(err))
		return fmt.Errorf("failed to revoke access token: %w", err)
	}
	s.logger.Info("User logged out", zap.Int64("userID", claims.UserID), zap.Int64("revoked", deleted))
	return nil
}
