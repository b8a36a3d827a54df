package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"geostrat/config"
	"geostrat/internal/api"
)

var _ Service = (*ServiceImpl)(nil)

// Service issues and verifies identity tokens.
type Service interface {
	// Login issues a signed token embedding the username with the configured TTL.
	Login(ctx context.Context, username string) (string, error)
	// Verify checks signature and expiry and returns the embedded username.
	Verify(tokenString string) (string, error)
}

type ServiceImpl struct {
	logger *slog.Logger
	cfg    config.AuthConfig
}

func NewService(cfg config.AuthConfig, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger: logger,
		cfg:    cfg,
	}
}

func (s *ServiceImpl) Login(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("username is required: %w", api.ErrBadRequest)
	}

	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.InfoContext(ctx, "Identity token issued",
		slog.String("username", username),
		slog.Time("expires_at", claims.ExpiresAt.Time),
	)
	return signed, nil
}

func (s *ServiceImpl) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("missing token: %w", api.ErrUnauthenticated)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		reason := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "token expired"
		} else if errors.Is(err, jwt.ErrSignatureInvalid) {
			reason = "invalid token signature"
		}
		return "", fmt.Errorf("%s: %w", reason, api.ErrUnauthenticated)
	}
	if !token.Valid || claims.Username == "" {
		return "", fmt.Errorf("invalid token claims: %w", api.ErrUnauthenticated)
	}
	if s.cfg.Issuer != "" && claims.Issuer != s.cfg.Issuer {
		return "", fmt.Errorf("invalid token issuer: %w", api.ErrUnauthenticated)
	}

	return claims.Username, nil
}
