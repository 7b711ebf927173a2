package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillmed/chartextract/internal/audit"
	"github.com/quillmed/chartextract/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAuthNotConfigured  = errors.New("auth is not configured")
)

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service authenticates the single operator account and issues bearer
// tokens for the API.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

type service struct {
	cfg   config.AuthConfig
	audit audit.Service
}

func NewService(cfg config.AuthConfig, auditService audit.Service) Service {
	return &service{cfg: cfg, audit: auditService}
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if s.cfg.Username == "" || s.cfg.PasswordHash == "" || s.cfg.JWTSecret == "" {
		return "", ErrAuthNotConfigured
	}

	if username != s.cfg.Username ||
		bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)) != nil {
		s.audit.LogEvent(ctx, &audit.Event{
			EventType: audit.EventLogin,
			UserID:    username,
			Action:    "LOGIN",
			Resource:  "auth",
			Status:    "failure",
		})
		return "", ErrInvalidCredentials
	}

	expiry := s.cfg.TokenExpiry
	if expiry == 0 {
		expiry = 24 * time.Hour
	}

	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", err
	}

	s.audit.LogEvent(ctx, &audit.Event{
		EventType: audit.EventLogin,
		UserID:    username,
		Action:    "LOGIN",
		Resource:  "auth",
		Status:    "success",
	})

	return token, nil
}

func (s *service) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if s.cfg.JWTSecret == "" {
		return nil, ErrAuthNotConfigured
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
