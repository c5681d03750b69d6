// Package auth issues and verifies the credentials fleet dashboard
// sessions run on: bcrypt password hashes and HMAC-signed JWTs.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/frotadev/fleet-manager/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
)

const defaultTokenTTL = 24 * time.Hour

// sessionClaims is the signed payload of a dashboard session token.
type sessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies dashboard session tokens.
type Service struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewService reads JWT_SECRET and JWT_TTL from the environment. The secret
// is mandatory; an unset TTL falls back to 24h.
func NewService() (*Service, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	ttl := defaultTokenTTL
	if raw := os.Getenv("JWT_TTL"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL %q: %w", raw, err)
		}
		ttl = parsed
	}

	return &Service{secret: []byte(secret), tokenTTL: ttl}, nil
}

// HashPassword hashes a password with bcrypt at the default cost.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func (s *Service) CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a session token for the given dashboard account.
func (s *Service) IssueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssueRefreshToken returns an opaque random token for session renewal.
func (s *Service) IssueRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("issue refresh token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// ValidateToken verifies a session token, with or without the "Bearer "
// prefix, and returns its claims.
func (s *Service) ValidateToken(raw string) (*models.Claims, error) {
	raw = strings.TrimPrefix(raw, "Bearer ")
	if raw == "" {
		return nil, ErrInvalidToken
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Subject == "" || claims.Username == "" {
		return nil, ErrInvalidToken
	}

	out := &models.Claims{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     models.Role(claims.Role),
	}
	if claims.ExpiresAt != nil {
		out.Exp = claims.ExpiresAt.Unix()
	}
	return out, nil
}

// CheckRegistration validates the credential fields of a new dashboard
// account request.
func (s *Service) CheckRegistration(req models.RegisterRequest) error {
	if n := len(req.Username); n < 3 || n > 50 {
		return errors.New("username must be between 3 and 50 characters")
	}
	if err := s.CheckEmail(req.Email); err != nil {
		return err
	}
	return s.CheckNewPassword(req.Password)
}

// CheckEmail does a shallow shape check on an email address.
func (s *Service) CheckEmail(email string) error {
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return errors.New("malformed email address")
	}
	return nil
}

// CheckNewPassword enforces the minimum password length.
func (s *Service) CheckNewPassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
