package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stockflows/backend/internal/domain/identity"
	"github.com/stockflows/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingOrgID     = errors.New("missing org_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims are the session token claims carried in the auth cookie
type Claims struct {
	jwt.RegisteredClaims
	OrgID    string `json:"org_id"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	BranchID string `json:"branch_id,omitempty"`
}

// JWTService issues and validates session tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.TokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// SessionInput contains the identity baked into a session token
type SessionInput struct {
	OrgID    uuid.UUID
	UserID   uuid.UUID
	Email    string
	Role     identity.Role
	BranchID *uuid.UUID
}

// Session is an issued token with its expiry
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Issue creates a signed session token for the given identity
func (s *JWTService) Issue(input SessionInput) (*Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OrgID:  input.OrgID.String(),
		UserID: input.UserID.String(),
		Email:  input.Email,
		Role:   string(input.Role),
	}
	if input.BranchID != nil {
		claims.BranchID = input.BranchID.String()
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// Validate parses and validates a session token and returns its claims
func (s *JWTService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.OrgID == "" {
		return nil, ErrMissingOrgID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}

	return claims, nil
}

// TokenExpiration returns the configured session lifetime
func (s *JWTService) TokenExpiration() time.Duration {
	return s.expiration
}

// OrgUUID parses the org ID from claims
func (c *Claims) OrgUUID() (uuid.UUID, error) {
	return uuid.Parse(c.OrgID)
}

// UserUUID parses the user ID from claims
func (c *Claims) UserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// BranchUUID parses the optional branch ID from claims, nil when absent
func (c *Claims) BranchUUID() (*uuid.UUID, error) {
	if c.BranchID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(c.BranchID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// UserRole returns the role carried in the claims
func (c *Claims) UserRole() identity.Role {
	return identity.Role(c.Role)
}

// RemainingTTL returns the time until the token expires, zero if already expired
func (c *Claims) RemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	remaining := time.Until(c.ExpiresAt.Time)
	if remaining < 0 {
		return 0
	}
	return remaining
}
