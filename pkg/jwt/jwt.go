package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "ironforge-gym-admin"

// TokenType represents the type of JWT token
type TokenType string

const (
	SessionToken TokenType = "session"
)

// SubjectType tells whether a token belongs to a staff user or a member
type SubjectType string

const (
	SubjectStaff  SubjectType = "staff"
	SubjectMember SubjectType = "member"
)

// ErrTokenExpired is returned by ValidateSessionToken for tokens past their expiry
var ErrTokenExpired = errors.New("token expired")

// Claims represents the JWT claims structure.
// RegisteredClaims.ID carries the server-side session id.
type Claims struct {
	SubjectID   uuid.UUID   `json:"subject_id"`
	SubjectType SubjectType `json:"subject_type"`
	Role        string      `json:"role"`
	Email       string      `json:"email"`
	TokenType   TokenType   `json:"token_type"`
	jwt.RegisteredClaims
}

// SessionID returns the session the token was issued for
func (c *Claims) SessionID() (uuid.UUID, error) {
	return uuid.Parse(c.ID)
}

// Service handles JWT operations
type Service struct {
	secret        string
	sessionExpiry time.Duration
}

// NewService creates a new JWT service
func NewService(secret string, sessionExpiry time.Duration) *Service {
	return &Service{
		secret:        secret,
		sessionExpiry: sessionExpiry,
	}
}

// SessionExpiry is the lifetime of newly issued session tokens
func (s *Service) SessionExpiry() time.Duration {
	return s.sessionExpiry
}

// GenerateSessionToken signs a session token that expires at expiresAt
func (s *Service) GenerateSessionToken(sessionID, subjectID uuid.UUID, subjectType SubjectType, role, email string, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		SubjectID:   subjectID,
		SubjectType: subjectType,
		Role:        role,
		Email:       email,
		TokenType:   SessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    issuer,
			Subject:   subjectID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken verifies the signature, expiry and type of a session token.
// Expired tokens return an error wrapping ErrTokenExpired.
func (s *Service) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.TokenType != SessionToken {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", SessionToken, claims.TokenType)
	}

	if _, err := claims.SessionID(); err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}

	return claims, nil
}

// ExtractClaims extracts claims from a token without validation (for debugging)
func (s *Service) ExtractClaims(tokenString string) (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// IsTokenExpired checks if a token is expired
func (s *Service) IsTokenExpired(tokenString string) bool {
	claims, err := s.ExtractClaims(tokenString)
	if err != nil {
		return true
	}

	if claims.ExpiresAt == nil {
		return true
	}

	return claims.ExpiresAt.Time.Before(time.Now())
}
