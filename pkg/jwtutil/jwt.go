package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidCredential covers every token validation failure. Malformed,
// expired and badly-signed tokens are indistinguishable to the caller;
// the wrapped detail is for internal logging only.
var ErrInvalidCredential = errors.New("invalid credential")

// Token types embedded in the token_type claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Config holds JWT configuration.
type Config struct {
	SigningKey string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// UserClaims represents the JWT claims for user authentication.
// Role is frozen at issuance: a role change takes effect only after
// the user re-authenticates.
type UserClaims struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair bundles the short-lived access token with the long-lived
// refresh token issued at login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Util is a utility for JWT token operations.
type Util struct {
	config *Config
	now    func() time.Time
}

// New creates a new JWT utility with the given configuration.
func New(config *Config) *Util {
	return &Util{config: config, now: time.Now}
}

// Issue creates an access/refresh token pair for the given subject.
// Pure function of subject + signing key + clock, nothing is stored
// server-side.
func (u *Util) Issue(userID uint, role string) (*TokenPair, error) {
	access, err := u.sign(userID, role, TokenTypeAccess, u.config.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := u.sign(userID, role, TokenTypeRefresh, u.config.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (u *Util) sign(userID uint, role, tokenType string, ttl time.Duration) (string, error) {
	if u.config == nil || u.config.SigningKey == "" {
		return "", errors.New("JWT configuration not provided")
	}

	now := u.now()
	claims := UserClaims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.SigningKey))
}

// Validate parses and verifies the token: structure, signature
// authenticity, expiry, and presence of the subject claim, in that
// order. Any failure collapses to ErrInvalidCredential.
func (u *Util) Validate(tokenString string) (*UserClaims, error) {
	if u.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(u.config.SigningKey), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredential
	}

	// A well-formed token without a subject is still unusable.
	if claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidCredential)
	}

	return claims, nil
}
