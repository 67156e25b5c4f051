package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"lis-backend/internal/model"
	"lis-backend/pkg/jwtutil"
)

// Fallback header accepted for compatibility with legacy clients that
// forward the authorization value in CGI meta style.
const fallbackAuthHeader = "HTTP_AUTHORIZATION"

const bearerPrefix = "Bearer "

// Strategy is the swappable authentication mechanism. A concrete
// implementation is selected once at process start; other mechanisms
// (OAuth2, LDAP, SAML) can implement it without touching business
// logic.
type Strategy interface {
	// Issue creates the credential pair for a user at login.
	Issue(user *model.User) (*jwtutil.TokenPair, error)

	// Authenticate resolves the acting identity from a request.
	// Requests to public paths return (nil, "", nil): no identity,
	// no failure.
	Authenticate(r *http.Request) (*Identity, string, error)
}

// JWTStrategy authenticates requests with signed bearer tokens.
type JWTStrategy struct {
	tokens      *jwtutil.Util
	users       UserStore
	publicPaths []string
}

// NewJWTStrategy creates a JWT-backed strategy. publicPaths are path
// prefixes that bypass authentication entirely (login, registration,
// health, docs).
func NewJWTStrategy(tokens *jwtutil.Util, users UserStore, publicPaths []string) *JWTStrategy {
	return &JWTStrategy{
		tokens:      tokens,
		users:       users,
		publicPaths: publicPaths,
	}
}

// Issue creates an access/refresh pair embedding the user's id and
// current role.
func (s *JWTStrategy) Issue(user *model.User) (*jwtutil.TokenPair, error) {
	return s.tokens.Issue(user.ID, user.Role)
}

// Authenticate extracts the bearer token, validates it and resolves
// the subject to a live user. On success it returns the identity and
// the raw credential string.
func (s *JWTStrategy) Authenticate(r *http.Request) (*Identity, string, error) {
	if s.isPublicPath(r.URL.Path) {
		return nil, "", nil
	}

	raw, err := extractBearerToken(r)
	if err != nil {
		return nil, "", err
	}

	claims, err := s.tokens.Validate(raw)
	if err != nil {
		// All validation failures collapse to one message so the
		// response cannot be used as an oracle.
		return nil, "", fmt.Errorf("%w: token expired or invalid", ErrAuthenticationFailed)
	}

	identity, err := Resolve(r.Context(), s.users, claims.UserID, claims.Role)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", fmt.Errorf("%w: user not found", ErrAuthenticationFailed)
		}
		// Storage fault, not an authentication decision. The caller
		// converts it to a safe generic failure.
		return nil, "", err
	}

	return identity, raw, nil
}

func (s *JWTStrategy) isPublicPath(path string) bool {
	for _, prefix := range s.publicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// extractBearerToken reads the Authorization header, falling back to
// the legacy header name. Missing header or wrong prefix fails before
// the validator is ever invoked.
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		header = r.Header.Get(fallbackAuthHeader)
	}

	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", fmt.Errorf("%w: authorization details is missing or invalid", ErrAuthenticationFailed)
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", fmt.Errorf("%w: authorization details is missing or invalid", ErrAuthenticationFailed)
	}

	return token, nil
}
