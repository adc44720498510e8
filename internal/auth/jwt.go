// Package auth provides password hashing, JWT issuance/verification,
// and the access-control rules for the messaging API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Client POSTs /auth/register or /auth/login with a username/password
// 2. The Authenticator verifies the credentials and the server issues a JWT
// 3. On subsequent API calls, middleware reads the Authorization header,
//    verifies the JWT, and sets the username in the request context
// 4. Handlers consult the Can* predicates before touching any resource
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't need to store
// session data. All the information needed (username, expiry) is inside
// the signed token. The signature ensures nobody can tamper with it
// without the secret key. The tradeoff is revocation: a stolen token
// stays valid until it expires, because there is no session table to
// delete it from.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/messagely/internal/apperror"
)

const issuer = "messagely"

// TokenService issues and verifies the JWTs that carry a user's
// identity between requests.
//
// It holds the HMAC secret used to sign and verify tokens. The secret
// is process-wide configuration loaded once at startup and never
// changes during a process lifetime — construct one TokenService and
// share it.
type TokenService struct {
	secret []byte
	ttl    time.Duration // zero disables expiry
}

// NewTokenService creates a TokenService with the given secret and
// token lifetime. A zero ttl issues non-expiring tokens.
//
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims which
// includes standard fields like Issuer, Subject, ExpiresAt, IssuedAt.
//
// We use "sub" (Subject) to store the username — the standard JWT claim
// for identifying who the token belongs to.
type claims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a JWT binding the given username.
//
// The expiry claim is set only when the service was configured with a
// TTL; without one, tokens live until the signing key changes.
//
// Signing algorithm: HS256 (HMAC-SHA256)
// - Symmetric: same key for signing and verifying
// - Fast and simple — good for single-server deployments
func (s *TokenService) Issue(username string) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
			Issuer:   issuer,
		},
	}
	if s.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a JWT string and returns the username it
// binds.
//
// Failures map onto the closed taxonomy:
//   - signature mismatch → apperror.ErrInvalidSignature
//   - expired (when expiry is enabled) → apperror.ErrExpired
//   - anything unparseable → apperror.ErrMalformed
//
// On success the embedded username is returned unchanged. Verify does
// NOT re-check that the user still exists — the token was valid at
// issuance, and freshness is the caller's concern if it matters.
//
// ALGORITHM CONFUSION ATTACK:
// Without pinning the algorithm, an attacker could send a token signed
// with "none" and the library might accept it. Passing
// jwt.WithValidMethods prevents this.
func (s *TokenService) Verify(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
	}
	if s.ttl > 0 {
		// With expiry enabled, a token without an exp claim must be
		// rejected too, or tokens minted before expiry was turned on
		// would stay valid forever.
		opts = append(opts, jwt.WithExpirationRequired())
	}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		opts...,
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", apperror.InvalidSignature()
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", apperror.Expired()
		default:
			return "", apperror.Malformed()
		}
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", apperror.Malformed()
	}

	if c.Subject == "" {
		return "", apperror.Malformed()
	}

	return c.Subject, nil
}
