package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager signs and verifies the two JWT kinds this service issues:
// session tokens (login) and share capability tokens (a remembered password
// check, bounded by its own expiry). Both are HS256 over the same secret but
// carry distinct kind claims so one can never stand in for the other.
type TokenManager struct {
	secret        []byte
	sessionTTL    time.Duration
	capabilityTTL time.Duration
}

const (
	kindSession    = "session"
	kindCapability = "share_capability"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongShare   = errors.New("capability issued for a different share")
)

// SessionClaims are the verified contents of a session token.
type SessionClaims struct {
	UserID string
	Email  string
}

type sessionJWTClaims struct {
	Kind  string `json:"kind"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type capabilityJWTClaims struct {
	Kind     string `json:"kind"`
	ShareKey string `json:"share_key"`
	jwt.RegisteredClaims
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string, sessionTTL, capabilityTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:        []byte(secret),
		sessionTTL:    sessionTTL,
		capabilityTTL: capabilityTTL,
	}
}

// IssueSession signs a session token for the user.
func (m *TokenManager) IssueSession(userID, email string) (string, error) {
	now := time.Now().UTC()
	claims := sessionJWTClaims{
		Kind:  kindSession,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ParseSession validates a session token's signature and expiry.
func (m *TokenManager) ParseSession(raw string) (*SessionClaims, error) {
	var claims sessionJWTClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Kind != kindSession {
		return nil, ErrInvalidToken
	}
	return &SessionClaims{UserID: claims.Subject, Email: claims.Email}, nil
}

// IssueCapability signs a short-lived capability asserting a successful
// password check for one share key. The expiry is embedded in the token and
// verified server-side; the transport (cookie) carries no authority itself.
func (m *TokenManager) IssueCapability(shareKey string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(m.capabilityTTL)
	claims := capabilityJWTClaims{
		Kind:     kindCapability,
		ShareKey: shareKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyCapability checks signature, expiry, kind, and that the capability
// was issued for the given share key.
func (m *TokenManager) VerifyCapability(raw, shareKey string) error {
	var claims capabilityJWTClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return err
	}
	if !tkn.Valid || claims.Kind != kindCapability {
		return ErrInvalidToken
	}
	if claims.ShareKey != shareKey {
		return ErrWrongShare
	}
	return nil
}

// CapabilityCookieName derives the per-share cookie name. The share key is
// already URL-safe, so it is embedded directly.
func CapabilityCookieName(shareKey string) string {
	return "share_pw_" + shareKey
}
