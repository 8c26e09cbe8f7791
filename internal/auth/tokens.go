package auth

import (
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims are the JWT claims of a session access token. The sid claim
// names the redis session record the token is bound to; revoking the session
// invalidates the token regardless of its expiry.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies session access tokens. Verification uses
// an HMAC secret by default, or a remote JWKS when a JWKS URL is configured
// (deployments that delegate signing to an external identity provider).
type TokenManager struct {
	secret  []byte
	keyFunc jwt.Keyfunc
	ttl     time.Duration
}

// NewTokenManager builds a TokenManager. jwksURL may be empty.
func NewTokenManager(secret string, jwksURL string, ttl time.Duration) (*TokenManager, error) {
	m := &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
	}

	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:  time.Hour,
			RefreshRateLimit: time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("loading JWKS from %s: %w", jwksURL, err)
		}
		m.keyFunc = jwks.Keyfunc
		return m, nil
	}

	m.keyFunc = func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}
	return m, nil
}

// Issue signs an access token for the given user bound to a session record.
func (m *TokenManager) Issue(userID uuid.UUID, sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token and returns its claims.
func (m *TokenManager) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token not valid")
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("token missing session binding")
	}
	return claims, nil
}
