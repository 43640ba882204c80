package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var (
	// ErrInvalidToken reports a token that failed verification
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret rejects a verifier that would accept tokens signed with an empty key
	ErrEmptySecret = errors.New("jwt secret must not be empty")
)

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type cachedIdentity struct {
	identity  Identity
	expiresAt time.Time
}

// Verifier validates HS256 bearer tokens and caches the identities they carry
type Verifier struct {
	secret []byte
	cache  *expirable.LRU[string, cachedIdentity]
	parser *jwt.Parser
}

// NewVerifier creates a verifier; verified tokens stay cached for at most ttl
func NewVerifier(secret string, cacheSize int, ttl time.Duration) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if cacheSize < 1 {
		cacheSize = 1
	}
	return &Verifier{
		secret: []byte(secret),
		cache:  expirable.NewLRU[string, cachedIdentity](cacheSize, nil, ttl),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// Verify returns the identity of a valid token
func (v *Verifier) Verify(token string) (Identity, error) {
	if cached, ok := v.cache.Get(token); ok {
		if cached.expiresAt.IsZero() || time.Now().Before(cached.expiresAt) {
			return cached.identity, nil
		}
		v.cache.Remove(token)
	}

	var c claims
	parsed, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{ID: c.Subject, Email: c.Email}
	if id.Key() == "" {
		return Identity{}, fmt.Errorf("%w: no subject or email", ErrInvalidToken)
	}

	cached := cachedIdentity{identity: id}
	if c.ExpiresAt != nil {
		cached.expiresAt = c.ExpiresAt.Time
	}
	v.cache.Add(token, cached)
	return id, nil
}

// Issue mints a signed token for the identity
func (v *Verifier) Issue(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
