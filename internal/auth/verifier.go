package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authorization header is missing")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims carries the caller identity extracted from a validated bearer token.
type Claims struct {
	SubjectID         string
	PreferredUsername string
	Roles             []string
}

func (c *Claims) IsAdmin() bool {
	for _, role := range c.Roles {
		if role == "admin" {
			return true
		}
	}
	return false
}

// Username returns the preferred username, falling back to "unknown" the way
// audit fields expect it.
func (c *Claims) Username() string {
	if c.PreferredUsername == "" {
		return "unknown"
	}
	return c.PreferredUsername
}

type tokenClaims struct {
	PreferredUsername string   `json:"preferred_username"`
	Roles             []string `json:"roles"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens issued by the identity provider.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		now:      time.Now,
	}
}

func (v *Verifier) ParseAndValidate(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	}, jwt.WithAudience(v.audience), jwt.WithIssuer(v.issuer), jwt.WithTimeFunc(v.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return &Claims{
		SubjectID:         tc.Subject,
		PreferredUsername: tc.PreferredUsername,
		Roles:             tc.Roles,
	}, nil
}
