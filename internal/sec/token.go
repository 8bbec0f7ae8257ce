package sec

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long a minted session token stays valid.
const SessionTTL = 7 * 24 * time.Hour

// Token codec errors.
var (
	ErrEmptySecret  = errors.New("jwt secret is empty")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity represents the authenticated caller extracted from a session
// token.
type Identity struct {
	ID       int64
	Username string
	Role     string
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// IsStaff reports whether the identity may perform staff actions. Admins are
// a superset of staff.
func (id Identity) IsStaff() bool { return id.Role == RoleStaff || id.Role == RoleAdmin }

// Account roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

type sessionClaims struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken mints an HS256 session token carrying the identity, expiring
// after ttl.
func SignToken(identity Identity, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := sessionClaims{
		ID:       identity.ID,
		Username: identity.Username,
		Role:     identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates a session token and extracts the identity. Expired,
// malformed, or foreign-signature tokens all return an error.
func ParseToken(token, secret string) (Identity, error) {
	if secret == "" {
		return Identity{}, ErrEmptySecret
	}

	tok, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = ErrInvalidToken
		}
		return Identity{}, err
	}
	claims, _ := tok.Claims.(*sessionClaims)
	if claims == nil || claims.Username == "" || claims.Role == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		ID:       claims.ID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
