// Package auth mints and verifies the bearer tokens the sync server accepts
// on connect. Full accounts get access tokens; share links get guest tokens
// scoped to a single room.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	KindAccess = "access"
	KindGuest  = "guest"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the bearer-token claims the sync core reads: the subject, the
// token kind and, for guest tokens, the single room the token grants.
type Claims struct {
	Kind      string `json:"kind"`
	RoomScope string `json:"roomScope,omitempty"`
	jwt.RegisteredClaims
}

// CanJoin reports whether these claims allow joining a room. Access tokens
// may join any room; guest tokens only the room they are scoped to.
func (c *Claims) CanJoin(roomID string) bool {
	if c.Kind == KindGuest {
		return c.RoomScope == roomID
	}
	return true
}

// Sign issues an access token for a subject.
func Sign(secret []byte, subject string, ttl time.Duration) (string, error) {
	claims := &Claims{
		Kind: KindAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// SignGuest issues a guest token scoped to a single room.
func SignGuest(secret []byte, subject, roomID string, ttl time.Duration) (string, error) {
	claims := &Claims{
		Kind:      KindGuest,
		RoomScope: roomID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Verify parses and validates a token string. Malformed, expired or
// wrongly-signed tokens all come back as an error; the caller closes the
// connection and does not retry.
func Verify(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
