package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("token: no token stored")

// Identity is what the bearer token claims about its owner. The claims are
// decoded without signature verification: the server is the only party that
// validates tokens, the client just needs the subject and expiry.
type Identity struct {
	Username  string
	ExpiresAt time.Time
}

func (id *Identity) Expired() bool {
	return !id.ExpiresAt.IsZero() && time.Now().After(id.ExpiresAt)
}

// Identity decodes the stored token's claims.
func (s *Store) Identity() (*Identity, error) {
	tok := s.Load()
	if tok == "" {
		return nil, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil, err
	}

	id := &Identity{}
	if sub, err := claims.GetSubject(); err == nil {
		id.Username = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}
