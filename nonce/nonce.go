// Package nonce issues and verifies per-session anti-forgery tokens for form
// submissions.
package nonce

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"
)

var ErrInvalid = errors.New("nonce: invalid token")

// DefaultMaxAge matches the lifetime of a WordPress nonce.
const DefaultMaxAge = 24 * time.Hour

// An Issuer creates tokens bound to an action and a visitor session, and
// verifies them.
type Issuer struct {
	codec *securecookie.SecureCookie
}

// New returns an Issuer that signs tokens with hashKey. Tokens older than
// maxAge fail verification; a maxAge of zero means DefaultMaxAge.
func New(hashKey []byte, maxAge time.Duration) *Issuer {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(maxAge / time.Second))
	codec.SetSerializer(securecookie.JSONEncoder{})
	return &Issuer{codec: codec}
}

// Create returns a token for action in session.
func (i *Issuer) Create(action, session string) (string, error) {
	tok, err := i.codec.Encode(action, session)
	if err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	return tok, nil
}

// Verify reports whether token was created by i for action in session and
// has not expired. It returns an error wrapping ErrInvalid if not.
func (i *Issuer) Verify(token, action, session string) error {
	if token == "" {
		return fmt.Errorf("%w: empty", ErrInvalid)
	}
	var got string
	if err := i.codec.Decode(action, token, &got); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if subtle.ConstantTimeCompare([]byte(got), []byte(session)) != 1 {
		return fmt.Errorf("%w: session mismatch", ErrInvalid)
	}
	return nil
}
