// Package token implements the signed-token lifecycle: a keyed codec for
// claims, an issuer producing access/refresh pairs, and a verifier that
// checks signature and expiry. Access and refresh tokens are signed with
// distinct keys so one can never stand in for the other.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrMalformed indicates the token string cannot be parsed into the
	// expected claims shape.
	ErrMalformed = errors.New("token malformed")

	// ErrSignatureInvalid indicates the token parsed but its signature
	// does not verify under the codec's key.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrExpired indicates the token verified but its expiry has passed.
	ErrExpired = errors.New("token expired")
)

// Claims is the signed payload: who the token is for and when it lives.
// Timestamps carry unix-second precision, matching the wire format.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and parses claims with a single HMAC-SHA256 key. It is
// transport-agnostic and performs no expiry checks.
type Codec struct {
	key []byte
}

// NewCodec creates a codec bound to the given signing key.
func NewCodec(key []byte) *Codec {
	return &Codec{key: key}
}

// Encode serializes the claims and signs them, returning a compact token
// string opaque to callers.
func (c *Codec) Encode(claims Claims) (string, error) {
	if claims.Subject == "" {
		return "", fmt.Errorf("encode token: empty subject")
	}

	tok, err := jwt.NewBuilder().
		Subject(claims.Subject).
		IssuedAt(claims.IssuedAt).
		Expiration(claims.ExpiresAt).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build claims: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, c.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Decode verifies the signature and returns the embedded claims. It fails
// with ErrSignatureInvalid on a key mismatch and ErrMalformed when the
// string is not a parseable token. Expiry is the verifier's concern.
func (c *Codec) Decode(tokenString string) (Claims, error) {
	tok, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, c.key),
		jwt.WithValidate(false),
	)
	if err != nil {
		// Distinguish a bad signature from an unparseable token by
		// re-parsing without verification.
		if _, parseErr := jwt.Parse([]byte(tokenString), jwt.WithVerify(false), jwt.WithValidate(false)); parseErr != nil {
			return Claims{}, ErrMalformed
		}
		return Claims{}, ErrSignatureInvalid
	}

	claims := Claims{
		Subject:   tok.Subject(),
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}
	if claims.Subject == "" || claims.ExpiresAt.IsZero() {
		return Claims{}, ErrMalformed
	}

	return claims, nil
}
