package token

import "time"

// Verifier decides whether a presented token currently grants access. It is
// a pure function of (token, key, current time): no I/O.
type Verifier struct {
	access  *Codec
	refresh *Codec
	now     func() time.Time
}

// VerifierOption customizes a Verifier.
type VerifierOption func(*Verifier)

// WithVerifierClock overrides the clock, for tests.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier creates a verifier holding the access and refresh keys.
func NewVerifier(accessKey, refreshKey []byte, opts ...VerifierOption) *Verifier {
	verifier := &Verifier{
		access:  NewCodec(accessKey),
		refresh: NewCodec(refreshKey),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(verifier)
	}
	return verifier
}

// VerifyAccess validates an access token's signature and expiry.
func (v *Verifier) VerifyAccess(tokenString string) (Claims, error) {
	return v.verify(v.access, tokenString)
}

// VerifyRefresh validates a refresh token's signature and expiry.
func (v *Verifier) VerifyRefresh(tokenString string) (Claims, error) {
	return v.verify(v.refresh, tokenString)
}

func (v *Verifier) verify(codec *Codec, tokenString string) (Claims, error) {
	claims, err := codec.Decode(tokenString)
	if err != nil {
		return Claims{}, err
	}

	// Expiry is inclusive: a token is expired at its exact expiry second.
	// There is no grace window.
	if !v.now().Before(claims.ExpiresAt) {
		return Claims{}, ErrExpired
	}

	return claims, nil
}
