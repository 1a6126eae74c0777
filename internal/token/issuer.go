package token

import (
	"fmt"
	"time"
)

const (
	// DefaultAccessTTL is the access token lifetime (15 minutes).
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is the refresh token lifetime (7 days).
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Pair bundles the two tokens every issuance operation returns. A pair is
// never partially issued.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Issuer produces token pairs for a subject. Claims carry only the subject
// id — never email, role, or anything derived from the account record — so
// a token cannot leak stale profile data.
type Issuer struct {
	access     *Codec
	refresh    *Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// IssuerOption customizes an Issuer.
type IssuerOption func(*Issuer)

// WithLifetimes overrides the access and refresh token lifetimes.
func WithLifetimes(accessTTL, refreshTTL time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessTTL = accessTTL
		i.refreshTTL = refreshTTL
	}
}

// WithIssuerClock overrides the clock, for tests.
func WithIssuerClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.now = now
	}
}

// NewIssuer creates an issuer signing access and refresh tokens with the
// given distinct keys.
func NewIssuer(accessKey, refreshKey []byte, opts ...IssuerOption) *Issuer {
	issuer := &Issuer{
		access:     NewCodec(accessKey),
		refresh:    NewCodec(refreshKey),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer
}

// AccessToken issues a short-lived access token for the subject.
func (i *Issuer) AccessToken(subject string) (string, error) {
	return i.issue(i.access, subject, i.accessTTL)
}

// RefreshToken issues a long-lived refresh token for the subject.
func (i *Issuer) RefreshToken(subject string) (string, error) {
	return i.issue(i.refresh, subject, i.refreshTTL)
}

// Pair issues an access/refresh token pair. Both tokens share the same
// issued-at instant.
func (i *Issuer) Pair(subject string) (Pair, error) {
	accessToken, err := i.AccessToken(subject)
	if err != nil {
		return Pair{}, err
	}
	refreshToken, err := i.RefreshToken(subject)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (i *Issuer) issue(codec *Codec, subject string, ttl time.Duration) (string, error) {
	// Truncate to whole seconds so claims survive the unix-seconds wire
	// format round trip unchanged.
	issuedAt := time.Unix(i.now().Unix(), 0)
	tokenString, err := codec.Encode(Claims{
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tokenString, nil
}
