package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// refreshTransport wraps an http.RoundTripper with the session refresh
// flow: it attaches the stored access token to every request, and on a 401
// exchanges the refresh token for a new pair exactly once, then replays
// the original request. Concurrent 401s coalesce into a single refresh
// call so one refresh token is never raced against itself.
type refreshTransport struct {
	base       http.RoundTripper
	store      *SessionStore
	refreshURL string
	group      singleflight.Group
}

// newRefreshTransport creates the refreshing transport. base may be nil,
// defaulting to http.DefaultTransport.
func newRefreshTransport(base http.RoundTripper, store *SessionStore, refreshURL string) *refreshTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &refreshTransport{
		base:       base,
		store:      store,
		refreshURL: refreshURL,
	}
}

func (t *refreshTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempt := req.Clone(req.Context())
	if accessToken := t.store.AccessToken(); accessToken != "" {
		attempt.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := t.base.RoundTrip(attempt)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	refreshToken := t.store.RefreshToken()
	if refreshToken == "" {
		// Nothing to refresh with. The session is over.
		_ = t.store.Clear()
		return resp, nil
	}

	newAccessToken, refreshErr := t.refresh(refreshToken)
	if refreshErr != nil {
		_ = t.store.Clear()
		// Propagate the original 401, not the refresh failure.
		return resp, nil
	}

	// Replay the original request once with the fresh token.
	if err := resp.Body.Close(); err != nil {
		return nil, err
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		retry.Body = body
	}
	retry.Header.Set("Authorization", "Bearer "+newAccessToken)

	return t.base.RoundTrip(retry)
}

// refresh exchanges the refresh token for a new pair and stores it.
// Concurrent callers share one in-flight exchange.
func (t *refreshTransport) refresh(refreshToken string) (string, error) {
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequest("POST", t.refreshURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, fmt.Errorf("refresh call failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
		}

		var pair struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
			return nil, fmt.Errorf("malformed refresh response: %w", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			return nil, fmt.Errorf("refresh response missing tokens")
		}

		if err := t.store.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
			return nil, err
		}
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
