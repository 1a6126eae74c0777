package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/plateful/plateful/internal/errs"
	"github.com/plateful/plateful/internal/models"
)

// DefaultTimeout bounds every API call, including a transparent refresh
// and retry.
const DefaultTimeout = 30 * time.Second

// Client is a typed API client. All authenticated calls go through the
// refreshing transport, so callers never handle token expiry themselves.
type Client struct {
	baseURL string
	store   *SessionStore
	http    *http.Client
}

// New creates a client for the API at baseURL using the given session
// store.
func New(baseURL string, store *SessionStore) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		store:   store,
		http: &http.Client{
			Transport: newRefreshTransport(nil, store, baseURL+"/token-refresh"),
			Timeout:   DefaultTimeout,
		},
	}
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SignUp registers an account, stores the resulting session, and returns
// the new principal.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Principal, error) {
	return c.authenticate(ctx, "/sign-up", email, password)
}

// SignIn authenticates, stores the resulting session, and returns the
// principal.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Principal, error) {
	return c.authenticate(ctx, "/sign-in", email, password)
}

func (c *Client) authenticate(ctx context.Context, path, email, password string) (*Principal, error) {
	var pair tokenPair
	err := c.do(ctx, "POST", path, map[string]string{"email": email, "password": password}, &pair)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetTokens(pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, err
	}

	principal, err := c.Me(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(principal, pair.AccessToken, pair.RefreshToken); err != nil {
		return nil, err
	}
	return principal, nil
}

// Logout clears the local session. The tokens simply age out server-side.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// Me returns the authenticated principal.
func (c *Client) Me(ctx context.Context) (*Principal, error) {
	var principal Principal
	if err := c.do(ctx, "GET", "/me", nil, &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

// ForgotPassword requests a password reset email. The returned ok reports
// whether the account was found.
func (c *Client) ForgotPassword(ctx context.Context, email string) (bool, error) {
	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := c.do(ctx, "POST", "/forgot-password", map[string]string{"email": email}, &resp); err != nil {
		return false, err
	}
	return resp.Status == "ok", nil
}

// AnalyzeImage estimates nutrition for a base64-encoded food photo.
func (c *Client) AnalyzeImage(ctx context.Context, imageBase64 string) (*models.FoodAnalysis, error) {
	var analysis models.FoodAnalysis
	err := c.do(ctx, "POST", "/api/analyze", map[string]string{"image": imageBase64}, &analysis)
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// SaveEntry saves a meal to the user's log and returns the stored record.
func (c *Client) SaveEntry(ctx context.Context, entry *models.FoodEntry) (*models.FoodEntry, error) {
	var saved models.FoodEntry
	if err := c.do(ctx, "POST", "/api/food-entries", entry, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// ListEntries returns all of the user's meals, newest first.
func (c *Client) ListEntries(ctx context.Context) ([]*models.FoodEntry, error) {
	var entries []*models.FoodEntry
	if err := c.do(ctx, "GET", "/api/food-entries", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// EntriesByDate returns the user's meals for one calendar day
// (YYYY-MM-DD).
func (c *Client) EntriesByDate(ctx context.Context, date string) ([]*models.FoodEntry, error) {
	var entries []*models.FoodEntry
	if err := c.do(ctx, "GET", "/api/food-entries/date/"+date, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// do sends one request and decodes the response into out. Request bodies
// are buffered so the refreshing transport can replay them.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return errs.ErrUnauthorized
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("api error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api error (status %d)", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
