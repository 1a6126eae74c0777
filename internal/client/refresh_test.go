package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/plateful/plateful/internal/errs"
)

type backendCounts struct {
	mu      sync.Mutex
	me      int
	refresh int
}

func (c *backendCounts) bumpMe() {
	c.mu.Lock()
	c.me++
	c.mu.Unlock()
}

func (c *backendCounts) bumpRefresh() {
	c.mu.Lock()
	c.refresh++
	c.mu.Unlock()
}

func (c *backendCounts) snapshot() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.me, c.refresh
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}

// newBackend serves /me and /token-refresh. validAccess gates /me;
// validRefresh gates the refresh exchange, which rotates to freshAccess.
func newBackend(t *testing.T, counts *backendCounts, validAccess, validRefresh, freshAccess string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		counts.bumpMe()
		if r.Header.Get("Authorization") != "Bearer "+validAccess {
			writeUnauthorized(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Principal{ID: "user-1", Email: "alex@email.com", Role: "user"})
	})
	mux.HandleFunc("/token-refresh", func(w http.ResponseWriter, r *http.Request) {
		counts.bumpRefresh()
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken != validRefresh {
			writeUnauthorized(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  freshAccess,
			"refreshToken": "rotated-refresh",
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func seededStore(t *testing.T, access, refresh string) *SessionStore {
	t.Helper()
	store, err := NewSessionStore(sessionPath(t))
	if err != nil {
		t.Fatalf("NewSessionStore() error = %v", err)
	}
	principal := &Principal{ID: "user-1", Email: "alex@email.com", Role: "user"}
	if err := store.Set(principal, access, refresh); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	return store
}

func TestRefreshTransportSilentRefresh(t *testing.T) {
	t.Parallel()

	counts := &backendCounts{}
	server := newBackend(t, counts, "fresh-access", "good-refresh", "fresh-access")
	store := seededStore(t, "stale-access", "good-refresh")
	c := New(server.URL, store)

	principal, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if principal.Email != "alex@email.com" {
		t.Errorf("Expected principal email alex@email.com, got %s", principal.Email)
	}

	me, refresh := counts.snapshot()
	if me != 2 {
		t.Errorf("Expected 2 /me calls (original + retry), got %d", me)
	}
	if refresh != 1 {
		t.Errorf("Expected 1 refresh call, got %d", refresh)
	}
	if got := store.AccessToken(); got != "fresh-access" {
		t.Errorf("Expected store to hold the fresh access token, got %q", got)
	}
	if got := store.RefreshToken(); got != "rotated-refresh" {
		t.Errorf("Expected store to hold the rotated refresh token, got %q", got)
	}
	if !store.IsAuthenticated() {
		t.Error("Expected session to remain authenticated")
	}
}

func TestRefreshTransportAtMostOneRetry(t *testing.T) {
	t.Parallel()

	// The backend accepts the refresh but keeps rejecting /me, so the
	// retried call must surface its own 401 without looping.
	counts := &backendCounts{}
	server := newBackend(t, counts, "never-issued", "good-refresh", "still-stale")
	store := seededStore(t, "stale-access", "good-refresh")
	c := New(server.URL, store)

	_, err := c.Me(context.Background())
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}

	me, refresh := counts.snapshot()
	if me != 2 {
		t.Errorf("Expected exactly 2 /me calls, got %d", me)
	}
	if refresh != 1 {
		t.Errorf("Expected exactly 1 refresh call, got %d", refresh)
	}
	// Refresh itself succeeded, so the session survives even though the
	// retried call failed.
	if !store.IsAuthenticated() {
		t.Error("Expected session to remain authenticated after retried-call failure")
	}
}

func TestRefreshTransportClearsSessionOnRefreshFailure(t *testing.T) {
	t.Parallel()

	counts := &backendCounts{}
	server := newBackend(t, counts, "never-issued", "other-refresh", "unused")
	store := seededStore(t, "stale-access", "revoked-refresh")
	c := New(server.URL, store)

	_, err := c.Me(context.Background())
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}

	me, refresh := counts.snapshot()
	if me != 1 {
		t.Errorf("Expected 1 /me call (no retry after failed refresh), got %d", me)
	}
	if refresh != 1 {
		t.Errorf("Expected 1 refresh call, got %d", refresh)
	}
	if store.IsAuthenticated() {
		t.Error("Expected session to be cleared after refresh failure")
	}
	if store.Principal() != nil {
		t.Error("Expected principal to be cleared after refresh failure")
	}
}

func TestRefreshTransportNoRefreshTokenClearsSession(t *testing.T) {
	t.Parallel()

	counts := &backendCounts{}
	server := newBackend(t, counts, "never-issued", "good-refresh", "unused")
	store, err := NewSessionStore(sessionPath(t))
	if err != nil {
		t.Fatalf("NewSessionStore() error = %v", err)
	}
	if err := store.Set(&Principal{ID: "user-1"}, "stale-access", ""); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	c := New(server.URL, store)

	_, err = c.Me(context.Background())
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}

	_, refresh := counts.snapshot()
	if refresh != 0 {
		t.Errorf("Expected no refresh call without a refresh token, got %d", refresh)
	}
	if store.IsAuthenticated() {
		t.Error("Expected session to be cleared")
	}
}

func TestRefreshTransportReplaysRequestBody(t *testing.T) {
	t.Parallel()

	var gotBodies []string
	var mu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Image string `json:"image"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		gotBodies = append(gotBodies, req.Image)
		mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer fresh-access" {
			writeUnauthorized(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Ramen","calories":550,"ingredients":[]}`))
	})
	mux.HandleFunc("/token-refresh", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessToken":  "fresh-access",
			"refreshToken": "rotated-refresh",
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	store := seededStore(t, "stale-access", "good-refresh")
	c := New(server.URL, store)

	analysis, err := c.AnalyzeImage(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("AnalyzeImage() error = %v", err)
	}
	if analysis.Name != "Ramen" {
		t.Errorf("Expected analysis name Ramen, got %s", analysis.Name)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(gotBodies) != 2 {
		t.Fatalf("Expected 2 analyze calls, got %d", len(gotBodies))
	}
	for i, body := range gotBodies {
		if body != "aGVsbG8=" {
			t.Errorf("Expected call %d to carry the original body, got %q", i, body)
		}
	}
}
