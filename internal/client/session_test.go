package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func sessionPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}

func TestSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := sessionPath(t)
	store, err := NewSessionStore(path)
	if err != nil {
		t.Fatalf("NewSessionStore() error = %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("Expected empty store to be unauthenticated")
	}

	principal := &Principal{ID: "user-1", Email: "alex@email.com", Role: "user"}
	if err := store.Set(principal, "access-token", "refresh-token"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !store.IsAuthenticated() {
		t.Error("Expected store to be authenticated after Set")
	}

	reloaded, err := NewSessionStore(path)
	if err != nil {
		t.Fatalf("NewSessionStore() reload error = %v", err)
	}
	if !reloaded.IsAuthenticated() {
		t.Error("Expected reloaded store to be authenticated")
	}
	if got := reloaded.AccessToken(); got != "access-token" {
		t.Errorf("Expected access token to survive reload, got %q", got)
	}
	if got := reloaded.RefreshToken(); got != "refresh-token" {
		t.Errorf("Expected refresh token to survive reload, got %q", got)
	}
	if p := reloaded.Principal(); p == nil || p.Email != "alex@email.com" {
		t.Errorf("Expected principal to survive reload, got %+v", p)
	}
}

func TestSessionStoreRehydrationRecomputesFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		blob string
		want bool
	}{
		{
			name: "corrupted flag with full session",
			blob: `{"principal":{"id":"user-1","email":"alex@email.com","role":"user"},"accessToken":"x","refreshToken":"y","isAuthenticated":false}`,
			want: true,
		},
		{
			name: "absent flag with full session",
			blob: `{"principal":{"id":"user-1","email":"alex@email.com","role":"user"},"accessToken":"x","refreshToken":"y"}`,
			want: true,
		},
		{
			name: "flag true but no principal",
			blob: `{"accessToken":"x","refreshToken":"y","isAuthenticated":true}`,
			want: false,
		},
		{
			name: "flag true but no access token",
			blob: `{"principal":{"id":"user-1","email":"alex@email.com","role":"user"},"refreshToken":"y","isAuthenticated":true}`,
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := sessionPath(t)
			if err := os.WriteFile(path, []byte(tt.blob), 0o600); err != nil {
				t.Fatalf("Failed to seed session file: %v", err)
			}

			store, err := NewSessionStore(path)
			if err != nil {
				t.Fatalf("NewSessionStore() error = %v", err)
			}
			if got := store.IsAuthenticated(); got != tt.want {
				t.Errorf("IsAuthenticated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionStoreClearRemovesFile(t *testing.T) {
	t.Parallel()

	path := sessionPath(t)
	store, err := NewSessionStore(path)
	if err != nil {
		t.Fatalf("NewSessionStore() error = %v", err)
	}

	principal := &Principal{ID: "user-1", Email: "alex@email.com", Role: "user"}
	if err := store.Set(principal, "access-token", "refresh-token"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("Expected cleared store to be unauthenticated")
	}
	if store.Principal() != nil {
		t.Error("Expected cleared store to have no principal")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected session file to be removed, stat err = %v", err)
	}

	// Clearing an already-clear store must not fail.
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on empty store error = %v", err)
	}
}

func TestSessionStoreCorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	path := sessionPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("Failed to seed session file: %v", err)
	}

	store, err := NewSessionStore(path)
	if err != nil {
		t.Fatalf("NewSessionStore() error = %v", err)
	}
	if store.IsAuthenticated() {
		t.Error("Expected store loaded from corrupt file to be unauthenticated")
	}
}

func TestSessionStoreSetTokensKeepsPrincipal(t *testing.T) {
	t.Parallel()

	path := sessionPath(t)
	store, err := NewSessionStore(path)
	if err != nil {
		t.Fatalf("NewSessionStore() error = %v", err)
	}

	principal := &Principal{ID: "user-1", Email: "alex@email.com", Role: "user"}
	if err := store.Set(principal, "old-access", "old-refresh"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.SetTokens("new-access", "new-refresh"); err != nil {
		t.Fatalf("SetTokens() error = %v", err)
	}

	if p := store.Principal(); p == nil || p.ID != "user-1" {
		t.Errorf("Expected principal to be kept, got %+v", p)
	}
	if got := store.AccessToken(); got != "new-access" {
		t.Errorf("Expected new access token, got %q", got)
	}

	// The persisted record must carry the new pair too.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}
	var record sessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Failed to decode session file: %v", err)
	}
	if record.RefreshToken != "new-refresh" {
		t.Errorf("Expected persisted refresh token new-refresh, got %q", record.RefreshToken)
	}
}
