package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plateful/plateful/internal/request"
	"github.com/plateful/plateful/internal/token"
	"go.uber.org/zap"
)

var (
	testAccessKey  = []byte("gate-test-access-key-0123456789a")
	testRefreshKey = []byte("gate-test-refresh-key-012345678b")
)

func TestAuthGate(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }
	issuer := token.NewIssuer(testAccessKey, testRefreshKey, token.WithIssuerClock(clock))
	verifier := token.NewVerifier(testAccessKey, testRefreshKey, token.WithVerifierClock(clock))

	validToken, err := issuer.AccessToken("user-42")
	if err != nil {
		t.Fatalf("AccessToken failed: %v", err)
	}
	refreshToken, err := issuer.RefreshToken("user-42")
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}

	expiredIssuer := token.NewIssuer(testAccessKey, testRefreshKey,
		token.WithIssuerClock(func() time.Time { return now.Add(-time.Hour) }))
	expiredToken, err := expiredIssuer.AccessToken("user-42")
	if err != nil {
		t.Fatalf("expired AccessToken failed: %v", err)
	}

	tests := []struct {
		name        string
		authHeader  string
		wantStatus  int
		wantSubject string
	}{
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing bearer prefix",
			authHeader: validToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not-a-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + expiredToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "refresh token cannot pass the gate",
			authHeader: "Bearer " + refreshToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:        "valid token attaches subject",
			authHeader:  "Bearer " + validToken,
			wantStatus:  http.StatusOK,
			wantSubject: "user-42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotSubject string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotSubject = request.SubjectFromContext(r)
				w.WriteHeader(http.StatusOK)
			})

			handler := Auth(verifier, zap.NewNop())(next)

			req := httptest.NewRequest("GET", "/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotSubject != tt.wantSubject {
				t.Errorf("subject = %q, want %q", gotSubject, tt.wantSubject)
			}

			if tt.wantStatus == http.StatusUnauthorized {
				var body map[string]string
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("decoding 401 body: %v", err)
				}
				if body["error"] != "Unauthorized" {
					t.Errorf("401 body = %v, want {\"error\":\"Unauthorized\"}", body)
				}
			}
		})
	}
}
