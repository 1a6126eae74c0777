package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/plateful/plateful/internal/logger"
	"github.com/plateful/plateful/internal/request"
	"github.com/plateful/plateful/internal/token"
	"go.uber.org/zap"
)

// Auth creates the session gate: every request passing through it must
// carry a valid bearer access token. On success the subject id is attached
// to the request context; on any failure the pipeline short-circuits with
// a uniform 401 body that never reveals whether the token was missing,
// malformed, or expired.
func Auth(verifier *token.Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondUnauthorized(w)
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				respondUnauthorized(w)
				return
			}

			claims, err := verifier.VerifyAccess(tokenString)
			if err != nil {
				// Log the reason server-side; the client only sees 401.
				log.Debug("access_token_rejected",
					zap.String("reason", logger.SanitizeError(err)),
					zap.String("path", logger.SanitizePath(r.URL.Path)),
				)
				respondUnauthorized(w)
				return
			}

			ctx := request.WithSubject(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// respondUnauthorized writes the stable 401 body shared by all auth
// failures.
func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	// Encoding a flat map cannot fail; ignore the writer error like any
	// other response write.
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
