package middleware

import (
	"net/http"

	"github.com/wolfman30/careflow-portal/internal/auth"
	"github.com/wolfman30/careflow-portal/internal/http/respond"
	"github.com/wolfman30/careflow-portal/pkg/logging"
)

// BearerAuth verifies the Authorization bearer token and stores the caller's
// auth.Identity on the request context. Failures answer 401 {"error"}.
func BearerAuth(verifier auth.Verifier, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.Verify(r.Context(), auth.BearerToken(r.Header.Get("Authorization")))
			if err != nil {
				logger.Debug("bearer auth rejected", "path", r.URL.Path, "error", err)
				respond.Error(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}
