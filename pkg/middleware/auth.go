package middleware

import (
	"context"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

type contextKeyType string

const usernameKey contextKeyType = "auth_username"

// CredentialVerifier checks a username and password. It returns false for a
// mismatch and an error only when verification itself could not run.
type CredentialVerifier func(ctx context.Context, username, password string) (bool, error)

// BasicAuth authenticates requests with HTTP Basic credentials. Missing or
// rejected credentials get 401 with a WWW-Authenticate challenge; verifier
// failures get 500. On success the username is stored in the context and
// added to the request-scoped logger.
func BasicAuth(realm string, verify CredentialVerifier, fallback *slog.Logger) func(http.Handler) http.Handler {
	challenge := `Basic realm="` + realm + `", charset="UTF-8"`

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || username == "" {
				w.Header().Set("WWW-Authenticate", challenge)
				httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), fallback)
				return
			}

			valid, err := verify(r.Context(), username, password)
			if err != nil {
				httputil.WriteError(w, r, apperrors.Internal(err), fallback)
				return
			}
			if !valid {
				w.Header().Set("WWW-Authenticate", challenge)
				httputil.WriteError(w, r, apperrors.Unauthorized("invalid username or password"), fallback)
				return
			}

			ctx := context.WithValue(r.Context(), usernameKey, username)
			ctx = logger.WithUsername(ctx, username)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("username", username)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsernameFromContext returns the username authenticated by BasicAuth.
func UsernameFromContext(ctx context.Context) string {
	if u, ok := ctx.Value(usernameKey).(string); ok {
		return u
	}
	return ""
}
