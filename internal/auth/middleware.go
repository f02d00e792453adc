package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
)

type contextKey struct{}

var identityKey = contextKey{}

// Identity returns the user the middleware resolved for this request.
func Identity(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(identityKey).(User)
	return user, ok
}

// Middleware resolves the bearer token on each request and injects the
// identity into the request context. Every rejection, whatever its
// cause, produces the same 401 response.
func Middleware(service *Service, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			unauthorized(w)
			return
		}

		user, err := service.Resolve(r.Context(), tokenString)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				unauthorized(w)
				return
			}
			sentry.CaptureException(err)
			writeDetail(w, http.StatusInternalServerError, "failed to resolve identity")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, user)))
	})
}

// RequireActive rejects disabled accounts with a 400. It assumes
// Middleware already ran; a missing identity is treated as a 401.
func RequireActive(service *Service, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := Identity(r.Context())
		if !ok {
			unauthorized(w)
			return
		}

		if err := service.RequireActive(user); err != nil {
			writeDetail(w, http.StatusBadRequest, "Inactive user")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
}
