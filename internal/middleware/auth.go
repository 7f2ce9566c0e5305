package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/NitishSati26/travel-story/internal/httpx"
	"github.com/NitishSati26/travel-story/internal/router"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey struct{}

var ownerUIDKey ctxKey

// Auth verifies the Authorization bearer token on every request and attaches
// the owner UID it asserts to the request context.
func Auth(secret []byte) router.Middleware {
	return func(next http.Handler) http.Handler {
		return authMiddleware(next, secret)
	}
}

func authMiddleware(next http.Handler, secret []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "token is required")
			return
		}

		rawToken := strings.TrimPrefix(authHeader, "Bearer ")

		var claims jwt.RegisteredClaims
		token, err := jwt.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil {
			authError("failed to parse jwt", w, r, err)
			return
		}
		if !token.Valid {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		if claims.Subject == "" {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ownerUIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authError(msg string, w http.ResponseWriter, r *http.Request, err error) {
	slog.Error(msg,
		"error", err,
		"method", r.Method,
		"url", r.URL.String(),
		"remote_addr", r.RemoteAddr,
	)
	httpx.WriteError(w, http.StatusUnauthorized, "invalid or expired token")
}

// OwnerUIDFromContext returns the UID attached by Auth, or "" on
// unauthenticated requests.
func OwnerUIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(ownerUIDKey).(string)
	return uid
}
