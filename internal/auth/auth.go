package auth

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
)

// The core never issues or validates credentials itself; it only needs an
// authenticated user id per request. Authenticator is that collaborator.
type Authenticator interface {
	// Authenticate resolves a request to a user id, or fails with
	// ErrUnauthenticated.
	Authenticate(r *http.Request) (uint, error)
}

// ErrUnauthenticated is returned when a request carries no usable identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// StaticTokenAuthenticator resolves bearer tokens from a fixed token->user
// table. It stands in for an external credential system.
type StaticTokenAuthenticator struct {
	tokens map[string]uint
}

// NewStaticTokenAuthenticator builds an authenticator over the given
// token->userID table.
func NewStaticTokenAuthenticator(tokens map[string]uint) *StaticTokenAuthenticator {
	return &StaticTokenAuthenticator{tokens: tokens}
}

// NewStaticTokenAuthenticatorFromEnv reads API_AUTH_TOKENS, a comma-separated
// list of token:userID pairs, e.g. "alice-token:1,bob-token:2".
func NewStaticTokenAuthenticatorFromEnv() (*StaticTokenAuthenticator, error) {
	raw := os.Getenv("API_AUTH_TOKENS")
	tokens := make(map[string]uint)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, idStr, ok := strings.Cut(pair, ":")
		if !ok || token == "" {
			return nil, errors.New("API_AUTH_TOKENS entries must be token:userID pairs")
		}
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil || id == 0 {
			return nil, errors.New("API_AUTH_TOKENS user ids must be positive integers")
		}
		tokens[token] = uint(id)
	}
	return NewStaticTokenAuthenticator(tokens), nil
}

// Authenticate reads the Authorization header ("Bearer <token>") and looks
// the token up in the table.
func (a *StaticTokenAuthenticator) Authenticate(r *http.Request) (uint, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return 0, ErrUnauthenticated
	}
	userID, ok := a.tokens[token]
	if !ok {
		return 0, ErrUnauthenticated
	}
	return userID, nil
}

type contextKey struct{}

var userIDKey contextKey

// Middleware authenticates every request and stores the resolved user id in
// the request context. Unauthenticated requests are rejected with 401 before
// any handler runs.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Authenticate(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthenticated"}`))
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID returns the authenticated user id stored by Middleware.
func UserID(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey).(uint)
	return id, ok
}
