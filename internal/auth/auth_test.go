package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTokenAuthenticator(t *testing.T) {
	a := NewStaticTokenAuthenticator(map[string]uint{"alice-token": 1})

	tests := []struct {
		name       string
		header     string
		wantUserID uint
		wantErr    error
	}{
		{"known token", "Bearer alice-token", 1, nil},
		{"unknown token", "Bearer other-token", 0, ErrUnauthenticated},
		{"missing header", "", 0, ErrUnauthenticated},
		{"wrong scheme", "Basic alice-token", 0, ErrUnauthenticated},
		{"bare token without scheme", "alice-token", 0, ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/todos", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			userID, err := a.Authenticate(req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUserID, userID)
		})
	}
}

func TestNewStaticTokenAuthenticatorFromEnv(t *testing.T) {
	t.Run("parses token pairs", func(t *testing.T) {
		t.Setenv("API_AUTH_TOKENS", "alice-token:1, bob-token:2")

		a, err := NewStaticTokenAuthenticatorFromEnv()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer bob-token")
		userID, err := a.Authenticate(req)
		require.NoError(t, err)
		assert.Equal(t, uint(2), userID)
	})

	t.Run("empty env yields an authenticator that rejects everything", func(t *testing.T) {
		t.Setenv("API_AUTH_TOKENS", "")

		a, err := NewStaticTokenAuthenticatorFromEnv()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer anything")
		_, err = a.Authenticate(req)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("rejects malformed pairs", func(t *testing.T) {
		for _, raw := range []string{"alice-token", "alice-token:abc", "alice-token:0", ":1"} {
			t.Setenv("API_AUTH_TOKENS", raw)
			_, err := NewStaticTokenAuthenticatorFromEnv()
			assert.Error(t, err, "raw %q", raw)
		}
	})
}

func TestMiddleware(t *testing.T) {
	a := NewStaticTokenAuthenticator(map[string]uint{"alice-token": 1})

	var gotUserID uint
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, gotOK = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := Middleware(a)(next)

	t.Run("injects the user id into the context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/todos", nil)
		req.Header.Set("Authorization", "Bearer alice-token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, gotOK)
		assert.Equal(t, uint(1), gotUserID)
	})

	t.Run("rejects unauthenticated requests before the handler", func(t *testing.T) {
		gotOK = false
		req := httptest.NewRequest(http.MethodGet, "/todos", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.False(t, gotOK, "handler must not run")
		assert.JSONEq(t, `{"error":"Unauthenticated"}`, rec.Body.String())
	})
}

func TestUserIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserID(req.Context())
	assert.False(t, ok)
}
