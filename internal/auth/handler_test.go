package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postLogin(t *testing.T, handler *Handler, username, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	handler.Login(rec, req)
	return rec
}

func TestLoginEndToEnd(t *testing.T) {
	service := newTestService(t, map[string]User{
		"alice": {Username: "alice", PasswordHash: hashFor(t, "correct")},
	})
	handler := NewHandler(service)

	rec := postLogin(t, handler, "alice", "correct")
	require.Equal(t, http.StatusOK, rec.Code)

	var token Token
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&token))
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)

	// The issued token opens a protected route and resolves alice.
	protected := Middleware(service, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := Identity(r.Context())
		require.True(t, ok)
		writeJSON(w, http.StatusOK, map[string]string{"username": user.Username})
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	service := newTestService(t, map[string]User{
		"alice": {Username: "alice", PasswordHash: hashFor(t, "correct")},
	})
	handler := NewHandler(service)

	for name, creds := range map[string][2]string{
		"wrong password": {"alice", "wrong"},
		"unknown user":   {"nobody", "whatever"},
		"empty form":     {"", ""},
	} {
		t.Run(name, func(t *testing.T) {
			rec := postLogin(t, handler, creds[0], creds[1])

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"detail":"Incorrect username or password"}`, rec.Body.String())
		})
	}
}

func TestMiddlewareRejections(t *testing.T) {
	service := newTestService(t, map[string]User{
		"alice": {Username: "alice", PasswordHash: hashFor(t, "correct")},
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := Middleware(service, next)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": jwt.NewNumericDate(time.Now().UTC().Add(-time.Minute)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	unknown, err := service.codec.Encode(Claims{Subject: "ghost"}, time.Minute)
	require.NoError(t, err)

	tests := map[string]string{
		"missing header":  "",
		"not bearer":      "Basic abc123",
		"empty token":     "Bearer ",
		"garbage token":   "Bearer not.a.token",
		"expired token":   "Bearer " + expired,
		"unknown subject": "Bearer " + unknown,
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, rec.Body.String())
		})
	}
}

func TestRequireActiveMiddleware(t *testing.T) {
	service := newTestService(t, map[string]User{
		"alice": {Username: "alice", PasswordHash: hashFor(t, "correct")},
		"bob":   {Username: "bob", PasswordHash: hashFor(t, "correct"), Disabled: true},
	})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gated := Middleware(service, RequireActive(service, next))

	t.Run("active account passes", func(t *testing.T) {
		tokenString, err := service.codec.Encode(Claims{Subject: "alice"}, time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, "/gated", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disabled account is a 400, not a 401", func(t *testing.T) {
		tokenString, err := service.codec.Encode(Claims{Subject: "bob"}, time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodDelete, "/gated", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		rec := httptest.NewRecorder()
		gated.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"detail":"Inactive user"}`, rec.Body.String())
	})

	t.Run("missing identity is a 401", func(t *testing.T) {
		bare := RequireActive(service, next)
		req := httptest.NewRequest(http.MethodDelete, "/gated", nil)
		rec := httptest.NewRecorder()
		bare.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestIdentityMissing(t *testing.T) {
	_, ok := Identity(context.Background())
	assert.False(t, ok)
}
