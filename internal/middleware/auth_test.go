package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/frotadev/fleet-manager/internal/auth"
	"github.com/frotadev/fleet-manager/internal/models"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *auth.Service) {
	t.Helper()
	t.Setenv("JWT_SECRET", "middleware-test-secret")
	svc, err := auth.NewService()
	require.NoError(t, err)
	return NewAuthMiddleware(svc), svc
}

func sessionToken(t *testing.T, svc *auth.Service, role models.Role) string {
	t.Helper()
	token, err := svc.IssueToken(&models.User{
		ID:       primitive.NewObjectID(),
		Username: "dock-supervisor",
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	mw, svc := newTestMiddleware(t)

	t.Run("valid session", func(t *testing.T) {
		var claims *models.Claims
		handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ = GetUserFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/forklifts", nil)
		req.Header.Set("Authorization", "Bearer "+sessionToken(t, svc, models.RoleOperator))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, claims)
		assert.Equal(t, "dock-supervisor", claims.Username)
		assert.Equal(t, models.RoleOperator, claims.Role)
	})

	t.Run("missing header", func(t *testing.T) {
		var called bool
		handler := mw.Authenticate(okHandler(&called))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/forklifts", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("bad token", func(t *testing.T) {
		var called bool
		handler := mw.Authenticate(okHandler(&called))
		req := httptest.NewRequest(http.MethodGet, "/api/forklifts", nil)
		req.Header.Set("Authorization", "Bearer not.a.session")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, called)
	})

	t.Run("public paths skip the check", func(t *testing.T) {
		for _, path := range []string{"/api/auth/login", "/api/auth/register", "/health", "/metrics"} {
			var called bool
			handler := mw.Authenticate(okHandler(&called))
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
			assert.True(t, called, path)
		}
	})
}

func withClaims(req *http.Request, role models.Role) *http.Request {
	claims := &models.Claims{UserID: "id", Username: "dock-supervisor", Role: role}
	return req.WithContext(context.WithValue(req.Context(), UserContextKey, claims))
}

func TestRequireRole(t *testing.T) {
	mw, _ := newTestMiddleware(t)
	var called bool
	handler := mw.RequireRole(models.RoleManager)(okHandler(&called))

	cases := []struct {
		role models.Role
		want int
	}{
		{models.RoleManager, http.StatusOK},
		{models.RoleAdmin, http.StatusOK},
		{models.RoleViewer, http.StatusForbidden},
	}
	for _, tc := range cases {
		called = false
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, withClaims(httptest.NewRequest(http.MethodGet, "/api/forklifts", nil), tc.role))
		assert.Equal(t, tc.want, w.Code, tc.role)
		assert.Equal(t, tc.want == http.StatusOK, called, tc.role)
	}

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/forklifts", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequirePermission(t *testing.T) {
	mw, _ := newTestMiddleware(t)
	var called bool
	handler := mw.RequirePermission("manage_fleet")(okHandler(&called))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withClaims(httptest.NewRequest(http.MethodPost, "/api/forklifts", nil), models.RoleManager))
	assert.Equal(t, http.StatusOK, w.Code)

	called = false
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, withClaims(httptest.NewRequest(http.MethodPost, "/api/forklifts", nil), models.RoleOperator))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, called)
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimitMiddleware()
	now := time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC)
	rl.nowFn = func() time.Time { return now }

	var called bool
	handler := rl.RateLimit(3, time.Minute)(okHandler(&called))

	request := func() int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/forklifts", nil)
		req.RemoteAddr = "10.0.0.7:54321"
		handler.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, request())
	}
	assert.Equal(t, http.StatusTooManyRequests, request())

	// Another client is unaffected.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/forklifts", nil)
	req.RemoteAddr = "10.0.0.8:54321"
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// The window slides: old requests age out.
	now = now.Add(2 * time.Minute)
	assert.Equal(t, http.StatusOK, request())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:9999"
	assert.Equal(t, "192.168.1.5", clientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.9")
	assert.Equal(t, "203.0.113.9", clientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	assert.Equal(t, "198.51.100.4", clientIP(req))
}

func TestGetUserFromContext(t *testing.T) {
	claims := &models.Claims{UserID: "id", Username: "dock-supervisor", Role: models.RoleViewer}
	ctx := context.WithValue(context.Background(), UserContextKey, claims)

	got, ok := GetUserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "dock-supervisor", got.Username)

	_, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)
}
