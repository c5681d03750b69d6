package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frotadev/fleet-manager/internal/auth"
	"github.com/frotadev/fleet-manager/internal/middleware"
	"github.com/frotadev/fleet-manager/internal/models"
)

func requestWithRole(method, target string, role models.Role) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	claims := &models.Claims{UserID: "id", Username: "user", Role: role}
	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

func newTestAuthMiddleware(t *testing.T) *middleware.AuthMiddleware {
	t.Helper()
	t.Setenv("JWT_SECRET", "route-guard-test-secret")
	authService, err := auth.NewService()
	require.NoError(t, err)
	return middleware.NewAuthMiddleware(authService)
}

func TestRequireByMethod(t *testing.T) {
	authMW := newTestAuthMiddleware(t)
	guard := requireByMethod(authMW, "view_fleet", "manage_fleet", "manage_fleet")

	handlerCalled := false
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	t.Run("viewer can read", func(t *testing.T) {
		handlerCalled = false
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithRole(http.MethodGet, "/api/forklifts", models.RoleViewer))
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("viewer cannot write", func(t *testing.T) {
		handlerCalled = false
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithRole(http.MethodPost, "/api/forklifts", models.RoleViewer))
		assert.False(t, handlerCalled)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("manager can write", func(t *testing.T) {
		handlerCalled = false
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, requestWithRole(http.MethodDelete, "/api/forklifts/E-001", models.RoleManager))
		assert.True(t, handlerCalled)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireByMethod_CreateVersusUpdate(t *testing.T) {
	authMW := newTestAuthMiddleware(t)

	var action string
	// A guard whose create action nobody holds proves POST is checked
	// against the create action, not the update action.
	guard := requireByMethod(authMW, "view_maintenance", "no_such_action", "update_maintenance")
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action = r.Method
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithRole(http.MethodPost, "/api/maintenance-orders", models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithRole(http.MethodPut, "/api/maintenance-orders/MO-001", models.RoleOperator))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.MethodPut, action)
}

func TestRequireOperationAction(t *testing.T) {
	authMW := newTestAuthMiddleware(t)
	guard := requireOperationAction(authMW)

	handlerCalled := false
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	cases := []struct {
		name   string
		method string
		target string
		role   models.Role
		want   int
	}{
		{"operator can create", http.MethodPost, "/api/operations", models.RoleOperator, http.StatusOK},
		{"operator can finish", http.MethodPost, "/api/operations/OPR-001/finish", models.RoleOperator, http.StatusOK},
		{"operator can update", http.MethodPut, "/api/operations/OPR-001", models.RoleOperator, http.StatusOK},
		{"viewer can read", http.MethodGet, "/api/operations", models.RoleViewer, http.StatusOK},
		{"viewer cannot create", http.MethodPost, "/api/operations", models.RoleViewer, http.StatusForbidden},
		{"viewer cannot finish", http.MethodPost, "/api/operations/OPR-001/finish", models.RoleViewer, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handlerCalled = false
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, requestWithRole(tc.method, tc.target, tc.role))
			assert.Equal(t, tc.want, w.Code)
			assert.Equal(t, tc.want == http.StatusOK, handlerCalled)
		})
	}
}
