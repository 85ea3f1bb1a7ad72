package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/identity"
)

type fakeSessions struct {
	user *identity.User
}

func (f *fakeSessions) CurrentUser() (*identity.User, bool) {
	if f.user == nil {
		return nil, false
	}
	return f.user, true
}

func TestRequireUser_SignedIn(t *testing.T) {
	sessions := &fakeSessions{user: &identity.User{ID: "user-1", Role: "customer"}}

	var seenID string
	handler := RequireUser(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", seenID)
}

func TestRequireUser_SignedOut(t *testing.T) {
	sessions := &fakeSessions{}

	called := false
	handler := RequireUser(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestRequireRole_Allowed(t *testing.T) {
	sessions := &fakeSessions{user: &identity.User{ID: "admin-1", Role: "admin"}}

	called := false
	handler := RequireUser(sessions)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/orders/order-1/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireRole_Forbidden(t *testing.T) {
	sessions := &fakeSessions{user: &identity.User{ID: "user-1", Role: "customer"}}

	handler := RequireUser(sessions)(RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/orders/order-1/status", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_WithoutRequireUser(t *testing.T) {
	handler := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUser_EmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	user, ok := GetUser(req.Context())

	require.False(t, ok)
	assert.Nil(t, user)
	assert.Empty(t, GetUserID(req.Context()))
}
