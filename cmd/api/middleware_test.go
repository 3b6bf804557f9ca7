package main

import (
	"net/http"
	"testing"

	"reserva/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		caller   string
		required string
		allowed  bool
	}{
		{store.RoleUser, store.RoleUser, true},
		{store.RoleBusiness, store.RoleBusiness, true},
		{store.RoleAdmin, store.RoleAdmin, true},
		{store.RoleAdmin, store.RoleUser, false},
		{store.RoleAdmin, store.RoleBusiness, false},
		{store.RoleUser, store.RoleAdmin, false},
		{store.RoleUser, store.RoleBusiness, false},
		{store.RoleBusiness, store.RoleUser, false},
		{store.RoleBusiness, store.RoleAdmin, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, authorize(tc.caller, tc.required),
			"caller %q against %q gate", tc.caller, tc.required)
	}
}

func TestAuthTokenMiddleware(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	t.Run("missing header is rejected", func(t *testing.T) {
		rr := executeRequest(jsonRequest(t, http.MethodPost, "/logout", nil), mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Token abc")

		rr := executeRequest(req, mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/logout", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")

		rr := executeRequest(req, mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Unauthenticated.", decodeBody(t, rr)["message"])
	})

	t.Run("valid token resolves the caller", func(t *testing.T) {
		token := registerAndLogin(t, mux, "Ann", "ann@example.com", "secret", store.RoleUser)

		rr := executeRequest(authedRequest(t, http.MethodGet, "/user/bookings/", token, nil), mux)
		// The list is empty but the caller got through the gate
		checkResponseCode(t, http.StatusNotFound, rr.Code)
	})
}

// Admin is a role like any other: it does not pass user- or
// business-gated route groups.
func TestAdminIsNotAWildcard(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	adminToken := registerAndLogin(t, mux, "Root", "root@example.com", "secret", store.RoleAdmin)

	for _, target := range []string{"/user/bookings/", "/user/reviews/", "/user/businesses", "/business/services/"} {
		rr := executeRequest(authedRequest(t, http.MethodGet, target, adminToken, nil), mux)
		checkResponseCode(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "forbidden", decodeBody(t, rr)["message"], "target %s", target)
	}
}

func TestRoleGates(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	userToken := registerAndLogin(t, mux, "Ann", "ann@example.com", "secret", store.RoleUser)
	bizToken := registerAndLogin(t, mux, "Bob", "bob@example.com", "secret", store.RoleBusiness)

	t.Run("user cannot reach admin routes", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/admin/users/", userToken, nil), mux)
		checkResponseCode(t, http.StatusForbidden, rr.Code)
	})

	t.Run("user cannot reach business routes", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/business/services/", userToken, nil), mux)
		checkResponseCode(t, http.StatusForbidden, rr.Code)
	})

	t.Run("business cannot reach user routes", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/user/bookings/", bizToken, nil), mux)
		checkResponseCode(t, http.StatusForbidden, rr.Code)
	})

	t.Run("business cannot reach admin routes", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/admin/businesses/", bizToken, nil), mux)
		checkResponseCode(t, http.StatusForbidden, rr.Code)
	})
}

func TestBasicAuthMiddleware(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	t.Run("health requires credentials", func(t *testing.T) {
		rr := executeRequest(jsonRequest(t, http.MethodGet, "/health", nil), mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("health accepts correct credentials", func(t *testing.T) {
		req := jsonRequest(t, http.MethodGet, "/health", nil)
		req.SetBasicAuth("admin", "admin")

		rr := executeRequest(req, mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", decodeBody(t, rr)["status"])
	})

	t.Run("health rejects wrong credentials", func(t *testing.T) {
		req := jsonRequest(t, http.MethodGet, "/health", nil)
		req.SetBasicAuth("admin", "wrong")

		rr := executeRequest(req, mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)
	})
}
