package main

import (
	"net/http"
	"testing"

	"reserva/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUsers(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	token := registerAndLogin(t, mux, "Root", "root@example.com", "secret", store.RoleAdmin)

	t.Run("list includes the admin itself", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/admin/users/", token, nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		users := decodeBody(t, rr)["users"].([]any)
		require.Len(t, users, 1)
		assert.Equal(t, "root@example.com", users[0].(map[string]any)["email"])
	})

	t.Run("create provisions an account of any role", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodPost, "/admin/users/", token, map[string]any{
			"name":     "Bob",
			"email":    "bob@example.com",
			"password": "secret",
			"role":     "business",
		}), mux)

		checkResponseCode(t, http.StatusCreated, rr.Code)

		user := decodeBody(t, rr)["user"].(map[string]any)
		assert.Equal(t, "business", user["role"])

		// The new account can log in right away
		rr = executeRequest(jsonRequest(t, http.MethodPost, "/login", map[string]any{
			"email": "bob@example.com", "password": "secret",
		}), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
	})

	t.Run("duplicate email is a field error", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodPost, "/admin/users/", token, map[string]any{
			"name":     "Bob Again",
			"email":    "bob@example.com",
			"password": "secret",
			"role":     "user",
		}), mux)

		checkResponseCode(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("get returns a single user", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/admin/users/2", token, nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		user := decodeBody(t, rr)["user"].(map[string]any)
		assert.Equal(t, "bob@example.com", user["email"])
	})

	t.Run("unknown user reads as absent", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/admin/users/999", token, nil), mux)
		checkResponseCode(t, http.StatusNotFound, rr.Code)
	})

	t.Run("password update re-hashes and takes effect", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodPut, "/admin/users/2", token, map[string]any{
			"password": "rotated",
		}), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		rr = executeRequest(jsonRequest(t, http.MethodPost, "/login", map[string]any{
			"email": "bob@example.com", "password": "secret",
		}), mux)
		checkResponseCode(t, http.StatusUnauthorized, rr.Code)

		rr = executeRequest(jsonRequest(t, http.MethodPost, "/login", map[string]any{
			"email": "bob@example.com", "password": "rotated",
		}), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)
	})

	t.Run("role update is validated", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodPut, "/admin/users/2", token, map[string]any{
			"role": "overlord",
		}), mux)
		checkResponseCode(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("delete returns the final snapshot", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodDelete, "/admin/users/2", token, nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		user := decodeBody(t, rr)["user"].(map[string]any)
		assert.Equal(t, "bob@example.com", user["email"])

		rr = executeRequest(authedRequest(t, http.MethodGet, "/admin/users/2", token, nil), mux)
		checkResponseCode(t, http.StatusNotFound, rr.Code)
	})
}

func TestAdminBusinesses(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	token := registerAndLogin(t, mux, "Root", "root@example.com", "secret", store.RoleAdmin)
	registerAndLogin(t, mux, "Bob", "bob@example.com", "secret", store.RoleBusiness)

	t.Run("empty list answers with an empty array", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/admin/businesses/", token, nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		// An empty collection serializes as [], never null
		assert.JSONEq(t, `{"businesses": []}`, rr.Body.String())
	})

	t.Run("create trusts the supplied owner after checking it exists", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodPost, "/admin/businesses/", token, map[string]any{
			"name":          "Corner Barbershop",
			"user_id":       int64(999),
			"opening_hours": "9-5",
			"status":        "open",
		}), mux)

		checkResponseCode(t, http.StatusUnprocessableEntity, rr.Code)
		fieldErrors := decodeBody(t, rr)["errors"].(map[string]any)
		assert.Contains(t, fieldErrors, "user_id")

		rr = executeRequest(authedRequest(t, http.MethodPost, "/admin/businesses/", token, map[string]any{
			"name":          "Corner Barbershop",
			"user_id":       int64(2),
			"opening_hours": "9-5",
			"status":        "open",
		}), mux)

		checkResponseCode(t, http.StatusOK, rr.Code)

		business := decodeBody(t, rr)["business"].(map[string]any)
		assert.Equal(t, float64(2), business["user_id"], "ownership comes from the payload, not the caller")
	})

	t.Run("unknown status fails validation", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodPost, "/admin/businesses/", token, map[string]any{
			"name":          "Night Shop",
			"user_id":       int64(2),
			"opening_hours": "9-5",
			"status":        "dormant",
		}), mux)

		checkResponseCode(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("list embeds the owner", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/admin/businesses/", token, nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		businesses := decodeBody(t, rr)["businesses"].([]any)
		require.Len(t, businesses, 1)

		owner := businesses[0].(map[string]any)["user"].(map[string]any)
		assert.Equal(t, "bob@example.com", owner["email"])
	})

	t.Run("get embeds the owner", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodGet, "/admin/businesses/1", token, nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		business := decodeBody(t, rr)["business"].(map[string]any)
		owner := business["user"].(map[string]any)
		assert.Equal(t, "bob@example.com", owner["email"])
	})

	t.Run("reassigning to an unknown owner is refused", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodPut, "/admin/businesses/1", token, map[string]any{
			"user_id": int64(999),
		}), mux)

		checkResponseCode(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("partial update touches only the sent fields", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodPut, "/admin/businesses/1", token, map[string]any{
			"status": "closed",
		}), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		business := decodeBody(t, rr)["business"].(map[string]any)
		assert.Equal(t, "closed", business["status"])
		assert.Equal(t, "Corner Barbershop", business["name"])
	})

	t.Run("delete returns the final snapshot", func(t *testing.T) {
		rr := executeRequest(authedRequest(t, http.MethodDelete, "/admin/businesses/1", token, nil), mux)
		checkResponseCode(t, http.StatusOK, rr.Code)

		business := decodeBody(t, rr)["business"].(map[string]any)
		assert.Equal(t, float64(1), business["id"])

		rr = executeRequest(authedRequest(t, http.MethodGet, "/admin/businesses/1", token, nil), mux)
		checkResponseCode(t, http.StatusNotFound, rr.Code)
	})
}
