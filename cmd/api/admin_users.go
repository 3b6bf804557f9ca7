package main

import (
	"errors"
	"net/http"
	"strconv"

	"reserva/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateUserPayload struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=3,max=72"`
	Role     string `json:"role" validate:"required,oneof=user business admin"`
}

type UpdateUserPayload struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=3,max=72"`
	Role     *string `json:"role" validate:"omitempty,oneof=user business admin"`
}

func (app *application) adminListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := app.store.Users.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if len(users) == 0 && adminUserPolicy.emptyListAsNotFound {
		app.notFoundResponse(w, r, errors.New("No users found"))
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]any{"users": users}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminGetUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	user, err := app.store.Users.GetByID(r.Context(), userID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("User not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]any{"user": user}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminCreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	user := &store.User{
		Name:  payload.Name,
		Email: payload.Email,
		Role:  payload.Role,
	}

	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		switch err {
		case store.ErrDuplicateEmail:
			app.fieldErrorsResponse(w, r, map[string][]string{
				"email": {"has already been taken"},
			})
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "User added successfully!",
		"user":    user,
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminUpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	var payload UpdateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	updates := map[string]any{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.Email != nil {
		updates["email"] = *payload.Email
	}
	if payload.Password != nil {
		updates["password"] = *payload.Password
	}
	if payload.Role != nil {
		updates["role"] = *payload.Role
	}

	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("no fields to update"))
		return
	}

	user, err := app.store.Users.Update(r.Context(), userID, updates)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("User not found"))
		case store.ErrDuplicateEmail:
			app.fieldErrorsResponse(w, r, map[string][]string{
				"email": {"has already been taken"},
			})
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "User updated successfully.",
		"user":    user,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminDeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid user ID"))
		return
	}

	user, err := app.store.Users.Delete(r.Context(), userID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("User not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "User deleted successfully!",
		"user":    user,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
