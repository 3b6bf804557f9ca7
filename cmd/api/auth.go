package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"reserva/internal/mailer"
	"reserva/internal/store"

	"github.com/google/uuid"
)

func hashToken(plaintext string) string {
	hash := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(hash[:])
}

// redirectPathForRole is a pure function of the role; the SPA lands each
// role on its own dashboard after login.
func redirectPathForRole(role string) string {
	switch role {
	case store.RoleAdmin:
		return "/admin/dashboard"
	case store.RoleBusiness:
		return "/business/dashboard"
	case store.RoleUser:
		return "/user/dashboard"
	default:
		return "/"
	}
}

type RegisterUserPayload struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=3,max=72"`
	Role     string `json:"role" validate:"required,oneof=user business admin"`
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload RegisterUserPayload
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

	ctx := r.Context()

	if err := app.store.Users.Create(ctx, user); err != nil {
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
		"message": "User successfully registered!",
		"user":    user,
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ctx := r.Context()

	// An unknown email and a wrong password must be indistinguishable
	user, err := app.store.Users.GetByEmail(ctx, payload.Email)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.unauthorizedErrorResponse(w, r, errors.New("Invalid credentials!"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := user.Password.Compare(payload.Password); err != nil {
		app.unauthorizedErrorResponse(w, r, errors.New("Invalid credentials!"))
		return
	}

	token, err := app.authenticator.GenerateToken(user.ID, user.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Tokens.Create(ctx, user.ID, hashToken(token)); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]any{
		"message":      "User successfully logged in",
		"access_token": token,
		"token_type":   "Bearer",
		"user":         user,
		"redirect_to":  redirectPathForRole(user.Role),
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

// logoutHandler revokes exactly the presented token. Other tokens issued to
// the same user stay valid.
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	hash := getTokenHashFromContext(r)

	if err := app.store.Tokens.Delete(r.Context(), hash); err != nil {
		switch err {
		case store.ErrNotFound:
			app.unauthorizedErrorResponse(w, r, errors.New("Unauthenticated."))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "User successfully logged out",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	if err := writeJSON(w, http.StatusOK, user); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ForgotPasswordPayload struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (app *application) forgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ForgotPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ctx := r.Context()

	user, err := app.store.Users.GetByEmail(ctx, payload.Email)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("email not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Single-use token: plaintext goes into the mail, only the hash is stored
	plainToken := uuid.New().String()
	expires := time.Now().UTC().Add(app.config.mail.resetExp)

	if err := app.store.Users.SetResetToken(ctx, user.Email, hashToken(plainToken), expires); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password/?token=%s", app.config.frontendURL, plainToken)

	vars := struct {
		Username string
		ResetURL string
	}{
		Username: user.Name,
		ResetURL: resetURL,
	}

	// Delivery failure does not roll back the token; a retry of this
	// endpoint simply mints a fresh one.
	status, err := app.mailer.Send(mailer.ResetPasswordTemplate, user.Name, user.Email, vars)
	if err != nil {
		app.logger.Errorw("error sending reset password email", "error", err)
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("reset password email sent", "status code", status)

	if err := writeJSON(w, http.StatusOK, map[string]string{"message": "Reset link sent"}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type ResetPasswordPayload struct {
	Token    string `json:"token" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=3,max=72"`
}

func (app *application) resetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var payload ResetPasswordPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ctx := r.Context()

	user, err := app.store.Users.GetByResetToken(ctx, hashToken(payload.Token))
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.badRequestResponse(w, r, errors.New("invalid or expired token"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// The token is bound to the email it was requested for
	if user.Email != payload.Email {
		app.badRequestResponse(w, r, errors.New("invalid or expired token"))
		return
	}

	if time.Now().UTC().After(user.ResetPasswordExpires.UTC()) {
		app.badRequestResponse(w, r, errors.New("invalid or expired token"))
		return
	}

	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.ResetPassword(ctx, user); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"}); err != nil {
		app.internalServerError(w, r, err)
	}
}
