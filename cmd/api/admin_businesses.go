package main

import (
	"errors"
	"net/http"
	"strconv"

	"reserva/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateBusinessPayload struct {
	Name         string `json:"name" validate:"required,max=255"`
	UserID       int64  `json:"user_id" validate:"required"`
	OpeningHours string `json:"opening_hours" validate:"required,max=255"`
	Status       string `json:"status" validate:"required,oneof=open closed"`
}

type UpdateBusinessPayload struct {
	Name         *string `json:"name" validate:"omitempty,max=255"`
	UserID       *int64  `json:"user_id" validate:"omitempty"`
	OpeningHours *string `json:"opening_hours" validate:"omitempty,max=255"`
	Status       *string `json:"status" validate:"omitempty,oneof=open closed"`
}

func (app *application) adminListBusinessesHandler(w http.ResponseWriter, r *http.Request) {
	businesses, err := app.store.Businesses.List(r.Context(), true)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if len(businesses) == 0 && adminBusinessPolicy.emptyListAsNotFound {
		app.notFoundResponse(w, r, errors.New("No businesses found"))
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]any{"businesses": businesses}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminGetBusinessHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(chi.URLParam(r, "businessID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid business ID"))
		return
	}

	business, err := app.store.Businesses.GetByID(r.Context(), businessID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Business not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]any{"business": business}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminCreateBusinessHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateBusinessPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ctx := r.Context()

	// Admins assign businesses to arbitrary owners, so the supplied
	// user_id must point at a real user.
	ownerID := payload.UserID
	if !adminBusinessPolicy.trustsCallerOwnership {
		ownerID = getUserFromContext(r).ID
	} else if _, err := app.store.Users.GetByID(ctx, payload.UserID); err != nil {
		switch err {
		case store.ErrNotFound:
			app.fieldErrorsResponse(w, r, map[string][]string{
				"user_id": {"the selected user does not exist"},
			})
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	business := &store.Business{
		Name:         payload.Name,
		UserID:       ownerID,
		OpeningHours: payload.OpeningHours,
		Status:       payload.Status,
	}

	if err := app.store.Businesses.Create(ctx, business); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]any{
		"message":  "Business added successfully!",
		"business": business,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminUpdateBusinessHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(chi.URLParam(r, "businessID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid business ID"))
		return
	}

	var payload UpdateBusinessPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ctx := r.Context()

	updates := map[string]any{}
	if payload.Name != nil {
		updates["name"] = *payload.Name
	}
	if payload.UserID != nil {
		if _, err := app.store.Users.GetByID(ctx, *payload.UserID); err != nil {
			switch err {
			case store.ErrNotFound:
				app.fieldErrorsResponse(w, r, map[string][]string{
					"user_id": {"the selected user does not exist"},
				})
			default:
				app.internalServerError(w, r, err)
			}
			return
		}
		updates["user_id"] = *payload.UserID
	}
	if payload.OpeningHours != nil {
		updates["opening_hours"] = *payload.OpeningHours
	}
	if payload.Status != nil {
		updates["status"] = *payload.Status
	}

	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("no fields to update"))
		return
	}

	business, err := app.store.Businesses.Update(ctx, businessID, updates)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Business not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message":  "Business updated successfully.",
		"business": business,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) adminDeleteBusinessHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(chi.URLParam(r, "businessID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid business ID"))
		return
	}

	business, err := app.store.Businesses.Delete(r.Context(), businessID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Business not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message":  "Business deleted successfully!",
		"business": business,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
