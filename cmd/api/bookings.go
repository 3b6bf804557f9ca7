package main

import (
	"errors"
	"net/http"
	"strconv"

	"reserva/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateBookingPayload struct {
	ServiceID    int64  `json:"service_id" validate:"required"`
	OpeningHours string `json:"opening_hours" validate:"required,max=255"`
}

type UpdateBookingPayload struct {
	ServiceID    *int64  `json:"service_id" validate:"omitempty"`
	OpeningHours *string `json:"opening_hours" validate:"omitempty,max=255"`
}

func (app *application) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookings, err := app.store.Bookings.ListByUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if len(bookings) == 0 && bookingPolicy.emptyListAsNotFound {
		app.notFoundResponse(w, r, errors.New("No bookings found"))
		return
	}

	if err := writeJSON(w, http.StatusOK, bookings); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid booking ID"))
		return
	}

	booking, err := app.store.Bookings.GetByID(r.Context(), bookingID, user.ID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Booking not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, booking); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ctx := r.Context()

	exists, err := app.store.Services.Exists(ctx, payload.ServiceID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if !exists {
		app.fieldErrorsResponse(w, r, map[string][]string{
			"service_id": {"the selected service does not exist"},
		})
		return
	}

	// user_id comes from the caller, never from the body
	user := getUserFromContext(r)

	booking := &store.Booking{
		UserID:       user.ID,
		ServiceID:    payload.ServiceID,
		OpeningHours: payload.OpeningHours,
	}

	if err := app.store.Bookings.Create(ctx, booking); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]any{
		"message": "Booking added successfully!",
		"booking": booking,
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid booking ID"))
		return
	}

	var payload UpdateBookingPayload
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
	if payload.ServiceID != nil {
		exists, err := app.store.Services.Exists(ctx, *payload.ServiceID)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		if !exists {
			app.fieldErrorsResponse(w, r, map[string][]string{
				"service_id": {"the selected service does not exist"},
			})
			return
		}
		updates["service_id"] = *payload.ServiceID
	}
	if payload.OpeningHours != nil {
		updates["opening_hours"] = *payload.OpeningHours
	}

	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("no fields to update"))
		return
	}

	booking, err := app.store.Bookings.Update(ctx, bookingID, user.ID, updates)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Booking not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "Booking updated successfully.",
		"booking": booking,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteBookingHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid booking ID"))
		return
	}

	booking, err := app.store.Bookings.Delete(r.Context(), bookingID, user.ID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Booking not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "Booking deleted successfully!",
		"booking": booking,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
