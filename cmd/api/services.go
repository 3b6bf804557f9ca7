package main

import (
	"errors"
	"net/http"
	"strconv"

	"reserva/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateServicePayload struct {
	Name        string   `json:"name" validate:"required,max=255"`
	Description string   `json:"description" validate:"required,max=1000"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

type UpdateServicePayload struct {
	Name        *string  `json:"name" validate:"omitempty,max=255"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
}

// callerBusiness resolves the business owned by the authenticated caller.
// Business-scoped routes operate on that business only.
func (app *application) callerBusiness(w http.ResponseWriter, r *http.Request) (*store.Business, bool) {
	user := getUserFromContext(r)

	business, err := app.store.Businesses.GetByOwner(r.Context(), user.ID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("this user has no business yet"))
		default:
			app.internalServerError(w, r, err)
		}
		return nil, false
	}

	return business, true
}

func (app *application) listServicesHandler(w http.ResponseWriter, r *http.Request) {
	business, ok := app.callerBusiness(w, r)
	if !ok {
		return
	}

	services, err := app.store.Services.ListByBusiness(r.Context(), business.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if len(services) == 0 && servicePolicy.emptyListAsNotFound {
		app.notFoundResponse(w, r, errors.New("No services found"))
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]any{"services": services}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getServiceHandler(w http.ResponseWriter, r *http.Request) {
	business, ok := app.callerBusiness(w, r)
	if !ok {
		return
	}

	serviceID, err := strconv.ParseInt(chi.URLParam(r, "serviceID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid service ID"))
		return
	}

	service, err := app.store.Services.GetByID(r.Context(), serviceID, business.ID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Service not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]any{"service": service}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createServiceHandler(w http.ResponseWriter, r *http.Request) {
	business, ok := app.callerBusiness(w, r)
	if !ok {
		return
	}

	var payload CreateServicePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	service := &store.Service{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       *payload.Price,
		BusinessID:  business.ID,
	}

	if err := app.store.Services.Create(r.Context(), service); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]any{
		"message": "Service added successfully!",
		"service": service,
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateServiceHandler(w http.ResponseWriter, r *http.Request) {
	business, ok := app.callerBusiness(w, r)
	if !ok {
		return
	}

	serviceID, err := strconv.ParseInt(chi.URLParam(r, "serviceID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid service ID"))
		return
	}

	var payload UpdateServicePayload
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
	if payload.Description != nil {
		updates["description"] = *payload.Description
	}
	if payload.Price != nil {
		updates["price"] = *payload.Price
	}

	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("no fields to update"))
		return
	}

	service, err := app.store.Services.Update(r.Context(), serviceID, business.ID, updates)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Service not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "Service updated successfully.",
		"service": service,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteServiceHandler(w http.ResponseWriter, r *http.Request) {
	business, ok := app.callerBusiness(w, r)
	if !ok {
		return
	}

	serviceID, err := strconv.ParseInt(chi.URLParam(r, "serviceID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid service ID"))
		return
	}

	service, err := app.store.Services.Delete(r.Context(), serviceID, business.ID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Service not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "Service deleted successfully!",
		"service": service,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
