package main

import (
	"errors"
	"net/http"
)

// listBusinessesHandler serves the public directory of businesses that
// regular users browse before booking. Owners are not embedded here.
func (app *application) listBusinessesHandler(w http.ResponseWriter, r *http.Request) {
	businesses, err := app.store.Businesses.List(r.Context(), false)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if len(businesses) == 0 && businessListPolicy.emptyListAsNotFound {
		app.notFoundResponse(w, r, errors.New("No businesses found"))
		return
	}

	if err := writeJSON(w, http.StatusOK, map[string]any{"businesses": businesses}); err != nil {
		app.internalServerError(w, r, err)
	}
}
