package main

import (
	"errors"
	"net/http"
	"strconv"

	"reserva/internal/store"

	"github.com/go-chi/chi/v5"
)

type CreateReviewPayload struct {
	BusinessID int64  `json:"business_id" validate:"required"`
	Review     string `json:"review" validate:"required,max=1000"`
	Stars      int    `json:"stars" validate:"required,min=1,max=5"`
}

type UpdateReviewPayload struct {
	BusinessID *int64  `json:"business_id" validate:"omitempty"`
	Review     *string `json:"review" validate:"omitempty,max=1000"`
	Stars      *int    `json:"stars" validate:"omitempty,min=1,max=5"`
}

func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviews, err := app.store.Reviews.ListByUser(r.Context(), user.ID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if len(reviews) == 0 && reviewPolicy.emptyListAsNotFound {
		app.notFoundResponse(w, r, errors.New("No reviews found"))
		return
	}

	if err := writeJSON(w, http.StatusOK, reviews); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) listBusinessReviewsHandler(w http.ResponseWriter, r *http.Request) {
	businessID, err := strconv.ParseInt(chi.URLParam(r, "businessID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid business id"))
		return
	}

	ctx := r.Context()

	if _, err := app.store.Businesses.GetByID(ctx, businessID); err != nil {
		switch err {
		case store.ErrNotFound:
			app.badRequestResponse(w, r, errors.New("invalid business id"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	reviews, err := app.store.Reviews.ListByBusiness(ctx, businessID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if len(reviews) == 0 && reviewPolicy.emptyListAsNotFound {
		app.notFoundResponse(w, r, errors.New("no reviews found"))
		return
	}

	if err := writeJSON(w, http.StatusOK, reviews); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID, user.ID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Review not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := writeJSON(w, http.StatusOK, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	ctx := r.Context()

	if _, err := app.store.Businesses.GetByID(ctx, payload.BusinessID); err != nil {
		switch err {
		case store.ErrNotFound:
			app.fieldErrorsResponse(w, r, map[string][]string{
				"business_id": {"the selected business does not exist"},
			})
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	user := getUserFromContext(r)

	review := &store.Review{
		UserID:     user.ID,
		BusinessID: payload.BusinessID,
		Review:     payload.Review,
		Stars:      payload.Stars,
	}

	if err := app.store.Reviews.Create(ctx, review); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	response := map[string]any{
		"message": "Review added successfully!",
		"review":  review,
	}

	if err := writeJSON(w, http.StatusCreated, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	var payload UpdateReviewPayload
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
	if payload.BusinessID != nil {
		if _, err := app.store.Businesses.GetByID(ctx, *payload.BusinessID); err != nil {
			switch err {
			case store.ErrNotFound:
				app.fieldErrorsResponse(w, r, map[string][]string{
					"business_id": {"the selected business does not exist"},
				})
			default:
				app.internalServerError(w, r, err)
			}
			return
		}
		updates["business_id"] = *payload.BusinessID
	}
	if payload.Review != nil {
		updates["review"] = *payload.Review
	}
	if payload.Stars != nil {
		updates["stars"] = *payload.Stars
	}

	if len(updates) == 0 {
		app.badRequestResponse(w, r, errors.New("no fields to update"))
		return
	}

	review, err := app.store.Reviews.Update(ctx, reviewID, user.ID, updates)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Review not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "Review updated successfully.",
		"review":  review,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	user := getUserFromContext(r)

	reviewID, err := strconv.ParseInt(chi.URLParam(r, "reviewID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, errors.New("invalid review ID"))
		return
	}

	review, err := app.store.Reviews.Delete(r.Context(), reviewID, user.ID)
	if err != nil {
		switch err {
		case store.ErrNotFound:
			app.notFoundResponse(w, r, errors.New("Review not found"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	response := map[string]any{
		"message": "Review deleted successfully!",
		"review":  review,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		app.internalServerError(w, r, err)
	}
}
