package handlers

import (
	"errors"
	"net/http"

	"rental-backend/internal/services"
	"rental-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, missing entity 404, overlap and in-use conflicts 409,
// ownership 401, illegal transition 400, anything else 500.
func respondServiceError(c *gin.Context, err error, fallback string) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		utils.MultiErrorResponse(c, http.StatusBadRequest, validationErr.Fields)
		return
	}

	var notFoundErr *services.NotFoundError
	if errors.As(err, &notFoundErr) {
		utils.ErrorResponse(c, http.StatusNotFound, notFoundErr.Error(), nil)
		return
	}

	var conflictErr *services.ConflictError
	if errors.As(err, &conflictErr) {
		utils.ErrorResponse(c, http.StatusConflict, conflictErr.Error(), nil)
		return
	}

	var transitionErr *services.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		utils.ErrorResponse(c, http.StatusBadRequest, transitionErr.Error(), nil)
		return
	}

	if errors.Is(err, services.ErrNotBookingOwner) {
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	if errors.Is(err, services.ErrVehicleInUse) {
		utils.ErrorResponse(c, http.StatusConflict, err.Error(), nil)
		return
	}

	utils.ErrorResponse(c, http.StatusInternalServerError, fallback, err)
}
