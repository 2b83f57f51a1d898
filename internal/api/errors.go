package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alcyxob/training-engine/internal/domain"
	"alcyxob/training-engine/internal/service"
)

// statusFor maps service and domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	// import errors may wrap a validation failure of an embedded record
	case errors.Is(err, domain.ErrImport):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAthleteMismatch):
		return http.StatusConflict
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrModelNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrArchiveUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError aborts with the mapped status. Internal errors are logged and
// replaced with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("athlete_id", c.Param("athleteId")),
			zap.Error(err),
		)
		abortWithError(c, code, "Internal server error")
		return
	}
	abortWithError(c, code, err.Error())
}
