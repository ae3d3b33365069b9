package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketpulse/dto"
	"marketpulse/models"
)

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateIdentity):
		status = http.StatusConflict
	case errors.Is(err, models.ErrSchemaViolation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrGeneratorUnavailable):
		status = http.StatusBadGateway
	}
	c.JSON(status, dto.ErrorResponseDTO{Error: err.Error()})
}
