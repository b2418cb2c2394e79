// utils/response.go
package utils

import (
	"errors"
	"net/http"

	"freelancebill-backend/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// RespondWithAppError maps the error taxonomy onto HTTP status codes:
// validation 400, not found 404, conflict 409, data integrity 500.
func RespondWithAppError(c *gin.Context, err error) {
	var (
		ve *apperrors.ValidationError
		nf *apperrors.NotFoundError
		ce *apperrors.ConflictError
		de *apperrors.DataIntegrityError
	)
	switch {
	case errors.As(err, &ve):
		RespondWithError(c, http.StatusBadRequest, ve.Error())
	case errors.As(err, &nf):
		RespondWithError(c, http.StatusNotFound, nf.Error())
	case errors.As(err, &ce):
		RespondWithError(c, http.StatusConflict, ce.Error())
	case errors.As(err, &de):
		RespondWithError(c, http.StatusInternalServerError, de.Error())
	default:
		RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
