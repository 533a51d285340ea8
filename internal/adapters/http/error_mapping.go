package httpadapter

import (
	"errors"
	"net/http"

	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
)

// mapErrorToHTTPStatus splits failures into "fix your input" and "try again
// later" classes.
func mapErrorToHTTPStatus(err error) int {
	var extractErr *domain.ExtractionError
	var aggregate *domain.AggregateFailure
	var malformed *domain.MalformedResponse

	switch {
	case domain.IsKind(err, domain.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrJobNotFound), domain.IsKind(err, domain.ErrNoteNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrUploadInFlight):
		return http.StatusConflict
	case errors.As(err, &extractErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &aggregate):
		return http.StatusServiceUnavailable
	case errors.As(err, &malformed):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
