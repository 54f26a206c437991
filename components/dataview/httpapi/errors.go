package httpapi

import (
	"errors"
	"net/http"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

// StatusFor maps view errors to HTTP status codes.
func StatusFor(err error) int {
	var fetchErr *dataview.FetchError
	var actionErr *dataview.ActionError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dataview.ErrUnknownResource), errors.Is(err, dataview.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, dataview.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, dataview.ErrRecordBusy):
		return http.StatusConflict
	case errors.Is(err, dataview.ErrFieldNotAllowed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr), errors.As(err, &actionErr):
		return http.StatusBadGateway
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
