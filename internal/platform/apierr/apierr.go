package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lnco/artifact-service/internal/domain"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps a domain sentinel to its HTTP shape. Forbidden and NotFound
// stay distinct so a caller probing for existence vs. authorization gets a
// usable signal.
func FromError(err error) *Error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, domain.ErrForbidden):
		return New(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, domain.ErrFetchFailed):
		return New(http.StatusBadGateway, "fetch_failed", err)
	case errors.Is(err, domain.ErrConversionFailed):
		return New(http.StatusUnprocessableEntity, "conversion_failed", err)
	case errors.Is(err, domain.ErrIndexCorrupt):
		return New(http.StatusInternalServerError, "index_corrupt", err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		return New(http.StatusServiceUnavailable, "store_unavailable", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
