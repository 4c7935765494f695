package controllers

import (
	"net/http"

	"github.com/hostpool/sls/internal/lease"
	"github.com/pkg/errors"
)

// httpStatusCode maps an allocation failure to the HTTP status returned to
// the caller. Quota and pool exhaustion are expected, recoverable states
// for the free tier; anything unrecognized is an internal error.
func httpStatusCode(err error) int {
	switch errors.Cause(err) {
	case lease.ErrQuotaExceeded:
		return http.StatusTooManyRequests
	case lease.ErrNoSlotsAvailable:
		return http.StatusServiceUnavailable
	case lease.ErrAlreadyLeased:
		return http.StatusConflict
	case lease.ErrSlotNotFound:
		return http.StatusNotFound
	case lease.ErrSlotNotAvailable:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
