// Package api SLS
//
// Documentation of the SLS Api
//
//	Schemes: http
//	BasePath: /
//	Version: V1
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package swagger

import (
	"github.com/hostpool/sls/internal/lease"
	"github.com/hostpool/sls/internal/model"
)

// Note: the comments in this package don't conform to the convention of including the name of the entity that the
// comment describes. The reason for this is because the comments appear as-is in the API documentation. Confusing
// documentation is produced when the structure names appear in the API documentation.

// Error
//
// Having the same object definition for multiple HTTP response status codes seems to confuse ReDoc, so we're using
// aliases as a workaround.
//
// swagger:response errorResponse
type ErrorResponse struct {

	// in: body
	Body struct {

		// A brief description of the error
		Error string `json:"error"`

		// The status of the request
		Status string `json:"status"`
	}
}

// Bad Request
//
// swagger:response badRequestResponse
type BadRequestResponse struct {
	ErrorResponse
}

// Not Found
//
// swagger:response notFoundResponse
type NotFoundResponse struct {
	ErrorResponse
}

// Conflict
//
// Returned when the user already holds an active session or when a bind
// targets a slot that is already occupied.
//
// swagger:response conflictResponse
type ConflictResponse struct {
	ErrorResponse
}

// Too Many Requests
//
// Returned when the rolling-window cap or the lifetime quota cap has been
// hit.
//
// swagger:response quotaExceededResponse
type QuotaExceededResponse struct {
	ErrorResponse
}

// Internal Server Error
//
// swagger:response internalServerErrorResponse
type InternalServerErrorResponse struct {
	ErrorResponse
}

// Documentation for the successful response body wrapper.
//
// swagger:model
type ResponseBodyWrapper struct {

	// The status of the request
	Status string `json:"status"`
}

// Service Information
//
// swagger:response rootResponse
type RootResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The service information
		Result model.RootResponse `json:"result"`
	}
}

// Session
//
// swagger:response sessionResponse
type SessionResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The allocated session
		Result lease.Session `json:"result"`
	}
}

// Freemium Usage
//
// swagger:response usageResponse
type UsageResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The freemium usage projection
		Result model.FreemiumUsageData `json:"result"`
	}
}

// Slot Listing
//
// swagger:response slotListing
type SlotListingWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The slots
		Result []model.Slot `json:"result"`
	}
}

// Slot Occupancy Listing
//
// swagger:response slotOccupancyListing
type SlotOccupancyListingWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The occupancy pairs
		Result []model.SlotOccupancy `json:"result"`
	}
}

// Slot
//
// swagger:response slotResponse
type SlotResponseWrapper struct {

	// in:body
	Body struct {
		ResponseBodyWrapper

		// The updated slot
		Result model.Slot `json:"result"`
	}
}
