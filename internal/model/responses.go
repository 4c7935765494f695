package model

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ResponseBody is the envelope wrapped around every JSON response.
type ResponseBody struct {
	// The result of the request, omitted for errors
	Result interface{} `json:"result,omitempty"`

	// A brief description of the error, omitted for successes
	Error string `json:"error,omitempty"`

	// The status of the request
	Status string `json:"status"`
}

// RootResponse describes the service in the health check response body.
type RootResponse struct {
	Service     string `json:"service"`
	Title       string `json:"title"`
	Version     string `json:"version"`
	APIVersion  string `json:"api_version,omitempty"`
	Description string `json:"description,omitempty"`
}

// SuccessResponse builds the response envelope for a successful request.
func SuccessResponse(result interface{}, code int) ResponseBody {
	return ResponseBody{
		Result: result,
		Status: http.StatusText(code),
	}
}

// ErrorResponse builds the response envelope for a failed request.
func ErrorResponse(msg string, code int) ResponseBody {
	return ResponseBody{
		Error:  msg,
		Status: http.StatusText(code),
	}
}

// Success sends a successful JSON response to the caller.
func Success(ctx echo.Context, result interface{}, code int) error {
	return ctx.JSON(code, SuccessResponse(result, code))
}

// Error sends an error JSON response to the caller.
func Error(ctx echo.Context, msg string, code int) error {
	return ctx.JSON(code, ErrorResponse(msg, code))
}
