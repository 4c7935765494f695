package query

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Define a single validator to do all of the validations for us.
var v = validator.New()

// ValidatedPathParam extracts a path parameter and validates it.
func ValidatedPathParam(ctx echo.Context, name, validationTag string) (string, error) {
	value := ctx.Param(name)

	// Validate the value.
	if err := v.Var(value, validationTag); err != nil {
		return "", err
	}

	return value, nil
}
