package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidInput wraps every struct validation failure.
var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return fmt.Errorf("%w: %s failed %q", ErrInvalidInput, first.Field(), first.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
