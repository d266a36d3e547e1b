package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/nPaBwaYT/magma/validation/validators"
)

func New() (*validator.Validate, error) {
	validate := validator.New()
	if err := validate.RegisterValidation("hexblock", validators.ValidateHexBlock); err != nil {
		return nil, err
	}
	return validate, nil
}
