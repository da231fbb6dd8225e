package validators

import (
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/labstack/gommon/log"
)

// New returns a validator with the custom tags used by the request contracts.
func New() *validator.Validate {
	validate := validator.New()
	Register(validate)
	return validate
}

func Register(validate *validator.Validate) {
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		log.Warnf("failed to register 'notblank' validator: %v", err)
	}
}
