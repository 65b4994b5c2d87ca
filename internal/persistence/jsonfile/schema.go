package jsonfile

import (
	"github.com/go-playground/validator/v10"

	"github.com/example/room-availability/internal/scheduler"
)

func newSchema() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("checkout", func(fl validator.FieldLevel) bool {
		return scheduler.ValidCheckoutTime(fl.Field().String())
	})
	return v
}
