package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts the first failure
// into a 400 AppError the error handler can render.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		first := errs[0]
		return NewAppError(fiber.StatusBadRequest,
			fmt.Sprintf("field '%s' failed validation on '%s'", first.Field(), first.Tag()))
	}

	return NewAppError(fiber.StatusBadRequest, "invalid request body")
}
