package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/apperr"
)

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// InvalidRequest is a request that failed DTO validation.
type InvalidRequest struct {
	Errors []ValidationError
}

func (e *InvalidRequest) Error() string {
	if len(e.Errors) == 0 {
		return "invalid request"
	}
	return e.Errors[0].Message
}

func (e *InvalidRequest) Unwrap() error { return apperr.ErrValidation }

// FormatValidationErrors converts validator.ValidationErrors into field
// messages. Other errors return nil.
func FormatValidationErrors(err error) []ValidationError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]ValidationError, len(ve))
	for i, fe := range ve {
		out[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag()}
		switch fe.Tag() {
		case "required":
			out[i].Message = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			out[i].Message = "Valid email required"
		case "min":
			out[i].Message = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		case "max":
			out[i].Message = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		default:
			out[i].Message = fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	return out
}

// ErrorHandler maps application errors to status codes and {error} bodies.
// Anything unrecognised is logged and reported as a 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var invalid *InvalidRequest
		if errors.As(err, &invalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  invalid.Error(),
				"errors": invalid.Errors,
			})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		code := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, apperr.ErrValidation),
			errors.Is(err, apperr.ErrConflict),
			errors.Is(err, apperr.ErrInvalidCredentials):
			code = fiber.StatusBadRequest
		case errors.Is(err, apperr.ErrUnauthenticated):
			code = fiber.StatusUnauthorized
		case errors.Is(err, apperr.ErrForbidden):
			code = fiber.StatusForbidden
		case errors.Is(err, apperr.ErrNotFound):
			code = fiber.StatusNotFound
		}
		if code == fiber.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(code).JSON(fiber.Map{"error": "Server error"})
		}
		return c.Status(code).JSON(fiber.Map{"error": apperr.Message(err)})
	}
}
