package helper

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Error codes shared across features.
const (
	ErrMissingFields      = "missing_fields"
	ErrInvalidIDs         = "invalid_ids"
	ErrForbidden          = "forbidden"
	ErrUnauthorized       = "unauthorized"
	ErrDBError            = "db_error"
	ErrInvalidPagination  = "invalid_pagination"
	ErrNoFieldsToUpdate   = "no_fields_to_update"
	ErrInvalidCredentials = "invalid_credentials"
)

// JsonError builds the standard error envelope:
//
//	{ "error": <code>, "message": <text>, "meta": { "request_id": ... } }
//
// meta.request_id is always attached from the request-id middleware.
func JsonError(c *fiber.Ctx, status int, code, message string) error {
	return JsonErrorMeta(c, status, code, message, nil)
}

// JsonErrorMeta is JsonError with extra meta key/values (retry_after,
// remaining_attempts, violations, ...).
func JsonErrorMeta(c *fiber.Ctx, status int, code, message string, meta fiber.Map) error {
	payload := fiber.Map{"error": code}
	if message != "" {
		payload["message"] = message
	}

	merged := fiber.Map{}
	for k, v := range meta {
		merged[k] = v
	}
	if reqID, ok := c.Locals("request_id").(string); ok && reqID != "" {
		if _, exists := merged["request_id"]; !exists {
			merged["request_id"] = reqID
		}
	}
	if len(merged) > 0 {
		payload["meta"] = merged
	}

	return c.Status(status).JSON(payload)
}

// JsonErrorDetails adds an arbitrary details payload (field errors etc).
func JsonErrorDetails(c *fiber.Ctx, status int, code, message string, details any) error {
	payload := fiber.Map{"error": code, "message": message, "details": details}
	if reqID, ok := c.Locals("request_id").(string); ok && reqID != "" {
		payload["meta"] = fiber.Map{"request_id": reqID}
	}
	return c.Status(status).JSON(payload)
}

// ValidationError maps validator.v10 failures into the envelope
// (field -> violated tag) with a stable "validation" code.
func ValidationError(c *fiber.Ctx, err error) error {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return JsonError(c, fiber.StatusBadRequest, "validation", "Invalid input")
	}
	fields := make(map[string]string, len(ve))
	for _, fieldErr := range ve {
		fields[fieldErr.Field()] = fieldErr.Tag()
	}
	return JsonErrorDetails(c, fiber.StatusBadRequest, "validation", "Validation failed", fields)
}

func JsonOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

func JsonCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}
