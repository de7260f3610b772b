package dashboard

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/hivewatch/beedash/apperr"
)

// jsonResponse writes payload, or the apperr payload when payload is an error.
// A zero code means 200 for values and the error's own status for errors.
func jsonResponse(c *fiber.Ctx, code int, payload interface{}) error {
	if err, ok := payload.(error); ok {
		status := code
		if status == 0 {
			status = apperr.Status(err)
		}
		return c.Status(status).JSON(apperr.Payload(err))
	}
	if code == 0 {
		code = http.StatusOK
	}
	return c.Status(code).JSON(payload)
}

// nonNil keeps empty results serialized as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
