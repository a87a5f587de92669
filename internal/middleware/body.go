package middleware

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
)

// ErrInvalidBody is returned for request bodies that are not valid JSON for
// the target type. The decoder's own message is never exposed.
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")

// ParseBody decodes a JSON request body into dst regardless of the declared
// Content-Type. An empty body leaves dst untouched.
func ParseBody(c *fiber.Ctx, dst any) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, dst); err != nil {
		return ErrInvalidBody
	}
	return nil
}
