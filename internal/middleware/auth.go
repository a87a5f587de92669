package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/contact-keeper/contact_keeper/internal/apperr"
)

// TokenHeader carries the raw token, without a scheme prefix.
const TokenHeader = "x-auth-token"

const userIDLocal = "user_id"

type userIDKey struct{}

// Guard short-circuits with these errors; the expired and tampered cases share one.
var (
	ErrNoToken      = apperr.Unauthenticated("No token, authorization denied")
	ErrTokenInvalid = apperr.Unauthenticated("Token is not valid")
)

// TokenVerifier recovers the user id from a presented token.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}

// Auth returns a middleware that requires a valid x-auth-token before the
// next handler runs. It performs no store access.
func Auth(tokens TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(TokenHeader)
		if raw == "" {
			return ErrNoToken
		}
		userID, err := tokens.Verify(raw)
		if err != nil {
			return ErrTokenInvalid
		}

		c.Locals(userIDLocal, userID)
		c.SetUserContext(ContextWithUserID(c.UserContext(), userID))
		return c.Next()
	}
}

// UserID returns the authenticated caller set by Auth, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDLocal).(string)
	return id
}

// ContextWithUserID attaches the caller's id to ctx.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext reads the id stored by ContextWithUserID.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}
