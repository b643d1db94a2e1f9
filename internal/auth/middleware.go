package auth

import (
	"github.com/gofiber/fiber/v2"
)

const LocalUserID = "user_id"

// Middleware rejects requests without a valid bearer token and stores the
// user id in c.Locals(LocalUserID).
func Middleware(v *Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := ParseBearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		userID, err := v.Verify(token)
		if err != nil {
			return err
		}
		c.Locals(LocalUserID, userID)
		return c.Next()
	}
}

// UserID returns the id stored by Middleware, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// HandshakeToken picks the realtime credential: the Authorization header
// when present, the "token" query parameter otherwise.
func HandshakeToken(c *fiber.Ctx) string {
	if token, err := ParseBearerToken(c.Get(fiber.HeaderAuthorization)); err == nil {
		return token
	}
	return c.Query("token")
}
