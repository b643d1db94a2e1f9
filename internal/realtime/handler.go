package realtime

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/fathima-sithara/linkedin-clone-backend/internal/auth"
)

// Mount registers the websocket endpoint at path. The token is verified
// before the upgrade so an unauthenticated client gets a plain 401 instead
// of an open socket.
func (m *Manager) Mount(r fiber.Router, path string, v *auth.Verifier) {
	r.Use(path, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, err := v.Verify(auth.HandshakeToken(c))
		if err != nil {
			return err
		}
		c.Locals(auth.LocalUserID, userID)
		return c.Next()
	})

	r.Get(path, websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals(auth.LocalUserID).(string)
		m.Serve(c, userID)
	}, websocket.Config{
		Origins:         m.opts.Origins,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}))
}
