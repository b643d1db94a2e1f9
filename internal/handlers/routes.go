package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Posts    *PostHandler
	Messages *MessageHandler
}

// Register mounts the REST API under /api. requireAuth guards every route
// that acts on behalf of a user.
func (h *Handlers) Register(app fiber.Router, requireAuth fiber.Handler) {
	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)

	users := api.Group("/users", requireAuth)
	users.Get("/me", h.Users.Me)
	users.Put("/me", h.Users.Update)
	users.Delete("/me", h.Users.Delete)
	users.Get("/:id/presence", h.Users.Presence)

	posts := api.Group("/posts")
	posts.Get("/", h.Posts.List)
	posts.Get("/:id", h.Posts.Get)
	posts.Post("/", requireAuth, h.Posts.Create)
	posts.Put("/:id", requireAuth, h.Posts.Update)
	posts.Delete("/:id", requireAuth, h.Posts.Delete)
	posts.Post("/:id/like", requireAuth, h.Posts.Like)
	posts.Post("/:id/comment", requireAuth, h.Posts.Comment)

	messages := api.Group("/messages", requireAuth)
	messages.Get("/conversations", h.Messages.Conversations)
	messages.Get("/:userId", h.Messages.History)
}
