package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contact-keeper/contact_keeper/internal/identity"
)

// RegisterAuthRoutes wires login and the logged-in user lookup.
func RegisterAuthRoutes(r fiber.Router, h *identity.Handler, guard, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	group.Get("/", guard, h.Me)
	if rateLimiter != nil {
		group.Post("/", rateLimiter, h.Login)
	} else {
		group.Post("/", h.Login)
	}
}
