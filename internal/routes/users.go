package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contact-keeper/contact_keeper/internal/identity"
)

// RegisterUserRoutes wires public registration.
func RegisterUserRoutes(r fiber.Router, h *identity.Handler) {
	r.Post("/users", h.Register)
}
