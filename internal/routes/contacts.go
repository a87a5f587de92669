package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contact-keeper/contact_keeper/internal/contacts"
)

// RegisterContactRoutes wires the private contact endpoints behind guard.
func RegisterContactRoutes(r fiber.Router, h *contacts.Handler, guard, idempotency fiber.Handler) {
	group := r.Group("/contacts", guard)
	group.Get("/", h.List)
	group.Post("/", idempotency, h.Create)
	group.Put("/:id", h.Update)
	group.Delete("/:id", h.Delete)
}
