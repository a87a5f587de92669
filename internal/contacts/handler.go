package contacts

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/contact-keeper/contact_keeper/internal/middleware"
)

// Handler exposes contact HTTP endpoints. Every route expects middleware.Auth upstream.
type Handler struct {
	service *Service
}

// NewHandler builds a contact HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type contactRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Type  *string `json:"type"`
}

type contactResponse struct {
	ID    string    `json:"id"`
	User  string    `json:"user"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
	Type  string    `json:"type"`
	Date  time.Time `json:"date"`
}

func toResponse(c Contact) contactResponse {
	return contactResponse{
		ID:    c.ID,
		User:  c.UserID,
		Name:  c.Name,
		Email: c.Email,
		Phone: c.Phone,
		Type:  c.Type,
		Date:  c.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List returns the caller's contacts, newest first.
func (h *Handler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	out := make([]contactResponse, 0, len(list))
	for _, contact := range list {
		out = append(out, toResponse(contact))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Create adds a contact for the caller.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req contactRequest
	if err := middleware.ParseBody(c, &req); err != nil {
		return err
	}
	contact, err := h.service.Create(c.UserContext(), middleware.UserID(c), Input{
		Name:  deref(req.Name),
		Email: deref(req.Email),
		Phone: deref(req.Phone),
		Type:  deref(req.Type),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toResponse(contact))
}

// Update merges the supplied fields into the caller's contact.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req contactRequest
	if err := middleware.ParseBody(c, &req); err != nil {
		return err
	}
	contact, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), Patch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Type:  req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(toResponse(contact))
}

// Delete removes the caller's contact.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"msg": "Contact removed"})
}
