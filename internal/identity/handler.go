package identity

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/contact-keeper/contact_keeper/internal/apperr"
	"github.com/contact-keeper/contact_keeper/internal/middleware"
)

// TokenIssuer signs a token for an authenticated user.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Handler exposes registration, login and profile endpoints.
type Handler struct {
	service *Service
	tokens  TokenIssuer
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service, tokens TokenIssuer) *Handler {
	return &Handler{service: service, tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type profileResponse struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// Register handles sign up and answers with a token for the new user.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := middleware.ParseBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.Register(c.UserContext(), RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return h.respondWithToken(c, user)
}

// Login verifies credentials and answers with a fresh token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := middleware.ParseBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.Authenticate(c.UserContext(), Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return h.respondWithToken(c, user)
}

// Me returns the authenticated user's profile without the password hash.
func (h *Handler) Me(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(profileResponse{ID: user.ID, Name: user.Name, Email: user.Email, Date: user.CreatedAt})
}

func (h *Handler) respondWithToken(c *fiber.Ctx, user User) error {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("issue token for %s: %w", user.ID, err))
	}
	return c.Status(http.StatusOK).JSON(tokenResponse{Token: token})
}
