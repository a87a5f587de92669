package identity

import (
	"errors"

	"github.com/contact-keeper/contact_keeper/internal/apperr"
)

// Store level errors.
var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Errors surfaced to callers.
var (
	ErrUserExists        = apperr.BadRequest("User already exists")
	ErrUnknownEmail      = apperr.BadRequest("Invalid Credentials - User does not exist")
	ErrIncorrectPassword = apperr.BadRequest("Invalid Credentials - Incorrect Password")
	ErrProfileNotFound   = apperr.NotFound("User not found")
)
