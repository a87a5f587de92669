package contacts

import (
	"errors"

	"github.com/contact-keeper/contact_keeper/internal/apperr"
)

// ErrNotFound is returned by repositories for a missing record.
var ErrNotFound = errors.New("contact not found")

// Errors surfaced to callers.
var (
	ErrContactNotFound = apperr.NotFound("Contact not found")
	ErrNotOwner        = apperr.Forbidden("Not authorized")
)
