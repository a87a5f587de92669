package contacts

import (
	"strings"
	"time"
)

// DefaultType is applied when a contact is created without a category.
const DefaultType = "personal"

// Contact is a personal contact record owned by exactly one user.
type Contact struct {
	ID        string
	UserID    string
	Name      string
	Email     string
	Phone     string
	Type      string
	CreatedAt time.Time
}

// Input carries the fields of a new contact.
type Input struct {
	Name  string
	Email string
	Phone string
	Type  string
}

// Patch lists the fields to overwrite; nil or blank values are left alone.
type Patch struct {
	Name  *string
	Email *string
	Phone *string
	Type  *string
}

// apply returns c with every non-blank patch field merged in, trimmed.
func (p Patch) apply(c Contact) Contact {
	set := func(dst *string, src *string) {
		if src == nil {
			return
		}
		if v := strings.TrimSpace(*src); v != "" {
			*dst = v
		}
	}
	set(&c.Name, p.Name)
	set(&c.Email, p.Email)
	set(&c.Phone, p.Phone)
	set(&c.Type, p.Type)
	return c
}

// Owned is a contact whose ownership by the caller has been checked. Only
// Service.authorize produces one.
type Owned struct {
	contact Contact
}

// Contact returns the checked record.
func (o Owned) Contact() Contact { return o.contact }
