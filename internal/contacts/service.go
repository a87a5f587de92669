package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contact-keeper/contact_keeper/internal/apperr"
)

// Service exposes contact operations scoped to an authenticated user.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a contact service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// List returns the user's contacts, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Contact, error) {
	out, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list contacts: %w", err))
	}
	return out, nil
}

// Create stores a new contact owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in Input) (Contact, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Contact{}, apperr.Validation(apperr.FieldError{Param: "name", Msg: "Name is required"})
	}
	kind := strings.TrimSpace(in.Type)
	if kind == "" {
		kind = DefaultType
	}

	contact := Contact{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Type:      kind,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return Contact{}, apperr.Internal(fmt.Errorf("create contact: %w", err))
	}
	return contact, nil
}

// Update merges patch into the caller's contact id.
func (s *Service) Update(ctx context.Context, userID, id string, patch Patch) (Contact, error) {
	owned, err := s.authorize(ctx, userID, id)
	if err != nil {
		return Contact{}, err
	}

	updated := patch.apply(owned.contact)
	if err := s.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Contact{}, ErrContactNotFound
		}
		return Contact{}, apperr.Internal(fmt.Errorf("update contact: %w", err))
	}
	return updated, nil
}

// Delete removes the caller's contact id.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	owned, err := s.authorize(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, owned.contact.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrContactNotFound
		}
		return apperr.Internal(fmt.Errorf("delete contact: %w", err))
	}
	return nil
}

// authorize runs the existence check then the ownership check. A missing
// contact always wins over a foreign one.
func (s *Service) authorize(ctx context.Context, userID, id string) (Owned, error) {
	contact, err := s.fetch(ctx, id)
	if err != nil {
		return Owned{}, err
	}
	return checkOwner(userID, contact)
}

func (s *Service) fetch(ctx context.Context, id string) (Contact, error) {
	contact, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Contact{}, ErrContactNotFound
		}
		return Contact{}, apperr.Internal(fmt.Errorf("load contact: %w", err))
	}
	return contact, nil
}

func checkOwner(userID string, contact Contact) (Owned, error) {
	if userID == "" || contact.UserID != userID {
		return Owned{}, ErrNotOwner
	}
	return Owned{contact: contact}, nil
}
