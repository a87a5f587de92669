package contacts

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[string]Contact
}

// NewMemoryRepository constructs an in-memory repository for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[string]Contact)}
}

func (r *memoryRepository) Create(_ context.Context, contact Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.storage[contact.ID]; exists {
		return errors.New("contact exists")
	}
	r.storage[contact.ID] = contact
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contact, ok := r.storage[id]
	if !ok {
		return Contact{}, ErrNotFound
	}
	return contact, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Contact{}
	for _, c := range r.storage {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, contact Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.storage[contact.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Name = contact.Name
	existing.Email = contact.Email
	existing.Phone = contact.Phone
	existing.Type = contact.Type
	r.storage[contact.ID] = existing
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.storage[id]; !ok {
		return ErrNotFound
	}
	delete(r.storage, id)
	return nil
}
