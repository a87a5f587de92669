package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/contact-keeper/contact_keeper/internal/apperr"
	"github.com/contact-keeper/contact_keeper/internal/auth"
)

// PasswordHasher is the password verifier the service relies on.
type PasswordHasher interface {
	Hash(plain string) ([]byte, error)
	Matches(hash []byte, plain string) (bool, error)
}

// Service manages identity lifecycle.
type Service struct {
	repo      Repository
	passwords PasswordHasher
}

// NewService creates a new identity service.
func NewService(repo Repository, passwords PasswordHasher) *Service {
	return &Service{repo: repo, passwords: passwords}
}

// Register creates a new user and stores a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	var fields []apperr.FieldError
	if in.Name == "" {
		fields = append(fields, apperr.FieldError{Param: "name", Msg: "Please add name"})
	}
	if !validEmail(in.Email) {
		fields = append(fields, apperr.FieldError{Param: "email", Msg: "Please include a valid email"})
	}
	switch {
	case utf8.RuneCountInString(in.Password) < auth.MinPasswordLength:
		fields = append(fields, apperr.FieldError{Param: "password", Msg: "Please enter a password with 6 or more characters"})
	case len(in.Password) > auth.MaxPasswordBytes:
		fields = append(fields, apperr.FieldError{Param: "password", Msg: "Password must be at most 72 bytes"})
	}
	if len(fields) > 0 {
		return User{}, apperr.Validation(fields...)
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return User{}, ErrUserExists
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, apperr.Internal(fmt.Errorf("lookup user: %w", err))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return User{}, apperr.Internal(err)
	}

	user := User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return User{}, ErrUserExists
		}
		return User{}, apperr.Internal(fmt.Errorf("create user: %w", err))
	}

	return user, nil
}

// Authenticate verifies login credentials. Unknown emails and wrong passwords
// produce different messages.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	creds.Email = normalizeEmail(creds.Email)

	var fields []apperr.FieldError
	if !validEmail(creds.Email) {
		fields = append(fields, apperr.FieldError{Param: "email", Msg: "Please include a valid email"})
	}
	if creds.Password == "" {
		fields = append(fields, apperr.FieldError{Param: "password", Msg: "Password is required"})
	}
	if len(fields) > 0 {
		return User{}, apperr.Validation(fields...)
	}

	user, err := s.repo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrUnknownEmail
		}
		return User{}, apperr.Internal(fmt.Errorf("lookup user: %w", err))
	}

	ok, err := s.passwords.Matches(user.PasswordHash, creds.Password)
	if err != nil {
		return User{}, apperr.Internal(err)
	}
	if !ok {
		return User{}, ErrIncorrectPassword
	}

	return user, nil
}

// Get returns the profile for id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrProfileNotFound
		}
		return User{}, apperr.Internal(fmt.Errorf("load user: %w", err))
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts a bare RFC 5322 address with a dotted domain.
func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
