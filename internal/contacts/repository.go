package contacts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists contacts.
type Repository interface {
	Create(ctx context.Context, contact Contact) error
	Get(ctx context.Context, id string) (Contact, error)
	ListByUser(ctx context.Context, userID string) ([]Contact, error)
	Update(ctx context.Context, contact Contact) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository stores contacts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const contactColumns = `id, user_id, name, email, phone, type, created_at`

// Create inserts a contact record.
func (r *PostgresRepository) Create(ctx context.Context, contact Contact) error {
	contactID, err := uuid.Parse(contact.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(contact.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO contacts (`+contactColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		contactID, userID, contact.Name, contact.Email, contact.Phone, contact.Type, contact.CreatedAt.UTC())
	return err
}

// Get fetches a contact by identifier. Malformed identifiers are reported as missing.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Contact, error) {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return Contact{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, contactID)
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return c, err
}

// ListByUser returns the user's contacts, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Contact, error) {
	owner, err := uuid.Parse(userID)
	if err != nil {
		return []Contact{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+contactColumns+` FROM contacts
        WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of an existing contact.
func (r *PostgresRepository) Update(ctx context.Context, contact Contact) error {
	contactID, err := uuid.Parse(contact.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE contacts SET name = $1, email = $2, phone = $3, type = $4
        WHERE id = $5`, contact.Name, contact.Email, contact.Phone, contact.Type, contactID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a contact.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	contactID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, contactID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContact(row pgx.Row) (Contact, error) {
	var (
		c         Contact
		id        uuid.UUID
		userID    uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &userID, &c.Name, &c.Email, &c.Phone, &c.Type, &createdAt); err != nil {
		return Contact{}, err
	}
	c.ID = id.String()
	c.UserID = userID.String()
	c.CreatedAt = createdAt.UTC()
	return c, nil
}
