package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Account is the persisted identity record. PasswordHash never leaves the
// persistence and auth layers.
type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicAccount is the caller-facing projection of an account.
type PublicAccount struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips credential material from an account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Name: a.Name, Email: a.Email}
}

// NormalizeEmail canonicalizes an email for uniqueness comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	FindByEmail(ctx context.Context, normalizedEmail string) (*Account, error)
	FindByID(ctx context.Context, id int64) (*Account, error)
	Create(ctx context.Context, name, normalizedEmail, passwordHash string) (*Account, error)
}

// PgAccountRepository implements AccountRepository using pgxpool.
type PgAccountRepository struct {
	db *pgxpool.Pool
}

func NewPgAccountRepository(db *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{db: db}
}

func (r *PgAccountRepository) FindByEmail(ctx context.Context, normalizedEmail string) (*Account, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM accounts WHERE email=$1`
	var a Account
	if err := r.db.QueryRow(ctx, q, normalizedEmail).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PgAccountRepository) FindByID(ctx context.Context, id int64) (*Account, error) {
	const q = `SELECT id, name, email, password_hash, created_at FROM accounts WHERE id=$1`
	var a Account
	if err := r.db.QueryRow(ctx, q, id).Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account. The unique index on email is the
// authoritative duplicate check: a unique violation surfacing here is
// reported as ErrDuplicateAccount regardless of any preceding lookup.
func (r *PgAccountRepository) Create(ctx context.Context, name, normalizedEmail, passwordHash string) (*Account, error) {
	const q = `INSERT INTO accounts (name, email, password_hash) VALUES ($1,$2,$3) RETURNING id, created_at`
	a := Account{Name: name, Email: normalizedEmail, PasswordHash: passwordHash}
	if err := r.db.QueryRow(ctx, q, name, normalizedEmail, passwordHash).Scan(&a.ID, &a.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateAccount
		}
		return nil, err
	}
	return &a, nil
}
