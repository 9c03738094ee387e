package core

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

const minPasswordLength = 8

// AuthService implements registration and login on top of the account store,
// password hasher, and token service. It holds no mutable state.
type AuthService struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   TokenService
}

func NewAuthService(accounts AccountRepository, hasher PasswordHasher, tokens TokenService) *AuthService {
	return &AuthService{accounts: accounts, hasher: hasher, tokens: tokens}
}

// validateRegistration checks input ahead of any store access and reports the
// first violated rule.
func validateRegistration(name, email, password string) *ValidationError {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Name != "" {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if len(password) < minPasswordLength {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return nil
}

// Register validates input, creates the account, and issues an access token.
// The pre-insert lookup is a fast path only; the store's unique constraint is
// what actually prevents duplicate emails under concurrency.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, PublicAccount, error) {
	if verr := validateRegistration(name, email, password); verr != nil {
		return "", PublicAccount{}, verr
	}

	normalized := NormalizeEmail(email)
	if _, err := s.accounts.FindByEmail(ctx, normalized); err == nil {
		return "", PublicAccount{}, ErrDuplicateAccount
	} else if !errors.Is(err, ErrAccountNotFound) {
		return "", PublicAccount{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", PublicAccount{}, err
	}

	account, err := s.accounts.Create(ctx, strings.TrimSpace(name), normalized, hash)
	if err != nil {
		return "", PublicAccount{}, err
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", PublicAccount{}, err
	}
	return token, account.Public(), nil
}

// Login verifies credentials and issues an access token. Unknown email and
// wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, PublicAccount, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", PublicAccount{}, ErrMissingCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", PublicAccount{}, ErrInvalidCredentials
		}
		return "", PublicAccount{}, err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return "", PublicAccount{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return "", PublicAccount{}, err
	}
	return token, account.Public(), nil
}
