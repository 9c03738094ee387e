package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// fakeAccountRepo is an in-memory AccountRepository keyed by normalized email.
type fakeAccountRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byID: map[int64]*Account{}}
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, normalizedEmail string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == normalizedEmail {
			cp := *a
			return &cp, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *fakeAccountRepo) FindByID(_ context.Context, id int64) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAccountRepo) Create(_ context.Context, name, normalizedEmail, passwordHash string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == normalizedEmail {
			return nil, ErrDuplicateAccount
		}
	}
	r.nextID++
	a := &Account{ID: r.nextID, Name: name, Email: normalizedEmail, PasswordHash: passwordHash, CreatedAt: time.Now()}
	r.byID[a.ID] = a
	cp := *a
	return &cp, nil
}

func newTestAuthService() (*AuthService, *fakeAccountRepo, *JWTService) {
	repo := newFakeAccountRepo()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	tokens := NewJWTService([]byte("test-secret"), time.Hour)
	return NewAuthService(repo, hasher, tokens), repo, tokens
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	t.Parallel()

	svc, _, tokens := newTestAuthService()
	ctx := context.Background()

	regToken, regView, err := svc.Register(ctx, "Ana", "ana@x.com", "Secret123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if regView.ID == 0 || regView.Name != "Ana" || regView.Email != "ana@x.com" {
		t.Fatalf("unexpected public view: %+v", regView)
	}

	subject, err := tokens.Validate(regToken)
	if err != nil {
		t.Fatalf("registration token did not validate: %v", err)
	}
	if subject != regView.ID {
		t.Fatalf("token subject %d does not match account id %d", subject, regView.ID)
	}

	// Wrong password first.
	_, _, err = svc.Login(ctx, "ana@x.com", "WrongPass1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	loginToken, loginView, err := svc.Login(ctx, "ana@x.com", "Secret123")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if loginView.ID != regView.ID {
		t.Fatalf("login returned id %d, registration returned %d", loginView.ID, regView.ID)
	}
	if got, err := tokens.Validate(loginToken); err != nil || got != regView.ID {
		t.Fatalf("login token subject mismatch: got %d err %v", got, err)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	cases := []struct {
		name     string
		inName   string
		email    string
		password string
		field    string
	}{
		{"empty name", "  ", "a@x.com", "Secret123", "name"},
		{"bad email", "Ana", "not-an-email", "Secret123", "email"},
		{"short password", "Ana", "a@x.com", "short", "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tc.inName, tc.email, tc.password)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected first violated rule on %q, got %q", tc.field, verr.Field)
			}
		})
	}
}

func TestAuthService_DuplicateEmailCaseInsensitive(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ana", "A@x.com", "Secret123"); err != nil {
		t.Fatalf("first Register error: %v", err)
	}
	_, _, err := svc.Register(ctx, "Other", "a@x.com", "Another123")
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount for case-variant email, got %v", err)
	}
}

func TestAuthService_LoginUniformError(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ana", "ana@x.com", "Secret123"); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, _, errUnknown := svc.Login(ctx, "nobody@x.com", "Secret123")
	_, _, errWrongPass := svc.Login(ctx, "ana@x.com", "WrongPass1")

	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Fatalf("expected identical ErrInvalidCredentials, got %v and %v", errUnknown, errWrongPass)
	}
	if errUnknown.Error() != errWrongPass.Error() {
		t.Fatalf("error messages must be indistinguishable: %q vs %q", errUnknown, errWrongPass)
	}
}

func TestAuthService_LoginMissingFields(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.Login(ctx, "", "Secret123"); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials for missing email, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ana@x.com", ""); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials for missing password, got %v", err)
	}
}

func TestAuthService_PublicViewExcludesHash(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestAuthService()
	ctx := context.Background()

	_, view, err := svc.Register(ctx, "Ana", "ana@x.com", "Secret123")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	stored, err := repo.FindByID(ctx, view.ID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "Secret123" {
		t.Fatalf("stored hash must be set and not equal the plaintext")
	}
}
