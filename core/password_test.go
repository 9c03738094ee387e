package core

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_SaltedHashes(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	const password = "Secret123"

	h1, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected different hashes for the same password, got identical")
	}
	if h1 == password || h2 == password {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !h.Verify(password, h1) || !h.Verify(password, h2) {
		t.Fatalf("Verify must succeed for both hashes")
	}
}

func TestBcryptHasher_WrongPassword(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("Secret123")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h.Verify("secret123", hash) {
		t.Fatalf("Verify must fail for a different password")
	}
}

func TestNewBcryptHasher_ClampsInvalidCost(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(1000)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected cost clamped to %d, got %d", bcrypt.DefaultCost, h.cost)
	}
}
