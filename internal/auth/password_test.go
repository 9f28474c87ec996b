package auth

import (
	"errors"
	"strings"
	"testing"
)

// testVerifier keeps Argon2 cheap in tests; Verify reads parameters from the
// hash, so the production verifier still accepts these hashes.
func testVerifier() *Argon2Verifier {
	return &Argon2Verifier{Time: 1, Memory: 8 * 1024, Threads: 1}
}

func TestArgon2Verifier_RoundTrip(t *testing.T) {
	v := testVerifier()
	password := "correct-horse-battery-staple"

	hash, err := v.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash should start with $argon2id$, got %q", hash)
	}

	ok, err := v.Verify(password, hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Error("Verify() should return true for correct password")
	}

	ok, err = NewArgon2Verifier().Verify(password, hash)
	if err != nil || !ok {
		t.Errorf("default verifier Verify() = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestArgon2Verifier_WrongPassword(t *testing.T) {
	v := testVerifier()
	hash, err := v.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	ok, err := v.Verify("wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Error("Verify() should return false for wrong password")
	}
}

func TestArgon2Verifier_UniqueSalts(t *testing.T) {
	v := testVerifier()
	hash1, err := v.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	hash2, err := v.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash1 == hash2 {
		t.Error("two hashes of the same password should have different salts")
	}
}

func TestArgon2Verifier_InvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plaintext", "secret123"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=1$salt$hash"},
		{"too few parts", "$argon2id$v=19$m=65536,t=3,p=1"},
		{"bad salt", "$argon2id$v=19$m=65536,t=3,p=1$***$aGFzaA"},
		{"empty hash", "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0$"},
		{"zero time", "$argon2id$v=19$m=8192,t=0,p=1$c2FsdHNhbHRzYWx0$aGFzaA"},
		{"zero threads", "$argon2id$v=19$m=8192,t=1,p=0$c2FsdHNhbHRzYWx0$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testVerifier().Verify("password", tt.hash)
			if !errors.Is(err, ErrInvalidHash) {
				t.Errorf("Verify() error = %v, want ErrInvalidHash", err)
			}
		})
	}
}

func TestNewArgon2Verifier_PHCParams(t *testing.T) {
	hash, err := NewArgon2Verifier().Hash("test")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("PHC format should have 6 $-delimited parts, got %d: %q", len(parts), hash)
	}
	if parts[2] != "v=19" {
		t.Errorf("version should be v=19, got %q", parts[2])
	}
	if parts[3] != "m=65536,t=3,p=1" {
		t.Errorf("params should be m=65536,t=3,p=1, got %q", parts[3])
	}
}
