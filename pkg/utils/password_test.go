package utils

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() returned an error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash has unexpected format: %s", hash)
	}
	if strings.Contains(hash, "s3cret-pass") {
		t.Error("hash contains the plaintext password")
	}

	// Same password must hash differently each time (random salt).
	hash2, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() returned an error: %v", err)
	}
	if hash == hash2 {
		t.Error("two hashes of the same password are identical")
	}
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() returned an error: %v", err)
	}

	t.Run("CorrectPassword", func(t *testing.T) {
		ok, err := VerifyPassword("correct horse battery staple", hash)
		if err != nil {
			t.Fatalf("VerifyPassword() returned an error: %v", err)
		}
		if !ok {
			t.Error("correct password did not verify")
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		ok, err := VerifyPassword("wrong password", hash)
		if err != nil {
			t.Fatalf("VerifyPassword() returned an error: %v", err)
		}
		if ok {
			t.Error("wrong password verified")
		}
	})

	t.Run("MalformedHash", func(t *testing.T) {
		if _, err := VerifyPassword("anything", "not-a-hash"); err == nil {
			t.Error("expected an error for a malformed hash")
		}
	})
}
