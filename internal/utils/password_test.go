package utils

import (
    "strings"
    "testing"
)

// Hex SHA-256 of "secret", as the pre-migration system stored it.
const legacySecretDigest = "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"

func TestHashAndVerifyBcrypt(t *testing.T) {
    hash, err := HashPassword("secret", 4)
    if err != nil {
        t.Fatalf("HashPassword error: %v", err)
    }
    if !strings.HasPrefix(hash, "$2") {
        t.Fatalf("expected bcrypt hash, got %q", hash)
    }
    if !VerifyPassword("secret", hash) {
        t.Fatalf("correct password rejected")
    }
    if VerifyPassword("wrong", hash) {
        t.Fatalf("wrong password accepted")
    }
}

func TestVerifyLegacyDigest(t *testing.T) {
    if !VerifyPassword("secret", legacySecretDigest) {
        t.Fatalf("legacy digest rejected")
    }
    // Old rows sometimes carry uppercase hex.
    if !VerifyPassword("secret", strings.ToUpper(legacySecretDigest)) {
        t.Fatalf("uppercase legacy digest rejected")
    }
    if VerifyPassword("wrong", legacySecretDigest) {
        t.Fatalf("wrong password accepted against legacy digest")
    }
}

func TestVerifyEmptyStored(t *testing.T) {
    if VerifyPassword("anything", "") {
        t.Fatalf("empty stored hash must never verify")
    }
}

func TestIsLegacyHash(t *testing.T) {
    if !IsLegacyHash(legacySecretDigest) {
        t.Fatalf("hex digest not recognized as legacy")
    }
    hash, err := HashPassword("secret", 4)
    if err != nil {
        t.Fatalf("HashPassword error: %v", err)
    }
    if IsLegacyHash(hash) {
        t.Fatalf("bcrypt hash misclassified as legacy")
    }
}

func TestRefreshTokenHashing(t *testing.T) {
    tok, err := NewRefreshToken(7)
    if err != nil {
        t.Fatalf("NewRefreshToken error: %v", err)
    }
    if len(tok.Raw) != 96 {
        t.Fatalf("unexpected raw token length %d", len(tok.Raw))
    }
    h1 := HashRefreshRaw(tok.Raw)
    h2 := HashRefreshRaw(tok.Raw)
    if h1 != h2 {
        t.Fatalf("hash not deterministic")
    }
    if h1 == tok.Raw {
        t.Fatalf("hash equals raw token")
    }
}
