package utils

import (
    "crypto/sha256"
    "crypto/subtle"
    "encoding/hex"
    "strings"

    "golang.org/x/crypto/bcrypt"
)

// Two password hash schemes coexist in the users table: bcrypt for
// every credential written by this application, and an unsalted
// SHA-256 hex digest inherited from the system this shop was migrated
// from.  Legacy hashes are accepted on login and upgraded to bcrypt
// on the spot (see UserRepo.CheckLogin); no new legacy hash is ever
// produced.

// HashPassword returns a bcrypt hash of plain using the given cost.
func HashPassword(plain string, cost int) (string, error) {
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// isBcryptHash reports whether stored looks like a bcrypt hash.  All
// bcrypt variants ($2a$, $2b$, $2y$) share the "$2" prefix; this is a
// format sniff, not a cryptographic check.
func isBcryptHash(stored string) bool {
    return strings.HasPrefix(stored, "$2")
}

// IsLegacyHash reports whether stored uses the legacy SHA-256 scheme,
// i.e. anything that is not a bcrypt hash.  Callers use this after a
// successful verification to decide whether to re-hash.
func IsLegacyHash(stored string) bool { return !isBcryptHash(stored) }

// legacyDigest computes the legacy scheme: lowercase hex SHA-256 of
// the raw password bytes, no salt.
func legacyDigest(plain string) string {
    sum := sha256.Sum256([]byte(plain))
    return hex.EncodeToString(sum[:])
}

// VerifyPassword checks plain against a stored hash of either scheme.
// An empty or malformed stored hash is a verification failure, never
// an error or panic.  Legacy digests compare case-insensitively since
// the old system stored uppercase hex for some accounts.
func VerifyPassword(plain, stored string) bool {
    if stored == "" {
        return false
    }
    if isBcryptHash(stored) {
        return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
    }
    want := legacyDigest(plain)
    got := strings.ToLower(stored)
    return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
