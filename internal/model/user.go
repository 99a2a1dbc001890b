package model

import "time"

// Role names stored in the users.role column and carried in the JWT
// "role" claim.  Admins and employees share the back-office surface;
// customers use the storefront.
const (
    RoleAdmin    = "ADMIN"
    RoleEmployee = "EMPLOYEE"
    RoleCustomer = "CUSTOMER"
)

// User represents an application user record as stored in the
// `users` table.  PasswordHash holds either a bcrypt hash or, for
// accounts migrated from the previous system, a legacy unsalted
// SHA-256 hex digest; see utils.VerifyPassword for how both are
// accepted and utils.IsLegacyHash for how legacy hashes are retired
// one login at a time.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  PasswordHash – bcrypt hash, or legacy SHA-256 digest pending upgrade.
//  FullName     – display name.
//  Email        – unique email address.
//  Phone        – optional contact number.
//  Role         – role name (ADMIN, EMPLOYEE or CUSTOMER).
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
type User struct {
    ID           uint64    // users.id
    Username     string    // users.username
    PasswordHash string    // users.password_hash
    FullName     string    // users.full_name
    Email        string    // users.email
    Phone        *string   // users.phone (nullable)
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The
// plain token is never stored; only its SHA-256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}

// PasswordResetToken models a row in the `password_reset_tokens`
// table.  A token is consumable iff UsedAt is nil and ExpiresAt is
// in the future; consumption marks UsedAt exactly once inside the
// same transaction that rewrites the password hash.
type PasswordResetToken struct {
    ID        uint64     // password_reset_tokens.id
    UserID    uint64     // password_reset_tokens.user_id
    Token     string     // password_reset_tokens.token
    ExpiresAt time.Time  // password_reset_tokens.expires_at
    UsedAt    *time.Time // password_reset_tokens.used_at (nullable)
    CreatedAt time.Time  // password_reset_tokens.created_at
}
