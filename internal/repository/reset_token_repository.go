package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/online-shop/internal/utils"
)

// ResetTokenRepo manages password reset tokens.  Tokens are random,
// single-use and expiring; issuing a new token does not invalidate
// earlier ones, so several may be outstanding for one user at a time.
type ResetTokenRepo struct{ DB *sql.DB }

func NewResetTokenRepo(db *sql.DB) *ResetTokenRepo { return &ResetTokenRepo{DB: db} }

// Create persists a new reset token for the user valid for the given
// duration and returns the token string handed to the mail sender.
func (r *ResetTokenRepo) Create(ctx context.Context, userID uint64, validFor time.Duration) (string, error) {
    token := strings.ReplaceAll(uuid.NewString(), "-", "")
    expires := time.Now().UTC().Add(validFor)
    _, err := r.DB.ExecContext(ctx,
        `INSERT INTO password_reset_tokens (user_id, token, expires_at) VALUES (?, ?, ?)`,
        userID, token, expires)
    if err != nil {
        return "", &StorageError{Op: "reset_token.create", Kind: KindFatal, Err: err}
    }
    return token, nil
}

// UserForToken returns the owning user id of a still-consumable
// token, or sql.ErrNoRows when the token is unknown, used or expired.
// Used by the reset form to check the link before showing it.
func (r *ResetTokenRepo) UserForToken(ctx context.Context, token string) (uint64, error) {
    var userID uint64
    err := r.DB.QueryRowContext(ctx,
        `SELECT user_id FROM password_reset_tokens
         WHERE token = ? AND used_at IS NULL AND expires_at > UTC_TIMESTAMP()`,
        token).Scan(&userID)
    return userID, err
}

// Consume redeems a token and rewrites the owner's password hash in a
// single transaction.  The used_at mark is a conditional update, so
// two concurrent redemptions of the same token cannot both succeed:
// the loser matches zero rows and gets ok=false with no side effects.
// ok=false is also returned for unknown, expired and already-used
// tokens; none of those are errors.  On success the owning user id is
// returned so callers can revoke that user's sessions.
func (r *ResetTokenRepo) Consume(ctx context.Context, token, newPassword string, cost int) (userID uint64, ok bool, err error) {
    hash, err := utils.HashPassword(newPassword, cost)
    if err != nil {
        return 0, false, err
    }

    tx, err := r.DB.BeginTx(ctx, nil)
    if err != nil {
        return 0, false, &StorageError{Op: "reset_token.consume", Kind: KindFatal, Err: err}
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := tx.ExecContext(ctx,
        `UPDATE password_reset_tokens SET used_at = UTC_TIMESTAMP()
         WHERE token = ? AND used_at IS NULL AND expires_at > UTC_TIMESTAMP()`,
        token)
    if err != nil {
        return 0, false, &StorageError{Op: "reset_token.consume", Kind: KindFatal, Err: err}
    }
    n, err := res.RowsAffected()
    if err != nil {
        return 0, false, err
    }
    if n == 0 {
        return 0, false, nil
    }

    if err := tx.QueryRowContext(ctx,
        `SELECT user_id FROM password_reset_tokens WHERE token = ?`, token).Scan(&userID); err != nil {
        return 0, false, &StorageError{Op: "reset_token.consume", Kind: KindFatal, Err: err}
    }
    if _, err := tx.ExecContext(ctx,
        `UPDATE users SET password_hash = ? WHERE id = ?`, hash, userID); err != nil {
        return 0, false, &StorageError{Op: "reset_token.consume", Kind: KindFatal, Err: err}
    }
    if err := tx.Commit(); err != nil {
        return 0, false, &StorageError{Op: "reset_token.consume", Kind: KindFatal, Err: err}
    }
    committed = true
    return userID, true, nil
}
