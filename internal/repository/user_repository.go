package repository

import (
    "context"
    "database/sql"
    "log"
    "strings"

    "github.com/iliyamo/online-shop/internal/model"
    "github.com/iliyamo/online-shop/internal/utils"
)

// UserRepo owns the credential lifecycle: registration, login
// verification with transparent legacy-hash upgrade, password change
// and the account administration used by the back office.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, username, password_hash, full_name, email, phone, role, is_active, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
    var u model.User
    var phone sql.NullString
    err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.FullName, &u.Email,
        &phone, &u.Role, &u.IsActive, &u.CreatedAt)
    if err != nil {
        return nil, err
    }
    if phone.Valid {
        v := phone.String
        u.Phone = &v
    }
    return &u, nil
}

// Create inserts a user with a freshly bcrypt-hashed password and
// returns the generated id.  Duplicate username/email map to the
// sentinel errors so handlers can answer 409.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return 0, err
    }
    res, err := r.DB.ExecContext(ctx,
        `INSERT INTO users (username, password_hash, full_name, email, phone, role, is_active)
         VALUES (?, ?, ?, ?, ?, ?, 1)`,
        strings.TrimSpace(u.Username), hash, u.FullName,
        strings.ToLower(strings.TrimSpace(u.Email)), u.Phone, u.Role)
    if err != nil {
        low := strings.ToLower(err.Error())
        if strings.Contains(low, "1062") {
            if strings.Contains(low, "email") {
                return 0, ErrEmailExists
            }
            return 0, ErrUsernameExists
        }
        return 0, &StorageError{Op: "user.create", Kind: KindFatal, Err: err}
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// GetByID fetches a user by id.  sql.ErrNoRows when absent.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
    return scanUser(r.DB.QueryRowContext(ctx,
        `SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
    return scanUser(r.DB.QueryRowContext(ctx,
        `SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`,
        strings.ToLower(strings.TrimSpace(email))))
}

// CheckLogin verifies a username/password pair against active
// accounts.  It returns (nil, false, nil) for unknown user, inactive
// account or wrong password alike, so callers cannot distinguish the
// cases.
//
// When the stored hash uses the legacy scheme and verification
// succeeds, the hash is re-written with bcrypt in the same call.  The
// upgrade is strictly best-effort: a failed write is logged and the
// login still succeeds, so the user is never locked out by the
// migration itself.  The upgraded return value reports whether the
// rewrite happened.
func (r *UserRepo) CheckLogin(ctx context.Context, username, password string, cost int) (u *model.User, upgraded bool, err error) {
    u, err = scanUser(r.DB.QueryRowContext(ctx,
        `SELECT `+userColumns+` FROM users WHERE username = ? AND is_active = 1 LIMIT 1`,
        strings.TrimSpace(username)))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, false, nil
        }
        return nil, false, &StorageError{Op: "user.login", Kind: KindFatal, Err: err}
    }
    if !utils.VerifyPassword(password, u.PasswordHash) {
        return nil, false, nil
    }
    if utils.IsLegacyHash(u.PasswordHash) {
        if upErr := r.setPasswordHash(ctx, u.ID, password, cost); upErr != nil {
            // The login itself must not fail because the opportunistic
            // re-hash could not be persisted.
            log.Printf("user %d: legacy hash upgrade failed: %v", u.ID, upErr)
        } else {
            upgraded = true
        }
    }
    return u, upgraded, nil
}

func (r *UserRepo) setPasswordHash(ctx context.Context, userID uint64, password string, cost int) error {
    hash, err := utils.HashPassword(password, cost)
    if err != nil {
        return err
    }
    _, err = r.DB.ExecContext(ctx,
        `UPDATE users SET password_hash = ? WHERE id = ?`, hash, userID)
    return err
}

// ChangePassword verifies the current password before writing a new
// bcrypt hash.  Returns false when the current password does not
// match (or the user does not exist); no write happens in that case.
func (r *UserRepo) ChangePassword(ctx context.Context, userID uint64, current, next string, cost int) (bool, error) {
    var stored string
    err := r.DB.QueryRowContext(ctx,
        `SELECT password_hash FROM users WHERE id = ? LIMIT 1`, userID).Scan(&stored)
    if err != nil {
        if err == sql.ErrNoRows {
            return false, nil
        }
        return false, &StorageError{Op: "user.change_password", Kind: KindFatal, Err: err}
    }
    if !utils.VerifyPassword(current, stored) {
        return false, nil
    }
    if err := r.setPasswordHash(ctx, userID, next, cost); err != nil {
        return false, &StorageError{Op: "user.change_password", Kind: KindFatal, Err: err}
    }
    return true, nil
}

// UpdateProfile rewrites the user-editable profile columns.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID uint64, fullName, email string, phone *string) (bool, error) {
    res, err := r.DB.ExecContext(ctx,
        `UPDATE users SET full_name = ?, email = ?, phone = ? WHERE id = ?`,
        fullName, strings.ToLower(strings.TrimSpace(email)), phone, userID)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return false, ErrEmailExists
        }
        return false, &StorageError{Op: "user.update_profile", Kind: KindFatal, Err: err}
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// ListByRoles returns users whose role is in the given set, ordered
// by creation time descending.  Used for both the employee and the
// customer lists in the back office.
func (r *UserRepo) ListByRoles(ctx context.Context, roles ...string) ([]model.User, error) {
    if len(roles) == 0 {
        return []model.User{}, nil
    }
    placeholders := strings.TrimRight(strings.Repeat("?,", len(roles)), ",")
    args := make([]any, len(roles))
    for i, role := range roles {
        args[i] = role
    }
    rows, err := r.DB.QueryContext(ctx,
        `SELECT `+userColumns+` FROM users WHERE role IN (`+placeholders+`) ORDER BY created_at DESC`,
        args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    list := make([]model.User, 0)
    for rows.Next() {
        u, err := scanUser(rows)
        if err != nil {
            return nil, err
        }
        list = append(list, *u)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return list, nil
}

// UpdateEmployee rewrites an employee's profile and role (admin or
// employee) from the back office.
func (r *UserRepo) UpdateEmployee(ctx context.Context, u *model.User) (bool, error) {
    res, err := r.DB.ExecContext(ctx,
        `UPDATE users SET full_name = ?, email = ?, phone = ?, role = ? WHERE id = ?`,
        u.FullName, strings.ToLower(strings.TrimSpace(u.Email)), u.Phone, u.Role, u.ID)
    if err != nil {
        return false, &StorageError{Op: "user.update_employee", Kind: KindFatal, Err: err}
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// SetActive flips the is_active flag; inactive accounts cannot log in.
func (r *UserRepo) SetActive(ctx context.Context, userID uint64, active bool) (bool, error) {
    res, err := r.DB.ExecContext(ctx,
        `UPDATE users SET is_active = ? WHERE id = ?`, active, userID)
    if err != nil {
        return false, &StorageError{Op: "user.set_active", Kind: KindFatal, Err: err}
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// CountByRoles returns the number of users in the given role set; an
// empty set counts everyone.
func (r *UserRepo) CountByRoles(ctx context.Context, roles ...string) (int64, error) {
    var n int64
    if len(roles) == 0 {
        err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
        return n, err
    }
    placeholders := strings.TrimRight(strings.Repeat("?,", len(roles)), ",")
    args := make([]any, len(roles))
    for i, role := range roles {
        args[i] = role
    }
    err := r.DB.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM users WHERE role IN (`+placeholders+`)`, args...).Scan(&n)
    return n, err
}
