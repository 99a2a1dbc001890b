package repository

import (
    "context"
    "database/sql"
    "errors"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/iliyamo/online-shop/internal/model"
    "github.com/iliyamo/online-shop/internal/utils"
)

func testUser() *model.User {
    return &model.User{
        Username: "alice",
        Email:    "alice@example.com",
        FullName: "Alice",
        Role:     model.RoleCustomer,
    }
}

// Hex SHA-256 of "secret"; the hash format the pre-migration accounts
// still carry.
const legacySecretDigest = "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b"

func newUserRepoWithMock(t *testing.T) (*UserRepo, sqlmock.Sqlmock, *sql.DB) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New error: %v", err)
    }
    return NewUserRepo(db), mock, db
}

func userRow(hash string) *sqlmock.Rows {
    return sqlmock.NewRows([]string{
        "id", "username", "password_hash", "full_name", "email", "phone", "role", "is_active", "created_at",
    }).AddRow(3, "alice", hash, "Alice", "alice@example.com", nil, "CUSTOMER", true, time.Now())
}

func TestCheckLogin_LegacyHashUpgradedOnSuccess(t *testing.T) {
    repo, mock, db := newUserRepoWithMock(t)
    defer db.Close()

    mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \? AND is_active = 1`).
        WithArgs("alice").
        WillReturnRows(userRow(legacySecretDigest))
    mock.ExpectExec(`UPDATE users SET password_hash = \? WHERE id = \?`).
        WithArgs(sqlmock.AnyArg(), uint64(3)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    u, upgraded, err := repo.CheckLogin(context.Background(), "alice", "secret", 4)
    if err != nil {
        t.Fatalf("CheckLogin error: %v", err)
    }
    if u == nil || u.ID != 3 {
        t.Fatalf("unexpected user: %+v", u)
    }
    if !upgraded {
        t.Fatalf("expected hash upgrade")
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestCheckLogin_UpgradeWriteFailureStillAuthenticates(t *testing.T) {
    repo, mock, db := newUserRepoWithMock(t)
    defer db.Close()

    mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \? AND is_active = 1`).
        WithArgs("alice").
        WillReturnRows(userRow(legacySecretDigest))
    mock.ExpectExec(`UPDATE users SET password_hash = \? WHERE id = \?`).
        WillReturnError(errors.New("db read-only"))

    u, upgraded, err := repo.CheckLogin(context.Background(), "alice", "secret", 4)
    if err != nil {
        t.Fatalf("login must not fail when the re-hash cannot be stored, got %v", err)
    }
    if u == nil {
        t.Fatalf("expected authenticated user")
    }
    if upgraded {
        t.Fatalf("upgrade reported despite failed write")
    }
}

func TestCheckLogin_BcryptHashNotRewritten(t *testing.T) {
    repo, mock, db := newUserRepoWithMock(t)
    defer db.Close()

    hash, err := utils.HashPassword("secret", 4)
    if err != nil {
        t.Fatalf("HashPassword error: %v", err)
    }
    // Only the SELECT is expected; any UPDATE would fail the mock.
    mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \? AND is_active = 1`).
        WithArgs("alice").
        WillReturnRows(userRow(hash))

    u, upgraded, err := repo.CheckLogin(context.Background(), "alice", "secret", 4)
    if err != nil {
        t.Fatalf("CheckLogin error: %v", err)
    }
    if u == nil || upgraded {
        t.Fatalf("unexpected result: u=%+v upgraded=%v", u, upgraded)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestCheckLogin_WrongPassword(t *testing.T) {
    repo, mock, db := newUserRepoWithMock(t)
    defer db.Close()

    mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \? AND is_active = 1`).
        WithArgs("alice").
        WillReturnRows(userRow(legacySecretDigest))

    u, upgraded, err := repo.CheckLogin(context.Background(), "alice", "wrong", 4)
    if err != nil || u != nil || upgraded {
        t.Fatalf("want (nil, false, nil), got (%+v, %v, %v)", u, upgraded, err)
    }
}

func TestCheckLogin_UnknownUser(t *testing.T) {
    repo, mock, db := newUserRepoWithMock(t)
    defer db.Close()

    mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \? AND is_active = 1`).
        WithArgs("ghost").
        WillReturnError(sql.ErrNoRows)

    u, upgraded, err := repo.CheckLogin(context.Background(), "ghost", "secret", 4)
    if err != nil || u != nil || upgraded {
        t.Fatalf("want (nil, false, nil), got (%+v, %v, %v)", u, upgraded, err)
    }
}

func TestCreate_DuplicateMapsToSentinels(t *testing.T) {
    repo, mock, db := newUserRepoWithMock(t)
    defer db.Close()

    mock.ExpectExec(`INSERT INTO users`).
        WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice@example.com' for key 'users.email'"))

    _, err := repo.Create(context.Background(), testUser(), "secret", 4)
    if !errors.Is(err, ErrEmailExists) {
        t.Fatalf("want ErrEmailExists, got %v", err)
    }

    mock.ExpectExec(`INSERT INTO users`).
        WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'alice' for key 'users.username'"))

    _, err = repo.Create(context.Background(), testUser(), "secret", 4)
    if !errors.Is(err, ErrUsernameExists) {
        t.Fatalf("want ErrUsernameExists, got %v", err)
    }
}

func TestChangePassword_WrongCurrent(t *testing.T) {
    repo, mock, db := newUserRepoWithMock(t)
    defer db.Close()

    mock.ExpectQuery(`SELECT password_hash FROM users WHERE id = \?`).
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow(legacySecretDigest))

    ok, err := repo.ChangePassword(context.Background(), 3, "wrong", "newpass", 4)
    if err != nil {
        t.Fatalf("ChangePassword error: %v", err)
    }
    if ok {
        t.Fatalf("password change accepted with wrong current password")
    }
}
