package repository

import (
    "context"
    "database/sql"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
)

func newResetRepoWithMock(t *testing.T) (*ResetTokenRepo, sqlmock.Sqlmock, *sql.DB) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New error: %v", err)
    }
    return NewResetTokenRepo(db), mock, db
}

func TestResetTokenCreate(t *testing.T) {
    repo, mock, db := newResetRepoWithMock(t)
    defer db.Close()

    mock.ExpectExec(`INSERT INTO password_reset_tokens`).
        WithArgs(uint64(3), sqlmock.AnyArg(), sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(1, 1))

    token, err := repo.Create(context.Background(), 3, 30*time.Minute)
    if err != nil {
        t.Fatalf("Create error: %v", err)
    }
    // UUID with the hyphens stripped: 32 lowercase hex characters.
    if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(token) {
        t.Fatalf("unexpected token format: %q", token)
    }
}

func TestConsume_SuccessRewritesPasswordInOneTx(t *testing.T) {
    repo, mock, db := newResetRepoWithMock(t)
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectExec(`UPDATE password_reset_tokens SET used_at = UTC_TIMESTAMP\(\)`).
        WithArgs("tok123").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery(`SELECT user_id FROM password_reset_tokens WHERE token = \?`).
        WithArgs("tok123").
        WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))
    mock.ExpectExec(`UPDATE users SET password_hash = \? WHERE id = \?`).
        WithArgs(sqlmock.AnyArg(), uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    uid, ok, err := repo.Consume(context.Background(), "tok123", "newpass", 4)
    if err != nil {
        t.Fatalf("Consume error: %v", err)
    }
    if !ok || uid != 5 {
        t.Fatalf("want (5, true), got (%d, %v)", uid, ok)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestConsume_SpentTokenMatchesNothingAndRollsBack(t *testing.T) {
    repo, mock, db := newResetRepoWithMock(t)
    defer db.Close()

    // A second redemption (or an expired token) matches zero rows in
    // the guarded update; the password must stay untouched.
    mock.ExpectBegin()
    mock.ExpectExec(`UPDATE password_reset_tokens SET used_at = UTC_TIMESTAMP\(\)`).
        WithArgs("tok123").
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectRollback()

    uid, ok, err := repo.Consume(context.Background(), "tok123", "newpass", 4)
    if err != nil {
        t.Fatalf("Consume error: %v", err)
    }
    if ok || uid != 0 {
        t.Fatalf("want (0, false), got (%d, %v)", uid, ok)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestUserForToken_UnknownToken(t *testing.T) {
    repo, mock, db := newResetRepoWithMock(t)
    defer db.Close()

    mock.ExpectQuery(`SELECT user_id FROM password_reset_tokens`).
        WithArgs("ghost").
        WillReturnError(sql.ErrNoRows)

    _, err := repo.UserForToken(context.Background(), "ghost")
    if err != sql.ErrNoRows {
        t.Fatalf("want sql.ErrNoRows, got %v", err)
    }
}
