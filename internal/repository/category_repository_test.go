package repository

import (
    "context"
    "database/sql"
    "errors"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/iliyamo/online-shop/internal/model"
)

func newCategoryRepoWithMock(t *testing.T) (*CategoryRepo, sqlmock.Sqlmock, *sql.DB) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New error: %v", err)
    }
    return NewCategoryRepo(db), mock, db
}

func categoryRows() *sqlmock.Rows {
    return sqlmock.NewRows([]string{"id", "name", "description"}).
        AddRow(1, "Jackets", nil).
        AddRow(2, "Shirts", "summer line")
}

func TestList_SecondCallServedFromCache(t *testing.T) {
    repo, mock, db := newCategoryRepoWithMock(t)
    defer db.Close()

    // One query only; a second round trip would fail the mock.
    mock.ExpectQuery(`SELECT id, name, description FROM categories ORDER BY name`).
        WillReturnRows(categoryRows())

    first, err := repo.List(context.Background())
    if err != nil {
        t.Fatalf("List error: %v", err)
    }
    second, err := repo.List(context.Background())
    if err != nil {
        t.Fatalf("cached List error: %v", err)
    }
    if len(first) != 2 || len(second) != 2 {
        t.Fatalf("unexpected list lengths %d/%d", len(first), len(second))
    }
    // Callers get copies; mutating one result must not leak into the cache.
    second[0].Name = "mutated"
    third, err := repo.List(context.Background())
    if err != nil {
        t.Fatalf("List error: %v", err)
    }
    if third[0].Name != "Jackets" {
        t.Fatalf("cache poisoned by caller mutation: %q", third[0].Name)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestCreateInvalidatesCache(t *testing.T) {
    repo, mock, db := newCategoryRepoWithMock(t)
    defer db.Close()

    mock.ExpectQuery(`SELECT id, name, description FROM categories ORDER BY name`).
        WillReturnRows(categoryRows())
    mock.ExpectExec(`INSERT INTO categories`).
        WithArgs("Shoes", nil).
        WillReturnResult(sqlmock.NewResult(3, 1))
    mock.ExpectQuery(`SELECT id, name, description FROM categories ORDER BY name`).
        WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
            AddRow(1, "Jackets", nil).
            AddRow(2, "Shirts", nil).
            AddRow(3, "Shoes", nil))

    if _, err := repo.List(context.Background()); err != nil {
        t.Fatalf("List error: %v", err)
    }
    id, err := repo.Create(context.Background(), "Shoes", nil)
    if err != nil {
        t.Fatalf("Create error: %v", err)
    }
    if id != 3 {
        t.Fatalf("id = %d, want 3", id)
    }
    list, err := repo.List(context.Background())
    if err != nil {
        t.Fatalf("List after create error: %v", err)
    }
    if len(list) != 3 {
        t.Fatalf("expected fresh read after invalidation, got %d rows", len(list))
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestDelete_ForeignKeyConflict(t *testing.T) {
    repo, mock, db := newCategoryRepoWithMock(t)
    defer db.Close()

    mock.ExpectExec(`DELETE FROM categories WHERE id = \?`).
        WithArgs(uint64(1)).
        WillReturnError(errors.New("Error 1451 (23000): Cannot delete or update a parent row: a foreign key constraint fails"))

    _, err := repo.Delete(context.Background(), 1)
    if err != ErrConflict {
        t.Fatalf("want ErrConflict, got %v", err)
    }
}

func TestUpdateInvalidatesCacheOnlyWhenRowChanged(t *testing.T) {
    repo, mock, db := newCategoryRepoWithMock(t)
    defer db.Close()

    mock.ExpectQuery(`SELECT id, name, description FROM categories ORDER BY name`).
        WillReturnRows(categoryRows())
    mock.ExpectExec(`UPDATE categories SET name = \?, description = \? WHERE id = \?`).
        WithArgs("Coats", nil, uint64(99)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    if _, err := repo.List(context.Background()); err != nil {
        t.Fatalf("List error: %v", err)
    }
    ok, err := repo.Update(context.Background(), &model.Category{ID: 99, Name: "Coats"})
    if err != nil {
        t.Fatalf("Update error: %v", err)
    }
    if ok {
        t.Fatalf("update of missing row reported ok")
    }
    // Cache survives the no-op update: no further query expected.
    if _, err := repo.List(context.Background()); err != nil {
        t.Fatalf("List error: %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}
