package repository

import (
    "context"
    "database/sql"
    "errors"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"

    "github.com/iliyamo/online-shop/internal/model"
)

func testTime(t *testing.T) time.Time {
    t.Helper()
    ts, err := time.Parse(time.RFC3339, "2024-03-01T10:30:00Z")
    if err != nil {
        t.Fatalf("parse time: %v", err)
    }
    return ts
}

func newOrderRepoWithMock(t *testing.T) (*OrderRepo, sqlmock.Sqlmock, *sql.DB) {
    t.Helper()
    db, mock, err := sqlmock.New()
    if err != nil {
        t.Fatalf("sqlmock.New error: %v", err)
    }
    products := NewProductRepo(db)
    return NewOrderRepo(db, products), mock, db
}

func TestPlace_Success(t *testing.T) {
    repo, mock, db := newOrderRepoWithMock(t)
    defer db.Close()

    lines := []model.CartLine{
        {ProductID: 10, Name: "Shirt", PriceCents: 1999, Quantity: 2},
        {ProductID: 11, Name: "Cap", PriceCents: 500, Quantity: 1},
    }
    wantTotal := int64(2*1999 + 500)

    mock.ExpectBegin()
    mock.ExpectExec(`INSERT INTO orders`).
        WithArgs(uint64(7), sqlmock.AnyArg(), wantTotal, model.StatusPending, "Alice", "1 Main St", "555-0101", nil).
        WillReturnResult(sqlmock.NewResult(42, 1))
    mock.ExpectExec(`INSERT INTO order_lines`).
        WithArgs(uint64(42), uint64(10), int64(2), int64(1999), uint64(42), uint64(11), int64(1), int64(500)).
        WillReturnResult(sqlmock.NewResult(1, 2))
    mock.ExpectExec(`UPDATE products SET stock = stock - \? WHERE id = \? AND stock >= \?`).
        WithArgs(int64(2), uint64(10), int64(2)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec(`UPDATE products SET stock = stock - \? WHERE id = \? AND stock >= \?`).
        WithArgs(int64(1), uint64(11), int64(1)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    order := &model.Order{UserID: 7, ShipName: "Alice", ShipAddress: "1 Main St", ShipPhone: "555-0101"}
    id, err := repo.Place(context.Background(), order, lines)
    if err != nil {
        t.Fatalf("Place error: %v", err)
    }
    if id != 42 {
        t.Fatalf("order id = %d, want 42", id)
    }
    // The stored total is exactly the sum of the frozen line subtotals.
    if order.TotalCents != wantTotal {
        t.Fatalf("total = %d, want %d", order.TotalCents, wantTotal)
    }
    if order.Status != model.StatusPending {
        t.Fatalf("status = %q, want %q", order.Status, model.StatusPending)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestPlace_InsufficientStockRollsBackEverything(t *testing.T) {
    repo, mock, db := newOrderRepoWithMock(t)
    defer db.Close()

    lines := []model.CartLine{
        {ProductID: 10, Name: "Shirt", PriceCents: 1999, Quantity: 1},
        {ProductID: 11, Name: "Cap", PriceCents: 500, Quantity: 3},
    }

    mock.ExpectBegin()
    mock.ExpectExec(`INSERT INTO orders`).
        WillReturnResult(sqlmock.NewResult(42, 1))
    mock.ExpectExec(`INSERT INTO order_lines`).
        WillReturnResult(sqlmock.NewResult(1, 2))
    mock.ExpectExec(`UPDATE products SET stock = stock - \?`).
        WithArgs(int64(1), uint64(10), int64(1)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    // The second product lost the race: zero rows match the stock guard.
    mock.ExpectExec(`UPDATE products SET stock = stock - \?`).
        WithArgs(int64(3), uint64(11), int64(3)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectRollback()

    order := &model.Order{UserID: 7, ShipName: "Alice", ShipAddress: "1 Main St", ShipPhone: "555-0101"}
    _, err := repo.Place(context.Background(), order, lines)
    if !errors.Is(err, ErrInsufficientStock) {
        t.Fatalf("want ErrInsufficientStock, got %v", err)
    }
    // Nothing committed: the order id was never assigned.
    if order.ID != 0 {
        t.Fatalf("order id set to %d despite rollback", order.ID)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestPlace_EmptyCartRejected(t *testing.T) {
    repo, mock, db := newOrderRepoWithMock(t)
    defer db.Close()

    _, err := repo.Place(context.Background(), &model.Order{UserID: 7}, nil)
    if err == nil || !IsConflict(err) {
        t.Fatalf("want conflict error for empty cart, got %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unexpected SQL issued: %v", err)
    }
}

func TestUpdateStatus_NormalizesCase(t *testing.T) {
    repo, mock, db := newOrderRepoWithMock(t)
    defer db.Close()

    mock.ExpectExec(`UPDATE orders SET status = \? WHERE id = \?`).
        WithArgs(model.StatusShipped, uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    ok, err := repo.UpdateStatus(context.Background(), 5, "shipped")
    if err != nil {
        t.Fatalf("UpdateStatus error: %v", err)
    }
    if !ok {
        t.Fatalf("expected ok")
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unmet expectations: %v", err)
    }
}

func TestUpdateStatus_RejectsUnknownWithoutWriting(t *testing.T) {
    repo, mock, db := newOrderRepoWithMock(t)
    defer db.Close()

    _, err := repo.UpdateStatus(context.Background(), 5, "Refunded")
    if !errors.Is(err, ErrInvalidStatus) {
        t.Fatalf("want ErrInvalidStatus, got %v", err)
    }
    if err := mock.ExpectationsWereMet(); err != nil {
        t.Fatalf("unexpected SQL issued: %v", err)
    }
}

func TestGetWithLines(t *testing.T) {
    repo, mock, db := newOrderRepoWithMock(t)
    defer db.Close()

    orderRows := sqlmock.NewRows([]string{
        "id", "user_id", "ordered_at", "total_cents", "status",
        "ship_name", "ship_address", "ship_phone", "notes", "username", "email",
    }).AddRow(42, 7, testTime(t), int64(4498), model.StatusPending,
        "Alice", "1 Main St", "555-0101", nil, "alice", "alice@example.com")
    mock.ExpectQuery(`SELECT .+ FROM orders o\s+LEFT JOIN users u`).
        WithArgs(uint64(42)).
        WillReturnRows(orderRows)

    lineRows := sqlmock.NewRows([]string{
        "id", "order_id", "product_id", "quantity", "unit_price_cents", "name", "image_url",
    }).
        AddRow(1, 42, 10, int64(2), int64(1999), "Shirt", "/img/shirt.png").
        AddRow(2, 42, 11, int64(1), int64(500), "Cap", nil)
    mock.ExpectQuery(`SELECT .+ FROM order_lines ol\s+JOIN products p`).
        WithArgs(uint64(42)).
        WillReturnRows(lineRows)

    o, err := repo.GetWithLines(context.Background(), 42)
    if err != nil {
        t.Fatalf("GetWithLines error: %v", err)
    }
    if o.Username != "alice" || len(o.Lines) != 2 {
        t.Fatalf("unexpected order: %+v", o)
    }
    // Frozen line subtotals still add up to the stored total.
    var sum int64
    for _, l := range o.Lines {
        sum += l.Subtotal()
    }
    if sum != o.TotalCents {
        t.Fatalf("line subtotals %d do not match total %d", sum, o.TotalCents)
    }
}
