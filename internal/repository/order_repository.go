package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/online-shop/internal/model"
)

// OrderRepo owns order placement and the order read side.  Placement
// runs as one transaction: the order row, all line rows and the
// conditional stock decrements either all commit or none do.
type OrderRepo struct {
    db       *sql.DB
    products *ProductRepo
}

// NewOrderRepo returns an OrderRepo bound to the given database.  The
// product repo supplies the conditional stock decrement used at
// commit time.
func NewOrderRepo(db *sql.DB, products *ProductRepo) *OrderRepo {
    return &OrderRepo{db: db, products: products}
}

// Place atomically persists an order for a cart that already passed
// checkout validation.  The total is recomputed here from the line
// subtotals; client-supplied totals are never trusted.  Steps inside
// one transaction:
//
//  1. insert the order row with status Pending;
//  2. bulk-insert one order_lines row per cart line, freezing
//     quantity and unit price;
//  3. for each line, decrement products.stock guarded by
//     `stock >= qty`.
//
// If any decrement matches zero rows (stock dropped between
// validation and commit) the whole transaction rolls back and
// ErrInsufficientStock is returned: no partial order, no partial
// decrement.  Any other failure rolls back and comes out as a fatal
// StorageError.
func (r *OrderRepo) Place(ctx context.Context, order *model.Order, lines []model.CartLine) (uint64, error) {
    if len(lines) == 0 {
        return 0, &StorageError{Op: "order.create", Kind: KindConflict, Err: ErrConflict}
    }

    total := model.CartTotal(lines)

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, &StorageError{Op: "order.create", Kind: KindFatal, Err: err}
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := tx.ExecContext(ctx,
        `INSERT INTO orders (user_id, ordered_at, total_cents, status, ship_name, ship_address, ship_phone, notes)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
        order.UserID, time.Now().UTC(), total, model.StatusPending,
        order.ShipName, order.ShipAddress, order.ShipPhone, order.Notes)
    if err != nil {
        return 0, &StorageError{Op: "order.create", Kind: KindFatal, Err: err}
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, &StorageError{Op: "order.create", Kind: KindFatal, Err: err}
    }
    orderID := uint64(id)

    if err := r.createLinesBulkTx(ctx, tx, orderID, lines); err != nil {
        return 0, &StorageError{Op: "order.create", Kind: KindFatal, Err: err}
    }

    for _, l := range lines {
        ok, err := r.products.DecrementStockTx(ctx, tx, l.ProductID, l.Quantity)
        if err != nil {
            return 0, &StorageError{Op: "order.create", Kind: KindFatal, Err: err}
        }
        if !ok {
            return 0, ErrInsufficientStock
        }
    }

    if err := tx.Commit(); err != nil {
        return 0, &StorageError{Op: "order.create", Kind: KindFatal, Err: err}
    }
    committed = true

    order.ID = orderID
    order.TotalCents = total
    order.Status = model.StatusPending
    return orderID, nil
}

// createLinesBulkTx inserts all order lines in one statement, in cart
// order.
func (r *OrderRepo) createLinesBulkTx(ctx context.Context, tx *sql.Tx, orderID uint64, lines []model.CartLine) error {
    query := `INSERT INTO order_lines (order_id, product_id, quantity, unit_price_cents) VALUES `
    args := make([]any, 0, len(lines)*4)
    for i, l := range lines {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?)"
        args = append(args, orderID, l.ProductID, l.Quantity, l.PriceCents)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

const orderColumns = `o.id, o.user_id, o.ordered_at, o.total_cents, o.status,
                      o.ship_name, o.ship_address, o.ship_phone, o.notes,
                      u.username, u.email`

func scanOrder(row interface{ Scan(...any) error }) (*model.Order, error) {
    var o model.Order
    var notes, username, email sql.NullString
    err := row.Scan(&o.ID, &o.UserID, &o.OrderedAt, &o.TotalCents, &o.Status,
        &o.ShipName, &o.ShipAddress, &o.ShipPhone, &notes,
        &username, &email)
    if err != nil {
        return nil, err
    }
    if notes.Valid {
        v := notes.String
        o.Notes = &v
    }
    o.Username = username.String
    o.Email = email.String
    return &o, nil
}

// GetWithLines returns one order with its line items joined with
// product display data.  sql.ErrNoRows when the order does not exist.
func (r *OrderRepo) GetWithLines(ctx context.Context, orderID uint64) (*model.Order, error) {
    const q = `SELECT ` + orderColumns + `
               FROM orders o
               LEFT JOIN users u ON u.id = o.user_id
               WHERE o.id = ?`
    o, err := scanOrder(r.db.QueryRowContext(ctx, q, orderID))
    if err != nil {
        return nil, err
    }

    const lineQ = `SELECT ol.id, ol.order_id, ol.product_id, ol.quantity, ol.unit_price_cents,
                          p.name, p.image_url
                   FROM order_lines ol
                   JOIN products p ON p.id = ol.product_id
                   WHERE ol.order_id = ?
                   ORDER BY ol.id`
    rows, err := r.db.QueryContext(ctx, lineQ, orderID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    o.Lines = make([]model.OrderLine, 0)
    for rows.Next() {
        var l model.OrderLine
        var img sql.NullString
        if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPriceCents,
            &l.ProductName, &img); err != nil {
            return nil, err
        }
        if img.Valid {
            v := img.String
            l.ImageURL = &v
        }
        o.Lines = append(o.Lines, l)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return o, nil
}

// ListByUser returns a user's orders, newest first, without lines.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
    const q = `SELECT ` + orderColumns + `
               FROM orders o
               LEFT JOIN users u ON u.id = o.user_id
               WHERE o.user_id = ?
               ORDER BY o.ordered_at DESC`
    return r.queryOrders(ctx, q, userID)
}

// ListAll returns every order, newest first, for the back office.
func (r *OrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
    const q = `SELECT ` + orderColumns + `
               FROM orders o
               LEFT JOIN users u ON u.id = o.user_id
               ORDER BY o.ordered_at DESC`
    return r.queryOrders(ctx, q)
}

func (r *OrderRepo) queryOrders(ctx context.Context, q string, args ...any) ([]model.Order, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    list := make([]model.Order, 0)
    for rows.Next() {
        o, err := scanOrder(rows)
        if err != nil {
            return nil, err
        }
        list = append(list, *o)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return list, nil
}

// UpdateStatus sets the order status after normalizing it against the
// permitted enumeration.  Unknown statuses return ErrInvalidStatus
// without touching storage; false means the order id does not exist.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID uint64, status string) (bool, error) {
    canonical, ok := model.NormalizeStatus(status)
    if !ok {
        return false, ErrInvalidStatus
    }
    res, err := r.db.ExecContext(ctx,
        `UPDATE orders SET status = ? WHERE id = ?`, canonical, orderID)
    if err != nil {
        return false, &StorageError{Op: "order.update_status", Kind: KindFatal, Err: err}
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// StatusCounts returns how many orders sit in each status, for the
// back-office dashboard.
func (r *OrderRepo) StatusCounts(ctx context.Context) (map[string]int64, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT status, COUNT(*) FROM orders GROUP BY status`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    counts := make(map[string]int64)
    for rows.Next() {
        var status string
        var n int64
        if err := rows.Scan(&status, &n); err != nil {
            return nil, err
        }
        counts[status] = n
    }
    return counts, rows.Err()
}

// MonthRevenue is one month of aggregated order totals.
type MonthRevenue struct {
    Month      string `json:"month"` // YYYY-MM
    TotalCents int64  `json:"total_cents"`
}

// MonthlyRevenue returns per-month revenue for the most recent
// months, oldest first.
func (r *OrderRepo) MonthlyRevenue(ctx context.Context, months int) ([]MonthRevenue, error) {
    const q = `SELECT DATE_FORMAT(ordered_at, '%Y-%m') AS month, SUM(total_cents)
               FROM orders
               GROUP BY month
               ORDER BY month DESC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, months)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    list := make([]MonthRevenue, 0, months)
    for rows.Next() {
        var m MonthRevenue
        if err := rows.Scan(&m.Month, &m.TotalCents); err != nil {
            return nil, err
        }
        list = append(list, m)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    // Reverse into chronological order for charting.
    for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
        list[i], list[j] = list[j], list[i]
    }
    return list, nil
}

// ProductSales aggregates lifetime sales of one product.
type ProductSales struct {
    ProductName  string `json:"product_name"`
    Quantity     int64  `json:"quantity"`
    RevenueCents int64  `json:"revenue_cents"`
}

// TopProducts returns the best-selling products by revenue.
func (r *OrderRepo) TopProducts(ctx context.Context, top int) ([]ProductSales, error) {
    const q = `SELECT p.name, SUM(ol.quantity), SUM(ol.quantity * ol.unit_price_cents) AS revenue
               FROM order_lines ol
               JOIN products p ON p.id = ol.product_id
               GROUP BY p.name
               ORDER BY revenue DESC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, top)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    list := make([]ProductSales, 0, top)
    for rows.Next() {
        var s ProductSales
        if err := rows.Scan(&s.ProductName, &s.Quantity, &s.RevenueCents); err != nil {
            return nil, err
        }
        list = append(list, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return list, nil
}

// Count returns the total number of orders.
func (r *OrderRepo) Count(ctx context.Context) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
    return n, err
}
