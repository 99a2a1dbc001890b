package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/online-shop/internal/model"
)

// ProductRepo provides read access to the catalog plus the admin CRUD
// operations.  Stock and price are always read fresh; there is no
// caching at this layer, because checkout validation and order
// placement both depend on seeing live values.
type ProductRepo struct {
    db *sql.DB
}

// NewProductRepo returns a new ProductRepo bound to the given database.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productColumns = `p.id, p.name, p.price_cents, p.description, p.image_url,
                   p.color, p.size, p.stock, p.category_id, p.is_active, p.created_at,
                   c.name`

func scanProduct(row interface{ Scan(...any) error }) (*model.Product, error) {
    var p model.Product
    var desc, img, color, size sql.NullString
    err := row.Scan(
        &p.ID, &p.Name, &p.PriceCents, &desc, &img,
        &color, &size, &p.Stock, &p.CategoryID, &p.IsActive, &p.CreatedAt,
        &p.CategoryName,
    )
    if err != nil {
        return nil, err
    }
    if desc.Valid {
        v := desc.String
        p.Description = &v
    }
    if img.Valid {
        v := img.String
        p.ImageURL = &v
    }
    if color.Valid {
        v := color.String
        p.Color = &v
    }
    if size.Valid {
        v := size.String
        p.Size = &v
    }
    return &p, nil
}

// GetByID returns a single product joined with its category name.
// When no product with the given id exists, sql.ErrNoRows is
// returned; the checkout validator treats that the same as an
// inactive product.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
    const q = `SELECT ` + productColumns + `
               FROM products p
               JOIN categories c ON c.id = p.category_id
               WHERE p.id = ?`
    return scanProduct(r.db.QueryRowContext(ctx, q, id))
}

// ListActive returns all purchasable products, newest first.
func (r *ProductRepo) ListActive(ctx context.Context) ([]model.Product, error) {
    const q = `SELECT ` + productColumns + `
               FROM products p
               JOIN categories c ON c.id = p.category_id
               WHERE p.is_active = 1
               ORDER BY p.created_at DESC`
    return r.queryProducts(ctx, q)
}

// ListByCategory returns active products within one category, newest
// first.
func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID uint64) ([]model.Product, error) {
    const q = `SELECT ` + productColumns + `
               FROM products p
               JOIN categories c ON c.id = p.category_id
               WHERE p.is_active = 1 AND p.category_id = ?
               ORDER BY p.created_at DESC`
    return r.queryProducts(ctx, q, categoryID)
}

// Search returns active products whose name matches the keyword.
func (r *ProductRepo) Search(ctx context.Context, keyword string) ([]model.Product, error) {
    const q = `SELECT ` + productColumns + `
               FROM products p
               JOIN categories c ON c.id = p.category_id
               WHERE p.is_active = 1 AND p.name LIKE ?
               ORDER BY p.created_at DESC`
    return r.queryProducts(ctx, q, "%"+strings.TrimSpace(keyword)+"%")
}

// ListAll returns every product including inactive ones, for the back
// office.
func (r *ProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
    const q = `SELECT ` + productColumns + `
               FROM products p
               JOIN categories c ON c.id = p.category_id
               ORDER BY p.created_at DESC`
    return r.queryProducts(ctx, q)
}

func (r *ProductRepo) queryProducts(ctx context.Context, q string, args ...any) ([]model.Product, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    list := make([]model.Product, 0)
    for rows.Next() {
        p, err := scanProduct(rows)
        if err != nil {
            return nil, err
        }
        list = append(list, *p)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return list, nil
}

// Create inserts a product and returns its generated id.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) (uint64, error) {
    const q = `INSERT INTO products (name, price_cents, description, image_url, color, size, stock, category_id, is_active)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        p.Name, p.PriceCents, p.Description, p.ImageURL, p.Color, p.Size,
        p.Stock, p.CategoryID, p.IsActive)
    if err != nil {
        return 0, &StorageError{Op: "product.create", Kind: KindFatal, Err: err}
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, &StorageError{Op: "product.create", Kind: KindFatal, Err: err}
    }
    return uint64(id), nil
}

// Update rewrites all editable columns of a product.  Returns false
// when the id does not exist.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) (bool, error) {
    const q = `UPDATE products
               SET name = ?, price_cents = ?, description = ?, image_url = ?,
                   color = ?, size = ?, stock = ?, category_id = ?, is_active = ?
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q,
        p.Name, p.PriceCents, p.Description, p.ImageURL, p.Color, p.Size,
        p.Stock, p.CategoryID, p.IsActive, p.ID)
    if err != nil {
        return false, &StorageError{Op: "product.update", Kind: KindFatal, Err: err}
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// Delete removes a product row.  Products referenced by order lines
// are protected by a foreign key; that violation is reported as
// ErrConflict so handlers can suggest deactivating instead.
func (r *ProductRepo) Delete(ctx context.Context, id uint64) (bool, error) {
    res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
    if err != nil {
        if strings.Contains(err.Error(), "1451") { // MySQL: row is referenced
            return false, ErrConflict
        }
        return false, &StorageError{Op: "product.delete", Kind: KindFatal, Err: err}
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// DecrementStockTx applies the conditional stock decrement inside an
// existing transaction:
//
//	UPDATE products SET stock = stock - qty WHERE id = ? AND stock >= qty
//
// It returns false when the guard failed (stock dropped below qty
// between validation and commit).  The check and the write are a
// single statement, so two concurrent orders for the last unit cannot
// both pass.  This is the sole mechanism preventing overselling.
func (r *ProductRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, productID uint64, qty int64) (bool, error) {
    res, err := tx.ExecContext(ctx,
        `UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`,
        qty, productID, qty)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// Count returns the total number of products.
func (r *ProductRepo) Count(ctx context.Context) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
    return n, err
}

// CountByCategory returns the number of products in one category.
func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID uint64) (int64, error) {
    var n int64
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID).Scan(&n)
    return n, err
}
