package repository

import (
    "context"
    "database/sql"
    "strings"
    "sync"
    "time"

    "github.com/iliyamo/online-shop/internal/model"
)

// CategoryRepo provides CRUD access to the categories table.  The
// category list is read on nearly every storefront page but changes
// rarely, so List serves from a process-wide cache with a fixed TTL.
// Every write goes through Invalidate before returning, so a reader
// in the same process never observes a list older than a write it
// just performed.  Product stock and price never pass through here.
type CategoryRepo struct {
    db *sql.DB

    mu      sync.Mutex
    cached  []model.Category
    expires time.Time
    ttl     time.Duration
}

// categoryCacheTTL bounds staleness for readers in other processes;
// in-process writers invalidate synchronously.
const categoryCacheTTL = time.Hour

// NewCategoryRepo returns a new CategoryRepo bound to the given database.
func NewCategoryRepo(db *sql.DB) *CategoryRepo {
    return &CategoryRepo{db: db, ttl: categoryCacheTTL}
}

// List returns all categories ordered by name, serving from the
// in-process cache when it is still fresh.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
    r.mu.Lock()
    if r.cached != nil && time.Now().Before(r.expires) {
        out := make([]model.Category, len(r.cached))
        copy(out, r.cached)
        r.mu.Unlock()
        return out, nil
    }
    r.mu.Unlock()

    list, err := r.listFresh(ctx)
    if err != nil {
        return nil, err
    }

    r.mu.Lock()
    r.cached = list
    r.expires = time.Now().Add(r.ttl)
    r.mu.Unlock()

    out := make([]model.Category, len(list))
    copy(out, list)
    return out, nil
}

func (r *CategoryRepo) listFresh(ctx context.Context) ([]model.Category, error) {
    const q = `SELECT id, name, description FROM categories ORDER BY name`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    list := make([]model.Category, 0)
    for rows.Next() {
        var c model.Category
        var desc sql.NullString
        if err := rows.Scan(&c.ID, &c.Name, &desc); err != nil {
            return nil, err
        }
        if desc.Valid {
            v := desc.String
            c.Description = &v
        }
        list = append(list, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return list, nil
}

// GetByID returns one category.  sql.ErrNoRows when absent.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
    var c model.Category
    var desc sql.NullString
    err := r.db.QueryRowContext(ctx,
        `SELECT id, name, description FROM categories WHERE id = ?`, id).
        Scan(&c.ID, &c.Name, &desc)
    if err != nil {
        return nil, err
    }
    if desc.Valid {
        v := desc.String
        c.Description = &v
    }
    return &c, nil
}

// Invalidate drops the cached list so the next List re-reads the
// table.  Called by every write below; exported for callers that
// mutate categories outside this repo (none today).
func (r *CategoryRepo) Invalidate() {
    r.mu.Lock()
    r.cached = nil
    r.expires = time.Time{}
    r.mu.Unlock()
}

// Create inserts a category and invalidates the cache.
func (r *CategoryRepo) Create(ctx context.Context, name string, description *string) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        `INSERT INTO categories (name, description) VALUES (?, ?)`, name, description)
    if err != nil {
        return 0, &StorageError{Op: "category.create", Kind: KindFatal, Err: err}
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    r.Invalidate()
    return uint64(id), nil
}

// Update rewrites a category and invalidates the cache.  Returns
// false when the id does not exist.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) (bool, error) {
    res, err := r.db.ExecContext(ctx,
        `UPDATE categories SET name = ?, description = ? WHERE id = ?`,
        c.Name, c.Description, c.ID)
    if err != nil {
        return false, &StorageError{Op: "category.update", Kind: KindFatal, Err: err}
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    if n > 0 {
        r.Invalidate()
    }
    return n > 0, nil
}

// Delete removes a category and invalidates the cache.  Deleting a
// category that still has products violates the foreign key and is
// reported as ErrConflict.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) (bool, error) {
    res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
    if err != nil {
        if strings.Contains(err.Error(), "1451") {
            return false, ErrConflict
        }
        return false, &StorageError{Op: "category.delete", Kind: KindFatal, Err: err}
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    if n > 0 {
        r.Invalidate()
    }
    return n > 0, nil
}
