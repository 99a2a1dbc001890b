package model

import "time"

// Product represents a catalog item as stored in the `products`
// table.  Prices are stored in minor units (cents) so that order
// totals can be computed exactly without floating point error.
// Stock is authoritative only at placement time via a conditional
// decrement; the value read here may be stale by the time an order
// commits.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the product.
//  PriceCents  – unit price in cents (>= 0).
//  Description – optional long description.
//  ImageURL    – optional image location for display.
//  Color       – optional variant attribute.
//  Size        – optional variant attribute.
//  Stock       – units currently on hand (>= 0).
//  CategoryID  – foreign key into the categories table.
//  IsActive    – whether the product is purchasable.
//  CreatedAt   – timestamp of creation.
type Product struct {
    ID           uint64    // products.id
    Name         string    // products.name
    PriceCents   int64     // products.price_cents
    Description  *string   // products.description (nullable)
    ImageURL     *string   // products.image_url (nullable)
    Color        *string   // products.color (nullable)
    Size         *string   // products.size (nullable)
    Stock        int64     // products.stock
    CategoryID   uint64    // products.category_id
    IsActive     bool      // products.is_active
    CreatedAt    time.Time // products.created_at
    CategoryName string    // categories.name (joined, not a column of products)
}

// Category represents a row in the `categories` table.  The full
// category list is small and changes rarely, so reads go through a
// process-wide cache that category writes invalidate synchronously.
type Category struct {
    ID          uint64  // categories.id
    Name        string  // categories.name
    Description *string // categories.description (nullable)
}
