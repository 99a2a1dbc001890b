package model

// CartLine is one entry of the session-scoped cart snapshot.  The
// name, price and image are denormalized copies for display and are
// refreshed from the catalog on every checkout validation pass; they
// must never be trusted for pricing without that refresh.  Cart lines
// live only in the session store and are destroyed when the order is
// placed or the line is removed.
type CartLine struct {
    ProductID  uint64  `json:"product_id"`
    Name       string  `json:"name"`
    PriceCents int64   `json:"price_cents"`
    ImageURL   *string `json:"image_url,omitempty"`
    Quantity   int64   `json:"quantity"`
}

// Subtotal returns quantity × snapshot price in cents.
func (l CartLine) Subtotal() int64 { return l.PriceCents * l.Quantity }

// CartTotal sums the subtotals of all lines.
func CartTotal(lines []CartLine) int64 {
    var total int64
    for _, l := range lines {
        total += l.Subtotal()
    }
    return total
}
