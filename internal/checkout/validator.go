package checkout

import (
    "context"
    "database/sql"
    "errors"
    "fmt"

    "github.com/iliyamo/online-shop/internal/model"
)

// ProductReader is the slice of the product repository the validator
// needs: current catalog state, one product at a time.
type ProductReader interface {
    GetByID(ctx context.Context, id uint64) (*model.Product, error)
}

// Outcome classifies a validation run.
type Outcome int

const (
    // OK means the cart matches the catalog and checkout may proceed.
    OK Outcome = iota
    // ReviewRequired means lines were removed, clamped or repriced;
    // the shopper must see the rewritten cart before paying.
    ReviewRequired
    // EmptyCart means there is nothing left to buy.
    EmptyCart
)

// Result is the output of one validation pass: the rewritten cart,
// the outcome and human-readable notices explaining every change.
type Result struct {
    Outcome Outcome          `json:"-"`
    Lines   []model.CartLine `json:"lines"`
    // Removed lists products dropped because they vanished, were
    // deactivated or are out of stock.
    Removed []string `json:"removed,omitempty"`
    // Adjusted lists quantity clamps applied where demand exceeded
    // stock.
    Adjusted []string `json:"adjusted,omitempty"`
    // Repriced lists price changes picked up from the catalog.
    Repriced []string `json:"repriced,omitempty"`
    // Message summarizes the outcome for direct display.
    Message string `json:"message,omitempty"`
}

// TotalCents is the total of the rewritten cart.
func (r *Result) TotalCents() int64 { return model.CartTotal(r.Lines) }

// Validator reconciles a saved cart against the live catalog.
type Validator struct {
    products ProductReader
}

func NewValidator(products ProductReader) *Validator {
    return &Validator{products: products}
}

// Validate replays every cart line against the current catalog and
// rewrites the cart to something purchasable:
//
//   - a product that no longer exists, is inactive or has zero stock
//     drops out of the cart;
//   - a quantity above current stock is clamped down to it;
//   - a stale price, name or image is refreshed to the catalog value,
//     with price changes called out to the shopper.
//
// Validation never mutates the catalog and never reserves stock; the
// conditional decrement at order placement is the only overselling
// guard.  Running Validate again on its own output yields OK with no
// notices, since the rewritten cart already matches the catalog.
func (v *Validator) Validate(ctx context.Context, lines []model.CartLine) (*Result, error) {
    res := &Result{Lines: make([]model.CartLine, 0, len(lines))}
    if len(lines) == 0 {
        res.Outcome = EmptyCart
        res.Message = "your cart is empty"
        return res, nil
    }

    for _, l := range lines {
        p, err := v.products.GetByID(ctx, l.ProductID)
        if err != nil {
            if errors.Is(err, sql.ErrNoRows) {
                res.Removed = append(res.Removed,
                    fmt.Sprintf("%q is no longer available and was removed from your cart", l.Name))
                continue
            }
            return nil, err
        }
        if !p.IsActive || p.Stock <= 0 {
            res.Removed = append(res.Removed,
                fmt.Sprintf("%q is no longer available and was removed from your cart", p.Name))
            continue
        }

        if l.Quantity > p.Stock {
            res.Adjusted = append(res.Adjusted,
                fmt.Sprintf("only %d of %q left; quantity reduced from %d", p.Stock, p.Name, l.Quantity))
            l.Quantity = p.Stock
        }
        if l.PriceCents != p.PriceCents {
            res.Repriced = append(res.Repriced,
                fmt.Sprintf("price of %q changed from %s to %s",
                    p.Name, formatCents(l.PriceCents), formatCents(p.PriceCents)))
        }

        // Refresh display data unconditionally so the snapshot the
        // shopper confirms is the one that gets ordered.
        l.Name = p.Name
        l.PriceCents = p.PriceCents
        l.ImageURL = p.ImageURL
        res.Lines = append(res.Lines, l)
    }

    switch {
    case len(res.Lines) == 0:
        res.Outcome = EmptyCart
        res.Message = "all items in your cart have become unavailable"
    case len(res.Removed)+len(res.Adjusted)+len(res.Repriced) > 0:
        res.Outcome = ReviewRequired
        res.Message = "your cart was updated, please review it before placing the order"
    default:
        res.Outcome = OK
    }
    return res, nil
}

func formatCents(cents int64) string {
    sign := ""
    if cents < 0 {
        sign = "-"
        cents = -cents
    }
    return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
