package checkout

import (
    "context"
    "database/sql"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/online-shop/internal/model"
)

// fakeCatalog serves products from a map, standing in for the product
// repository.
type fakeCatalog struct {
    products map[uint64]model.Product
}

func (f *fakeCatalog) GetByID(_ context.Context, id uint64) (*model.Product, error) {
    p, ok := f.products[id]
    if !ok {
        return nil, sql.ErrNoRows
    }
    cp := p
    return &cp, nil
}

func strptr(s string) *string { return &s }

func catalogWith(products ...model.Product) *fakeCatalog {
    m := make(map[uint64]model.Product, len(products))
    for _, p := range products {
        m[p.ID] = p
    }
    return &fakeCatalog{products: m}
}

func TestValidateEmptyCart(t *testing.T) {
    v := NewValidator(catalogWith())
    res, err := v.Validate(context.Background(), nil)
    require.NoError(t, err)
    assert.Equal(t, EmptyCart, res.Outcome)
    assert.Equal(t, "your cart is empty", res.Message)
    assert.Empty(t, res.Lines)
}

func TestValidateCleanCartPassesUntouched(t *testing.T) {
    v := NewValidator(catalogWith(
        model.Product{ID: 1, Name: "Shirt", PriceCents: 1999, Stock: 10, IsActive: true},
    ))
    in := []model.CartLine{{ProductID: 1, Name: "Shirt", PriceCents: 1999, Quantity: 2}}

    res, err := v.Validate(context.Background(), in)
    require.NoError(t, err)
    assert.Equal(t, OK, res.Outcome)
    assert.Equal(t, in, res.Lines)
    assert.Empty(t, res.Removed)
    assert.Empty(t, res.Adjusted)
    assert.Empty(t, res.Repriced)
    assert.EqualValues(t, 3998, res.TotalCents())
}

func TestValidateRemovesUnavailable(t *testing.T) {
    v := NewValidator(catalogWith(
        model.Product{ID: 2, Name: "Inactive", PriceCents: 500, Stock: 5, IsActive: false},
        model.Product{ID: 3, Name: "SoldOut", PriceCents: 500, Stock: 0, IsActive: true},
        model.Product{ID: 4, Name: "Keeper", PriceCents: 700, Stock: 3, IsActive: true},
    ))
    in := []model.CartLine{
        {ProductID: 1, Name: "Ghost", PriceCents: 100, Quantity: 1},    // gone from catalog
        {ProductID: 2, Name: "Inactive", PriceCents: 500, Quantity: 1}, // deactivated
        {ProductID: 3, Name: "SoldOut", PriceCents: 500, Quantity: 1},  // zero stock
        {ProductID: 4, Name: "Keeper", PriceCents: 700, Quantity: 2},
    }

    res, err := v.Validate(context.Background(), in)
    require.NoError(t, err)
    assert.Equal(t, ReviewRequired, res.Outcome)
    require.Len(t, res.Lines, 1)
    assert.EqualValues(t, 4, res.Lines[0].ProductID)
    assert.Len(t, res.Removed, 3)
    assert.EqualValues(t, 1400, res.TotalCents())
}

func TestValidateBecameEmptyMessageDiffersFromStartedEmpty(t *testing.T) {
    v := NewValidator(catalogWith())
    in := []model.CartLine{{ProductID: 9, Name: "Gone", PriceCents: 100, Quantity: 1}}

    res, err := v.Validate(context.Background(), in)
    require.NoError(t, err)
    assert.Equal(t, EmptyCart, res.Outcome)
    assert.Equal(t, "all items in your cart have become unavailable", res.Message)
    assert.Len(t, res.Removed, 1)
}

func TestValidateClampsQuantity(t *testing.T) {
    v := NewValidator(catalogWith(
        model.Product{ID: 1, Name: "Scarce", PriceCents: 900, Stock: 2, IsActive: true},
    ))
    in := []model.CartLine{{ProductID: 1, Name: "Scarce", PriceCents: 900, Quantity: 5}}

    res, err := v.Validate(context.Background(), in)
    require.NoError(t, err)
    assert.Equal(t, ReviewRequired, res.Outcome)
    require.Len(t, res.Lines, 1)
    assert.EqualValues(t, 2, res.Lines[0].Quantity)
    assert.Len(t, res.Adjusted, 1)
}

func TestValidatePicksUpPriceChange(t *testing.T) {
    v := NewValidator(catalogWith(
        model.Product{ID: 1, Name: "Jacket", PriceCents: 120_00, Stock: 10, IsActive: true, ImageURL: strptr("/img/jacket.png")},
    ))
    // The shopper added the jacket when it cost 100.00.
    in := []model.CartLine{{ProductID: 1, Name: "Jacket", PriceCents: 100_00, Quantity: 2}}

    res, err := v.Validate(context.Background(), in)
    require.NoError(t, err)
    assert.Equal(t, ReviewRequired, res.Outcome)
    require.Len(t, res.Repriced, 1)
    assert.Contains(t, res.Repriced[0], "100.00")
    assert.Contains(t, res.Repriced[0], "120.00")

    // The order that would be placed from this cart totals at the new
    // price, never the stale one.
    require.Len(t, res.Lines, 1)
    assert.EqualValues(t, 120_00, res.Lines[0].PriceCents)
    assert.EqualValues(t, 240_00, res.TotalCents())
    assert.Equal(t, "/img/jacket.png", *res.Lines[0].ImageURL)
}

func TestValidateIsIdempotent(t *testing.T) {
    v := NewValidator(catalogWith(
        model.Product{ID: 1, Name: "Jacket", PriceCents: 120_00, Stock: 2, IsActive: true},
        model.Product{ID: 2, Name: "Inactive", PriceCents: 500, Stock: 5, IsActive: false},
    ))
    in := []model.CartLine{
        {ProductID: 1, Name: "Jacket", PriceCents: 100_00, Quantity: 5},
        {ProductID: 2, Name: "Inactive", PriceCents: 500, Quantity: 1},
    }

    first, err := v.Validate(context.Background(), in)
    require.NoError(t, err)
    assert.Equal(t, ReviewRequired, first.Outcome)

    // Re-running on the rewritten cart changes nothing.
    second, err := v.Validate(context.Background(), first.Lines)
    require.NoError(t, err)
    assert.Equal(t, OK, second.Outcome)
    assert.Equal(t, first.Lines, second.Lines)
    assert.Empty(t, second.Removed)
    assert.Empty(t, second.Adjusted)
    assert.Empty(t, second.Repriced)
}
