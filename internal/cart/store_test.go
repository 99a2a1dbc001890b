package cart

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/online-shop/internal/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()

    // Absent cart loads as empty, not nil error.
    lines, err := s.Load(ctx, 1)
    require.NoError(t, err)
    assert.Empty(t, lines)

    in := []model.CartLine{
        {ProductID: 10, Name: "Shirt", PriceCents: 1999, Quantity: 2},
    }
    require.NoError(t, s.Save(ctx, 1, in))

    got, err := s.Load(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, in, got)

    // Another user's cart is untouched.
    other, err := s.Load(ctx, 2)
    require.NoError(t, err)
    assert.Empty(t, other)
}

func TestMemoryStoreClear(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()

    require.NoError(t, s.Save(ctx, 1, []model.CartLine{{ProductID: 1, Quantity: 1}}))
    require.NoError(t, s.Clear(ctx, 1))

    lines, err := s.Load(ctx, 1)
    require.NoError(t, err)
    assert.Empty(t, lines)

    // Clearing an absent cart is a no-op.
    require.NoError(t, s.Clear(ctx, 99))
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
    s := NewMemoryStore()
    ctx := context.Background()

    in := []model.CartLine{{ProductID: 10, Name: "Shirt", PriceCents: 1999, Quantity: 2}}
    require.NoError(t, s.Save(ctx, 1, in))

    // Mutating the slice the caller handed in must not change the
    // stored snapshot.
    in[0].Quantity = 99
    got, err := s.Load(ctx, 1)
    require.NoError(t, err)
    assert.EqualValues(t, 2, got[0].Quantity)

    // Mutating a loaded snapshot must not change the store either.
    got[0].Quantity = 50
    again, err := s.Load(ctx, 1)
    require.NoError(t, err)
    assert.EqualValues(t, 2, again[0].Quantity)
}
