package handler

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/cart"
    "github.com/iliyamo/online-shop/internal/model"
    "github.com/iliyamo/online-shop/internal/repository"
)

// CartHandler manages the per-user cart snapshot (protected routes).
// The snapshot stores display data and the price as last seen; the
// checkout validator is the authority on whether it still holds.
type CartHandler struct {
    Carts    cart.Store
    Products *repository.ProductRepo
}

func NewCartHandler(s cart.Store, p *repository.ProductRepo) *CartHandler {
    return &CartHandler{Carts: s, Products: p}
}

type cartLineReq struct {
    ProductID uint64 `json:"product_id"`
    Quantity  int64  `json:"quantity"`
}
type cartPutReq struct {
    Lines []cartLineReq `json:"lines"`
}
type cartResp struct {
    Lines      []model.CartLine `json:"lines"`
    TotalCents int64            `json:"total_cents"`
}

// Get returns the saved cart.
func (h *CartHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    lines, err := h.Carts.Load(c.Request().Context(), uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
    }
    return c.JSON(http.StatusOK, cartResp{Lines: lines, TotalCents: model.CartTotal(lines)})
}

// Put replaces the cart wholesale.  Clients send product ids and
// quantities only; name, price and image are filled in from the
// catalog here so a snapshot can never carry a forged price.
func (h *CartHandler) Put(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req cartPutReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    seen := make(map[uint64]int, len(req.Lines))
    lines := make([]model.CartLine, 0, len(req.Lines))
    for _, l := range req.Lines {
        if l.ProductID == 0 || l.Quantity < 1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "each line needs product_id and quantity >= 1"})
        }
        // Duplicate products merge into one line.
        if idx, ok := seen[l.ProductID]; ok {
            lines[idx].Quantity += l.Quantity
            continue
        }
        p, err := h.Products.GetByID(ctx, l.ProductID)
        if err != nil {
            if err == sql.ErrNoRows {
                return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        if !p.IsActive {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
        }
        seen[l.ProductID] = len(lines)
        lines = append(lines, model.CartLine{
            ProductID:  p.ID,
            Name:       p.Name,
            PriceCents: p.PriceCents,
            ImageURL:   p.ImageURL,
            Quantity:   l.Quantity,
        })
    }

    if err := h.Carts.Save(ctx, uid, lines); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save cart failed"})
    }
    return c.JSON(http.StatusOK, cartResp{Lines: lines, TotalCents: model.CartTotal(lines)})
}

// AddItem adds one product to the cart, merging the quantity into an
// existing line for the same product.  A missing or sub-1 quantity
// means one unit.
func (h *CartHandler) AddItem(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req cartLineReq
    if err := c.Bind(&req); err != nil || req.ProductID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
    }
    if req.Quantity < 1 {
        req.Quantity = 1
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    lines, err := h.Carts.Load(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
    }
    merged := false
    for i := range lines {
        if lines[i].ProductID == req.ProductID {
            lines[i].Quantity += req.Quantity
            merged = true
            break
        }
    }
    if !merged {
        p, err := h.Products.GetByID(ctx, req.ProductID)
        if err != nil {
            if err == sql.ErrNoRows {
                return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        if !p.IsActive {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
        }
        lines = append(lines, model.CartLine{
            ProductID:  p.ID,
            Name:       p.Name,
            PriceCents: p.PriceCents,
            ImageURL:   p.ImageURL,
            Quantity:   req.Quantity,
        })
    }

    if err := h.Carts.Save(ctx, uid, lines); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save cart failed"})
    }
    return c.JSON(http.StatusOK, cartResp{Lines: lines, TotalCents: model.CartTotal(lines)})
}

// UpdateItem sets the quantity of one line.  Quantities below one are
// clamped to one; removing a line is its own endpoint.
func (h *CartHandler) UpdateItem(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    productID, err := pathID(c, "productID")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req struct {
        Quantity int64 `json:"quantity"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Quantity < 1 {
        req.Quantity = 1
    }

    ctx := c.Request().Context()
    lines, err := h.Carts.Load(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
    }
    found := false
    for i := range lines {
        if lines[i].ProductID == productID {
            lines[i].Quantity = req.Quantity
            found = true
            break
        }
    }
    if !found {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not in cart"})
    }
    if err := h.Carts.Save(ctx, uid, lines); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save cart failed"})
    }
    return c.JSON(http.StatusOK, cartResp{Lines: lines, TotalCents: model.CartTotal(lines)})
}

// RemoveItem deletes one line from the cart.
func (h *CartHandler) RemoveItem(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    productID, err := pathID(c, "productID")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx := c.Request().Context()
    lines, err := h.Carts.Load(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load cart failed"})
    }
    kept := lines[:0]
    for _, l := range lines {
        if l.ProductID != productID {
            kept = append(kept, l)
        }
    }
    if err := h.Carts.Save(ctx, uid, kept); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save cart failed"})
    }
    return c.JSON(http.StatusOK, cartResp{Lines: kept, TotalCents: model.CartTotal(kept)})
}

// Clear empties the cart.
func (h *CartHandler) Clear(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err := h.Carts.Clear(c.Request().Context(), uid); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "clear cart failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "cart cleared"})
}
