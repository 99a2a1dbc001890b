package handler

import (
    "context"
    "database/sql"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/cart"
    "github.com/iliyamo/online-shop/internal/checkout"
    "github.com/iliyamo/online-shop/internal/model"
    "github.com/iliyamo/online-shop/internal/queue"
    "github.com/iliyamo/online-shop/internal/repository"
    queue_publisher "github.com/iliyamo/online-shop/internal/service"
)

// CheckoutHandler drives the two-step purchase flow: validate the cart
// against the live catalog, then place the order.  Placement relies on
// the conditional stock decrement inside OrderRepo.Place as the only
// overselling guard; validation merely keeps the cart honest.
type CheckoutHandler struct {
    Carts     cart.Store
    Validator *checkout.Validator
    Orders    *repository.OrderRepo
    Users     *repository.UserRepo
}

func NewCheckoutHandler(s cart.Store, v *checkout.Validator, o *repository.OrderRepo, u *repository.UserRepo) *CheckoutHandler {
    return &CheckoutHandler{Carts: s, Validator: v, Orders: o, Users: u}
}

type placeOrderReq struct {
    ShipName    string  `json:"ship_name"`
    ShipAddress string  `json:"ship_address"`
    ShipPhone   string  `json:"ship_phone"`
    Notes       *string `json:"notes"`
}

type validateResp struct {
    Status     string           `json:"status"` // ok | review | empty
    Lines      []model.CartLine `json:"lines"`
    TotalCents int64            `json:"total_cents"`
    Removed    []string         `json:"removed,omitempty"`
    Adjusted   []string         `json:"adjusted,omitempty"`
    Repriced   []string         `json:"repriced,omitempty"`
    Message    string           `json:"message,omitempty"`
}

func toValidateResp(res *checkout.Result) validateResp {
    status := "ok"
    switch res.Outcome {
    case checkout.ReviewRequired:
        status = "review"
    case checkout.EmptyCart:
        status = "empty"
    }
    return validateResp{
        Status:     status,
        Lines:      res.Lines,
        TotalCents: res.TotalCents(),
        Removed:    res.Removed,
        Adjusted:   res.Adjusted,
        Repriced:   res.Repriced,
        Message:    res.Message,
    }
}

// validateAndSave runs the validator over the saved cart and persists
// the rewritten snapshot before anything is reported back, so what the
// shopper reviews is exactly what a follow-up checkout will submit.
func (h *CheckoutHandler) validateAndSave(ctx context.Context, userID uint64) (*checkout.Result, error) {
    lines, err := h.Carts.Load(ctx, userID)
    if err != nil {
        return nil, err
    }
    res, err := h.Validator.Validate(ctx, lines)
    if err != nil {
        return nil, err
    }
    if err := h.Carts.Save(ctx, userID, res.Lines); err != nil {
        return nil, err
    }
    return res, nil
}

// Validate reconciles the saved cart with the catalog (protected).
func (h *CheckoutHandler) Validate(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    res, err := h.validateAndSave(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate failed"})
    }
    return c.JSON(http.StatusOK, toValidateResp(res))
}

// PlaceOrder validates once more and, if the cart is clean, commits
// the order (protected).  A cart that needed rewriting comes back as
// 409 with the updated snapshot so the shopper can confirm it; a
// clean cart that still loses the stock race also comes back 409,
// with the re-validated cart.
func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req placeOrderReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.ShipName = strings.TrimSpace(req.ShipName)
    req.ShipAddress = strings.TrimSpace(req.ShipAddress)
    req.ShipPhone = strings.TrimSpace(req.ShipPhone)
    if req.ShipName == "" || req.ShipAddress == "" || req.ShipPhone == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "ship_name/ship_address/ship_phone required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    res, err := h.validateAndSave(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validate failed"})
    }
    switch res.Outcome {
    case checkout.EmptyCart:
        return c.JSON(http.StatusBadRequest, toValidateResp(res))
    case checkout.ReviewRequired:
        return c.JSON(http.StatusConflict, toValidateResp(res))
    }

    order := &model.Order{
        UserID:      uid,
        ShipName:    req.ShipName,
        ShipAddress: req.ShipAddress,
        ShipPhone:   req.ShipPhone,
        Notes:       req.Notes,
    }
    orderID, err := h.Orders.Place(ctx, order, res.Lines)
    if err != nil {
        if err == repository.ErrInsufficientStock {
            // Someone bought the last units between validation and
            // commit.  Re-validate so the 409 carries a cart that is
            // purchasable again.
            res2, verr := h.validateAndSave(ctx, uid)
            if verr != nil {
                return c.JSON(http.StatusConflict, echo.Map{"error": "stock changed, please review your cart"})
            }
            out := toValidateResp(res2)
            if out.Message == "" {
                out.Message = "stock changed, please review your cart"
            }
            return c.JSON(http.StatusConflict, out)
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "place order failed"})
    }

    if err := h.Carts.Clear(ctx, uid); err != nil {
        c.Logger().Warnf("order %d: clear cart failed: %v", orderID, err)
    }

    h.publishPlaced(order, res.Lines)

    return c.JSON(http.StatusCreated, echo.Map{
        "order_id":    orderID,
        "total_cents": order.TotalCents,
        "status":      order.Status,
    })
}

// publishPlaced emits the order.placed event in the background.  The
// order is already committed; a broker outage must not fail the
// request.
func (h *CheckoutHandler) publishPlaced(order *model.Order, lines []model.CartLine) {
    ev := queue.OrderPlacedEvent{
        OrderID:    order.ID,
        UserID:     order.UserID,
        TotalCents: order.TotalCents,
        PlacedAt:   time.Now().UTC().Format(time.RFC3339),
    }
    for _, l := range lines {
        ev.Lines = append(ev.Lines, queue.OrderLineEvent{
            ProductID:      l.ProductID,
            ProductName:    l.Name,
            Quantity:       l.Quantity,
            UnitPriceCents: l.PriceCents,
        })
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer cancel()
        if u, err := h.Users.GetByID(ctx, order.UserID); err == nil {
            ev.Username = u.Username
            ev.Email = u.Email
        }
        _ = queue_publisher.PublishOrderPlaced(ctx, ev)
    }()
}

// MyOrders lists the authenticated user's orders (protected).
func (h *CheckoutHandler) MyOrders(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    orders, err := h.Orders.ListByUser(c.Request().Context(), uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": orders})
}

// MyOrder returns one of the authenticated user's orders with lines
// (protected).  Staff see any order through the admin routes instead.
func (h *CheckoutHandler) MyOrder(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    o, err := h.Orders.GetWithLines(c.Request().Context(), id)
    if err != nil {
        if err == sql.ErrNoRows {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if o.UserID != uid {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
    }
    return c.JSON(http.StatusOK, o)
}
