package handler

import (
    "database/sql"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/repository"
)

type statusReq struct {
    Status string `json:"status"`
}

// ListOrders returns every order, newest first.
func (h *AdminHandler) ListOrders(c echo.Context) error {
    items, err := h.Orders.ListAll(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetOrder returns one order with its lines.
func (h *AdminHandler) GetOrder(c echo.Context) error {
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
    return c.JSON(http.StatusOK, o)
}

// UpdateOrderStatus moves an order through its lifecycle.  Status
// matching is case-insensitive; the stored value is always canonical.
func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req statusReq
    if err := c.Bind(&req); err != nil || req.Status == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "status required"})
    }
    ok, err := h.Orders.UpdateStatus(c.Request().Context(), id, req.Status)
    if err != nil {
        if err == repository.ErrInvalidStatus {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    if !ok {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "status updated"})
}
