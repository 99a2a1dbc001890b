package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/model"
)

// Dashboard returns the headline numbers for the back-office landing
// page: entity counts and orders grouped by status.
func (h *AdminHandler) Dashboard(c echo.Context) error {
    ctx := c.Request().Context()

    orders, err := h.Orders.Count(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    products, err := h.Products.Count(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    customers, err := h.Users.CountByRoles(ctx, model.RoleCustomer)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    byStatus, err := h.Orders.StatusCounts(ctx)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    return c.JSON(http.StatusOK, echo.Map{
        "orders":           orders,
        "products":         products,
        "customers":        customers,
        "orders_by_status": byStatus,
    })
}

// RevenueReport returns monthly revenue, ?months=N selects the window
// (default 12).
func (h *AdminHandler) RevenueReport(c echo.Context) error {
    months, _ := strconv.Atoi(c.QueryParam("months"))
    if months < 1 || months > 60 {
        months = 12
    }
    items, err := h.Orders.MonthlyRevenue(c.Request().Context(), months)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// TopProductsReport returns best sellers by revenue, ?top=N (default 10).
func (h *AdminHandler) TopProductsReport(c echo.Context) error {
    top, _ := strconv.Atoi(c.QueryParam("top"))
    if top < 1 || top > 100 {
        top = 10
    }
    items, err := h.Orders.TopProducts(c.Request().Context(), top)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}
