package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/handler"
    "github.com/iliyamo/online-shop/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Customers manage
// their cart snapshot, run checkout validation, place orders and view
// their own order history.
func RegisterCustomer(e *echo.Echo, cart *handler.CartHandler, co *handler.CheckoutHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("CUSTOMER"),
    )

    // ---- Cart ----
    g.GET("/cart", cart.Get)
    g.PUT("/cart", cart.Put)
    g.DELETE("/cart", cart.Clear)
    g.POST("/cart/items", cart.AddItem)
    g.PUT("/cart/items/:productID", cart.UpdateItem)
    g.DELETE("/cart/items/:productID", cart.RemoveItem)

    // ---- Checkout ----
    g.POST("/checkout/validate", co.Validate)
    g.POST("/checkout", co.PlaceOrder)

    // ---- Order history ----
    g.GET("/my-orders", co.MyOrders)
    g.GET("/my-orders/:id", co.MyOrder)
}
