package router // router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/handler"    // back-office handlers
    "github.com/iliyamo/online-shop/internal/middleware" // JWT + role middlewares
)

// RegisterAdmin registers back-office endpoints under /v1/admin.
// Catalog, order and report routes accept both ADMIN and EMPLOYEE;
// account administration is ADMIN only.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
    // Attach middlewares at group construction time for clarity.
    g := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN", "EMPLOYEE"),
    )

    // ---- Categories ----
    g.GET("/categories", a.ListCategories)
    g.POST("/categories", a.CreateCategory)
    g.GET("/categories/:id", a.GetCategory)
    g.PUT("/categories/:id", a.UpdateCategory)
    g.DELETE("/categories/:id", a.DeleteCategory)

    // ---- Products ----
    g.GET("/products", a.ListProducts)
    g.POST("/products", a.CreateProduct)
    g.GET("/products/:id", a.GetProduct)
    g.PUT("/products/:id", a.UpdateProduct)
    g.PATCH("/products/:id", a.UpdateProduct) // allow partial/semantic updates via PATCH as well
    g.DELETE("/products/:id", a.DeleteProduct)

    // ---- Orders ----
    g.GET("/orders", a.ListOrders)
    g.GET("/orders/:id", a.GetOrder)
    g.PUT("/orders/:id/status", a.UpdateOrderStatus)

    // ---- Reports ----
    g.GET("/dashboard", a.Dashboard)
    g.GET("/reports/revenue", a.RevenueReport)
    g.GET("/reports/top-products", a.TopProductsReport)

    // ---- Accounts (ADMIN only) ----
    adm := e.Group(
        "/v1/admin",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN"),
    )
    adm.GET("/employees", a.ListEmployees)
    adm.POST("/employees", a.CreateEmployee)
    adm.PUT("/employees/:id", a.UpdateEmployee)
    adm.GET("/customers", a.ListCustomers)
    adm.PUT("/users/:id/active", a.SetUserActive)
}
