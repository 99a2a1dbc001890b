package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/iliyamo/online-shop/internal/handler"    // import the handlers that implement business logic
    "github.com/iliyamo/online-shop/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Map the GET request at path "/healthz" to the Health handler.  This
    // endpoint can be used by load balancers or monitoring systems to verify
    // that the service is up and running.
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected account endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    // Session-less operations: register, login, token exchange and the
    // password reset flow.  The reset endpoints are deliberately public;
    // a shopper who forgot the password has no session to present.
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)
    g.POST("/forgot-password", a.ForgotPassword)
    g.POST("/reset-password", a.ResetPassword)

    // Account endpoints require a valid access token.  Any role may use
    // them; staff manage their own profile the same way customers do.
    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
    auth.PUT("/me", a.UpdateProfile)
    auth.PUT("/me/password", a.ChangePassword)
}

// RegisterCatalog registers unauthenticated storefront endpoints.  These
// routes return sanitized product data and apply no JWT or role
// middleware so guests can browse before signing up.  The response
// cache (and any other middleware passed in) is attached here and
// nowhere else: cached entries are shared across callers, which is
// only safe for routes that never serve per-user data.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, mw ...echo.MiddlewareFunc) {
    g := e.Group("/v1", mw...)
    g.GET("/categories", h.ListCategories)
    g.GET("/products", h.ListProducts)
    g.GET("/products/:id", h.GetProduct)
}
