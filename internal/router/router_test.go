package router

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/handler"
)

// markerMiddleware stands in for the shared response cache: it tags
// and short-circuits every request it sees, so the test can tell
// exactly which routes it wraps.
func markerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
    return func(c echo.Context) error {
        c.Response().Header().Set("X-Shared-Cache", "1")
        return c.NoContent(http.StatusNoContent)
    }
}

func TestSharedCacheWrapsOnlyCatalogRoutes(t *testing.T) {
    e := echo.New()
    RegisterCatalog(e, handler.NewCatalogHandler(nil, nil), markerMiddleware)
    RegisterCustomer(e, handler.NewCartHandler(nil, nil),
        handler.NewCheckoutHandler(nil, nil, nil, nil), "test-secret")

    // Catalog routes run through the shared middleware.
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
    if rec.Header().Get("X-Shared-Cache") != "1" {
        t.Fatalf("catalog route not wrapped by the shared middleware")
    }

    // Per-user routes never touch it. A cart response stored in a
    // shared cache would be replayed to other callers, so the cart
    // must reach JWTAuth directly: without credentials that is a 401,
    // never a cached payload.
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/cart", nil))
    if rec.Header().Get("X-Shared-Cache") != "" {
        t.Fatalf("per-user route passed through the shared middleware")
    }
    if rec.Code != http.StatusUnauthorized {
        t.Fatalf("unauthenticated cart request: status %d, want 401", rec.Code)
    }
}
