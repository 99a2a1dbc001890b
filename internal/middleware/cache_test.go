package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/online-shop/internal/config"
)

func cacheTestConfig() config.CacheConfig {
    return config.CacheConfig{
        Enabled:     true,
        Methods:     map[string]bool{"GET": true},
        KeyStrategy: "route_query",
        Prefix:      "cache",
    }
}

func cacheTestContext(t *testing.T, method, target string, header http.Header) echo.Context {
    t.Helper()
    req := httptest.NewRequest(method, target, nil)
    for k, vals := range header {
        for _, v := range vals {
            req.Header.Add(k, v)
        }
    }
    return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestCacheableRequest_PlainCatalogGet(t *testing.T) {
    c := cacheTestContext(t, http.MethodGet, "/v1/products?category=2", nil)
    if !cacheableRequest(cacheTestConfig(), c) {
        t.Fatalf("anonymous catalog GET must be cacheable")
    }
}

func TestCacheableRequest_BearerTokenNeverCached(t *testing.T) {
    // Cache entries are keyed by route and query with no user identity,
    // so a credentialed response stored once would be replayed to every
    // later caller on that route. Requests carrying credentials must
    // bypass the cache in both directions.
    c := cacheTestContext(t, http.MethodGet, "/v1/products",
        http.Header{"Authorization": {"Bearer abc.def.ghi"}})
    if cacheableRequest(cacheTestConfig(), c) {
        t.Fatalf("request with a bearer token must bypass the cache")
    }
}

func TestCacheableRequest_CookieNeverCached(t *testing.T) {
    c := cacheTestContext(t, http.MethodGet, "/v1/products",
        http.Header{"Cookie": {"session=abc"}})
    if cacheableRequest(cacheTestConfig(), c) {
        t.Fatalf("request with a cookie must bypass the cache")
    }
}

func TestCacheableRequest_MethodNotListed(t *testing.T) {
    c := cacheTestContext(t, http.MethodPost, "/v1/products", nil)
    if cacheableRequest(cacheTestConfig(), c) {
        t.Fatalf("POST is not a cacheable method")
    }
}

func TestCacheKeyIgnoresCaller(t *testing.T) {
    // Two different anonymous callers on the same route and query share
    // one entry; the key must not vary by anything request-specific
    // beyond route and query.
    cfg := cacheTestConfig()
    a := cacheTestContext(t, http.MethodGet, "/v1/products?q=shirt", nil)
    b := cacheTestContext(t, http.MethodGet, "/v1/products?q=shirt",
        http.Header{"X-Forwarded-For": {"203.0.113.9"}})
    if cacheKeyFrom(cfg, a) != cacheKeyFrom(cfg, b) {
        t.Fatalf("cache key must depend on route and query only")
    }
}
