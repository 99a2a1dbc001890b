package main // Entry point package

import (
    "log" // Logging library

    "github.com/joho/godotenv"    // .env loader for local development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/online-shop/internal/cart"       // cart snapshot store
    "github.com/iliyamo/online-shop/internal/checkout"   // cart validation against the catalog
    "github.com/iliyamo/online-shop/internal/config"     // internal config loader
    "github.com/iliyamo/online-shop/internal/database"   // MySQL connector
    "github.com/iliyamo/online-shop/internal/handler"    // HTTP handlers
    "github.com/iliyamo/online-shop/internal/middleware" // rate limiting and response cache
    "github.com/iliyamo/online-shop/internal/queue"      // order.placed consumer
    "github.com/iliyamo/online-shop/internal/repository" // data access layer
    "github.com/iliyamo/online-shop/internal/router"     // route registration
)

func main() {
    _ = godotenv.Load() // best effort; real deployments set env vars directly

    cfg := config.Load() // load environment config

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs the cart store, response cache and rate limiter.  A nil
    // client degrades all three: carts fall back to process memory and the
    // middlewares become pass-throughs.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; carts are in-memory, cache and rate limiting disabled")
    }

    // Repositories.
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    resetTokens := repository.NewResetTokenRepo(db)
    products := repository.NewProductRepo(db)
    categories := repository.NewCategoryRepo(db)
    orders := repository.NewOrderRepo(db, products)

    // Cart store and checkout validator.
    var carts cart.Store
    if rdb != nil {
        carts = cart.NewRedisStore(rdb)
    } else {
        carts = cart.NewMemoryStore()
    }
    validator := checkout.NewValidator(products)

    // Handlers.
    authH := handler.NewAuthHandler(cfg, users, tokens, resetTokens)
    catalogH := handler.NewCatalogHandler(products, categories)
    cartH := handler.NewCartHandler(carts, products)
    checkoutH := handler.NewCheckoutHandler(carts, validator, orders, users)
    adminH := handler.NewAdminHandler(cfg, products, categories, orders, users, tokens)

    e := echo.New()
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)) // distributed token bucket per client

    // The response cache is shared across callers, so it goes on the
    // anonymous catalog group only, never on authenticated routes.
    catalogCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    router.RegisterRoutes(e)
    router.RegisterCatalog(e, catalogH, catalogCache)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterCustomer(e, cartH, checkoutH, cfg.JWTSecret)
    router.RegisterAdmin(e, adminH, cfg.JWTSecret)

    // Consume order.placed events in the background; the loop reconnects
    // on broker failures and never takes the API down with it.
    go func() {
        if err := queue.StartOrderConsumer(); err != nil {
            log.Printf("order consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
