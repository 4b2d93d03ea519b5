package main // Entry point package

import (
    "log" // Logging library

    "github.com/joho/godotenv"    // Loads .env files in development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/AdeepaK2/goalx-engine/internal/config"
    "github.com/AdeepaK2/goalx-engine/internal/database"
    "github.com/AdeepaK2/goalx-engine/internal/engine"
    "github.com/AdeepaK2/goalx-engine/internal/handler"
    "github.com/AdeepaK2/goalx-engine/internal/inventory"
    appmw "github.com/AdeepaK2/goalx-engine/internal/middleware"
    "github.com/AdeepaK2/goalx-engine/internal/proximity"
    "github.com/AdeepaK2/goalx-engine/internal/queue"
    "github.com/AdeepaK2/goalx-engine/internal/repository"
    "github.com/AdeepaK2/goalx-engine/internal/router"
    queue_publisher "github.com/AdeepaK2/goalx-engine/internal/service"
)

func main() {
    // Load .env when present; production supplies real environment variables.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs rate limiting, response caching and the proximity cache.
    // A nil client disables all three and the service keeps running.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; caching and rate limiting disabled")
    }

    // Persistence layer.
    requestRepo := repository.NewRequestRepo(db)
    transactionRepo := repository.NewTransactionRepo(db)
    donationRepo := repository.NewDonationRepo(db)
    equipmentRepo := repository.NewEquipmentRepo(db)
    providerRepo := repository.NewProviderRepo(db)

    // Core engine.
    registry := inventory.NewRegistry(equipmentRepo)
    reconciler := engine.NewReconciler(transactionRepo, registry)
    lifecycle := engine.NewLifecycle(requestRepo, equipmentRepo, registry, reconciler, queue_publisher.Notifier{})
    bridge := engine.NewBridge(donationRepo, lifecycle)
    ranker := proximity.NewRanker(proximity.NewCache(rdb, 0))

    // Background consumer mirrors responded requests into logs/requests.log.
    go func() {
        if err := queue.StartRequestConsumer(); err != nil {
            log.Printf("request consumer stopped: %v", err)
        }
    }()

    e := echo.New()
    e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    cache := appmw.NewRedisCache(config.LoadCacheConfig(), rdb)

    router.RegisterRoutes(e, &handler.HealthHandler{DB: db})
    router.RegisterRequests(e,
        handler.NewRequestHandler(lifecycle, providerRepo, ranker),
        handler.NewDonationHandler(bridge),
        cfg.JWTSecret, cache)
    router.RegisterTransactions(e,
        handler.NewTransactionHandler(reconciler),
        handler.NewEquipmentHandler(equipmentRepo, registry),
        cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
