package main

import (
	"log"
	"strings"

	"reservas/config"
	"reservas/jobs"
	"reservas/repositories"
	"reservas/routes"
	"reservas/services"
	"reservas/services/logger"
	"reservas/services/notification"

	"github.com/shopspring/decimal"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	decimal.MarshalJSONWithoutQuotes = true

	appLogger := logger.NewZapLogger(logger.ParseLevel(cfg.LogLevel))
	defer appLogger.Sync()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	rdb, err := config.ConnectRedis(cfg)
	if err != nil {
		appLogger.Warn("Redis unavailable, cache and locks disabled: %v", err)
	}

	cld, err := config.ConnectCloudinary(cfg)
	if err != nil {
		appLogger.Warn("Cloudinary unavailable, imports will not be archived: %v", err)
	}

	router, m, c := config.InitApp(cfg)

	store := repositories.NewReservationRepository(db)
	rates := repositories.NewRateRepository(db)
	checker := services.NewAvailabilityChecker(services.AvailabilityOptions{
		Policy:   services.ParseBoundaryPolicy(cfg.BoundaryPolicy),
		Location: cfg.Location,
	})
	pricing := services.NewPricingAggregator(cfg.DefaultEstimatedPrice)
	cache := services.NewReservationCache(rdb, cfg.CacheTTL, appLogger)
	notifier := notification.NewMelodyService(m)

	var locker services.Locker = services.NoopLocker{}
	if rdb != nil {
		locker = services.NewRedisLocker(rdb, cfg.LockTTL)
	}
	var archiver services.Archiver = services.NoopArchiver{}
	if cld != nil {
		archiver = services.NewCloudinaryArchiver(cld)
	}

	linker := services.NewEventRoomLinker(services.LinkerOptions{
		Store:       store,
		Rates:       rates,
		Checker:     checker,
		Pricing:     pricing,
		Locker:      locker,
		Cache:       cache,
		Notifier:    notifier,
		Logger:      appLogger,
		RoomLetters: cfg.RoomLetters,
	})
	reservations := services.NewReservationService(services.ReservationServiceOptions{
		Store:        store,
		Rates:        rates,
		Checker:      checker,
		Pricing:      pricing,
		Linker:       linker,
		Locker:       locker,
		Cache:        cache,
		Notifier:     notifier,
		Logger:       appLogger,
		RoomLetters:  cfg.RoomLetters,
		StrictStatus: cfg.StrictStatus,
	})
	imports := services.NewImportService(services.ImportServiceOptions{
		Store:       store,
		Rates:       rates,
		Logs:        rates,
		Checker:     checker,
		Pricing:     pricing,
		Locker:      locker,
		Cache:       cache,
		Notifier:    notifier,
		Archiver:    archiver,
		Logger:      appLogger,
		RoomLetters: cfg.RoomLetters,
		Location:    cfg.Location,
	})

	var expirer jobs.PendingExpirer
	if cfg.PendingExpiryEnabled {
		expirer = reservations
	}
	if err := jobs.InitCronJobs(c, expirer, appLogger); err != nil {
		log.Fatalf("Failed to initialize cron jobs: %v", err)
	}
	defer c.Stop()

	config.InitWebSocket(router, m)

	routes.SetupRoutes(router, routes.Services{
		Reservations: reservations,
		Linker:       linker,
		Imports:      imports,
		Location:     cfg.Location,
		Logger:       appLogger,
		JWTSecret:    cfg.JWTSecret,
	})

	appLogger.Info("Server starting on port %s (rooms %s, boundary %s)",
		cfg.Port, strings.Join(cfg.RoomLetters, ""), checker.Policy())
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
