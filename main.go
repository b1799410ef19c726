package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"lamason/internal/cache"
	"lamason/internal/config"
	"lamason/internal/database"
	"lamason/internal/events"
	"lamason/internal/handlers"
	"lamason/internal/pricing"
	"lamason/internal/service"
	"lamason/internal/store"
	"lamason/internal/store/memstore"
	"lamason/internal/store/mongostore"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := openStore(cfg)
	rates := pricing.Rates{TaxRate: cfg.TaxRate, DeliveryFee: cfg.DeliveryFee}

	hub := events.NewHub()
	go hub.Run(ctx)

	publisher := events.Multi{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = append(publisher, kafkaPublisher)
		log.Println("[EVENTS] [INFO] kafka publishing to", cfg.KafkaTopic)
	}

	var carts cache.CartStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("[CART] [ERROR] redis unreachable at %s: %v", cfg.RedisAddr, err)
		}
		carts = cache.NewRedisCartStore(rdb, cfg.CartTTL, rates)
		log.Println("[CART] [INFO] session carts stored in redis at", cfg.RedisAddr)
	} else {
		carts = cache.NewMemoryCartStore(cfg.CartTTL, rates)
		log.Println("[CART] [WARN] REDIS_ADDR not set, session carts kept in memory")
	}

	currencies := service.NewCurrencyService(st.Currencies)
	users := service.NewUserService(st.Users)

	seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := currencies.EnsureBase(seedCtx); err != nil {
		log.Printf("[CURRENCY] [WARN] base currency seed failed: %v", err)
	}
	if err := users.EnsureAdmin(seedCtx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("[AUTH] [WARN] admin seed failed: %v", err)
	}
	cancel()

	r := handlers.NewRouter(handlers.Deps{
		Store:         st,
		Orders:        service.NewOrderService(st.Orders, st.Menu, publisher, rates),
		Reservations:  service.NewReservationService(st.Reservations, publisher),
		Currencies:    currencies,
		Menu:          service.NewMenuService(st.Menu, st.Categories),
		Categories:    service.NewCategoryService(st.Categories),
		Carts:         service.NewCartService(carts, st.Menu, currencies),
		Users:         users,
		Hub:           hub,
		JWTSecret:     cfg.JWTSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		CORSOrigins:   cfg.CORSOrigins,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("listening on", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openStore picks MongoDB or the in-memory store from STORE.
func openStore(cfg config.Config) *store.Store {
	if cfg.Store == "memory" {
		log.Println("[DB] [WARN] STORE=memory, data is lost on restart")
		return memstore.New()
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)
	log.Println("MongoDB connected to:", db.Name())

	database.EnsureIndexes(db)
	return mongostore.New(db)
}
