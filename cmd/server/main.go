package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Lixing-Zhang/room-orders/internal/config"
	"github.com/Lixing-Zhang/room-orders/internal/event"
	"github.com/Lixing-Zhang/room-orders/internal/handlers"
	"github.com/Lixing-Zhang/room-orders/internal/ledger"
	"github.com/Lixing-Zhang/room-orders/internal/middleware"
	"github.com/Lixing-Zhang/room-orders/internal/repository"
	redisstore "github.com/Lixing-Zhang/room-orders/internal/repository/redis"
	"github.com/Lixing-Zhang/room-orders/internal/repository/sqlite"
	"github.com/Lixing-Zhang/room-orders/internal/service"
	"github.com/Lixing-Zhang/room-orders/pkg/logger"
)

const version = "1.0.0"

const bootstrapTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting room orders server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"rooms", cfg.Rooms.Count,
		"catalog", cfg.Catalog.Driver,
		"order_store", cfg.Orders.Store,
		"log_level", cfg.LogLevel,
	)

	healthHandler := handlers.NewHealthHandler(version, log)

	// Everything that must be released on shutdown, in release order
	var closers []namedCloser

	// Product catalog
	productRepo, catalogCloser, err := openCatalog(cfg.Catalog, healthHandler, log)
	if err != nil {
		log.Error("failed to open product catalog", "error", err)
		os.Exit(1)
	}

	// Room orders
	roomLedger := ledger.New()
	var (
		orderStore  service.OrderStore
		orderLoader service.OrderLoader
		committer   *service.AsyncCommitter
		redisClient *goredis.Client
	)
	if cfg.Orders.Store == config.OrderStoreRedis {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Orders.RedisAddr,
			Password: cfg.Orders.RedisPassword,
			DB:       cfg.Orders.RedisDB,
		})
		store := redisstore.NewOrderStore(redisClient, cfg.Orders.RedisKeyPrefix)
		healthHandler.Register("redis", store.Ping)

		committer = service.NewAsyncCommitter(store, cfg.Orders.CommitQueueSize, log)
		orderStore = committer
		orderLoader = store
	}

	// Events
	var (
		publisher      service.EventPublisher
		kafkaPublisher *event.Publisher
	)
	if cfg.EventsEnabled() {
		kafkaPublisher = event.NewPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopicPrefix, log)
		publisher = kafkaPublisher
		log.Info("publishing room events", "brokers", cfg.Events.KafkaBrokers)
	}

	// Initialize services
	productService := service.NewProductService(productRepo)
	roomService := service.NewRoomService(
		service.RoomConfig{RoomCount: cfg.Rooms.Count, CurrencySymbol: cfg.Rooms.CurrencySymbol},
		roomLedger,
		productRepo,
		orderStore,
		publisher,
		service.NewLogPrinter(log),
		log,
	)

	// Restore persisted bills and warm the catalog concurrently
	if err := bootstrap(roomService, productService, orderLoader, log); err != nil {
		log.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	// Release order: stop queuing commits before closing the client they write to
	if committer != nil {
		closers = append(closers, namedCloser{"commit queue", func() error { committer.Close(); return nil }})
	}
	if redisClient != nil {
		closers = append(closers, namedCloser{"redis", redisClient.Close})
	}
	if kafkaPublisher != nil {
		closers = append(closers, namedCloser{"kafka publisher", kafkaPublisher.Close})
	}
	if catalogCloser != nil {
		closers = append(closers, namedCloser{"catalog", catalogCloser.Close})
	}

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService, log)
	roomHandler := handlers.NewRoomHandler(roomService, log)

	r := newRouter(cfg, log, healthHandler, productHandler, roomHandler)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	exitCode := 0
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		exitCode = 1
	}

	for _, c := range closers {
		if err := c.close(); err != nil {
			log.Error("failed to close dependency", "name", c.name, "error", err)
		}
	}

	log.Info("server stopped gracefully")
	os.Exit(exitCode)
}

type namedCloser struct {
	name  string
	close func() error
}

// openCatalog returns the configured product repository. The closer is nil
// for the in-memory catalog.
func openCatalog(cfg config.CatalogConfig, health *handlers.HealthHandler, log *slog.Logger) (repository.ProductRepository, io.Closer, error) {
	if cfg.Driver != config.CatalogSQLite {
		log.Info("using in-memory catalog with the default menu")
		return repository.NewSeededProductRepository(), nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()

	repo, err := sqlite.Open(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	seeded, err := repo.SeedIfEmpty(ctx, repository.DefaultMenu())
	if err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("seed catalog: %w", err)
	}
	if seeded > 0 {
		log.Info("seeded empty catalog with the default menu", "products", seeded)
	}

	health.Register("catalog", repo.Ping)
	return repo, repo, nil
}

// bootstrap restores persisted bills and checks the catalog is readable
func bootstrap(rooms *service.RoomService, products *service.ProductService, loader service.OrderLoader, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if loader != nil {
		g.Go(func() error {
			n, err := rooms.Restore(ctx, loader)
			if err != nil {
				return err
			}
			log.Info("restored room bills", "active_rooms", n)
			return nil
		})
	}

	g.Go(func() error {
		catalog, err := products.ListProducts(ctx, service.ProductFilter{})
		if err != nil {
			return fmt.Errorf("read catalog: %w", err)
		}
		log.Info("catalog ready", "products", len(catalog))
		return nil
	})

	return g.Wait()
}

func newRouter(
	cfg *config.Config,
	log *slog.Logger,
	healthHandler *handlers.HealthHandler,
	productHandler *handlers.ProductHandler,
	roomHandler *handlers.RoomHandler,
) chi.Router {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.APIKeyHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())

	auth := middleware.APIKeyAuth(cfg.Auth, log)

	r.Route("/api", func(r chi.Router) {
		// Catalog
		r.Get("/product", productHandler.ListProducts)
		r.Get("/product/{productId}", productHandler.GetProduct)
		r.Get("/categories", productHandler.ListCategories)
		r.With(auth).Post("/product", productHandler.CreateProduct)
		r.With(auth).Delete("/product/{productId}", productHandler.DeleteProduct)

		// Room bills
		r.Get("/rooms", roomHandler.ListRooms)
		r.Get("/rooms/{room}", roomHandler.GetRoom)
		r.Get("/rooms/{room}/bill", roomHandler.GetBill)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/rooms/{room}/items", roomHandler.AddItem)
			r.Delete("/rooms/{room}/items/{productId}", roomHandler.RemoveItem)
			r.Delete("/rooms/{room}", roomHandler.ClearRoom)
			r.Post("/rooms/{room}/bill/print", roomHandler.PrintBill)
		})
	})

	return r
}
