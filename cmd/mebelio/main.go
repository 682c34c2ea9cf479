package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rakapradana/mebelio/internal/api/handlers"
	"github.com/rakapradana/mebelio/internal/api/middleware"
	"github.com/rakapradana/mebelio/internal/cache"
	"github.com/rakapradana/mebelio/internal/config"
	"github.com/rakapradana/mebelio/internal/health"
	"github.com/rakapradana/mebelio/internal/metrics"
	repository "github.com/rakapradana/mebelio/internal/repositories"
	service "github.com/rakapradana/mebelio/internal/services"
	"github.com/rakapradana/mebelio/internal/telemetry"
	"github.com/rakapradana/mebelio/pkg/gateway"
	"github.com/rakapradana/mebelio/pkg/rajaongkir"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Tracing setup
	shutdownTracing, err := telemetry.Setup(context.Background(), &cfg.Otel)
	if err != nil {
		slog.Error("❌ Error setting up tracing", "error", err.Error())
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	// Redis setup
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}
	redisCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	jwtKey := []byte(cfg.Security.JWTKey)
	gatewayClient := gateway.NewMidtransClient(cfg.Midtrans.ServerKey, cfg.Midtrans.ClientKey, cfg.Midtrans.Production)
	rateClient := rajaongkir.NewClient(cfg.RajaOngkir.BaseURL, cfg.RajaOngkir.APIKey, cfg.RajaOngkir.Timeout)

	productService := service.NewProductService(repos.Product, redisCache, cfg.Cache.DefaultTTL)
	productHandler := handlers.NewProductHandler(productService)
	cartService := service.NewCartService(repos.DB, repos.Cart, repos.Product)
	cartHandler := handlers.NewCartHandler(cartService)
	orderService := service.NewOrderService(repos.DB, repos.Order, repos.Cart, repos.Product, gatewayClient)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentService := service.NewPaymentService(repos.DB, repos.Order, repos.Product, gatewayClient)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	shippingService := service.NewShippingService(rateClient, redisCache, cfg.RajaOngkir.OriginID, cfg.RajaOngkir.Couriers, cfg.Cache.RateTTL)
	shippingHandler := handlers.NewShippingHandler(shippingService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{
		DB:          repos.DB,
		RedisClient: redisClient,
		RateClient:  rateClient,
	})
	if err != nil {
		slog.Error("❌ Error setting up health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()
	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())
	routerMux.HandleFunc("GET /api/v1/carts", authMiddleware.Identify(cartHandler.GetCart()))
	routerMux.HandleFunc("DELETE /api/v1/carts", authMiddleware.Identify(cartHandler.ClearCart()))
	routerMux.HandleFunc("POST /api/v1/carts/items", authMiddleware.Identify(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/carts/items/{id}", authMiddleware.Identify(cartHandler.UpdateQuantity()))
	routerMux.HandleFunc("DELETE /api/v1/carts/items/{id}", authMiddleware.Identify(cartHandler.RemoveItem()))
	routerMux.HandleFunc("PATCH /api/v1/carts/items/{id}/save", authMiddleware.Identify(cartHandler.SaveForLater()))
	routerMux.HandleFunc("POST /api/v1/carts/merge", authMiddleware.Authenticate(cartHandler.MergeCart()))
	routerMux.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(orderHandler.CreateOrder()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListOrders()))
	routerMux.HandleFunc("GET /api/v1/orders/{number}", authMiddleware.Authenticate(orderHandler.GetOrder()))
	routerMux.HandleFunc("POST /api/v1/orders/{number}/cancel", authMiddleware.Authenticate(orderHandler.CancelOrder()))
	routerMux.HandleFunc("GET /api/v1/admin/orders", authMiddleware.RequireAdmin(orderHandler.ListAllOrders()))
	routerMux.HandleFunc("PATCH /api/v1/admin/orders/{number}/status", authMiddleware.RequireAdmin(orderHandler.UpdateOrderStatus()))
	routerMux.HandleFunc("POST /api/v1/payments/notification", paymentHandler.HandleNotification())
	routerMux.HandleFunc("POST /api/v1/shipping/rates", shippingHandler.Quote())
	routerMux.HandleFunc("GET /api/v1/shipping/destinations", shippingHandler.SearchDestination())
	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = otelhttp.NewHandler(handler, "mebelio")

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Trace exporter shutdown encountered an issue", slog.String("error", err.Error()))
	}

	if err := redisCache.Close(); err != nil {
		slog.Error("⚠️ Error closing redis connection", slog.String("error", err.Error()))
	}
}
