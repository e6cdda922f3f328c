package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/Gennadiyev/xplit-pay/internal/auth"
	"github.com/Gennadiyev/xplit-pay/internal/metrics"
	"github.com/Gennadiyev/xplit-pay/internal/middleware"
	"github.com/Gennadiyev/xplit-pay/internal/service"
	"github.com/Gennadiyev/xplit-pay/internal/storage/sqlite"
	"github.com/Gennadiyev/xplit-pay/pkg/logging"
)

const tokenDuration = 24 * time.Hour

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()
	logger := slog.Default()

	dbPath := getEnv("DB_PATH", "./data/xplit.db")
	port := getEnv("PORT", "8080")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("storage initialized", "database", dbPath)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	parseMetrics := metrics.New(registry)

	jwtManager := auth.NewJWTManager(jwtSecret, tokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	// Document routes sit behind JWT auth; auth routes and metrics do not.
	documents := http.NewServeMux()
	service.NewDocumentService(store, parseMetrics, logger).Routes(documents)
	protected := middleware.RequireAuth(jwtManager)(documents)

	mux := http.NewServeMux()
	service.NewAuthService(authenticator, jwtManager, logger).Routes(mux)
	mux.Handle("/v1/documents", protected)
	mux.Handle("/v1/documents/", protected)
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	handler := middleware.Logging(middleware.CORS(mux))

	// h2c allows HTTP/2 without TLS, typically behind a reverse proxy.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := ":" + port
	logger.Info("server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
