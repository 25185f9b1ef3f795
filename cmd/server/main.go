package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/divvyup/divvy/internal/api"
	"github.com/divvyup/divvy/internal/auth"
	"github.com/divvyup/divvy/internal/service"
	"github.com/divvyup/divvy/internal/storage/sqlite"
	"github.com/divvyup/divvy/pkg/logging"
)

const defaultTokenDuration = 24 * time.Hour

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/divvy.db")
	port := getEnv("PORT", "8080")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	jwtManager := auth.NewJWTManager(jwtSecret, defaultTokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	authService := service.NewAuthService(authenticator, jwtManager, store, slog.Default())
	groupService := service.NewGroupService(store)
	expenseService := service.NewExpenseService(store)

	router := api.NewRouter(jwtManager, authService, groupService, expenseService)

	// Wrap with h2c for HTTP/2 without TLS
	h2cHandler := h2c.NewHandler(router, &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
