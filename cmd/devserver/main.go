package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"docmorph/internal/config"
	"docmorph/internal/stub"
	"docmorph/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// Wiring
	cfg := config.NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	handler := stub.NewHandler(cfg, appLogger)
	router := stub.NewRouter(handler)

	// start server
	server := &http.Server{
		Addr:    ":" + cfg.GetServerPort(),
		Handler: router,
	}

	// Run server
	go func() {
		appLogger.Info("Dev server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed to start", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	_ = server.Close()

	appLogger.Info("Server exited")
}
