package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medledger/access-control-api/internal/system/chain"
	"github.com/medledger/access-control-api/internal/system/config"
	"github.com/medledger/access-control-api/internal/system/database"
	"github.com/medledger/access-control-api/internal/system/database/provider"
	systemlog "github.com/medledger/access-control-api/internal/system/log"
	"github.com/medledger/access-control-api/internal/system/middleware"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	logger.WithFields(logrus.Fields{
		"version":    version,
		"build_date": buildDate,
	}).Info("Starting Health Access Ledger Server...")

	// Load configuration
	// Priority: CONFIG_PATH env var > repository/conf/deployment.yaml
	configPath := os.Getenv("CONFIG_PATH")

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	// Set log level from config
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	systemlog.SetLevel(cfg.Logging.Level)

	logger.WithFields(logrus.Fields{
		"config_path": configPath,
		"log_level":   logger.GetLevel().String(),
	}).Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.Initialize(&cfg.Database.Ledger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Verify database connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		logger.WithError(err).Fatal("Database health check failed")
	}

	logger.Info("Database connection established successfully")

	// Create DBClient through the provider
	provider.InitDBProvider(db, cfg.Database.Ledger.Type)
	dbClient, err := provider.GetDBProvider().GetLedgerDBClient()
	if err != nil {
		logger.WithError(err).Fatal("Failed to create database client")
	}

	// Restore the ledger sequencer; every mutating operation commits
	// through it
	sequencer, err := chain.NewSequencer(dbClient)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize ledger sequencer")
	}

	logger.WithField("height", sequencer.CurrentHeight()).Info("Ledger sequencer ready")

	// Create http.ServeMux and register all component modules
	mux := http.NewServeMux()
	registerServices(mux, dbClient, sequencer)

	// Wrap with correlation ID middleware
	httpHandler := middleware.WrapWithCorrelationID(mux)

	// Configure HTTP server
	serverAddr := cfg.Server.GetServerAddress()
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        httpHandler,
		ReadTimeout:    cfg.Server.GetReadTimeout(),
		WriteTimeout:   cfg.Server.GetWriteTimeout(),
		IdleTimeout:    cfg.Server.GetIdleTimeout(),
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		logger.WithFields(logrus.Fields{
			"hostname": cfg.Server.Hostname,
			"port":     cfg.Server.Port,
			"addr":     serverAddr,
		}).Info("Starting HTTP server...")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithField("address", serverAddr).Info("Server is running")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	unregisterServices()

	logger.Info("Server exited gracefully")
}
