package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"deeptracex/internal/config"
	"deeptracex/internal/constants"
	"deeptracex/internal/httpapi"
	"deeptracex/internal/lookup"
	"deeptracex/internal/permissions"
	"deeptracex/internal/services"
	"deeptracex/internal/storage/sqlite"
	"deeptracex/pkg/telegrambot"
)

func main() {
	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open storage
	store, err := sqlite.New(ctx, cfg.Server.DBPath)
	if err != nil {
		logger.Fatal("Failed to open storage:", err)
	}
	defer store.Close()

	// Initialize services
	ledger := services.NewCreditLedger(store, logger)
	binding := services.NewDeviceBindingManager(store, logger)
	verifyFlow := services.NewTelegramVerificationFlow(store, logger)
	accountService := services.NewAccountService(store, store, binding, ledger, logger)
	adminService := services.NewAdminService(store, store, store, ledger, binding, logger)
	stateService := services.NewUserStateService(constants.StateExpiration, constants.StateCleanupInterval, logger)
	qrService := services.NewQRService(cfg.Telegram.BotUsername, logger)

	registry := lookup.NewRegistry(
		lookup.NewIPProvider(cfg.Lookup.IPAPIURL, logger),
		lookup.NewPhoneProvider(),
		lookup.NewEmailProvider(),
		lookup.NewUsernameProvider(),
	)
	gate := services.NewLookupGate(store, store, store, ledger, registry, logger)

	// Setup permission controller
	permController := permissions.NewController(cfg.Telegram.AdminIDs, logger)

	// Initialize bot
	bot, err := telegrambot.NewBot(cfg, adminService, verifyFlow, stateService, permController, logger)
	if err != nil {
		logger.Fatal("Failed to create bot:", err)
	}

	// Initialize HTTP server
	server := httpapi.NewServer(cfg, accountService, gate, adminService, qrService, logger)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Run the bot alongside the HTTP server
	go func() {
		if err := bot.Start(ctx); err != nil {
			logger.Error("Bot failed:", err)
			cancel()
		}
	}()

	go func() {
		logger.Infof("HTTP API listening on %s", cfg.Server.ListenAddr)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed:", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed:", err)
	}

	logger.Info("Shutdown complete")
}

// setupLogger sets up the logger
func setupLogger() *logrus.Logger {
	logger := logrus.New()

	// Set log level from environment variable or default to info
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Printf("Invalid log level %s, defaulting to info", logLevel)
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logger
}
