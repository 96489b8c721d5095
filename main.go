package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/koloni/koloni-be/internal/api"
	"github.com/koloni/koloni-be/internal/config"
	"github.com/koloni/koloni-be/internal/database"
	"github.com/koloni/koloni-be/internal/history"
	"github.com/koloni/koloni-be/internal/ledger"
	"github.com/koloni/koloni-be/internal/llm"
	"github.com/koloni/koloni-be/internal/logger"
	"github.com/koloni/koloni-be/internal/monitoring"
	"github.com/koloni/koloni-be/internal/services"
	"github.com/koloni/koloni-be/internal/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Select the ledger backend
	var store ledger.Store
	switch cfg.LedgerBackend {
	case "memory":
		store = ledger.NewMemoryStore(cfg.DefaultTokens)
	case "sqlite":
		store = ledger.NewSQLStore(db, cfg.DefaultTokens)
	default:
		log.Fatalf("Unknown ledger backend %q, use \"memory\" or \"sqlite\"", cfg.LedgerBackend)
	}

	// Set up the generation backend
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY is not set")
	}
	backend := llm.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL)

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	eventService := services.NewEventService(db, hub)
	ledgerService := services.NewLedgerService(store, eventService)
	historyLog := history.NewLog()
	generationService := services.NewGenerationService(backend, ledgerService, eventService, historyLog, cfg.GenerationTimeout)
	exportService := services.NewExportService()
	contactService := services.NewContactService(db)
	userService := services.NewUserService(db)

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(hub, eventService, cfg.StatInterval)
	go statUpdater.Run()

	// Set up and run the background retention sweeper
	sweeper, err := monitoring.NewRetentionSweeper(db, cfg.RetentionCron, cfg.RetentionDays)
	if err != nil {
		log.Fatalf("Failed to initialize retention sweeper: %v", err)
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(api.Deps{
		Hub:               hub,
		LedgerService:     ledgerService,
		GenerationService: generationService,
		ExportService:     exportService,
		ContactService:    contactService,
		UserService:       userService,
		EventService:      eventService,
		HistoryLog:        historyLog,
		StripeSecret:      cfg.StripeWebhookSecret,
		AllowedOrigins:    cfg.AllowedOrigins,
	})

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	statUpdater.Stop()
	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
