package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MotoZonePos/app/backend"
	"MotoZonePos/app/config"
	"MotoZonePos/app/database"
	"MotoZonePos/app/models"
	"MotoZonePos/app/security"
	"MotoZonePos/app/services"
	"MotoZonePos/app/websocket"

	"github.com/joho/godotenv"
)

// App wires every service of the gateway together
type App struct {
	LoggerService       *services.LoggerService
	Config              *config.AppConfig
	Store               *database.Store
	BackendClient       *backend.Client
	StatusService       *services.StatusService
	DataService         *services.DataService
	AuthService         *services.AuthService
	CheckoutService     *services.CheckoutService
	DashboardService    *services.DashboardService
	ReceiptService      *services.ReceiptService
	SheetsExportService *services.SheetsExportService
	WSServer            *websocket.Server
}

func main() {
	// Load environment variables from .env file in project root (for development)
	godotenv.Load(".env")

	// Initialize logger FIRST to catch all errors
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = "./data"
	}
	loggerService := services.NewLoggerService(dataPath)
	defer loggerService.Close()

	// Recover from any panic and log it
	defer func() {
		if r := recover(); r != nil {
			loggerService.LogPanic(r)
			os.Exit(1)
		}
	}()

	loggerService.LogInfo("Application starting", "Moto Zone POS Gateway")

	if err := run(loggerService); err != nil {
		loggerService.LogError("Fatal error", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(loggerService *services.LoggerService) error {
	// Encryption key must exist before config decryption
	if _, err := security.GenerateKeyIfNotExists(); err != nil {
		return fmt.Errorf("failed to prepare encryption key: %w", err)
	}

	loggerService.LogInfo("Loading configuration")
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loggerService.LogInfo("Initializing local store", "Driver: "+cfg.LocalDB.Driver)
	store, err := database.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize local store: %w", err)
	}
	defer store.Close()

	app := &App{
		LoggerService: loggerService,
		Config:        cfg,
		Store:         store,
		BackendClient: backend.NewClient(cfg.Backend.BaseURL),
	}

	app.StatusService = services.NewStatusService(app.BackendClient, store, loggerService, cfg)
	app.DataService = services.NewDataService(app.BackendClient, store, app.StatusService, loggerService)
	app.AuthService = services.NewAuthService(app.BackendClient, store, app.StatusService, app.DataService, loggerService, cfg)
	app.CheckoutService = services.NewCheckoutService(app.DataService, loggerService, cfg.Sales.TaxRate)
	app.DashboardService = services.NewDashboardService(app.DataService)
	app.ReceiptService = services.NewReceiptService(cfg)
	app.SheetsExportService = services.NewSheetsExportService(cfg, app.DataService, loggerService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First probe decides the initial mode before any session is restored
	loggerService.LogInfo("Probing backend", cfg.Backend.BaseURL)
	availability := app.StatusService.CheckStatus(ctx)
	loggerService.LogInfo("Backend availability", string(availability))
	app.StatusService.StartMonitoring(ctx)

	if user, err := app.AuthService.RestoreSession(ctx); err != nil {
		loggerService.LogWarning("Session restore failed", err.Error())
	} else if user != nil {
		if err := app.DataService.FetchAll(ctx); err != nil {
			loggerService.LogWarning("Initial data load failed", err.Error())
		}
	}

	app.WSServer = websocket.NewServer(cfg.Server.Port)
	app.WSServer.SetHandlers(websocket.NewRESTHandlers(
		app.AuthService,
		app.DataService,
		app.CheckoutService,
		app.DashboardService,
		app.ReceiptService,
		app.SheetsExportService,
		app.StatusService,
	))

	// Push cache changes to connected UI clients
	app.DataService.OnStockChanged(func(product models.Product) {
		app.WSServer.SendStockUpdate(product)
	})
	app.DataService.OnSaleRecorded(func(sale models.Sale) {
		app.WSServer.SendSaleRecorded(sale)
		if app.SheetsExportService.Enabled() {
			go func() {
				defer loggerService.RecoverPanic()
				exportCtx, exportCancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer exportCancel()
				if err := app.SheetsExportService.ExportSale(exportCtx, &sale); err != nil {
					loggerService.LogWarning("Sheets export failed", err.Error())
				}
			}()
		}
	})

	serverErr := make(chan error, 1)
	go func() {
		defer loggerService.RecoverPanic()
		serverErr <- app.WSServer.Start(app.StatusService)
	}()

	// Block until a shutdown signal or a server failure
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		loggerService.LogInfo("Shutdown signal received", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("gateway server error: %w", err)
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	app.WSServer.Stop(shutdownCtx)

	loggerService.LogInfo("Application shutdown complete")
	return nil
}
