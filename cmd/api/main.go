package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/finboard/finboard-api/internal/config"
	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/events"
	"github.com/finboard/finboard-api/internal/handlers"
	"github.com/finboard/finboard-api/internal/middleware"
	"github.com/finboard/finboard-api/internal/services"
	"github.com/finboard/finboard-api/internal/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn(".env file not found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	if cfg.Environment == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	log := logrus.WithField("component", "api")

	// Apply schema migrations before opening the pool
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBConnectionTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Info("Connected to database")

	// Event publishing is optional: without a broker the ledger still works,
	// it just doesn't announce commits.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			log.WithError(err).Warn("Event broker unavailable, continuing without events")
		} else {
			defer client.Close()
			publisher = client
			log.Info("Connected to event broker")
		}
	}

	// Repositories
	users := database.NewUserRepo(pool)
	accounts := database.NewAccountRepo(pool)
	categories := database.NewCategoryRepo(pool)
	transactions := database.NewTransactionRepo(pool)
	budgets := database.NewBudgetRepo(pool)
	goals := database.NewSavingGoalRepo(pool)
	recurring := database.NewRecurringRepo(pool)

	// Services
	ledger := services.NewLedgerService(pool, publisher)

	storage, err := services.NewStorageService(cfg.S3Bucket, cfg.S3Region, cfg.AWSEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	reports := services.NewReportService(storage, cfg.ReportURLExpiry)

	// Handlers
	timeout := cfg.StatementTimeout
	usersHandler := handlers.NewUsersHandler(users, timeout)
	accountsHandler := handlers.NewAccountsHandler(accounts, users, timeout)
	categoriesHandler := handlers.NewCategoriesHandler(categories, users, timeout)
	transactionsHandler := handlers.NewTransactionsHandler(transactions, users, ledger, timeout)
	budgetsHandler := handlers.NewBudgetsHandler(budgets, transactions, users, timeout)
	goalsHandler := handlers.NewGoalsHandler(goals, users, ledger, timeout)
	transfersHandler := handlers.NewTransfersHandler(users, ledger, timeout)
	summaryHandler := handlers.NewSummaryHandler(transactions, accounts, users, timeout)
	recurringHandler := handlers.NewRecurringHandler(recurring, users, timeout)
	reportsHandler := handlers.NewReportsHandler(transactions, accounts, budgets, users, reports, timeout)

	app := fiber.New(fiber.Config{
		AppName:      "finboard API v1.0",
		ErrorHandler: utils.ErrorHandler,
	})

	app.Use(middleware.CORS(cfg.CORSOrigins))

	// Health check endpoint (public)
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "finboard-api",
		})
	})

	v1 := app.Group("/v1")

	// Internal routes (webhook callbacks - should be secured with webhook secret in production)
	internal := v1.Group("/internal")
	internal.Post("/users", usersHandler.Sync)

	// Protected routes (require authentication)
	protected := v1.Group("", middleware.ClerkAuth(cfg.ClerkSecretKey))

	protected.Get("/me", usersHandler.Me)

	protected.Get("/accounts", accountsHandler.List)
	protected.Post("/accounts", accountsHandler.Create)
	protected.Put("/accounts/:id", accountsHandler.Update)
	protected.Delete("/accounts/:id", accountsHandler.Delete)

	protected.Get("/categories", categoriesHandler.List)
	protected.Post("/categories", categoriesHandler.Create)
	protected.Put("/categories/:id", categoriesHandler.Update)
	protected.Delete("/categories/:id", categoriesHandler.Delete)

	protected.Get("/transactions", transactionsHandler.List)
	protected.Post("/transactions", transactionsHandler.Create)
	protected.Put("/transactions/:id", transactionsHandler.Update)
	protected.Delete("/transactions/:id", transactionsHandler.Delete)

	protected.Post("/transfers", transfersHandler.Create)

	protected.Get("/budgets", budgetsHandler.List)
	protected.Post("/budgets", budgetsHandler.Create)
	protected.Put("/budgets/:id", budgetsHandler.Update)
	protected.Delete("/budgets/:id", budgetsHandler.Delete)

	protected.Get("/saving-goals", goalsHandler.List)
	protected.Post("/saving-goals", goalsHandler.Create)
	protected.Put("/saving-goals/:id", goalsHandler.Update)
	protected.Delete("/saving-goals/:id", goalsHandler.Delete)
	protected.Post("/saving-goals/:id/funds", goalsHandler.AddFunds)

	protected.Get("/recurring-transactions", recurringHandler.List)
	protected.Post("/recurring-transactions", recurringHandler.Create)
	protected.Put("/recurring-transactions/:id", recurringHandler.Update)
	protected.Delete("/recurring-transactions/:id", recurringHandler.Delete)

	protected.Get("/summary", summaryHandler.Get)
	protected.Get("/reports/monthly", reportsHandler.Monthly)
	protected.Delete("/reports/monthly", reportsHandler.Delete)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		log.Infof("finboard API is running on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}
}
