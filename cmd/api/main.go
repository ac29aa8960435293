package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/dwojc6/mybudget/internal/config"
	"github.com/dwojc6/mybudget/internal/database"
	"github.com/dwojc6/mybudget/internal/handlers"
	"github.com/dwojc6/mybudget/internal/ledger"
	"github.com/dwojc6/mybudget/internal/logger"
	"github.com/dwojc6/mybudget/internal/middleware"
	"github.com/dwojc6/mybudget/internal/services"
	"github.com/dwojc6/mybudget/internal/validator"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig := database.NewConfig(appConfig)
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services
	ledgerClient := ledger.NewClient(appConfig.LedgerBaseURL, appConfig.LedgerToken, appConfig.LedgerTimeout)
	budgetService, err := services.NewBudgetService(dbManager.DB(), ledgerClient, appConfig)
	if err != nil {
		return fmt.Errorf("failed to load budget state: %w", err)
	}

	// Initialize handlers
	syncHandler := handlers.NewSyncHandler(budgetService)
	summaryHandler := handlers.NewSummaryHandler(budgetService)
	transactionHandler := handlers.NewTransactionHandler(budgetService)
	categoryHandler := handlers.NewCategoryHandler(budgetService)
	budgetHandler := handlers.NewBudgetHandler(budgetService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	v1.POST("/setup", syncHandler.Setup)
	v1.POST("/sync", syncHandler.Sync)

	v1.GET("/summary", summaryHandler.GetSummary)
	v1.GET("/summary/step", summaryHandler.StepPeriod)
	v1.GET("/reports/weekly", summaryHandler.GetWeeklyReport)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.DELETE("/:id", transactionHandler.HideTransaction)
	transactions.PUT("/:id/category", transactionHandler.OverrideCategory)
	transactions.PUT("/:id/payee", transactionHandler.RenamePayee)

	// Category routes
	categories := v1.Group("/categories")
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/spending", categoryHandler.GetSpending)
	categories.POST("", categoryHandler.CreateCategory)
	categories.DELETE("/:name", categoryHandler.DeleteCategory)
	categories.PUT("/:name/position", categoryHandler.MoveCategory)

	// Budget routes
	budgets := v1.Group("/budgets")
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.PUT("", budgetHandler.UpdateBudget)
	budgets.PUT("/starting-balance", budgetHandler.SetStartingBalance)

	log.Infof("Starting mybudget backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
