package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"billing_app_echo/internal/config"
	"billing_app_echo/internal/handlers"
	appMiddleware "billing_app_echo/internal/middleware"
	"billing_app_echo/internal/repositories"
	"billing_app_echo/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg := config.Load()

	// Initialize Firebase
	authClient, err := services.InitFirebase(cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Administrative endpoints will reject requests until valid credentials are provided")
	}

	// Initialize Database
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis (optional, processing degrades to uncached)
	var cache *services.RedisCache
	if cfg.RedisURL != "" {
		cache, err = services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	}

	stores := repositories.NewGormStores(db)
	provider := services.NewMercadoPagoService(cfg)
	emails := services.NewEmailService(cfg)
	paymentService := services.NewPaymentService(cfg, stores, provider, cache, emails)
	retryService := services.NewRetryService(cfg, stores, provider)

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = appMiddleware.JSONErrorHandler

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(paymentService)
	paymentHandler := handlers.NewPaymentHandler(retryService, stores)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Provider webhook intake
	e.POST("/api/webhooks/mercadopago", webhookHandler.HandleMercadoPago)

	// Administrative routes
	admin := e.Group("/api")
	admin.Use(appMiddleware.RequireAdmin(authClient, stores.Users))
	admin.POST("/payments/:id/retry", paymentHandler.RetryPaymentLink)
	admin.GET("/subscriptions/:userId", paymentHandler.GetSubscription)

	log.Printf("Server starting on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
