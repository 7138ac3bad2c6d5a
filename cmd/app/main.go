package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gpb360/fibre-elite-glow-sub005/external/abstractapi"
	"github.com/gpb360/fibre-elite-glow-sub005/external/resend"
	stripeapi "github.com/gpb360/fibre-elite-glow-sub005/external/stripe"

	"github.com/gpb360/fibre-elite-glow-sub005/internal/cart"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/db"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/logging"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/middleware"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/repository"
	"github.com/gpb360/fibre-elite-glow-sub005/internal/services"
)

type apiValidator struct {
	v *validator.Validate
}

func (av *apiValidator) Validate(i interface{}) error {
	return av.v.Struct(i)
}

func main() {
	_ = godotenv.Load()

	logging.Init("storefront-api", envOr("LOG_FILE", "logs/app.log"))
	logger := logging.L()

	// ======================
	// INFRA
	// ======================
	pool, err := db.Connect(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.RunMigrations(os.Getenv("DATABASE_URL"), envOr("MIGRATIONS_DIR", "migrations")); err != nil {
		log.Fatal(err)
	}

	// ======================
	// EXTERNALS
	// ======================
	gateway, err := stripeapi.NewClient()
	if err != nil {
		log.Fatal(err)
	}

	adminEmail := envOr("ADMIN_EMAIL", "admin@lbve.ca")
	mailer, err := resend.NewResendMailer(
		envOr("FROM_EMAIL", "La Belle Vie <orders@lbve.ca>"),
		adminEmail,
	)
	if err != nil {
		log.Fatal(err)
	}

	var emailValidator services.EmailValidator
	if os.Getenv("USE_EMAIL_REPUTATION") == "true" {
		emailValidator, err = abstractapi.NewAbstractReputationValidator()
		if err != nil {
			log.Fatal(err)
		}
	} else {
		emailValidator = services.NewLocalValidator()
	}

	// ======================
	// REPOSITORIES
	// ======================
	orderRepo := repository.NewOrderRepository(pool)
	sessionRepo := repository.NewCheckoutSessionRepository(pool)
	inventoryRepo := repository.NewInventoryRepository(pool)

	cartStore := cart.NewMemoryStore(cart.SessionTTL)
	defer cartStore.Close()

	// ======================
	// SERVICES
	// ======================
	siteURL := envOr("SITE_URL", "http://localhost:3000")
	checkoutSvc := services.NewCheckoutService(
		gateway, sessionRepo, emailValidator, logger,
		siteURL+"/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		siteURL+"/cart",
	)
	webhookSvc := services.NewWebhookService(
		orderRepo, sessionRepo, inventoryRepo, mailer, logger, adminEmail)
	recoverySvc := services.NewRecoveryService(gateway, webhookSvc, logger)
	inventorySvc := services.NewInventoryService(inventoryRepo, logger)
	orderSvc := services.NewOrderService(orderRepo, logger)

	// ======================
	// ECHO
	// ======================
	e := echo.New()
	e.Validator = &apiValidator{v: validator.New()}
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.MetricsMiddleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	// ======================
	// ROUTES (ONLY REGISTRATION)
	// ======================
	registerHealthRoutes(e, pool)
	registerCartRoutes(api, cartStore)
	registerCheckoutRoutes(api, checkoutSvc)
	registerWebhookRoutes(api, gateway, webhookSvc)
	registerRecoveryRoutes(api, recoverySvc)
	registerInventoryRoutes(api, inventorySvc)
	registerAdminRoutes(api, orderSvc)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
