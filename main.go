package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"player-moderation-system/handlers"
	"player-moderation-system/middleware"
	"player-moderation-system/models"
	"player-moderation-system/services"
	"player-moderation-system/utils"
	"player-moderation-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // moderation payloads are small
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Staff-ID, X-Staff-Permissions",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Player{},
		&models.GiftCode{},
		&models.PlayerNote{},
		&models.PlayerReport{},
		&models.PlayerAPIKey{},
		&models.ModerationLogEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	// Moderation-log notifier: Discord webhook when configured, stdout otherwise
	var notifier services.Notifier = services.LogNotifier{}
	if webhookURL := os.Getenv("MODLOG_WEBHOOK_URL"); webhookURL != "" {
		discordNotifier, err := services.NewDiscordWebhookNotifier(webhookURL)
		if err != nil {
			log.Fatal("invalid MODLOG_WEBHOOK_URL:", err)
		}
		notifier = discordNotifier
	} else {
		log.Println("⚠️  MODLOG_WEBHOOK_URL not set — moderation log events go to stdout only")
	}

	modlog := services.NewModLog(db, notifier)
	playerService := services.NewPlayerService(db, modlog)
	roleService := services.NewRoleService(db, modlog)
	giftCodeService := services.NewGiftCodeService(db, modlog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Orphaned gift-code uses are cleaned up in the background
	reconcileWorker := workers.NewGiftCodeReconcileWorker(db)
	reconcileWorker.Start(ctx)

	// Daily audit archive export to R2, when a bucket is configured
	if utils.R2Configured() {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		modlog.StartAuditExportScheduler()
	} else {
		log.Println("⚠️  R2_BUCKET_NAME not set — audit archive export disabled")
	}

	handlers.SetupPlayerRoutes(app, playerService)
	handlers.SetupRoleRoutes(app, roleService)
	handlers.SetupGiftCodeRoutes(app, giftCodeService)
	handlers.SetupModLogRoutes(app, modlog)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Gift Code Reconcile Worker running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
