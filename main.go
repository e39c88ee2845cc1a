package main

import (
	"classbooking_go/config"
	"classbooking_go/database"
	"classbooking_go/database/seeders"
	"classbooking_go/middleware"
	"classbooking_go/routes"
	"classbooking_go/services"
	"classbooking_go/services/websocket"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func init() {
	// Load configuration first so logging can honor LOG_LEVEL / LOG_FILE
	config.LoadConfig()

	// Initialize logging
	setupLogging()

	// Merge operator-supplied public holidays into the calendar
	services.LoadExtraHolidays(config.AppConfig.ExtraHolidays)

	// Connect to database
	database.Connect()

	// Seed registries and fixed courses on first run
	seeders.SeedAll()
}

func main() {
	// Create WebSocket hub first so every committed reserve can broadcast
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Per-coordinate slot lock: Redis when available, in-process otherwise
	var locker services.SlotLocker
	if redisClient := database.GetRedisClient(); redisClient != nil {
		locker = services.NewRedisLocker(redisClient, config.AppConfig.LockTTL, config.AppConfig.LockTimeout)
	} else {
		locker = services.NewMemoryLocker(config.AppConfig.LockTimeout)
	}

	slotStore := services.NewGormSlotStore(database.DB, locker)
	registryStore := services.NewGormRegistryStore(database.DB)

	bookingService := services.NewBookingService(slotStore, services.BookingLimits{
		StudentMin:      config.AppConfig.StudentMin,
		StudentMax:      config.AppConfig.StudentMax,
		ContentMaxRunes: config.AppConfig.ContentMaxRunes,
	})
	bookingService.SetWebSocketHub(wsHub)

	// LINE booking notices for the admin group
	lineService := services.NewLineMessagingService()
	if lineService.Bot != nil && lineService.GroupID != "" {
		bookingService.SetNotifier(lineService)
		log.Println("LINE booking notices enabled")
	} else {
		log.Println("LINE booking notices disabled: missing channel credentials or group id")
	}

	registryService := services.NewRegistryService(registryStore)

	// Nightly period sheet archive to S3
	if config.AppConfig.UseSheetArchive {
		sheetArchive := services.NewSheetArchiveService(slotStore)
		sheetArchive.StartScheduler()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Station-ID",
	}))

	// Custom middleware
	app.Use(middleware.LoggerMiddleware())
	app.Use(middleware.LogActivityMiddleware())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "Classroom Booking API",
			"version": "1.0.0",
		})
	})

	// API routes
	routes.SetupRoutes(app, bookingService, slotStore, registryService, wsHub)
	routes.SetupStaticRoutes(app)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	// Start server (listen on all interfaces for Docker/production)
	port := ":" + config.AppConfig.Port
	log.Printf("Server starting on port %s", config.AppConfig.Port)
	log.Printf("Classroom Booking API v1.0.0")
	log.Printf("Environment: %s", config.AppConfig.AppEnv)

	if err := app.Listen(port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// setupLogging configures the logging system
func setupLogging() {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Warning: Could not create logs directory: %v", err)
	}

	// Configure logrus
	logrus.SetFormatter(&logrus.JSONFormatter{})

	// Set log level
	level, err := logrus.ParseLevel(config.AppConfig.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	// Log to stdout in development, to the configured file otherwise
	if config.AppConfig.AppEnv == "development" {
		logrus.SetOutput(os.Stdout)
	} else {
		file, err := os.OpenFile(config.AppConfig.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logrus.SetOutput(file)
		}
	}
}

// customErrorHandler handles application errors
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Log the error
	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	// Send error response
	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}
