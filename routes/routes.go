package routes

import (
	"classbooking_go/controllers"
	"classbooking_go/services"
	"classbooking_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// SetupRoutes configures all application routes. The whole surface is
// public: there is no authentication model, any staff screen may book.
func SetupRoutes(app *fiber.App, booking *services.BookingService, store *services.GormSlotStore, registry *services.RegistryService, wsHub *websocket.Hub) {
	// Initialize controllers
	scheduleController := controllers.NewScheduleController(booking)
	bookingController := controllers.NewBookingController(booking)
	registryController := controllers.NewRegistryController(registry, wsHub)
	exportController := controllers.NewExportController(store)
	healthController := controllers.NewHealthController()
	wsController := controllers.NewWebSocketController(wsHub)

	// API group
	api := app.Group("/api")

	// Availability and calendar
	api.Get("/schedule", scheduleController.GetDaySchedule)
	api.Get("/calendar/:date", scheduleController.GetDayInfo)
	api.Get("/catalog", scheduleController.GetCatalog)

	// Booking command
	api.Post("/bookings", bookingController.SubmitBooking)

	// Open-ended per-location registries
	api.Get("/teachers", registryController.GetTeachers)
	api.Post("/teachers", registryController.AddTeacher)
	api.Get("/contents", registryController.GetCourseContents)
	api.Post("/contents", registryController.AddCourseContent)

	// Legacy sheet export
	api.Get("/export/:roc_year/:month", exportController.ExportPeriod)

	// Detailed health
	api.Get("/health/detailed", healthController.GetDetailedHealth)

	// WebSocket slot-update feed
	api.Get("/ws/stats", wsController.GetWebSocketStats)
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}

// SetupStaticRoutes configures static file serving
func SetupStaticRoutes(app *fiber.App) {
	// Serve the booking screen bundle if present
	app.Static("/", "./public")
}
