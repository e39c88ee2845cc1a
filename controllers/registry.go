package controllers

import (
	"errors"

	"classbooking_go/middleware"
	"classbooking_go/services"
	"classbooking_go/services/websocket"

	"github.com/gofiber/fiber/v2"
)

type RegistryController struct {
	Registry *services.RegistryService
	hub      *websocket.Hub
}

// NewRegistryController creates a registry controller over the service. The
// hub may be nil in tests.
func NewRegistryController(registry *services.RegistryService, hub *websocket.Hub) *RegistryController {
	return &RegistryController{Registry: registry, hub: hub}
}

// broadcastRegistryUpdate tells every screen to refresh its dropdown lists.
// Registry lists are location-scoped but shown on every screen's form, so
// this goes to all locations.
func (rc *RegistryController) broadcastRegistryUpdate(kind, location, value string) {
	if rc.hub == nil {
		return
	}
	rc.hub.Broadcast(fiber.Map{
		"type":     "registry_update",
		"kind":     kind,
		"location": services.NormalizeLocation(location),
		"value":    value,
	})
}

// GetTeachers returns the teacher names registered for a location.
func (rc *RegistryController) GetTeachers(c *fiber.Ctx) error {
	location := c.Query("location", services.DefaultLocation)

	teachers, err := rc.Registry.ListTeachers(c.Context(), location)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "系統暫時無法讀取老師清單，請稍後再試。",
		})
	}

	return c.JSON(fiber.Map{
		"location": services.NormalizeLocation(location),
		"teachers": teachers,
	})
}

// AddTeacher appends a teacher name to a location's list.
func (rc *RegistryController) AddTeacher(c *fiber.Ctx) error {
	var req struct {
		Location string `json:"location"`
		Name     string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := rc.Registry.AddTeacher(c.Context(), req.Location, req.Name); err != nil {
		return registryErrorResponse(c, err)
	}

	// Log activity
	middleware.LogActivity(c, "CREATE", "teachers", 0, req)
	rc.broadcastRegistryUpdate(services.RegistryTeachers, req.Location, req.Name)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "已新增老師「" + req.Name + "」",
	})
}

// GetCourseContents returns the course-content presets for a location.
func (rc *RegistryController) GetCourseContents(c *fiber.Ctx) error {
	location := c.Query("location", services.DefaultLocation)

	contents, err := rc.Registry.ListContents(c.Context(), location)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "系統暫時無法讀取課程內容清單，請稍後再試。",
		})
	}

	return c.JSON(fiber.Map{
		"location": services.NormalizeLocation(location),
		"contents": contents,
	})
}

// AddCourseContent appends a course-content preset to a location's list.
func (rc *RegistryController) AddCourseContent(c *fiber.Ctx) error {
	var req struct {
		Location string `json:"location"`
		Content  string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := rc.Registry.AddContent(c.Context(), req.Location, req.Content); err != nil {
		return registryErrorResponse(c, err)
	}

	// Log activity
	middleware.LogActivity(c, "CREATE", "contents", 0, req)
	rc.broadcastRegistryUpdate(services.RegistryContents, req.Location, req.Content)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "已新增課程內容「" + req.Content + "」",
	})
}

func registryErrorResponse(c *fiber.Ctx, err error) error {
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   validation.Reason,
		})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"success": false,
		"error":   "系統暫時無法寫入，請稍後再試。",
	})
}
