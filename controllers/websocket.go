package controllers

import (
	"classbooking_go/services"
	"classbooking_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

type WebSocketController struct {
	hub *websocket.Hub
}

// NewWebSocketController creates a websocket controller over the hub.
func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// WebSocketHandler upgrades a booking screen connection. The screen passes
// its branch location as a query parameter and receives slot updates for
// that location only.
func (wc *WebSocketController) WebSocketHandler() fiber.Handler {
	return fiberws.New(func(c *fiberws.Conn) {
		location := services.NormalizeLocation(c.Query("location"))
		wc.hub.ServeFiberWS(c, location)
	})
}

// GetWebSocketStats returns the number of connected booking screens.
func (wc *WebSocketController) GetWebSocketStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"connected_clients": wc.hub.GetClientCount(),
	})
}
