package controllers

import (
	"errors"

	"classbooking_go/middleware"
	"classbooking_go/services"

	"github.com/gofiber/fiber/v2"
)

type BookingController struct {
	Booking *services.BookingService
}

// NewBookingController creates a booking controller over the service.
func NewBookingController(booking *services.BookingService) *BookingController {
	return &BookingController{Booking: booking}
}

// SubmitBooking commits one or more slots for a single (date, subject,
// location). Partial success is reported, never hidden: the outcome carries
// how many slots were committed before the first failure.
func (bc *BookingController) SubmitBooking(c *fiber.Ctx) error {
	var req services.BookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	outcome, err := bc.Booking.SubmitBooking(c.Context(), req)
	if err != nil {
		status := statusForBookingError(err)
		return c.Status(status).JSON(outcome)
	}

	// Log activity
	middleware.LogActivity(c, "CREATE", "bookings", 0, fiber.Map{
		"booking_id": outcome.BookingID,
		"date":       req.Date,
		"subject":    req.Subject,
		"location":   req.Location,
		"times":      req.Times,
	})

	return c.Status(fiber.StatusCreated).JSON(outcome)
}

// statusForBookingError maps the domain error taxonomy onto HTTP codes: the
// remedial action differs (fix input vs. refresh vs. retry), so the codes
// must too.
func statusForBookingError(err error) int {
	var validation *services.ValidationError
	var conflict *services.ConflictError
	var transient *services.TransientError
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest
	case errors.As(err, &conflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrLockTimeout), errors.As(err, &transient):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
