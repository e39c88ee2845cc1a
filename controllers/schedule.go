package controllers

import (
	"errors"

	"classbooking_go/services"

	"github.com/gofiber/fiber/v2"
)

type ScheduleController struct {
	Booking *services.BookingService
}

// NewScheduleController creates a schedule controller over the service.
func NewScheduleController(booking *services.BookingService) *ScheduleController {
	return &ScheduleController{Booking: booking}
}

// GetDaySchedule returns the ordered availability view for one day, subject
// and location, together with the day's calendar info.
func (sc *ScheduleController) GetDaySchedule(c *fiber.Ctx) error {
	date := c.Query("date")
	subject := c.Query("subject")
	location := c.Query("location", services.DefaultLocation)

	if date == "" || subject == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "date and subject query parameters are required",
		})
	}

	slots, err := sc.Booking.GetAvailability(c.Context(), date, subject, location)
	if err != nil {
		var validation *services.ValidationError
		if errors.As(err, &validation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validation.Reason,
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "系統暫時無法讀取課表，請稍後再試。",
		})
	}

	dayInfo, err := buildDayInfo(date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"date":     date,
		"subject":  subject,
		"location": services.NormalizeLocation(location),
		"day":      dayInfo,
		"slots":    slots,
	})
}

// GetDayInfo returns the calendar classification for one date.
func (sc *ScheduleController) GetDayInfo(c *fiber.Ctx) error {
	date := c.Params("date")

	dayInfo, err := buildDayInfo(date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(dayInfo)
}

// GetCatalog returns the locations and their ordered subjects.
func (sc *ScheduleController) GetCatalog(c *fiber.Ctx) error {
	catalog := make(map[string][]string)
	for _, location := range services.Locations() {
		catalog[location] = services.SubjectsFor(location)
	}
	return c.JSON(fiber.Map{
		"locations":        services.Locations(),
		"default_location": services.DefaultLocation,
		"subjects":         catalog,
	})
}

func buildDayInfo(date string) (fiber.Map, error) {
	classification, err := services.Classify(date)
	if err != nil {
		return nil, err
	}
	bookable, err := services.IsBookable(date)
	if err != nil {
		return nil, err
	}
	label, err := services.DayLabel(date)
	if err != nil {
		return nil, err
	}
	hours, err := services.BusinessHoursLabel(date)
	if err != nil {
		return nil, err
	}
	notice, err := services.ClosedDayNotice(date)
	if err != nil {
		return nil, err
	}

	info := fiber.Map{
		"date":           date,
		"classification": classification,
		"day_of_week":    label,
		"bookable":       bookable,
		"business_hours": hours,
	}
	if name := services.HolidayName(date); name != "" {
		info["holiday_name"] = name
	}
	if notice != nil {
		info["notice"] = notice
	}
	return info, nil
}
