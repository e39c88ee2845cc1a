package controllers

import (
	"fmt"

	"classbooking_go/services"

	"github.com/gofiber/fiber/v2"
)

type ExportController struct {
	Store *services.GormSlotStore
}

// NewExportController creates an export controller over the slot store.
func NewExportController(store *services.GormSlotStore) *ExportController {
	return &ExportController{Store: store}
}

// ExportPeriod streams one period partition as an xlsx workbook in the
// legacy sheet layout, e.g. GET /api/export/114/12?location=台北.
func (ec *ExportController) ExportPeriod(c *fiber.Ctx) error {
	period := c.Params("roc_year") + "/" + c.Params("month")
	location := c.Query("location", services.DefaultLocation)

	if _, _, err := services.ParsePeriod(period); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	location = services.NormalizeLocation(location)

	rows, err := ec.Store.ListPeriod(c.Context(), period, location)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "系統暫時無法匯出，請稍後再試。",
		})
	}

	workbook, err := services.BuildPeriodWorkbook(period, location, rows)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build workbook",
		})
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render workbook",
		})
	}

	fileName := services.PeriodFileName(period, location)
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return c.Send(buf.Bytes())
}
