package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"classbooking_go/models"

	"github.com/xuri/excelize/v2"
)

// Period sheet layout, reproducing the legacy spreadsheet: column A holds
// the date, column B the time range, and each subject occupies the column at
// its catalog offset relative to the time column. Occupant descriptors are
// written verbatim.

const (
	sheetDateCol   = 1 // A
	sheetTimeCol   = 2 // B
	sheetHeaderRow = 2
)

// ParsePeriod splits a period key "114/12" into its ROC year and month.
func ParsePeriod(period string) (rocYear, month int, err error) {
	parts := strings.Split(period, "/")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("期別格式錯誤，需為 ROC年/月: %q", period)
	}
	rocYear, err = strconv.Atoi(parts[0])
	if err != nil || rocYear < 1 {
		return 0, 0, fmt.Errorf("期別年份錯誤: %q", period)
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("期別月份錯誤: %q", period)
	}
	return rocYear, month, nil
}

// PeriodDates lists every calendar date of the period's month.
func PeriodDates(period string) ([]string, error) {
	rocYear, month, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	year := rocYear + 1911
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	var dates []string
	for d := first; d.Month() == time.Month(month); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}

// BuildPeriodWorkbook renders one period partition for one location as an
// xlsx workbook in the legacy sheet layout.
func BuildPeriodWorkbook(period, location string, rows []models.Reservation) (*excelize.File, error) {
	dates, err := PeriodDates(period)
	if err != nil {
		return nil, err
	}
	location = NormalizeLocation(location)

	// Sheet names cannot contain '/'
	sheet := strings.ReplaceAll(period, "/", "-") + " " + location
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheet)

	title := fmt.Sprintf("%s 分校 %s 教室登記表", location, period)
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, err
	}

	// Header row: date, time, then each offered subject at its offset
	setCell := func(col, row int, value string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheet, cell, value)
	}
	if err := setCell(sheetDateCol, sheetHeaderRow, "日期"); err != nil {
		return nil, err
	}
	if err := setCell(sheetTimeCol, sheetHeaderRow, "時段"); err != nil {
		return nil, err
	}
	for _, subject := range SubjectsFor(location) {
		if err := setCell(sheetTimeCol+OffsetFor(subject), sheetHeaderRow, subject); err != nil {
			return nil, err
		}
	}

	// Index occupancy by (date, time, subject)
	type cellKey struct{ date, timeRange, subject string }
	occupancy := make(map[cellKey]string, len(rows))
	for _, r := range rows {
		occupancy[cellKey{r.Date, r.Time, r.Subject}] = r.OccupiedBy
	}

	row := sheetHeaderRow + 1
	for _, date := range dates {
		template, err := SlotTemplate(date)
		if err != nil {
			return nil, err
		}
		for _, timeRange := range template {
			if err := setCell(sheetDateCol, row, date); err != nil {
				return nil, err
			}
			if err := setCell(sheetTimeCol, row, timeRange); err != nil {
				return nil, err
			}
			for _, subject := range SubjectsFor(location) {
				if occupant, ok := occupancy[cellKey{date, timeRange, subject}]; ok {
					if err := setCell(sheetTimeCol+OffsetFor(subject), row, occupant); err != nil {
						return nil, err
					}
				}
			}
			row++
		}
	}

	return f, nil
}
