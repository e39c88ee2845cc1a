package services

import (
	"fmt"
	"sync"
	"time"
)

// DayClassification 日期分類，決定該日的時段表與可否登記
type DayClassification string

const (
	DayWeekday        DayClassification = "weekday"          // 週一至週四
	DayFridayOrSunday DayClassification = "friday_or_sunday" // 週五或週日，縮短營業
	DaySaturday       DayClassification = "saturday"         // 公休但開放登記
	DayPublicHoliday  DayClassification = "public_holiday"   // 國定假日，暫停預約
)

const dateLayout = "2006-01-02"

// 週一至週六的完整時段表 (10:00-21:00)
var weekdayTimeSlots = []string{
	"10:00-11:00",
	"11:00-12:00",
	"12:00-13:00",
	"13:00-14:00",
	"14:00-15:00",
	"15:00-16:00",
	"16:00-17:00",
	"17:00-18:00",
	"18:00-19:00",
	"19:00-20:00",
	"20:00-21:00",
}

// 週五與週日的縮短時段表 (10:00-17:00)
var fridaySundayTimeSlots = []string{
	"10:00-11:00",
	"11:00-12:00",
	"12:00-13:00",
	"13:00-14:00",
	"14:00-15:00",
	"15:00-16:00",
	"16:00-17:00",
}

var dayOfWeekText = []string{"週日", "週一", "週二", "週三", "週四", "週五", "週六"}

// publicHolidays maps calendar dates to holiday names. Extended at startup
// from config (EXTRA_HOLIDAYS) and via AddHoliday; read-mostly afterwards.
var (
	holidayMu      sync.RWMutex
	publicHolidays = map[string]string{
		"2025-01-01": "元旦",
		"2025-01-27": "春節前補假",
		"2025-01-28": "農曆除夕",
		"2025-01-29": "春節",
		"2025-01-30": "春節",
		"2025-01-31": "春節",
		"2025-02-28": "和平紀念日",
		"2025-04-03": "兒童節前補假",
		"2025-04-04": "兒童節/清明節",
		"2025-05-01": "勞動節",
		"2025-05-30": "端午節補假",
		"2025-10-06": "中秋節",
		"2025-10-10": "國慶日",
		"2026-01-01": "元旦",
		"2026-02-16": "農曆除夕",
		"2026-02-17": "春節",
		"2026-02-18": "春節",
		"2026-02-19": "春節",
		"2026-02-20": "春節補假",
		"2026-02-27": "和平紀念日補假",
		"2026-04-03": "兒童節前補假",
		"2026-04-04": "兒童節",
		"2026-04-05": "清明節",
		"2026-04-06": "清明節補假",
		"2026-05-01": "勞動節",
		"2026-06-19": "端午節",
		"2026-09-25": "中秋節",
		"2026-10-09": "國慶日補假",
		"2026-10-10": "國慶日",
	}
)

// AddHoliday registers an extra public holiday. An empty name is allowed.
func AddHoliday(date, name string) {
	holidayMu.Lock()
	publicHolidays[date] = name
	holidayMu.Unlock()
}

// LoadExtraHolidays merges operator-supplied holidays into the calendar.
func LoadExtraHolidays(extra map[string]string) {
	holidayMu.Lock()
	for date, name := range extra {
		publicHolidays[date] = name
	}
	holidayMu.Unlock()
}

// HolidayName returns the holiday name for a date, or "" if it is not a
// public holiday.
func HolidayName(date string) string {
	holidayMu.RLock()
	defer holidayMu.RUnlock()
	return publicHolidays[date]
}

// IsPublicHoliday reports whether the date is in the holiday calendar.
func IsPublicHoliday(date string) bool {
	holidayMu.RLock()
	defer holidayMu.RUnlock()
	_, ok := publicHolidays[date]
	return ok
}

// ParseDate parses a calendar date string as local midnight. Callers must
// pass calendar dates, not timestamps.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式錯誤，需為 YYYY-MM-DD: %q", date)
	}
	return t, nil
}

// Classify derives the day classification. A holiday-calendar match wins
// over the weekday mapping.
func Classify(date string) (DayClassification, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	if IsPublicHoliday(date) {
		return DayPublicHoliday, nil
	}
	switch t.Weekday() {
	case time.Saturday:
		return DaySaturday, nil
	case time.Friday, time.Sunday:
		return DayFridayOrSunday, nil
	default:
		return DayWeekday, nil
	}
}

// SlotTemplate returns the ordered time ranges valid for the date.
// Saturdays and public holidays keep the full weekday grid; the grid governs
// display while IsBookable governs write permission.
func SlotTemplate(date string) ([]string, error) {
	class, err := Classify(date)
	if err != nil {
		return nil, err
	}
	var src []string
	if class == DayFridayOrSunday {
		src = fridaySundayTimeSlots
	} else {
		src = weekdayTimeSlots
	}
	out := make([]string, len(src))
	copy(out, src)
	return out, nil
}

// IsBookable reports whether bookings may be written for the date.
// Saturday is nominally a closed day but stays open for registration; only
// public holidays refuse writes.
func IsBookable(date string) (bool, error) {
	class, err := Classify(date)
	if err != nil {
		return false, err
	}
	return class != DayPublicHoliday, nil
}

// IsClosedDay reports whether the date carries the closed-day label
// (Saturday or public holiday). The label is cosmetic and independent of
// bookability.
func IsClosedDay(date string) (bool, error) {
	class, err := Classify(date)
	if err != nil {
		return false, err
	}
	return class == DaySaturday || class == DayPublicHoliday, nil
}

// DayLabel returns the weekday text, e.g. "週三".
func DayLabel(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return dayOfWeekText[int(t.Weekday())], nil
}

// BusinessHoursLabel returns the display text for the date's business hours.
func BusinessHoursLabel(date string) (string, error) {
	class, err := Classify(date)
	if err != nil {
		return "", err
	}
	switch class {
	case DaySaturday, DayPublicHoliday:
		return "公休日 (開放登記)", nil
	case DayFridayOrSunday:
		return "10:00-17:00", nil
	default:
		return "10:00-21:00", nil
	}
}

// DayNotice carries a user-facing reminder for closed days.
type DayNotice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ClosedDayNotice returns the reminder shown for closed days, naming the
// holiday explicitly when the date is a public holiday. Returns nil for
// ordinary operating days.
func ClosedDayNotice(date string) (*DayNotice, error) {
	class, err := Classify(date)
	if err != nil {
		return nil, err
	}
	switch class {
	case DayPublicHoliday:
		name := HolidayName(date)
		return &DayNotice{
			Title:   "公休日提醒",
			Message: fmt.Sprintf("此日期為國定假日（%s），暫停預約。", name),
		}, nil
	case DaySaturday:
		return &DayNotice{
			Title:   "週六提醒",
			Message: "週六為公休日，但仍開放登記。",
		}, nil
	default:
		return nil, nil
	}
}

// PeriodKey derives the sheet-period partition key for a date: the ROC
// (Minguo) year and zero-padded month, e.g. 2025-12-01 -> "114/12".
func PeriodKey(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d/%02d", t.Year()-1911, int(t.Month())), nil
}
