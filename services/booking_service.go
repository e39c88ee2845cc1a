package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"classbooking_go/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SlotView is one entry of the availability view for a day.
type SlotView struct {
	Time       string `json:"time"`
	Occupied   bool   `json:"occupied"`
	OccupiedBy string `json:"occupied_by,omitempty"`
}

// BookingRequest is the inbound command for one or more slots on a single
// (date, subject, location).
type BookingRequest struct {
	Date          string   `json:"date"`
	Subject       string   `json:"subject"`
	Location      string   `json:"location"`
	Times         []string `json:"times"`
	TeacherName   string   `json:"teacher_name"`
	StudentCount  int      `json:"student_count"`
	CourseContent string   `json:"course_content"`
}

// BookingOutcome reports how far a multi-slot submission got. Partial
// success is visible: SucceededCount slots were committed before FailedAt.
type BookingOutcome struct {
	Success        bool    `json:"success"`
	BookingID      string  `json:"booking_id,omitempty"`
	SucceededCount int     `json:"succeeded_count"`
	FailedAt       *string `json:"failed_at,omitempty"`
	Message        string  `json:"message"`
}

// BookingLimits are the configured validation bounds.
type BookingLimits struct {
	StudentMin      int
	StudentMax      int
	ContentMaxRunes int
}

// DefaultBookingLimits mirror the legacy form constraints.
var DefaultBookingLimits = BookingLimits{StudentMin: 1, StudentMax: 5, ContentMaxRunes: 30}

// SlotBroadcaster receives committed slot updates (websocket hub).
type SlotBroadcaster interface {
	BroadcastSlotUpdate(location string, update interface{})
}

// BookingNotifier receives a one-line notice per successful submission.
type BookingNotifier interface {
	NotifyBooking(message string) error
}

// BookingService orchestrates calendar rules, catalog and the reservation
// store. It never caches occupancy across requests.
type BookingService struct {
	store    SlotStore
	limits   BookingLimits
	hub      SlotBroadcaster
	notifier BookingNotifier
}

// NewBookingService creates a booking service over the injected store.
func NewBookingService(store SlotStore, limits BookingLimits) *BookingService {
	return &BookingService{store: store, limits: limits}
}

// SetWebSocketHub wires the live slot-update feed.
func (bs *BookingService) SetWebSocketHub(hub SlotBroadcaster) {
	bs.hub = hub
}

// SetNotifier wires the LINE booking-notice channel.
func (bs *BookingService) SetNotifier(n BookingNotifier) {
	bs.notifier = n
}

// GetAvailability derives the day's slot template and probes the store for
// every slot. The view is advisory only; Reserve re-checks at write time.
func (bs *BookingService) GetAvailability(ctx context.Context, date, subject, location string) ([]SlotView, error) {
	if !IsValidSubject(subject) {
		return nil, &ValidationError{Reason: fmt.Sprintf("未知的科目: %q", subject)}
	}
	location = NormalizeLocation(location)

	template, err := SlotTemplate(date)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	views := make([]SlotView, 0, len(template))
	for _, timeRange := range template {
		coord, err := NewSlotCoordinate(date, timeRange, subject, location)
		if err != nil {
			return nil, &ValidationError{Reason: err.Error()}
		}
		occupant, occupied, err := bs.store.ReadSlot(ctx, coord)
		if err != nil {
			return nil, err
		}
		views = append(views, SlotView{Time: timeRange, Occupied: occupied, OccupiedBy: occupant})
	}
	return views, nil
}

// SubmitBooking validates the whole request up front (zero writes on any
// validation failure), then reserves the requested times in caller order,
// stopping at the first conflict or transient failure. Already-committed
// slots stay committed; there is no rollback.
func (bs *BookingService) SubmitBooking(ctx context.Context, req BookingRequest) (BookingOutcome, error) {
	if err := bs.validate(&req); err != nil {
		return BookingOutcome{Success: false, Message: err.Error()}, err
	}

	occupant := FormatOccupant(req.TeacherName, req.StudentCount, req.CourseContent)
	bookingID := uuid.New().String()

	succeeded := 0
	for _, timeRange := range req.Times {
		coord, err := NewSlotCoordinate(req.Date, timeRange, req.Subject, req.Location)
		if err != nil {
			// Date already validated; treat as internal.
			return BookingOutcome{SucceededCount: succeeded, Message: err.Error()}, err
		}

		err = bs.store.Reserve(ctx, coord, occupant, bookingID)
		if err != nil {
			outcome := BookingOutcome{
				Success:        false,
				BookingID:      bookingID,
				SucceededCount: succeeded,
				FailedAt:       &timeRange,
			}
			var conflict *ConflictError
			switch {
			case errors.As(err, &conflict):
				outcome.Message = fmt.Sprintf("預約失敗：%s 時段已被「%s」佔用。請重新整理。", conflict.Time, conflict.Occupant)
			case errors.Is(err, ErrLockTimeout):
				outcome.Message = fmt.Sprintf("系統忙碌中，%s 時段暫時無法鎖定，請稍後再試。", timeRange)
			default:
				outcome.Message = "系統發生錯誤，請稍後再試。"
			}
			if succeeded > 0 {
				outcome.Message += fmt.Sprintf(" (前 %d 個時段已登記成功)", succeeded)
			}
			bs.afterCommit(req, bookingID, occupant, req.Times[:succeeded])
			return outcome, err
		}

		succeeded++
		logrus.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"date":       req.Date,
			"time":       timeRange,
			"subject":    req.Subject,
			"location":   req.Location,
		}).Info("Slot reserved")
	}

	outcome := BookingOutcome{
		Success:        true,
		BookingID:      bookingID,
		SucceededCount: succeeded,
		Message: fmt.Sprintf("預約成功！已登記 %s %s %s (%s, %d人)",
			req.Date, strings.Join(req.Times, "、"), req.Subject, req.TeacherName, req.StudentCount),
	}
	bs.afterCommit(req, bookingID, occupant, req.Times)
	return outcome, nil
}

// validate applies the pre-write checks. Any failure aborts the entire
// submission before the store is touched.
func (bs *BookingService) validate(req *BookingRequest) error {
	req.Location = NormalizeLocation(req.Location)
	req.TeacherName = utils.SanitizeString(req.TeacherName)
	req.CourseContent = utils.SanitizeString(req.CourseContent)

	if !IsValidSubject(req.Subject) {
		return &ValidationError{Reason: fmt.Sprintf("未知的科目: %q", req.Subject)}
	}
	if req.TeacherName == "" {
		return &ValidationError{Reason: "請選擇老師姓名"}
	}
	if req.StudentCount < bs.limits.StudentMin || req.StudentCount > bs.limits.StudentMax {
		return &ValidationError{Reason: fmt.Sprintf("學生人數需介於 %d 至 %d 之間", bs.limits.StudentMin, bs.limits.StudentMax)}
	}
	if utf8.RuneCountInString(req.CourseContent) > bs.limits.ContentMaxRunes {
		return &ValidationError{Reason: fmt.Sprintf("課程內容長度不可超過 %d 字", bs.limits.ContentMaxRunes)}
	}
	if len(req.Times) == 0 {
		return &ValidationError{Reason: "請選擇時段"}
	}

	bookable, err := IsBookable(req.Date)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	if !bookable {
		notice, _ := ClosedDayNotice(req.Date)
		if notice != nil {
			return &ValidationError{Reason: notice.Message}
		}
		return &ValidationError{Reason: "此日期暫停預約。"}
	}

	template, err := SlotTemplate(req.Date)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	valid := make(map[string]bool, len(template))
	for _, t := range template {
		valid[t] = true
	}
	for _, t := range req.Times {
		if !utils.IsValidTimeRange(t) {
			return &ValidationError{Reason: fmt.Sprintf("時段格式錯誤: %q", t)}
		}
		if !valid[t] {
			return &ValidationError{Reason: fmt.Sprintf("時段 %s 不在 %s 的營業時段內", t, req.Date)}
		}
	}
	return nil
}

// afterCommit pushes committed slots to the live feed and the LINE group.
// Failures here never affect the booking outcome.
func (bs *BookingService) afterCommit(req BookingRequest, bookingID, occupant string, committedTimes []string) {
	if len(committedTimes) == 0 {
		return
	}
	if bs.hub != nil {
		for _, t := range committedTimes {
			bs.hub.BroadcastSlotUpdate(req.Location, map[string]interface{}{
				"type":        "slot_update",
				"booking_id":  bookingID,
				"date":        req.Date,
				"time":        t,
				"subject":     req.Subject,
				"location":    req.Location,
				"occupied_by": occupant,
			})
		}
	}
	if bs.notifier != nil {
		msg := fmt.Sprintf("【%s】%s %s %s 已登記：%s", req.Location, req.Date, strings.Join(committedTimes, "、"), req.Subject, occupant)
		if err := bs.notifier.NotifyBooking(msg); err != nil {
			logrus.WithError(err).Warn("Failed to push LINE booking notice")
		}
	}
}

// FormatOccupant renders the occupant descriptor recorded in the store:
// "name (count)" or "name (count) - content". The format is part of the
// external contract; consumers display it verbatim.
func FormatOccupant(name string, count int, content string) string {
	if content == "" {
		return fmt.Sprintf("%s (%d)", name, count)
	}
	return fmt.Sprintf("%s (%d) - %s", name, count, content)
}
