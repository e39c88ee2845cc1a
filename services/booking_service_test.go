package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingHub struct {
	updates []map[string]interface{}
}

func (h *recordingHub) BroadcastSlotUpdate(location string, update interface{}) {
	if m, ok := update.(map[string]interface{}); ok {
		h.updates = append(h.updates, m)
	}
}

func newTestBookingService() (*BookingService, *MemoryStore) {
	store := NewMemoryStore()
	return NewBookingService(store, DefaultBookingLimits), store
}

func validRequest() BookingRequest {
	return BookingRequest{
		Date:          "2025-12-02",
		Subject:       SubjectTheory,
		Location:      LocationTaipei,
		Times:         []string{"12:00-13:00"},
		TeacherName:   "依珊",
		StudentCount:  3,
		CourseContent: "",
	}
}

func TestSubmitBookingSuccess(t *testing.T) {
	svc, store := newTestBookingService()

	req := validRequest()
	req.Times = []string{"12:00-13:00", "13:00-14:00"}
	req.CourseContent = "國考衝刺"

	outcome, err := svc.SubmitBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Success || outcome.SucceededCount != 2 {
		t.Fatalf("expected full success, got %+v", outcome)
	}
	if outcome.BookingID == "" {
		t.Fatalf("expected a booking id")
	}

	for _, timeRange := range req.Times {
		coord := testCoordinate(t, timeRange)
		occupant, occupied, _ := store.ReadSlot(context.Background(), coord)
		if !occupied || occupant != "依珊 (3) - 國考衝刺" {
			t.Fatalf("slot %s: expected descriptor, got %q (%v)", timeRange, occupant, occupied)
		}
		if got := store.BookingIDAt(coord); got != outcome.BookingID {
			t.Fatalf("slot %s: stored booking id %q, outcome %q", timeRange, got, outcome.BookingID)
		}
	}
}

func TestSubmitBookingConflictKeepsWinner(t *testing.T) {
	svc, store := newTestBookingService()

	coord := testCoordinate(t, "14:00-15:00")
	store.Seed(coord, "Lisa (2) - 基礎彩妝")

	req := validRequest()
	req.Times = []string{"14:00-15:00"}

	outcome, err := svc.SubmitBooking(context.Background(), req)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflict.Occupant != "Lisa (2) - 基礎彩妝" {
		t.Fatalf("conflict must carry the stored descriptor verbatim, got %q", conflict.Occupant)
	}
	if want := "預約失敗：14:00-15:00 時段已被「Lisa (2) - 基礎彩妝」佔用。請重新整理。"; outcome.Message != want {
		t.Fatalf("expected %q, got %q", want, outcome.Message)
	}
	if outcome.Success || outcome.SucceededCount != 0 {
		t.Fatalf("expected zero progress, got %+v", outcome)
	}

	occupant, _, _ := store.ReadSlot(context.Background(), coord)
	if occupant != "Lisa (2) - 基礎彩妝" {
		t.Fatalf("losing attempt overwrote descriptor: %q", occupant)
	}
}

func TestSubmitBookingPartialProgress(t *testing.T) {
	svc, store := newTestBookingService()

	// Occupy the middle slot of a three-slot request.
	store.Seed(testCoordinate(t, "13:00-14:00"), "Tina (1)")

	req := validRequest()
	req.Times = []string{"12:00-13:00", "13:00-14:00", "14:00-15:00"}

	outcome, err := svc.SubmitBooking(context.Background(), req)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if outcome.SucceededCount != 1 {
		t.Fatalf("expected 1 committed slot, got %d", outcome.SucceededCount)
	}
	if outcome.FailedAt == nil || *outcome.FailedAt != "13:00-14:00" {
		t.Fatalf("expected failure at 13:00-14:00, got %v", outcome.FailedAt)
	}
	if !strings.Contains(outcome.Message, "前 1 個時段已登記成功") {
		t.Fatalf("message must surface partial progress, got %q", outcome.Message)
	}

	// The first slot stays committed; no rollback.
	occupant, occupied, _ := store.ReadSlot(context.Background(), testCoordinate(t, "12:00-13:00"))
	if !occupied || occupant != "依珊 (3)" {
		t.Fatalf("committed prefix lost: %q (%v)", occupant, occupied)
	}

	// The slot after the conflict is never attempted.
	_, occupied, _ = store.ReadSlot(context.Background(), testCoordinate(t, "14:00-15:00"))
	if occupied {
		t.Fatalf("slot after the conflict must not be written")
	}
}

func TestSubmitBookingValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BookingRequest)
		expMsg string
	}{
		{
			name:   "empty teacher name",
			mutate: func(r *BookingRequest) { r.TeacherName = "   " },
			expMsg: "請選擇老師姓名",
		},
		{
			name:   "student count too high",
			mutate: func(r *BookingRequest) { r.StudentCount = 6 },
			expMsg: "學生人數需介於 1 至 5 之間",
		},
		{
			name:   "student count too low",
			mutate: func(r *BookingRequest) { r.StudentCount = 0 },
			expMsg: "學生人數需介於 1 至 5 之間",
		},
		{
			name:   "content too long",
			mutate: func(r *BookingRequest) { r.CourseContent = strings.Repeat("彩", 31) },
			expMsg: "課程內容長度不可超過 30 字",
		},
		{
			name:   "no times selected",
			mutate: func(r *BookingRequest) { r.Times = nil },
			expMsg: "請選擇時段",
		},
		{
			name:   "unknown subject",
			mutate: func(r *BookingRequest) { r.Subject = "舞蹈" },
			expMsg: "未知的科目",
		},
		{
			name:   "time outside business hours",
			mutate: func(r *BookingRequest) { r.Times = []string{"21:00-22:00"} },
			expMsg: "不在 2025-12-02 的營業時段內",
		},
		{
			name:   "malformed time string",
			mutate: func(r *BookingRequest) { r.Times = []string{"10:00~11:00"} },
			expMsg: "時段格式錯誤",
		},
		{
			name: "short-day grid enforced on sunday",
			mutate: func(r *BookingRequest) {
				r.Date = "2025-12-07"
				r.Times = []string{"18:00-19:00"}
			},
			expMsg: "不在 2025-12-07 的營業時段內",
		},
		{
			name:   "public holiday names itself",
			mutate: func(r *BookingRequest) { r.Date = "2026-01-01" },
			expMsg: "此日期為國定假日（元旦），暫停預約。",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			svc, store := newTestBookingService()

			req := validRequest()
			tc.mutate(&req)

			_, err := svc.SubmitBooking(context.Background(), req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if !strings.Contains(verr.Reason, tc.expMsg) {
				t.Fatalf("expected message containing %q, got %q", tc.expMsg, verr.Reason)
			}
			if store.Len() != 0 {
				t.Fatalf("validation failure must not write, store holds %d slots", store.Len())
			}
		})
	}
}

func TestSubmitBookingSaturdayAllowed(t *testing.T) {
	svc, _ := newTestBookingService()

	// Saturdays are closed for walk-ins but stay open for registration.
	req := validRequest()
	req.Date = "2025-12-06"
	req.Times = []string{"10:00-11:00"}

	outcome, err := svc.SubmitBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("saturday booking must succeed: %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}
}

func TestSubmitBookingBroadcastsCommittedSlotsOnly(t *testing.T) {
	svc, store := newTestBookingService()
	hub := &recordingHub{}
	svc.SetWebSocketHub(hub)

	store.Seed(testCoordinate(t, "13:00-14:00"), "Tina (1)")

	req := validRequest()
	req.Times = []string{"12:00-13:00", "13:00-14:00", "14:00-15:00"}

	_, err := svc.SubmitBooking(context.Background(), req)
	if err == nil {
		t.Fatalf("expected conflict")
	}
	if len(hub.updates) != 1 {
		t.Fatalf("expected 1 broadcast for the committed prefix, got %d", len(hub.updates))
	}
	if hub.updates[0]["time"] != "12:00-13:00" {
		t.Fatalf("broadcast carries wrong slot: %v", hub.updates[0]["time"])
	}
}

func TestGetAvailability(t *testing.T) {
	svc, store := newTestBookingService()
	store.Seed(testCoordinate(t, "13:00-14:00"), "Lisa (2) - 基礎彩妝")

	views, err := svc.GetAvailability(context.Background(), "2025-12-02", SubjectTheory, LocationTaipei)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 11 {
		t.Fatalf("expected 11 slots for a weekday, got %d", len(views))
	}

	occupiedCount := 0
	for _, v := range views {
		if v.Occupied {
			occupiedCount++
			if v.Time != "13:00-14:00" || v.OccupiedBy != "Lisa (2) - 基礎彩妝" {
				t.Fatalf("wrong occupied view: %+v", v)
			}
		}
	}
	if occupiedCount != 1 {
		t.Fatalf("expected exactly 1 occupied slot, got %d", occupiedCount)
	}
}

func TestGetAvailabilityShortDay(t *testing.T) {
	svc, _ := newTestBookingService()

	views, err := svc.GetAvailability(context.Background(), "2025-12-07", SubjectMakeup, LocationTaipei)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 7 {
		t.Fatalf("expected 7 slots for a sunday, got %d", len(views))
	}
}

func TestGetAvailabilityUnknownSubject(t *testing.T) {
	svc, _ := newTestBookingService()

	_, err := svc.GetAvailability(context.Background(), "2025-12-02", "舞蹈", LocationTaipei)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestFormatOccupant(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		content string
		exp     string
	}{
		{name: "依珊", count: 3, content: "", exp: "依珊 (3)"},
		{name: "Lisa", count: 2, content: "基礎彩妝", exp: "Lisa (2) - 基礎彩妝"},
		{name: "Tina", count: 1, content: "新娘造型", exp: "Tina (1) - 新娘造型"},
	}

	for _, tc := range tests {
		if got := FormatOccupant(tc.name, tc.count, tc.content); got != tc.exp {
			t.Fatalf("expected %q, got %q", tc.exp, got)
		}
	}
}
