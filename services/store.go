package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// SlotCoordinate addresses one bookable unit. Equality is structural; the
// struct is the key space of the reservation store.
type SlotCoordinate struct {
	Period   string `json:"period"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Subject  string `json:"subject"`
	Location string `json:"location"`
}

// LockKey renders the coordinate as a lock/cache key.
func (c SlotCoordinate) LockKey() string {
	return fmt.Sprintf("slotlock:%s:%s:%s:%s:%s", c.Period, c.Date, c.Time, c.Subject, c.Location)
}

// NewSlotCoordinate derives the full coordinate, including the period
// partition key, from the caller-facing triple plus time.
func NewSlotCoordinate(date, timeRange, subject, location string) (SlotCoordinate, error) {
	period, err := PeriodKey(date)
	if err != nil {
		return SlotCoordinate{}, err
	}
	return SlotCoordinate{
		Period:   period,
		Date:     date,
		Time:     timeRange,
		Subject:  subject,
		Location: location,
	}, nil
}

// ValidationError rejects bad input before any store access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ConflictError reports a slot that was already occupied at write time. It
// carries the current occupant so the caller can inform the user verbatim.
type ConflictError struct {
	Time     string
	Occupant string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("時段 %s 已被「%s」佔用", e.Time, e.Occupant)
}

// TransientError wraps backing-medium failures the caller may retry. Never
// treated as a successful booking.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string { return fmt.Sprintf("系統暫時無法連線: %v", e.Cause) }
func (e *TransientError) Unwrap() error { return e.Cause }

// ErrLockTimeout marks a lock acquisition that exceeded its bounded wait.
var ErrLockTimeout = errors.New("slot lock acquisition timed out")

// SlotStore is the authoritative occupancy table. Reserve must behave as
// check-then-set under mutual exclusion per coordinate: at most one
// successful reserve ever populates a coordinate.
type SlotStore interface {
	// ReadSlot returns the occupant descriptor; absence means available.
	ReadSlot(ctx context.Context, coord SlotCoordinate) (occupant string, occupied bool, err error)
	// Reserve writes the descriptor iff the slot is still free, returning
	// *ConflictError with the current occupant otherwise. bookingID groups
	// the slots of one multi-slot submission.
	Reserve(ctx context.Context, coord SlotCoordinate, occupant, bookingID string) error
}

type slotRecord struct {
	occupant  string
	bookingID string
}

// MemoryStore is an in-memory SlotStore. Check-then-set runs under a single
// mutex, which is exclusive enough for an in-process table.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[SlotCoordinate]slotRecord
}

// NewMemoryStore creates an empty in-memory slot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[SlotCoordinate]slotRecord)}
}

func (s *MemoryStore) ReadSlot(_ context.Context, coord SlotCoordinate) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.slots[coord]
	return rec.occupant, ok, nil
}

func (s *MemoryStore) Reserve(_ context.Context, coord SlotCoordinate, occupant, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.slots[coord]; ok {
		return &ConflictError{Time: coord.Time, Occupant: current.occupant}
	}
	s.slots[coord] = slotRecord{occupant: occupant, bookingID: bookingID}
	return nil
}

// Seed pre-fills a slot, bypassing the reserve protocol. Used by tests and
// seeders for admin-entered fixed courses.
func (s *MemoryStore) Seed(coord SlotCoordinate, occupant string) {
	s.mu.Lock()
	s.slots[coord] = slotRecord{occupant: occupant}
	s.mu.Unlock()
}

// BookingIDAt returns the booking id recorded at a coordinate.
func (s *MemoryStore) BookingIDAt(coord SlotCoordinate) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[coord].bookingID
}

// Len returns the number of occupied slots.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}
