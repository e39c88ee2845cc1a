package services

import (
	"context"
	"errors"
	"strings"

	"classbooking_go/models"

	"gorm.io/gorm"
)

// GormSlotStore is the MySQL-backed SlotStore. Every Reserve re-checks
// freshness under the per-coordinate lock; the composite unique index on the
// coordinate columns is a second line of defence should the lock ever be
// bypassed.
type GormSlotStore struct {
	db     *gorm.DB
	locker SlotLocker
}

// NewGormSlotStore creates a slot store over the given DB handle and locker.
func NewGormSlotStore(db *gorm.DB, locker SlotLocker) *GormSlotStore {
	return &GormSlotStore{db: db, locker: locker}
}

func (s *GormSlotStore) ReadSlot(ctx context.Context, coord SlotCoordinate) (string, bool, error) {
	var row models.Reservation
	err := s.db.WithContext(ctx).
		Where("period = ? AND date = ? AND time = ? AND subject = ? AND location = ?",
			coord.Period, coord.Date, coord.Time, coord.Subject, coord.Location).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, &TransientError{Cause: err}
	}
	return row.OccupiedBy, true, nil
}

// Reserve performs the guarded check-then-set. The lock is held only for
// the single coordinate, never across unrelated slots.
func (s *GormSlotStore) Reserve(ctx context.Context, coord SlotCoordinate, occupant, bookingID string) error {
	release, err := s.locker.Acquire(ctx, coord.LockKey())
	if err != nil {
		return err
	}
	defer release()

	current, occupied, err := s.ReadSlot(ctx, coord)
	if err != nil {
		return err
	}
	if occupied {
		return &ConflictError{Time: coord.Time, Occupant: current}
	}

	row := models.Reservation{
		Period:     coord.Period,
		Date:       coord.Date,
		Time:       coord.Time,
		Subject:    coord.Subject,
		Location:   coord.Location,
		OccupiedBy: occupant,
		BookingID:  bookingID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicateKeyErr(err) {
			// Someone slipped past the lock (e.g. expired TTL). Surface the
			// winner's descriptor as a regular conflict.
			if winner, ok, readErr := s.ReadSlot(ctx, coord); readErr == nil && ok {
				return &ConflictError{Time: coord.Time, Occupant: winner}
			}
			return &ConflictError{Time: coord.Time, Occupant: "其他使用者"}
		}
		return &TransientError{Cause: err}
	}
	return nil
}

// ListPeriod returns all committed reservations for one period partition and
// location, ordered for the legacy sheet layout.
func (s *GormSlotStore) ListPeriod(ctx context.Context, period, location string) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := s.db.WithContext(ctx).
		Where("period = ? AND location = ?", period, location).
		Order("date, time, subject").
		Find(&rows).Error
	if err != nil {
		return nil, &TransientError{Cause: err}
	}
	return rows, nil
}

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQL error 1062
	return strings.Contains(err.Error(), "Duplicate entry")
}
