package service

import (
	"context"

	"github.com/iliyamo/court-booking/internal/model"
)

// AvailabilityChecker answers whether a court is free for an interval.  It
// holds no state of its own and re-reads the store on every call.
type AvailabilityChecker struct {
	store BookingStore
}

// NewAvailabilityChecker returns a checker reading from store.
func NewAvailabilityChecker(store BookingStore) *AvailabilityChecker {
	return &AvailabilityChecker{store: store}
}

// CheckAvailability reports whether [clock, clock+duration) on the court
// and date is free of active bookings.
func (c *AvailabilityChecker) CheckAvailability(ctx context.Context, courtID, date, clock string, duration int) (bool, error) {
	want, err := intervalOf(clock, duration)
	if err != nil {
		return false, &ValidationError{Reason: "invalid booking time or duration", Err: err}
	}
	busy, err := c.activeIntervals(ctx, courtID, date)
	if err != nil {
		return false, err
	}
	for _, iv := range busy {
		if Overlaps(want, iv) {
			return false, nil
		}
	}
	return true, nil
}

func (c *AvailabilityChecker) activeIntervals(ctx context.Context, courtID, date string) ([]Interval, error) {
	bookings, err := c.store.Query(ctx, model.BookingFilter{
		CourtID: courtID,
		Date:    date,
		Status:  model.StatusActive,
	})
	if err != nil {
		return nil, &StorageError{Op: "query bookings", Err: err}
	}
	out := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		iv, err := bookingInterval(b)
		if err != nil {
			return nil, &StorageError{Op: "read booking " + b.ID, Err: err}
		}
		out = append(out, iv)
	}
	return out, nil
}
