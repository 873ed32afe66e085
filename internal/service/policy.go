package service

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Policy decides whether a requested start is bookable at all, regardless
// of what is already booked.  It only looks at the start: a booking that
// starts at 21:30 and ends at 22:30 passes a 22:00 closing hour.
type Policy struct {
	OpenHour       int           // first hour a booking may start
	CloseHour      int           // bookings must start before this hour
	MinLead        time.Duration // start must be strictly later than now + MinLead
	MaxAdvanceDays int           // whole days between now and start may not exceed this
	Location       *time.Location
}

// DefaultPolicy returns 07:00–22:00 opening hours, a 5 minute lead and a
// 30 day booking horizon in the local time zone.
func DefaultPolicy() Policy {
	return Policy{
		OpenHour:       7,
		CloseHour:      22,
		MinLead:        5 * time.Minute,
		MaxAdvanceDays: 30,
		Location:       time.Local,
	}
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

// StartOf combines a "YYYY-MM-DD" date and an "HH:MM" clock time into a
// point in time in the policy's location.
func (p Policy) StartOf(date, clock string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, p.location())
	if err != nil {
		return time.Time{}, err
	}
	m, err := TimeToMinutes(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), m/60, m%60, 0, 0, p.location()), nil
}

// ValidateBookingTime applies, in order: not in the past (with lead),
// within opening hours, within the booking horizon.  The first failing
// rule is returned as a *ValidationError.
func (p Policy) ValidateBookingTime(date, clock string, now time.Time) error {
	start, err := p.StartOf(date, clock)
	if err != nil {
		return &ValidationError{Reason: "invalid booking date or time", Err: err}
	}
	if !start.After(now.Add(p.MinLead)) {
		return &ValidationError{Reason: "booking time is in the past or starts too soon"}
	}
	m, _ := TimeToMinutes(clock)
	if hour := m / 60; hour < p.OpenHour || hour >= p.CloseHour {
		return &ValidationError{Reason: fmt.Sprintf("booking must start between %02d:00 and %02d:00", p.OpenHour, p.CloseHour)}
	}
	if days := int(start.Sub(now).Hours() / 24); days > p.MaxAdvanceDays {
		return &ValidationError{Reason: fmt.Sprintf("booking is %d days ahead; at most %d days allowed", days, p.MaxAdvanceDays)}
	}
	return nil
}
