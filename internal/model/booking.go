package model

import "time"

// BookingStatus is the lifecycle state of a booking.  The only legal
// transition is StatusActive -> StatusCancelled.
type BookingStatus string

const (
	StatusActive    BookingStatus = "active"
	StatusCancelled BookingStatus = "cancelled"
)

// BookingType distinguishes member-only bookings from public ones.  Public
// bookings require an elevated permission.
type BookingType string

const (
	TypePrivate BookingType = "private"
	TypePublic  BookingType = "public"
)

// Valid reports whether t is one of the known booking types.
func (t BookingType) Valid() bool {
	return t == TypePrivate || t == TypePublic
}

// Booking is a single reservation of one court on one date.
//
// Fields:
//
//	ID        – UUID assigned at creation, immutable.
//	CourtID   – opaque court identifier.
//	UserID    – member who created the booking.
//	Date      – calendar date, "YYYY-MM-DD".
//	StartTime – "HH:MM", inclusive.
//	EndTime   – "HH:MM", exclusive; StartTime + duration, same day.
//	Type      – private or public.
//	Notes     – free text; series bookings carry their series label here.
//	Status    – active or cancelled (soft delete).
//	Price     – fixed at creation, two decimals.
//	CreatedAt – creation timestamp (UTC).
type Booking struct {
	ID        string        `json:"id"`
	CourtID   string        `json:"court_id"`
	UserID    string        `json:"user_id"`
	Date      string        `json:"date"`
	StartTime string        `json:"start_time"`
	EndTime   string        `json:"end_time"`
	Type      BookingType   `json:"booking_type"`
	Notes     string        `json:"notes"`
	Status    BookingStatus `json:"status"`
	Price     float64       `json:"price"`
	CreatedAt time.Time     `json:"created_at"`
}

// BookingFilter narrows a booking query.  Zero values mean "no constraint".
// DateFrom and DateTo are inclusive bounds on Date.
type BookingFilter struct {
	ID       string
	CourtID  string
	CourtIDs []string
	Date     string
	UserID   string
	Status   BookingStatus
	DateFrom string
	DateTo   string
}
