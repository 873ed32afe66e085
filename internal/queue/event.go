// Package queue defines the booking lifecycle events exchanged over
// RabbitMQ, plus the publisher and the background consumer that handle them.
package queue

import (
	"time"

	"github.com/iliyamo/court-booking/internal/model"
)

// Event names carried in BookingEvent.Event.
const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published whenever a booking is created or cancelled.
// It carries enough of the booking for downstream consumers to log,
// notify or aggregate without querying the primary database.
type BookingEvent struct {
	Event       string  `json:"event"`
	BookingID   string  `json:"booking_id"`
	CourtID     string  `json:"court_id"`
	UserID      string  `json:"user_id"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	BookingType string  `json:"booking_type"`
	Status      string  `json:"status"`
	Price       float64 `json:"price"`
	Notes       string  `json:"notes,omitempty"`
	OccurredAt  string  `json:"occurred_at"`
}

// NewBookingEvent builds the event payload for b.  at is formatted as
// RFC 3339 in UTC.
func NewBookingEvent(name string, b *model.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Event:       name,
		BookingID:   b.ID,
		CourtID:     b.CourtID,
		UserID:      b.UserID,
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		BookingType: string(b.Type),
		Status:      string(b.Status),
		Price:       b.Price,
		Notes:       b.Notes,
		OccurredAt:  at.UTC().Format(time.RFC3339),
	}
}
