// Package service implements the court booking engine: time and policy
// rules, conflict detection, pricing, the single-booking lifecycle and
// weekly series.  It depends on storage only through BookingStore, so the
// same rules run against MySQL in production and an in-memory store in
// tests.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/court-booking/internal/metrics"
	"github.com/iliyamo/court-booking/internal/model"
	"github.com/iliyamo/court-booking/internal/queue"
	"github.com/iliyamo/court-booking/internal/repository"
)

// BookingStore persists bookings.  Insert must be atomic with respect to
// overlap: it returns repository.ErrConflict instead of storing a booking
// that overlaps an active one on the same court and date.
type BookingStore interface {
	Insert(ctx context.Context, b *model.Booking) error
	Query(ctx context.Context, f model.BookingFilter) ([]model.Booking, error)
	// UpdateStatus moves an active booking to status.  It returns
	// repository.ErrNotFound for unknown ids and repository.ErrNotActive
	// when the booking is no longer active.
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error)
}

// CourtDirectory resolves court configuration.
type CourtDirectory interface {
	GetCourt(ctx context.Context, id string) (*model.Court, error)
	CourtIDsByClub(ctx context.Context, clubID string) ([]string, error)
}

// EventPublisher receives booking lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// Settings are the tunable business rules.
type Settings struct {
	Policy Policy
	Pricer Pricer
	// SlotMinutes is both the step and the length of enumerated slots.
	SlotMinutes int
	// CancelMinLead is the smallest allowed (start - now) for a
	// cancellation.  Negative values allow cancelling shortly after start.
	CancelMinLead time.Duration
}

// DefaultSettings mirrors the stock club rules: hourly slots and
// cancellation until one hour after start.
func DefaultSettings() Settings {
	return Settings{
		Policy:        DefaultPolicy(),
		Pricer:        DefaultPricer(),
		SlotMinutes:   60,
		CancelMinLead: -time.Hour,
	}
}

// Deps are the collaborators of a BookingService.  Only Store is required.
type Deps struct {
	Store   BookingStore
	Courts  CourtDirectory
	Events  EventPublisher
	Metrics *metrics.Metrics
	Log     *logrus.Logger
	Now     func() time.Time
}

// BookingService is the booking lifecycle manager.  It is safe for
// concurrent use; all mutable state lives in the store.
type BookingService struct {
	store    BookingStore
	courts   CourtDirectory
	events   EventPublisher
	metrics  *metrics.Metrics
	log      *logrus.Logger
	now      func() time.Time
	newID    func() string
	settings Settings
	checker  *AvailabilityChecker
}

// NewBookingService wires a BookingService.  It panics if d.Store is nil.
func NewBookingService(d Deps, s Settings) *BookingService {
	if d.Store == nil {
		panic("service: nil BookingStore passed to NewBookingService")
	}
	if d.Log == nil {
		d.Log = logrus.StandardLogger()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if s.SlotMinutes <= 0 {
		s.SlotMinutes = 60
	}
	return &BookingService{
		store:    d.Store,
		courts:   d.Courts,
		events:   d.Events,
		metrics:  d.Metrics,
		log:      d.Log,
		now:      d.Now,
		newID:    uuid.NewString,
		settings: s,
		checker:  NewAvailabilityChecker(d.Store),
	}
}

// CreateBookingRequest is the input to CreateBooking.  Duration is in
// minutes.
type CreateBookingRequest struct {
	CourtID  string
	Date     string
	Time     string
	Duration int
	Type     model.BookingType
	UserID   string
	Notes    string
}

func (r CreateBookingRequest) missingFields() []string {
	var missing []string
	if r.CourtID == "" {
		missing = append(missing, "court_id")
	}
	if r.Date == "" {
		missing = append(missing, "date")
	}
	if r.Time == "" {
		missing = append(missing, "time")
	}
	if r.Duration == 0 {
		missing = append(missing, "duration")
	}
	if r.Type == "" {
		missing = append(missing, "booking_type")
	}
	if r.UserID == "" {
		missing = append(missing, "user_id")
	}
	return missing
}

// CheckAvailability reports whether the court is free for
// [clock, clock+duration) on date.
func (s *BookingService) CheckAvailability(ctx context.Context, courtID, date, clock string, duration int) (bool, error) {
	return s.checker.CheckAvailability(ctx, courtID, date, clock, duration)
}

// CreateBooking validates, prices and stores a booking.  Validation
// failures return *ValidationError, a taken slot *ConflictError and store
// failures *StorageError.  The final overlap decision is made atomically
// by the store, so of two racing requests for the same slot exactly one
// succeeds.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*model.Booking, error) {
	if missing := req.missingFields(); len(missing) > 0 {
		return nil, &ValidationError{Reason: "missing required fields", Missing: missing}
	}
	if !req.Type.Valid() {
		return nil, &ValidationError{Reason: fmt.Sprintf("booking type must be %q or %q", model.TypePrivate, model.TypePublic)}
	}
	if req.Duration < 0 {
		return nil, &ValidationError{Reason: "duration must be positive"}
	}
	startMin, err := TimeToMinutes(req.Time)
	if err != nil {
		return nil, &ValidationError{Reason: "invalid booking time", Err: err}
	}
	start := MinutesToTime(startMin)
	end, err := AddMinutesToTime(start, req.Duration)
	if err != nil {
		return nil, &ValidationError{Reason: "duration runs past the end of the day", Err: err}
	}

	now := s.now()
	if err := s.settings.Policy.ValidateBookingTime(req.Date, start, now); err != nil {
		return nil, err
	}

	free, err := s.checker.CheckAvailability(ctx, req.CourtID, req.Date, start, req.Duration)
	if err != nil {
		return nil, err
	}
	if !free {
		s.metrics.Conflict()
		return nil, &ConflictError{Reason: "court is already booked at this time"}
	}

	b := &model.Booking{
		ID:        s.newID(),
		CourtID:   req.CourtID,
		UserID:    req.UserID,
		Date:      req.Date,
		StartTime: start,
		EndTime:   end,
		Type:      req.Type,
		Notes:     req.Notes,
		Status:    model.StatusActive,
		Price:     s.settings.Pricer.CalculatePrice(req.Duration, req.CourtID),
		CreatedAt: now.UTC(),
	}
	if err := s.store.Insert(ctx, b); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.metrics.Conflict()
			return nil, &ConflictError{Reason: "court is already booked at this time", Err: err}
		}
		return nil, &StorageError{Op: "insert booking", Err: err}
	}

	s.metrics.BookingCreated(string(b.Type))
	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"court_id":   b.CourtID,
		"user_id":    b.UserID,
		"date":       b.Date,
		"start":      b.StartTime,
		"end":        b.EndTime,
	}).Info("booking created")
	s.publish(ctx, queue.EventBookingCreated, b)
	return b, nil
}

// CancelBooking soft-deletes a booking owned by userID.  A booking that does
// not exist and one owned by someone else both yield *NotFoundError.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*model.Booking, error) {
	var missing []string
	if bookingID == "" {
		missing = append(missing, "booking_id")
	}
	if userID == "" {
		missing = append(missing, "user_id")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Reason: "missing required fields", Missing: missing}
	}

	found, err := s.store.Query(ctx, model.BookingFilter{ID: bookingID, UserID: userID})
	if err != nil {
		return nil, &StorageError{Op: "load booking", Err: err}
	}
	if len(found) == 0 {
		return nil, &NotFoundError{Resource: "booking", ID: bookingID}
	}
	b := found[0]
	if b.Status == model.StatusCancelled {
		return nil, &ValidationError{Reason: "booking is already cancelled"}
	}

	start, err := s.settings.Policy.StartOf(b.Date, b.StartTime)
	if err != nil {
		return nil, &StorageError{Op: "read booking " + b.ID, Err: err}
	}
	if until := start.Sub(s.now()); until < s.settings.CancelMinLead {
		return nil, &ValidationError{Reason: cancelRejection(s.settings.CancelMinLead)}
	}

	updated, err := s.store.UpdateStatus(ctx, b.ID, model.StatusCancelled)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Resource: "booking", ID: bookingID}
	}
	if errors.Is(err, repository.ErrNotActive) {
		// a concurrent cancel got there first
		return nil, &ValidationError{Reason: "booking is already cancelled"}
	}
	if err != nil {
		return nil, &StorageError{Op: "cancel booking", Err: err}
	}

	s.metrics.BookingCancelled()
	s.log.WithFields(logrus.Fields{"booking_id": updated.ID, "user_id": userID}).Info("booking cancelled")
	s.publish(ctx, queue.EventBookingCancelled, updated)
	return updated, nil
}

func cancelRejection(lead time.Duration) string {
	if lead < 0 {
		return fmt.Sprintf("booking can no longer be cancelled more than %s after its start", -lead)
	}
	return fmt.Sprintf("booking can only be cancelled up to %s before its start", lead)
}

// GetAvailableTimeSlots lists the free slot start times for a court on a
// date, ascending.  Slots step by SlotMinutes through opening hours, or
// through the court's bookable window when the court directory knows it.
func (s *BookingService) GetAvailableTimeSlots(ctx context.Context, courtID, date string) ([]string, error) {
	if courtID == "" || date == "" {
		return nil, &ValidationError{Reason: "court_id and date are required"}
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, &ValidationError{Reason: "date must be YYYY-MM-DD", Err: err}
	}
	busy, err := s.checker.activeIntervals(ctx, courtID, date)
	if err != nil {
		return nil, err
	}
	first, last := s.slotWindow(ctx, courtID)
	return freeSlots(first, last, s.settings.SlotMinutes, busy), nil
}

// slotWindow returns the inclusive range of allowed slot starts in minutes.
func (s *BookingService) slotWindow(ctx context.Context, courtID string) (first, last int) {
	p := s.settings.Policy
	first, last = p.OpenHour*60, p.CloseHour*60-1
	if s.courts == nil {
		return first, last
	}
	c, err := s.courts.GetCourt(ctx, courtID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.WithError(err).WithField("court_id", courtID).Warn("court lookup failed, using opening hours")
		}
		return first, last
	}
	from, errFrom := TimeToMinutes(c.BookableFrom)
	to, errTo := TimeToMinutes(c.BookableTo)
	if errFrom != nil || errTo != nil || to <= from {
		return first, last
	}
	return from, to - s.settings.SlotMinutes
}

func freeSlots(first, last, step int, busy []Interval) []string {
	slots := make([]string, 0)
	for t := first; t <= last; t += step {
		candidate := Interval{Start: t, End: t + step}
		taken := false
		for _, iv := range busy {
			if Overlaps(candidate, iv) {
				taken = true
				break
			}
		}
		if !taken {
			slots = append(slots, MinutesToTime(t))
		}
	}
	return slots
}

// ListBookingsByDate returns the active bookings on all of a club's courts
// for one date, ordered by start time then court.
func (s *BookingService) ListBookingsByDate(ctx context.Context, date, clubID string) ([]model.Booking, error) {
	if date == "" || clubID == "" {
		return nil, &ValidationError{Reason: "date and club_id are required"}
	}
	if s.courts == nil {
		return nil, &StorageError{Op: "resolve club courts", Err: errors.New("no court directory configured")}
	}
	ids, err := s.courts.CourtIDsByClub(ctx, clubID)
	if err != nil {
		return nil, &StorageError{Op: "resolve club courts", Err: err}
	}
	if len(ids) == 0 {
		return []model.Booking{}, nil
	}
	bookings, err := s.store.Query(ctx, model.BookingFilter{
		CourtIDs: ids,
		Date:     date,
		Status:   model.StatusActive,
	})
	if err != nil {
		return nil, &StorageError{Op: "query bookings", Err: err}
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].StartTime != bookings[j].StartTime {
			return bookings[i].StartTime < bookings[j].StartTime
		}
		return bookings[i].CourtID < bookings[j].CourtID
	})
	return bookings, nil
}

// ListUserBookings returns a member's active bookings, optionally from
// fromDate onwards, ordered by date then start time.
func (s *BookingService) ListUserBookings(ctx context.Context, userID, fromDate string) ([]model.Booking, error) {
	if userID == "" {
		return nil, &ValidationError{Reason: "missing required fields", Missing: []string{"user_id"}}
	}
	if fromDate != "" {
		if _, err := time.Parse(dateLayout, fromDate); err != nil {
			return nil, &ValidationError{Reason: "from_date must be YYYY-MM-DD", Err: err}
		}
	}
	bookings, err := s.store.Query(ctx, model.BookingFilter{
		UserID:   userID,
		Status:   model.StatusActive,
		DateFrom: fromDate,
	})
	if err != nil {
		return nil, &StorageError{Op: "query bookings", Err: err}
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		return bookings[i].StartTime < bookings[j].StartTime
	})
	return bookings, nil
}

// publish hands an event to the publisher.  Delivery failures never fail
// the booking operation that produced them.
func (s *BookingService) publish(ctx context.Context, name string, b *model.Booking) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, queue.NewBookingEvent(name, b, s.now())); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": name, "booking_id": b.ID}).Warn("booking event not delivered")
	}
}
