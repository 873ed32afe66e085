package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/court-booking/internal/model"
)

// MaxSeriesWeeks bounds WeekCount: one year of weekly bookings.
const MaxSeriesWeeks = 52

// SeriesRequest asks for the same court and time once a week for WeekCount
// consecutive weeks starting at StartDate.
type SeriesRequest struct {
	CourtID    string
	StartDate  string
	Time       string
	Duration   int
	Type       model.BookingType
	WeekCount  int
	SeriesName string
	Notes      string
	UserID     string
}

// WeekOutcome is the result for one week of a series.  Week is 1-based.
// Exactly one of Booking and Reason is set.
type WeekOutcome struct {
	Week    int            `json:"week"`
	Date    string         `json:"date"`
	Booking *model.Booking `json:"booking,omitempty"`
	Reason  string         `json:"reason,omitempty"`
}

// OK reports whether the week was booked.
func (o WeekOutcome) OK() bool { return o.Booking != nil }

// SeriesResult summarises a series.  Weeks are independent: a week that
// fails does not roll back the weeks that succeeded.
type SeriesResult struct {
	SeriesName  string        `json:"series_name"`
	CourtID     string        `json:"court_id"`
	StartDate   string        `json:"start_date"`
	WeekCount   int           `json:"week_count"`
	Created     []WeekOutcome `json:"created"`
	Failed      []WeekOutcome `json:"failed"`
	Successful  int           `json:"successful"`
	FailedCount int           `json:"failed_count"`
}

func (r SeriesRequest) missingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		empty bool
	}{
		{"court_id", r.CourtID == ""},
		{"start_date", r.StartDate == ""},
		{"time", r.Time == ""},
		{"duration", r.Duration == 0},
		{"booking_type", r.Type == ""},
		{"week_count", r.WeekCount == 0},
		{"series_name", r.SeriesName == ""},
		{"user_id", r.UserID == ""},
	} {
		if f.empty {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// CreateSeriesBooking books each week in order through CreateBooking, so
// every occurrence gets the full validation, pricing and atomic insert of
// a single booking.  If no week could be booked the result is still
// returned together with a *ConflictError listing every failure.
func (s *BookingService) CreateSeriesBooking(ctx context.Context, req SeriesRequest) (*SeriesResult, error) {
	if missing := req.missingFields(); len(missing) > 0 {
		return nil, &ValidationError{Reason: "missing required fields", Missing: missing}
	}
	if req.WeekCount < 0 || req.WeekCount > MaxSeriesWeeks {
		return nil, &ValidationError{Reason: fmt.Sprintf("week_count must be between 1 and %d", MaxSeriesWeeks)}
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, &ValidationError{Reason: "start_date must be YYYY-MM-DD", Err: err}
	}

	res := &SeriesResult{
		SeriesName: req.SeriesName,
		CourtID:    req.CourtID,
		StartDate:  req.StartDate,
		WeekCount:  req.WeekCount,
		Created:    make([]WeekOutcome, 0, req.WeekCount),
		Failed:     make([]WeekOutcome, 0),
	}
	var stopped error
	for w := 0; w < req.WeekCount; w++ {
		if stopped = ctx.Err(); stopped != nil {
			break
		}
		out := s.bookWeek(ctx, req, start.AddDate(0, 0, 7*w).Format(dateLayout), w)
		s.metrics.SeriesWeek(out.OK())
		if out.OK() {
			res.Created = append(res.Created, out)
		} else {
			res.Failed = append(res.Failed, out)
		}
	}
	res.Successful = len(res.Created)
	res.FailedCount = len(res.Failed)

	// Weeks already committed stay booked, so the caller still gets them.
	if stopped != nil {
		return res, stopped
	}

	s.log.WithFields(logrus.Fields{
		"series":     req.SeriesName,
		"court_id":   req.CourtID,
		"user_id":    req.UserID,
		"successful": res.Successful,
		"failed":     res.FailedCount,
	}).Info("series processed")

	if res.Successful == 0 {
		return res, &ConflictError{
			Reason:   "no bookings possible: all dates are taken or unavailable",
			Failures: res.Failed,
		}
	}
	return res, nil
}

func (s *BookingService) bookWeek(ctx context.Context, req SeriesRequest, date string, week int) WeekOutcome {
	out := WeekOutcome{Week: week + 1, Date: date}

	free, err := s.checker.CheckAvailability(ctx, req.CourtID, date, req.Time, req.Duration)
	if err != nil {
		out.Reason = err.Error()
		return out
	}
	if !free {
		out.Reason = "not available"
		return out
	}

	b, err := s.CreateBooking(ctx, CreateBookingRequest{
		CourtID:  req.CourtID,
		Date:     date,
		Time:     req.Time,
		Duration: req.Duration,
		Type:     req.Type,
		UserID:   req.UserID,
		Notes:    seriesNote(req.SeriesName, week, req.WeekCount, req.Notes),
	})
	if err != nil {
		out.Reason = err.Error()
		return out
	}
	out.Booking = b
	return out
}

// seriesNote labels an occurrence, e.g. "Tuesday league - Week 2/8 | bring balls".
func seriesNote(name string, week, total int, notes string) string {
	n := fmt.Sprintf("%s - Week %d/%d", name, week+1, total)
	if notes != "" {
		n += " | " + notes
	}
	return n
}
