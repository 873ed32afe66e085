package service

import (
	"context"
	"sort"

	"github.com/iliyamo/court-booking/internal/model"
)

// StatisticsFilter narrows the bookings included in Statistics.  Dates are
// inclusive "YYYY-MM-DD" bounds; empty fields are ignored.
type StatisticsFilter struct {
	UserID   string
	DateFrom string
	DateTo   string
}

// PopularTime is a start time and how many active bookings use it.
type PopularTime struct {
	Time  string `json:"time"`
	Count int    `json:"count"`
}

type Statistics struct {
	TotalBookings     int           `json:"total_bookings"`
	ActiveBookings    int           `json:"active_bookings"`
	CancelledBookings int           `json:"cancelled_bookings"`
	TotalRevenue      float64       `json:"total_revenue"`
	PopularTimes      []PopularTime `json:"popular_times"`
	CancellationRate  float64       `json:"cancellation_rate"`
}

const popularTimesLimit = 5

// Statistics aggregates bookings of every status matching f.  Revenue only
// counts active bookings; the cancellation rate is a percentage.
func (s *BookingService) Statistics(ctx context.Context, f StatisticsFilter) (*Statistics, error) {
	bookings, err := s.store.Query(ctx, model.BookingFilter{
		UserID:   f.UserID,
		DateFrom: f.DateFrom,
		DateTo:   f.DateTo,
	})
	if err != nil {
		return nil, &StorageError{Op: "query bookings", Err: err}
	}
	return summarize(bookings), nil
}

func summarize(bookings []model.Booking) *Statistics {
	st := &Statistics{TotalBookings: len(bookings), PopularTimes: make([]PopularTime, 0)}
	counts := map[string]int{}
	for _, b := range bookings {
		switch b.Status {
		case model.StatusActive:
			st.ActiveBookings++
			st.TotalRevenue += b.Price
			counts[b.StartTime]++
		case model.StatusCancelled:
			st.CancelledBookings++
		}
	}
	st.TotalRevenue = round2(st.TotalRevenue)
	if st.TotalBookings > 0 {
		st.CancellationRate = round2(float64(st.CancelledBookings) / float64(st.TotalBookings) * 100)
	}

	for t, n := range counts {
		st.PopularTimes = append(st.PopularTimes, PopularTime{Time: t, Count: n})
	}
	sort.Slice(st.PopularTimes, func(i, j int) bool {
		a, b := st.PopularTimes[i], st.PopularTimes[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Time < b.Time
	})
	if len(st.PopularTimes) > popularTimesLimit {
		st.PopularTimes = st.PopularTimes[:popularTimesLimit]
	}
	return st
}
