package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/court-booking/internal/model"
	"github.com/iliyamo/court-booking/internal/queue"
)

func leagueRequest(weeks int) SeriesRequest {
	return SeriesRequest{
		CourtID:    "A1",
		StartDate:  "2025-06-15",
		Time:       "13:00",
		Duration:   60,
		Type:       model.TypePrivate,
		WeekCount:  weeks,
		SeriesName: "League",
		UserID:     "u-1",
	}
}

func TestSeriesPartialSuccess(t *testing.T) {
	store := &memStore{}
	store.seed("taken", "A1", "u-9", "2025-06-22", "13:00", "14:00")
	svc := newTestService(store)

	res, err := svc.CreateSeriesBooking(context.Background(), leagueRequest(4))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Successful)
	assert.Equal(t, 1, res.FailedCount)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 2, res.Failed[0].Week)
	assert.Equal(t, "2025-06-22", res.Failed[0].Date)
	assert.Equal(t, "not available", res.Failed[0].Reason)
	assert.Nil(t, res.Failed[0].Booking)

	dates := make([]string, 0, 3)
	for _, o := range res.Created {
		require.True(t, o.OK())
		dates = append(dates, o.Booking.Date)
	}
	assert.Equal(t, []string{"2025-06-15", "2025-06-29", "2025-07-06"}, dates)
	assert.Equal(t, "League - Week 1/4", res.Created[0].Booking.Notes)
	assert.Equal(t, "League - Week 4/4", res.Created[2].Booking.Notes)

	assert.Equal(t, 4, store.activeCount(), "three new bookings plus the pre-existing one")
}

func TestSeriesNotesCarryUserNotes(t *testing.T) {
	svc := newTestService(&memStore{})
	req := leagueRequest(1)
	req.Notes = "bring balls"

	res, err := svc.CreateSeriesBooking(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "League - Week 1/1 | bring balls", res.Created[0].Booking.Notes)
}

func TestSeriesBeyondHorizonRecordsReasons(t *testing.T) {
	svc := newTestService(&memStore{})

	res, err := svc.CreateSeriesBooking(context.Background(), leagueRequest(8))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Successful)
	assert.Equal(t, 4, res.FailedCount)
	for _, o := range res.Failed {
		assert.Contains(t, o.Reason, "days ahead")
	}
}

func TestSeriesWithNoSuccessIsConflict(t *testing.T) {
	store := &memStore{}
	for _, d := range []string{"2025-06-15", "2025-06-22"} {
		store.seed("taken-"+d, "A1", "u-9", d, "12:30", "13:30")
	}
	svc := newTestService(store)

	res, err := svc.CreateSeriesBooking(context.Background(), leagueRequest(2))
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Len(t, ce.Failures, 2)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Successful)
	assert.Equal(t, 2, store.activeCount())
}

func TestSeriesValidation(t *testing.T) {
	svc := newTestService(&memStore{})
	var ve *ValidationError

	_, err := svc.CreateSeriesBooking(context.Background(), SeriesRequest{CourtID: "A1"})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Missing, "series_name")

	req := leagueRequest(-1)
	_, err = svc.CreateSeriesBooking(context.Background(), req)
	assert.ErrorAs(t, err, &ve)

	req = leagueRequest(2)
	req.StartDate = "15/06/2025"
	_, err = svc.CreateSeriesBooking(context.Background(), req)
	assert.ErrorAs(t, err, &ve)
}

func TestSeriesRejectsTooManyWeeks(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store)
	var ve *ValidationError

	for _, weeks := range []int{MaxSeriesWeeks + 1, math.MaxInt} {
		res, err := svc.CreateSeriesBooking(context.Background(), leagueRequest(weeks))
		assert.ErrorAs(t, err, &ve, "weeks=%d", weeks)
		assert.Nil(t, res)
	}
	assert.Equal(t, 0, store.activeCount())
}

// cancelOnPublish cancels the series context as soon as the first booking
// is announced.
type cancelOnPublish struct {
	cancel context.CancelFunc
}

func (p cancelOnPublish) Publish(context.Context, queue.BookingEvent) error {
	p.cancel()
	return nil
}

func TestSeriesCancelledKeepsCommittedWeeks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &memStore{}
	svc := newTestService(store, func(d *Deps) { d.Events = cancelOnPublish{cancel: cancel} })

	res, err := svc.CreateSeriesBooking(ctx, leagueRequest(4))
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Successful)
	require.Len(t, res.Created, 1)
	assert.Equal(t, "2025-06-15", res.Created[0].Booking.Date)
	assert.Equal(t, 1, store.activeCount())
}
