package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/court-booking/internal/model"
)

func TestSummarize(t *testing.T) {
	bookings := []model.Booking{
		{StartTime: "10:00", Status: model.StatusActive, Price: 25},
		{StartTime: "10:00", Status: model.StatusActive, Price: 25},
		{StartTime: "11:00", Status: model.StatusActive, Price: 30},
		{StartTime: "10:00", Status: model.StatusCancelled, Price: 25},
	}
	st := summarize(bookings)

	assert.Equal(t, 4, st.TotalBookings)
	assert.Equal(t, 3, st.ActiveBookings)
	assert.Equal(t, 1, st.CancelledBookings)
	assert.Equal(t, 80.0, st.TotalRevenue)
	assert.Equal(t, 25.0, st.CancellationRate)
	assert.Equal(t, []PopularTime{{"10:00", 2}, {"11:00", 1}}, st.PopularTimes)
}

func TestSummarizeKeepsTopFive(t *testing.T) {
	var bookings []model.Booking
	for i, clock := range []string{"08:00", "09:00", "10:00", "11:00", "12:00", "13:00", "14:00"} {
		for n := 0; n <= i%3; n++ {
			bookings = append(bookings, model.Booking{StartTime: clock, Status: model.StatusActive, Price: 10})
		}
	}
	st := summarize(bookings)

	require.Len(t, st.PopularTimes, 5)
	assert.Equal(t, PopularTime{"10:00", 3}, st.PopularTimes[0])
	assert.Equal(t, PopularTime{"13:00", 3}, st.PopularTimes[1])
	assert.Equal(t, PopularTime{"09:00", 2}, st.PopularTimes[2])
}

func TestSummarizeEmpty(t *testing.T) {
	st := summarize(nil)
	assert.Zero(t, st.TotalBookings)
	assert.Zero(t, st.CancellationRate)
	assert.NotNil(t, st.PopularTimes)
}

func TestStatisticsFiltersByUserAndRange(t *testing.T) {
	store := &memStore{}
	store.seed("a", "A1", "u-1", "2025-06-01", "09:00", "10:00")
	store.seed("b", "A1", "u-1", "2025-06-20", "09:00", "10:00")
	store.seed("c", "A1", "u-2", "2025-06-20", "10:00", "11:00")
	svc := newTestService(store)

	st, err := svc.Statistics(context.Background(), StatisticsFilter{UserID: "u-1", DateFrom: "2025-06-10"})
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalBookings)

	store.failQuery = errStoreDown
	_, err = svc.Statistics(context.Background(), StatisticsFilter{})
	var se *StorageError
	assert.ErrorAs(t, err, &se)
}
