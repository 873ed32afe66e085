package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/court-booking/internal/config"
)

func TestBookingSettings(t *testing.T) {
	s, err := bookingSettings(config.BookingConfig{
		OpenHour:       8,
		CloseHour:      20,
		MinLead:        10 * time.Minute,
		MaxAdvanceDays: 14,
		CancelMinLead:  2 * time.Hour,
		BaseRate:       30,
		PriceTiers:     map[string]float64{"A1": 1.1},
		SlotMinutes:    30,
		Timezone:       "UTC",
	})
	require.NoError(t, err)
	assert.Equal(t, 8, s.Policy.OpenHour)
	assert.Equal(t, time.UTC, s.Policy.Location)
	assert.Equal(t, 33.0, s.Pricer.CalculatePrice(60, "A1"))
	assert.Equal(t, 30, s.SlotMinutes)
	assert.Equal(t, 2*time.Hour, s.CancelMinLead)

	_, err = bookingSettings(config.BookingConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}
