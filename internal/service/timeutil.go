package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/court-booking/internal/model"
)

// Interval is a half-open [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether a and b share at least one minute.  Intervals
// that only touch (one ends where the other starts) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start < b.End && a.End > b.Start
}

// maxClockMinutes is the latest time of day that still fits "HH:MM", the
// shape the bookings table stores.
const maxClockMinutes = 99*60 + 59

// TimeToMinutes converts "HH:MM" into minutes since midnight.  A trailing
// ":SS" component is accepted and ignored.  The hour is not capped at 23
// because end times past midnight are stored unwrapped, but it must fit in
// two digits.
func TimeToMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &FormatError{Value: s}
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 99 {
		return 0, &FormatError{Value: s}
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, &FormatError{Value: s}
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec < 0 || sec > 59 {
			return 0, &FormatError{Value: s}
		}
	}
	return h*60 + m, nil
}

// MinutesToTime formats minutes since midnight as zero-padded "HH:MM".
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutesToTime returns start + minutes as "HH:MM".  There is no day
// wrap: 23:30 + 60 yields "24:30".  Results before midnight or past 99:59
// are errors.
func AddMinutesToTime(start string, minutes int) (string, error) {
	m, err := TimeToMinutes(start)
	if err != nil {
		return "", err
	}
	if minutes < -m {
		return "", fmt.Errorf("time %s minus %d minutes is before midnight", start, -minutes)
	}
	if minutes > maxClockMinutes-m {
		return "", fmt.Errorf("time %s plus %d minutes does not fit HH:MM", start, minutes)
	}
	return MinutesToTime(m + minutes), nil
}

// intervalOf returns [start, start+duration).  The duration must be positive
// and the end must fit "HH:MM"; the comparisons avoid int overflow.
func intervalOf(start string, duration int) (Interval, error) {
	m, err := TimeToMinutes(start)
	if err != nil {
		return Interval{}, err
	}
	if duration <= 0 || duration > maxClockMinutes-m {
		return Interval{}, fmt.Errorf("duration of %d minutes from %s is out of range", duration, start)
	}
	return Interval{Start: m, End: m + duration}, nil
}

func bookingInterval(b model.Booking) (Interval, error) {
	start, err := TimeToMinutes(b.StartTime)
	if err != nil {
		return Interval{}, err
	}
	end, err := TimeToMinutes(b.EndTime)
	if err != nil {
		return Interval{}, err
	}
	return Interval{Start: start, End: end}, nil
}
