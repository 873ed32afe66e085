// Package jobs runs periodic housekeeping on a gocron scheduler.
package jobs

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/court-booking/internal/metrics"
)

// LockPurger removes court/day lock rows older than a date.
type LockPurger interface {
	PurgeDayLocksBefore(ctx context.Context, date string) (int64, error)
}

// NewScheduler returns a scheduler, not yet started, that purges stale
// court/day locks daily at 03:00 in loc.
func NewScheduler(purger LockPurger, loc *time.Location, m *metrics.Metrics, log *logrus.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	_, err = s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := PurgeStaleLocks(ctx, purger, time.Now().In(loc), m, log); err != nil {
				log.WithError(err).Error("purge court day locks failed")
			}
		}),
		gocron.WithName("purge-court-day-locks"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}
	return s, nil
}

// PurgeStaleLocks deletes lock rows for dates before now's date.  Bookings
// in the past can no longer be created, so their locks are dead weight.
func PurgeStaleLocks(ctx context.Context, purger LockPurger, now time.Time, m *metrics.Metrics, log *logrus.Logger) (int64, error) {
	today := now.Format("2006-01-02")
	n, err := purger.PurgeDayLocksBefore(ctx, today)
	if err != nil {
		return 0, err
	}
	m.Purged(n)
	log.WithFields(logrus.Fields{"before": today, "removed": n}).Info("purged court day locks")
	return n, nil
}
