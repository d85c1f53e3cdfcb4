package jobs

import (
	"context"
	"time"

	"reservas/services/logger"

	"github.com/robfig/cron/v3"
)

// PendingExpirer cancels pending reservations whose range is over
type PendingExpirer interface {
	ExpirePending(ctx context.Context) (int64, error)
}

// ExpirySchedule runs the pending expiry every night at 00:05
const ExpirySchedule = "5 0 * * *"

// ExpirePendingJob is the body of the nightly expiry
func ExpirePendingJob(expirer PendingExpirer, log logger.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		n, err := expirer.ExpirePending(ctx)
		if err != nil {
			log.Error("Pending expiry failed: %v", err)
			return
		}
		log.Info("Pending expiry cancelled %d reservations", n)
	}
}

// InitCronJobs registers the scheduled jobs and starts the scheduler. A nil
// expirer leaves the expiry job off.
func InitCronJobs(c *cron.Cron, expirer PendingExpirer, log logger.Logger) error {
	if expirer != nil {
		if _, err := c.AddFunc(ExpirySchedule, ExpirePendingJob(expirer, log)); err != nil {
			return err
		}
	}

	c.Start()
	log.Info("Cron jobs initialized, %d scheduled", len(c.Entries()))
	return nil
}
