package cron

import (
	"context"

	"github.com/Adilet23/Friend_Circle/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartSweepCron schedules the hourly friendship consistency sweep.
func StartSweepCron(sweeper *jobs.ConsistencySweeper) {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		if _, err := sweeper.RunSweep(context.Background()); err != nil {
			logrus.WithError(err).Error("Consistency sweep failed")
		}
	})

	c.Start()
}
