package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/pledge-callcenter/internal/app"
	"github.com/segyhp/pledge-callcenter/internal/jobs"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	lockPrefix = "callcenter:lock:"
	lockTTL    = 15 * time.Minute
	jobTimeout = 10 * time.Minute
)

func main() {
	a, err := app.New("callcenter-scheduler")
	if err != nil {
		logrus.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()

	a.Log.Info("Starting payment plan scheduler...")

	planJobs := jobs.NewPlanJobs(a.Repos.Plans, a.Repos.MessageLogs, a.Dispatcher, a.Metrics, a.Config, a.Log.WithField("component", "jobs"))

	var locker jobs.Locker
	if a.Redis != nil {
		locker = jobs.NewRedisLocker(a.Redis, lockPrefix)
	}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(a.Config.Location()),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)

	if err := setupCronJobs(c, a, planJobs, locker); err != nil {
		a.Log.Fatalf("Failed to schedule jobs: %v", err)
	}

	c.Start()
	a.Log.WithField("timezone", a.Config.Reminders.Timezone).Info("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.Log.Info("Shutting down scheduler...")
	<-c.Stop().Done()
	a.Log.Info("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, a *app.App, planJobs *jobs.PlanJobs, locker jobs.Locker) error {
	log := a.Log.WithField("component", "scheduler")

	// Flag installments that passed their due date without payment
	_, err := c.AddFunc(a.Config.Reminders.OverdueCron, func() {
		runJob(locker, "mark_overdue", log, func(ctx context.Context) error {
			marked, err := planJobs.MarkOverdueInstallments(ctx, time.Now())
			if err != nil {
				return err
			}
			log.WithField("installments", marked).Info("Marked overdue installments")
			return nil
		})
	})
	if err != nil {
		return err
	}

	// Remind donors about installments due within the reminder window
	_, err = c.AddFunc(a.Config.Reminders.ReminderCron, func() {
		runJob(locker, "send_reminders", log, func(ctx context.Context) error {
			summary, err := planJobs.SendUpcomingReminders(ctx, time.Now())
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"due":     summary.Due,
				"queued":  summary.Queued,
				"sent":    summary.Sent,
				"failed":  summary.Failed,
				"skipped": summary.Skipped,
			}).Info("Payment reminders processed")
			return nil
		})
	})
	if err != nil {
		return err
	}

	log.Info("Cron jobs scheduled successfully")
	return nil
}

func runJob(locker jobs.Locker, name string, log logrus.FieldLogger, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log.WithField("job", name).Info("Running job")
	if err := jobs.RunLocked(ctx, locker, name, lockTTL, log, fn); err != nil {
		log.WithError(err).WithField("job", name).Error("Job failed")
	}
}
