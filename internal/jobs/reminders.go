// Package jobs holds the periodic payment plan maintenance tasks run by the
// scheduler.
package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pledge-callcenter/internal/config"
	"github.com/segyhp/pledge-callcenter/internal/domain"
	"github.com/segyhp/pledge-callcenter/internal/messaging"
	"github.com/segyhp/pledge-callcenter/internal/repository"
	"github.com/segyhp/pledge-callcenter/pkg/metrics"
	"github.com/segyhp/pledge-callcenter/pkg/utils"

	"github.com/sirupsen/logrus"
)

// ReminderSummary counts what one reminder run did.
type ReminderSummary struct {
	Due     int `json:"due"`
	Queued  int `json:"queued"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type PlanJobs struct {
	plans       repository.PlanRepository
	messageLogs repository.MessageLogRepository
	dispatcher  messaging.Dispatcher
	metrics     *metrics.Metrics
	config      config.ReminderConfig
	location    *time.Location
	log         logrus.FieldLogger
}

func NewPlanJobs(
	plans repository.PlanRepository,
	messageLogs repository.MessageLogRepository,
	dispatcher messaging.Dispatcher,
	metrics *metrics.Metrics,
	cfg *config.Config,
	log logrus.FieldLogger,
) *PlanJobs {
	return &PlanJobs{
		plans:       plans,
		messageLogs: messageLogs,
		dispatcher:  dispatcher,
		metrics:     metrics,
		config:      cfg.Reminders,
		location:    cfg.Location(),
		log:         log,
	}
}

// today is the calendar day of now in the scheduler timezone, as a
// UTC midnight comparable with stored due dates.
func (j *PlanJobs) today(now time.Time) time.Time {
	y, m, d := now.In(j.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MarkOverdueInstallments flags pending installments due before today
func (j *PlanJobs) MarkOverdueInstallments(ctx context.Context, now time.Time) (int64, error) {
	today := j.today(now)

	count, err := j.plans.MarkOverdue(ctx, today)
	if err != nil {
		return 0, err
	}

	j.log.WithFields(logrus.Fields{
		"before": utils.FormatDate(today),
		"marked": count,
	}).Info("overdue installments updated")
	return count, nil
}

// SendUpcomingReminders sends one reminder per donor for the earliest
// installment due within the configured window. An installment is reminded
// once; failed sends are retried on the next run.
func (j *PlanJobs) SendUpcomingReminders(ctx context.Context, now time.Time) (*ReminderSummary, error) {
	from := j.today(now)
	to := utils.AddDays(from, j.config.DaysAhead)

	upcoming, err := j.plans.GetUpcomingInstallments(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &ReminderSummary{Due: len(upcoming)}
	reminded := make(map[int64]bool, len(upcoming))

	for _, inst := range upcoming {
		if reminded[inst.DonorID] {
			summary.Skipped++
			continue
		}
		reminded[inst.DonorID] = true

		result := j.dispatcher.SendFromTemplate(ctx, domain.SendRequest{
			TemplateKey: j.config.TemplateKey,
			RecipientID: inst.DonorID,
			Variables: map[string]string{
				"amount":      inst.DueAmount.StringFixed(2),
				"due_date":    utils.FormatDate(inst.DueDate),
				"installment": strconv.Itoa(inst.InstallmentNumber),
			},
			Source: j.config.RemindersSource,
			Queue:  true,
		})

		status := j.audit(ctx, inst, result)
		j.metrics.RemindersProcessed.WithLabelValues(status).Inc()

		switch status {
		case domain.MessageStatusQueued:
			summary.Queued++
			j.markReminded(ctx, inst, now)
		case domain.MessageStatusSent:
			summary.Sent++
			j.markReminded(ctx, inst, now)
		default:
			summary.Failed++
			j.log.WithFields(logrus.Fields{
				"donor_id":       inst.DonorID,
				"installment_id": inst.ID,
				"error":          result.Error,
			}).Warn("reminder failed")
		}
	}

	j.log.WithFields(logrus.Fields{
		"from":    utils.FormatDate(from),
		"to":      utils.FormatDate(to),
		"due":     summary.Due,
		"queued":  summary.Queued,
		"sent":    summary.Sent,
		"failed":  summary.Failed,
		"skipped": summary.Skipped,
	}).Info("payment reminders processed")

	return summary, nil
}

func (j *PlanJobs) markReminded(ctx context.Context, inst *domain.UpcomingInstallment, now time.Time) {
	if err := j.plans.MarkReminded(ctx, inst.ID, now.UTC()); err != nil {
		j.log.WithError(err).WithField("installment_id", inst.ID).Error("failed to mark installment reminded")
	}
}

func (j *PlanJobs) audit(ctx context.Context, inst *domain.UpcomingInstallment, result *domain.SendResult) string {
	status := domain.MessageStatusSent
	switch {
	case !result.Success:
		status = domain.MessageStatusFailed
	case result.Queued:
		status = domain.MessageStatusQueued
	}

	entry := &domain.MessageLog{
		ID:                uuid.New(),
		DonorID:           inst.DonorID,
		TemplateKey:       j.config.TemplateKey,
		Source:            j.config.RemindersSource,
		Channel:           result.Channel,
		Language:          string(result.Language),
		TransportFallback: result.IsFallback,
		Status:            status,
		Error:             result.Error,
		ProviderMessageID: result.MessageID,
		CreatedAt:         time.Now().UTC(),
	}
	if err := j.messageLogs.Create(ctx, entry); err != nil {
		j.log.WithError(err).WithField("donor_id", inst.DonorID).Error("failed to write reminder log")
	}
	return status
}
