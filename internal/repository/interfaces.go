package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pledge-callcenter/internal/domain"
)

// Lookups that find nothing return sql.ErrNoRows; callers translate it into
// a business error.

// DonorRepository defines the interface for donor data operations
type DonorRepository interface {
	// GetByID retrieves a donor by ID
	GetByID(ctx context.Context, donorID int64) (*domain.Donor, error)
}

// PlanRepository defines the interface for payment plan data operations
type PlanRepository interface {
	// CreateWithInstallments stores a plan and its installments in one
	// transaction. It fails with errors.ErrActivePlanExists when the donor
	// already has an active plan.
	CreateWithInstallments(ctx context.Context, plan *domain.PaymentPlan, installments []*domain.PlanInstallment) error

	// GetByID retrieves a plan by ID
	GetByID(ctx context.Context, planID uuid.UUID) (*domain.PaymentPlan, error)

	// GetInstallments retrieves a plan's installments ordered by number
	GetInstallments(ctx context.Context, planID uuid.UUID) ([]*domain.PlanInstallment, error)

	// UpdateStatus changes a plan's status
	UpdateStatus(ctx context.Context, planID uuid.UUID, status string) error

	// MarkOverdue flags pending installments of active plans due before the given day
	MarkOverdue(ctx context.Context, before time.Time) (int64, error)

	// GetUpcomingInstallments lists pending, not yet reminded installments of
	// active plans due in [from, to]
	GetUpcomingInstallments(ctx context.Context, from, to time.Time) ([]*domain.UpcomingInstallment, error)

	// MarkReminded records that a reminder went out for an installment
	MarkReminded(ctx context.Context, installmentID uuid.UUID, at time.Time) error

	// CountCreatedByAgent counts plans an agent created in [from, to)
	CountCreatedByAgent(ctx context.Context, agentID int64, from, to time.Time) (int, error)
}

// TemplateRepository defines the interface for message template lookups
type TemplateRepository interface {
	// GetByKey retrieves an active template by key
	GetByKey(ctx context.Context, key string) (*domain.MessageTemplate, error)
}

// CallQueueRepository defines the interface for the call queue
type CallQueueRepository interface {
	// List scans the queue ordered by priority DESC, next attempt ASC
	List(ctx context.Context, filter domain.QueueFilter, now time.Time) ([]*domain.CallQueueEntry, error)

	// GetByID retrieves a queue entry
	GetByID(ctx context.Context, entryID int64) (*domain.CallQueueEntry, error)

	// RecordCall updates the entry and appends the call log in one
	// transaction. entry.Attempts must be one more than the stored count;
	// otherwise errors.ErrQueueEntryConflict is returned and nothing is written.
	RecordCall(ctx context.Context, entry *domain.CallQueueEntry, log *domain.CallLog) error

	// CountOpen counts entries still waiting for an agent
	CountOpen(ctx context.Context, agentID int64) (int, error)

	// CountCallbacksDue counts callback appointments in [from, to)
	CountCallbacksDue(ctx context.Context, agentID int64, from, to time.Time) (int, error)

	// OutcomeCounts aggregates an agent's calls in [from, to) by outcome
	OutcomeCounts(ctx context.Context, agentID int64, from, to time.Time) ([]domain.OutcomeCount, error)
}

// MessageLogRepository defines the interface for the notification audit log
type MessageLogRepository interface {
	// Create appends an audit record
	Create(ctx context.Context, log *domain.MessageLog) error
}
