package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome is the technical result of a dial attempt.
type Outcome string

const (
	OutcomeNoAnswer          Outcome = "no_answer"
	OutcomeBusy              Outcome = "busy"
	OutcomeVoicemail         Outcome = "voicemail"
	OutcomeWrongNumber       Outcome = "wrong_number"
	OutcomeConnected         Outcome = "connected"
	OutcomeCallbackRequested Outcome = "callback_requested"
	OutcomeDoNotCall         Outcome = "do_not_call"
)

var outcomes = []Outcome{
	OutcomeNoAnswer, OutcomeBusy, OutcomeVoicemail, OutcomeWrongNumber,
	OutcomeConnected, OutcomeCallbackRequested, OutcomeDoNotCall,
}

// ConversationStage is how far a connected conversation progressed.
type ConversationStage string

const (
	StageNotStarted         ConversationStage = "not_started"
	StageIntroduction       ConversationStage = "introduction"
	StagePledgeConfirmation ConversationStage = "pledge_confirmation"
	StagePaymentDiscussion  ConversationStage = "payment_discussion"
	StagePlanAgreed         ConversationStage = "plan_agreed"
	StageClosing            ConversationStage = "closing"
	StageCompleted          ConversationStage = "completed"
)

var stages = []ConversationStage{
	StageNotStarted, StageIntroduction, StagePledgeConfirmation, StagePaymentDiscussion,
	StagePlanAgreed, StageClosing, StageCompleted,
}

// Disposition is the business result of a call.
type Disposition string

const (
	DispositionPledgeReconfirmed  Disposition = "pledge_reconfirmed"
	DispositionPaymentPlanCreated Disposition = "payment_plan_created"
	DispositionPaidInFull         Disposition = "paid_in_full"
	DispositionPromisedToPay      Disposition = "promised_to_pay"
	DispositionNeedsFollowUp      Disposition = "needs_followup"
	DispositionRefused            Disposition = "refused"
	DispositionUnreachable        Disposition = "unreachable"
	DispositionDoNotContact       Disposition = "do_not_contact"
)

var dispositions = []Disposition{
	DispositionPledgeReconfirmed, DispositionPaymentPlanCreated, DispositionPaidInFull,
	DispositionPromisedToPay, DispositionNeedsFollowUp, DispositionRefused,
	DispositionUnreachable, DispositionDoNotContact,
}

func ParseOutcome(s string) (Outcome, error) {
	for _, o := range outcomes {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown call outcome %q", s)
}

// ParseConversationStage accepts an empty string as "no change".
func ParseConversationStage(s string) (ConversationStage, error) {
	if s == "" {
		return "", nil
	}
	for _, st := range stages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown conversation stage %q", s)
}

// ParseDisposition accepts an empty string as "no disposition".
func ParseDisposition(s string) (Disposition, error) {
	if s == "" {
		return "", nil
	}
	for _, d := range dispositions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown disposition %q", s)
}

const (
	QueueStatusPending           = "pending"
	QueueStatusCallbackScheduled = "callback_scheduled"
	QueueStatusCompleted         = "completed"
	QueueStatusClosed            = "closed"
)

// CallQueueEntry is one donor waiting to be called
type CallQueueEntry struct {
	ID                int64             `json:"id" db:"id"`
	DonorID           int64             `json:"donor_id" db:"donor_id"`
	DonorName         string            `json:"donor_name" db:"donor_name"`
	DonorPhone        string            `json:"donor_phone" db:"donor_phone"`
	AssignedAgentID   *int64            `json:"assigned_agent_id,omitempty" db:"assigned_agent_id"`
	Priority          int               `json:"priority" db:"priority"`
	Status            string            `json:"status" db:"status"`
	Attempts          int               `json:"attempts" db:"attempts"`
	ConversationStage ConversationStage `json:"conversation_stage" db:"conversation_stage"`
	LastOutcome       Outcome           `json:"last_outcome" db:"last_outcome"`
	Disposition       Disposition       `json:"disposition" db:"disposition"`
	NextAttemptAt     time.Time         `json:"next_attempt_at" db:"next_attempt_at"`
	CallbackAt        *time.Time        `json:"callback_at,omitempty" db:"callback_at"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at" db:"updated_at"`
}

// IsClosed reports whether the entry no longer accepts call results.
func (e *CallQueueEntry) IsClosed() bool {
	return e.Status == QueueStatusCompleted || e.Status == QueueStatusClosed
}

// QueuePolicy controls retries after unsuccessful calls.
type QueuePolicy struct {
	MaxAttempts   int
	RetryDelay    time.Duration
	FollowUpDelay time.Duration
}

// CallResult is a validated call outcome ready to be applied to a queue entry.
type CallResult struct {
	Outcome     Outcome
	Stage       ConversationStage
	Disposition Disposition
	CallbackAt  *time.Time
}

// ApplyOutcome moves the entry to its next queue state.
func (e *CallQueueEntry) ApplyOutcome(result CallResult, policy QueuePolicy, now time.Time) error {
	if result.Disposition != "" && result.Outcome != OutcomeConnected {
		return fmt.Errorf("disposition %q requires a connected call", result.Disposition)
	}

	e.Attempts++
	e.LastOutcome = result.Outcome
	if result.Stage != "" {
		e.ConversationStage = result.Stage
	}

	switch result.Outcome {
	case OutcomeNoAnswer, OutcomeBusy, OutcomeVoicemail:
		if policy.MaxAttempts > 0 && e.Attempts >= policy.MaxAttempts {
			e.Status = QueueStatusClosed
			e.Disposition = DispositionUnreachable
			return nil
		}
		e.Status = QueueStatusPending
		e.NextAttemptAt = now.Add(policy.RetryDelay)
	case OutcomeWrongNumber:
		e.Status = QueueStatusClosed
		e.Disposition = DispositionUnreachable
	case OutcomeDoNotCall:
		e.Status = QueueStatusClosed
		e.Disposition = DispositionDoNotContact
	case OutcomeCallbackRequested:
		if result.CallbackAt == nil || !result.CallbackAt.After(now) {
			return fmt.Errorf("callback requires a future callback time")
		}
		e.Status = QueueStatusCallbackScheduled
		e.CallbackAt = result.CallbackAt
		e.NextAttemptAt = *result.CallbackAt
	case OutcomeConnected:
		if result.Disposition == "" {
			return fmt.Errorf("connected call requires a disposition")
		}
		e.Disposition = result.Disposition
		switch result.Disposition {
		case DispositionNeedsFollowUp, DispositionPromisedToPay:
			e.Status = QueueStatusPending
			e.NextAttemptAt = now.Add(policy.FollowUpDelay)
			if result.CallbackAt != nil && result.CallbackAt.After(now) {
				e.Status = QueueStatusCallbackScheduled
				e.CallbackAt = result.CallbackAt
				e.NextAttemptAt = *result.CallbackAt
			}
		default:
			e.Status = QueueStatusCompleted
			e.ConversationStage = StageCompleted
		}
	default:
		return fmt.Errorf("unknown call outcome %q", result.Outcome)
	}
	return nil
}

// CallLog records one call made by an agent
type CallLog struct {
	ID                uuid.UUID         `json:"id" db:"id"`
	QueueEntryID      int64             `json:"queue_entry_id" db:"queue_entry_id"`
	DonorID           int64             `json:"donor_id" db:"donor_id"`
	AgentID           int64             `json:"agent_id" db:"agent_id"`
	Outcome           Outcome           `json:"outcome" db:"outcome"`
	ConversationStage ConversationStage `json:"conversation_stage" db:"conversation_stage"`
	Disposition       Disposition       `json:"disposition" db:"disposition"`
	Notes             string            `json:"notes" db:"notes"`
	DurationSeconds   int               `json:"duration_seconds" db:"duration_seconds"`
	CallbackAt        *time.Time        `json:"callback_at,omitempty" db:"callback_at"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// QueueFilter narrows the call queue scan.
type QueueFilter struct {
	Status  string
	AgentID int64
	DueOnly bool
	Limit   int
}

// DTOs for requests and responses

type RecordCallRequest struct {
	EntryID         int64      `json:"entry_id" validate:"required,gt=0"`
	AgentID         int64      `json:"agent_id" validate:"required,gt=0"`
	Outcome         string     `json:"outcome" validate:"required"`
	Stage           string     `json:"conversation_stage"`
	Disposition     string     `json:"disposition"`
	Notes           string     `json:"notes" validate:"max=2000"`
	DurationSeconds int        `json:"duration_seconds" validate:"gte=0"`
	CallbackAt      *time.Time `json:"callback_at"`
}

type RecordCallResponse struct {
	Entry *CallQueueEntry `json:"entry"`
	Log   *CallLog        `json:"log"`
}

type AgentDashboard struct {
	AgentID        int64          `json:"agent_id"`
	Date           string         `json:"date"`
	TotalCalls     int            `json:"total_calls"`
	CallsByOutcome map[string]int `json:"calls_by_outcome"`
	PendingQueue   int            `json:"pending_queue"`
	CallbacksDue   int            `json:"callbacks_due"`
	PlansCreated   int            `json:"plans_created"`
}

// OutcomeCount is one row of an outcome aggregate.
type OutcomeCount struct {
	Outcome string `db:"outcome"`
	Count   int    `db:"count"`
}
