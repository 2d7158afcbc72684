package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FrequencyUnit is the calendar unit a payment plan steps by.
type FrequencyUnit string

const (
	FrequencyDay   FrequencyUnit = "day"
	FrequencyWeek  FrequencyUnit = "week"
	FrequencyMonth FrequencyUnit = "month"
	FrequencyYear  FrequencyUnit = "year"
)

// Valid reports whether u is one of the supported units.
func (u FrequencyUnit) Valid() bool {
	switch u {
	case FrequencyDay, FrequencyWeek, FrequencyMonth, FrequencyYear:
		return true
	}
	return false
}

const (
	PlanTypeTemplate = "template"
	PlanTypeCustom   = "custom"
)

const (
	PlanStatusActive    = "active"
	PlanStatusCompleted = "completed"
	PlanStatusCancelled = "cancelled"
)

const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
	InstallmentStatusOverdue = "overdue"
)

// PaymentPlanRequest is the input to the schedule calculator.
type PaymentPlanRequest struct {
	TotalAmount         decimal.Decimal `json:"total_amount"`
	StartDate           time.Time       `json:"start_date"`
	FrequencyUnit       FrequencyUnit   `json:"frequency_unit"`
	FrequencyMultiplier int             `json:"frequency_multiplier"`
	PaymentCount        int             `json:"payment_count"`
}

// PaymentPlanSchedule is the computed installment schedule.
type PaymentPlanSchedule struct {
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
	DueDates          []time.Time     `json:"due_dates"`
	LastPaymentDate   time.Time       `json:"last_payment_date"`
	FrequencyLabel    string          `json:"frequency_label"`
}

// PaymentPlan represents a persisted plan paying off a donor's pledge balance
type PaymentPlan struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	DonorID             int64           `json:"donor_id" db:"donor_id"`
	AgentID             int64           `json:"agent_id" db:"agent_id"`
	PlanType            string          `json:"plan_type" db:"plan_type"`
	TotalAmount         decimal.Decimal `json:"total_amount" db:"total_amount"`
	InstallmentAmount   decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	FrequencyUnit       FrequencyUnit   `json:"frequency_unit" db:"frequency_unit"`
	FrequencyMultiplier int             `json:"frequency_multiplier" db:"frequency_multiplier"`
	FrequencyLabel      string          `json:"frequency_label" db:"frequency_label"`
	PaymentCount        int             `json:"payment_count" db:"payment_count"`
	StartDate           time.Time       `json:"start_date" db:"start_date"`
	LastPaymentDate     time.Time       `json:"last_payment_date" db:"last_payment_date"`
	Status              string          `json:"status" db:"status"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// PlanInstallment represents one scheduled payment of a plan
type PlanInstallment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	PlanID            uuid.UUID       `json:"plan_id" db:"plan_id"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	DueAmount         decimal.Decimal `json:"due_amount" db:"due_amount"`
	DueDate           time.Time       `json:"due_date" db:"due_date"`
	Status            string          `json:"status" db:"status"` // pending, paid, overdue
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// UpcomingInstallment joins an installment with the donor it is owed by.
type UpcomingInstallment struct {
	PlanInstallment
	DonorID   int64  `json:"donor_id" db:"donor_id"`
	DonorName string `json:"donor_name" db:"donor_name"`
}

// DTOs for requests and responses

type CreatePaymentPlanRequest struct {
	DonorID        int64           `json:"donor_id" validate:"required,gt=0"`
	AgentID        int64           `json:"agent_id" validate:"required,gt=0"`
	PlanType       string          `json:"plan_type" validate:"required,oneof=template custom"`
	Amount         decimal.Decimal `json:"amount" validate:"decimal_gte=0"`
	StartDate      string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	TemplateMonths int             `json:"template_months" validate:"required_if=PlanType template,gte=0,max=1200"`
	Frequency      string          `json:"frequency" validate:"required_if=PlanType custom"`
	Interval       int             `json:"interval" validate:"gte=0,max=1200"`
	PaymentCount   int             `json:"payment_count" validate:"required_if=PlanType custom,gte=0,max=1200"`
}

type CreatePaymentPlanResponse struct {
	Plan         *PaymentPlan       `json:"plan"`
	Installments []*PlanInstallment `json:"installments"`
}

type SchedulePreviewResponse struct {
	DonorID  int64                `json:"donor_id"`
	Request  *PaymentPlanRequest  `json:"request"`
	Schedule *PaymentPlanSchedule `json:"schedule"`
}
