package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidSchedule      = errors.New("invalid payment schedule")
	ErrNoTemplateBody       = errors.New("no usable template body")
	ErrInvalidChannelMode   = errors.New("invalid channel mode")
	ErrDonorNotFound        = errors.New("donor not found")
	ErrPlanNotFound         = errors.New("payment plan not found")
	ErrPlanNotActive        = errors.New("payment plan is not active")
	ErrActivePlanExists     = errors.New("donor already has an active payment plan")
	ErrTemplateNotFound     = errors.New("message template not found")
	ErrQueueEntryNotFound   = errors.New("call queue entry not found")
	ErrQueueEntryClosed     = errors.New("call queue entry is closed")
	ErrQueueEntryConflict   = errors.New("call queue entry was changed by another call")
	ErrInvalidCallOutcome   = errors.New("invalid call outcome")
	ErrNoOutstandingBalance = errors.New("no outstanding balance")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidSchedule      = "INVALID_SCHEDULE"
	ErrCodeNoTemplateBody       = "NO_TEMPLATE_BODY"
	ErrCodeInvalidChannelMode   = "INVALID_CHANNEL_MODE"
	ErrCodeDonorNotFound        = "DONOR_NOT_FOUND"
	ErrCodePlanNotFound         = "PLAN_NOT_FOUND"
	ErrCodePlanNotActive        = "PLAN_NOT_ACTIVE"
	ErrCodeActivePlanExists     = "ACTIVE_PLAN_EXISTS"
	ErrCodeTemplateNotFound     = "TEMPLATE_NOT_FOUND"
	ErrCodeQueueEntryNotFound   = "QUEUE_ENTRY_NOT_FOUND"
	ErrCodeQueueEntryClosed     = "QUEUE_ENTRY_CLOSED"
	ErrCodeQueueEntryConflict   = "QUEUE_ENTRY_CONFLICT"
	ErrCodeInvalidCallOutcome   = "INVALID_CALL_OUTCOME"
	ErrCodeNoOutstandingBalance = "NO_OUTSTANDING_BALANCE"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
)

// InvalidSchedule is returned when a payment plan request cannot produce a schedule.
func InvalidSchedule(format string, args ...interface{}) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidSchedule,
		fmt.Sprintf(format, args...),
		ErrInvalidSchedule,
	)
}

// NoTemplateBody is returned when a template has no English body to fall back to.
func NoTemplateBody(templateKey string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoTemplateBody,
		fmt.Sprintf("Template %s has no English body to fall back to", templateKey),
		ErrNoTemplateBody,
	)
}

func WrapInvalidChannelMode(mode string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidChannelMode,
		fmt.Sprintf("Unknown channel mode %q", mode),
		ErrInvalidChannelMode,
	)
}

func WrapDonorNotFound(donorID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeDonorNotFound,
		fmt.Sprintf("Donor with ID %d not found", donorID),
		ErrDonorNotFound,
	)
}

func WrapPlanNotFound(planID string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanNotFound,
		fmt.Sprintf("Payment plan with ID %s not found", planID),
		ErrPlanNotFound,
	)
}

func WrapPlanNotActive(planID, status string) *BusinessError {
	return NewBusinessError(
		ErrCodePlanNotActive,
		fmt.Sprintf("Payment plan %s is %s, not active", planID, status),
		ErrPlanNotActive,
	)
}

func WrapActivePlanExists(donorID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeActivePlanExists,
		fmt.Sprintf("Donor with ID %d already has an active payment plan", donorID),
		ErrActivePlanExists,
	)
}

func WrapTemplateNotFound(key string) *BusinessError {
	return NewBusinessError(
		ErrCodeTemplateNotFound,
		fmt.Sprintf("Message template %s not found", key),
		ErrTemplateNotFound,
	)
}

func WrapQueueEntryNotFound(entryID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeQueueEntryNotFound,
		fmt.Sprintf("Call queue entry %d not found", entryID),
		ErrQueueEntryNotFound,
	)
}

func WrapQueueEntryClosed(entryID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeQueueEntryClosed,
		fmt.Sprintf("Call queue entry %d is already closed", entryID),
		ErrQueueEntryClosed,
	)
}

func WrapQueueEntryConflict(entryID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeQueueEntryConflict,
		fmt.Sprintf("Call queue entry %d was updated by another call; reload and retry", entryID),
		ErrQueueEntryConflict,
	)
}

func WrapInvalidCallOutcome(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCallOutcome,
		message,
		ErrInvalidCallOutcome,
	)
}

func WrapNoOutstandingBalance(donorID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeNoOutstandingBalance,
		fmt.Sprintf("Donor with ID %d has no outstanding balance", donorID),
		ErrNoOutstandingBalance,
	)
}

func WrapValidation(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		"request validation failed",
		err,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

// CodeOf returns the business error code carried by err, or an empty string.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
