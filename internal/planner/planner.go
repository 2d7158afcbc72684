// Package planner computes installment schedules for donor payment plans.
//
// All functions are pure and safe for concurrent use.
package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/segyhp/pledge-callcenter/internal/domain"
	customError "github.com/segyhp/pledge-callcenter/pkg/errors"
	"github.com/segyhp/pledge-callcenter/pkg/utils"

	"github.com/shopspring/decimal"
)

// MaxPaymentCount bounds the number of installments in one plan.
const MaxPaymentCount = 1200

// maxSpan is the furthest the last due date may sit from the start, in
// units of each frequency. All four are roughly one hundred years.
var maxSpan = map[domain.FrequencyUnit]int{
	domain.FrequencyDay:   36600,
	domain.FrequencyWeek:  5220,
	domain.FrequencyMonth: 1200,
	domain.FrequencyYear:  100,
}

// ComputeSchedule builds the installment schedule for req.
func ComputeSchedule(req domain.PaymentPlanRequest) (*domain.PaymentPlanSchedule, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	dueDates := make([]time.Time, req.PaymentCount)
	for n := 1; n <= req.PaymentCount; n++ {
		dueDates[n-1] = DueDate(req.StartDate, req.FrequencyUnit, req.FrequencyMultiplier, n)
	}

	return &domain.PaymentPlanSchedule{
		InstallmentAmount: utils.CalculateInstallment(req.TotalAmount, req.PaymentCount),
		DueDates:          dueDates,
		LastPaymentDate:   dueDates[len(dueDates)-1],
		FrequencyLabel:    FrequencyLabel(req.FrequencyUnit, req.FrequencyMultiplier),
	}, nil
}

func validate(req domain.PaymentPlanRequest) error {
	if req.PaymentCount < 1 {
		return customError.InvalidSchedule("payment count must be at least 1, got %d", req.PaymentCount)
	}
	if req.TotalAmount.IsNegative() {
		return customError.InvalidSchedule("total amount must not be negative, got %s", req.TotalAmount)
	}
	if !req.FrequencyUnit.Valid() {
		return customError.InvalidSchedule("unknown frequency unit %q", req.FrequencyUnit)
	}
	if req.FrequencyMultiplier < 1 {
		return customError.InvalidSchedule("frequency multiplier must be at least 1, got %d", req.FrequencyMultiplier)
	}
	if req.StartDate.IsZero() {
		return customError.InvalidSchedule("start date is required")
	}
	if req.PaymentCount > MaxPaymentCount {
		return customError.InvalidSchedule("payment count must be at most %d, got %d", MaxPaymentCount, req.PaymentCount)
	}

	// Both factors are bounded before multiplying, so the product cannot overflow
	limit := maxSpan[req.FrequencyUnit]
	if req.FrequencyMultiplier > limit || (req.PaymentCount-1)*req.FrequencyMultiplier > limit {
		return customError.InvalidSchedule("plan spans more than %d %ss", limit, req.FrequencyUnit)
	}
	return nil
}

// DueDate returns the due date of the n-th (1-indexed) installment. The
// offset is always taken from start so month-end clamping never accumulates.
func DueDate(start time.Time, unit domain.FrequencyUnit, multiplier, n int) time.Time {
	offset := (n - 1) * multiplier

	switch unit {
	case domain.FrequencyDay:
		return utils.AddDays(start, offset)
	case domain.FrequencyWeek:
		return utils.AddDays(start, 7*offset)
	case domain.FrequencyMonth:
		return utils.AddMonthsClamped(start, offset)
	case domain.FrequencyYear:
		return utils.AddMonthsClamped(start, 12*offset)
	}
	return start
}

// FrequencyLabel renders a cadence such as "Monthly" or "Every 2 weeks".
func FrequencyLabel(unit domain.FrequencyUnit, multiplier int) string {
	if multiplier > 1 {
		return fmt.Sprintf("Every %d %ss", multiplier, unit)
	}
	if unit == domain.FrequencyDay {
		return "Daily"
	}
	s := string(unit)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:] + "ly"
}

type cadence struct {
	unit       domain.FrequencyUnit
	multiplier int
}

// frequencies maps the caller vocabulary used by the plan wizard onto unit
// and multiplier.
var frequencies = map[string]cadence{
	"day":           {domain.FrequencyDay, 1},
	"daily":         {domain.FrequencyDay, 1},
	"week":          {domain.FrequencyWeek, 1},
	"weekly":        {domain.FrequencyWeek, 1},
	"biweekly":      {domain.FrequencyWeek, 2},
	"bi-weekly":     {domain.FrequencyWeek, 2},
	"fortnightly":   {domain.FrequencyWeek, 2},
	"month":         {domain.FrequencyMonth, 1},
	"monthly":       {domain.FrequencyMonth, 1},
	"bimonthly":     {domain.FrequencyMonth, 2},
	"quarterly":     {domain.FrequencyMonth, 3},
	"semiannually":  {domain.FrequencyMonth, 6},
	"semi-annually": {domain.FrequencyMonth, 6},
	"year":          {domain.FrequencyYear, 1},
	"yearly":        {domain.FrequencyYear, 1},
	"annually":      {domain.FrequencyYear, 1},
}

// NormalizeFrequency maps caller vocabulary such as "biweekly" to unit and multiplier.
func NormalizeFrequency(frequency string) (domain.FrequencyUnit, int, error) {
	c, ok := frequencies[strings.ToLower(strings.TrimSpace(frequency))]
	if !ok {
		return "", 0, customError.InvalidSchedule("unknown frequency %q", frequency)
	}
	return c.unit, c.multiplier, nil
}

// TemplateRequest builds a fixed-duration plan: one payment per month for months months.
func TemplateRequest(total decimal.Decimal, start time.Time, months int) domain.PaymentPlanRequest {
	return domain.PaymentPlanRequest{
		TotalAmount:         total,
		StartDate:           start,
		FrequencyUnit:       domain.FrequencyMonth,
		FrequencyMultiplier: 1,
		PaymentCount:        months,
	}
}

// CustomRequest builds a caller-shaped plan. interval scales the normalized
// multiplier ("every 2 quarterly" is every 6 months); zero means 1.
func CustomRequest(total decimal.Decimal, start time.Time, frequency string, interval, count int) (domain.PaymentPlanRequest, error) {
	unit, multiplier, err := NormalizeFrequency(frequency)
	if err != nil {
		return domain.PaymentPlanRequest{}, err
	}
	if interval < 0 {
		return domain.PaymentPlanRequest{}, customError.InvalidSchedule("interval must not be negative, got %d", interval)
	}
	if interval == 0 {
		interval = 1
	}
	if interval > maxSpan[unit]/multiplier {
		return domain.PaymentPlanRequest{}, customError.InvalidSchedule("interval %d is too large for %s", interval, frequency)
	}

	return domain.PaymentPlanRequest{
		TotalAmount:         total,
		StartDate:           start,
		FrequencyUnit:       unit,
		FrequencyMultiplier: multiplier * interval,
		PaymentCount:        count,
	}, nil
}
