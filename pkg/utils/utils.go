package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// CalculateInstallment divides a total evenly over count payments.
// Formula: Total / Count, rounded to cents with no remainder adjustment
func CalculateInstallment(total decimal.Decimal, count int) decimal.Decimal {
	installment := total.Div(decimal.NewFromInt(int64(count)))

	// Round to 2 decimal places
	return installment.Round(2)
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonthsClamped adds months to t, clamping the day to the last day of the
// target month instead of rolling into the following one.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	// Normalize through the first of the month so time.Date never overflows the day
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := DaysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}

	hour, minute, sec := t.Clock()
	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// AddDays adds whole calendar days to t
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// DateOnly truncates t to midnight in its own location
func DateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
