package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donor represents an individual who has pledged funds
type Donor struct {
	ID                int64           `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Phone             string          `json:"phone" db:"phone"`
	PreferredLanguage Language        `json:"preferred_language" db:"preferred_language"`
	PledgeAmount      decimal.Decimal `json:"pledge_amount" db:"pledge_amount"`
	TotalPaid         decimal.Decimal `json:"total_paid" db:"total_paid"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// OutstandingBalance returns the unpaid part of the pledge, never below zero.
func (d *Donor) OutstandingBalance() decimal.Decimal {
	balance := d.PledgeAmount.Sub(d.TotalPaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// TemplateVariables are the placeholders every donor message can use.
func (d *Donor) TemplateVariables() map[string]string {
	return map[string]string{
		"name":    d.Name,
		"pledge":  d.PledgeAmount.StringFixed(2),
		"paid":    d.TotalPaid.StringFixed(2),
		"balance": d.OutstandingBalance().StringFixed(2),
	}
}
