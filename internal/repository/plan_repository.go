package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/pledge-callcenter/internal/domain"
	customError "github.com/segyhp/pledge-callcenter/pkg/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

type planRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) CreateWithInstallments(ctx context.Context, plan *domain.PaymentPlan, installments []*domain.PlanInstallment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Lock the donor row so concurrent plan creation for the same donor serializes
	var donorID int64
	if err = tx.GetContext(ctx, &donorID, `SELECT id FROM donors WHERE id = $1 FOR UPDATE`, plan.DonorID); err != nil {
		return err
	}

	var active int
	err = tx.GetContext(ctx, &active,
		`SELECT COUNT(*) FROM payment_plans WHERE donor_id = $1 AND status = $2`,
		plan.DonorID, domain.PlanStatusActive,
	)
	if err != nil {
		return err
	}
	if active > 0 {
		return customError.ErrActivePlanExists
	}

	planQuery := `
		INSERT INTO payment_plans (id, donor_id, agent_id, plan_type, total_amount, installment_amount,
			frequency_unit, frequency_multiplier, frequency_label, payment_count, start_date,
			last_payment_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = tx.ExecContext(ctx, planQuery,
		plan.ID,
		plan.DonorID,
		plan.AgentID,
		plan.PlanType,
		plan.TotalAmount,
		plan.InstallmentAmount,
		plan.FrequencyUnit,
		plan.FrequencyMultiplier,
		plan.FrequencyLabel,
		plan.PaymentCount,
		plan.StartDate,
		plan.LastPaymentDate,
		plan.Status,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		return translateUnique(err)
	}

	installmentQuery := `
		INSERT INTO payment_plan_installments (id, plan_id, installment_number, due_amount, due_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, installment := range installments {
		_, err = tx.ExecContext(ctx, installmentQuery,
			installment.ID,
			installment.PlanID,
			installment.InstallmentNumber,
			installment.DueAmount,
			installment.DueDate,
			installment.Status,
			installment.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// translateUnique maps the one-active-plan-per-donor index violation to the domain error
func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return customError.ErrActivePlanExists
	}
	return err
}

func (r *planRepository) GetByID(ctx context.Context, planID uuid.UUID) (*domain.PaymentPlan, error) {
	query := `
		SELECT id, donor_id, agent_id, plan_type, total_amount, installment_amount, frequency_unit,
			frequency_multiplier, frequency_label, payment_count, start_date, last_payment_date,
			status, created_at, updated_at
		FROM payment_plans
		WHERE id = $1
	`

	var plan domain.PaymentPlan
	if err := r.db.GetContext(ctx, &plan, query, planID); err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *planRepository) GetInstallments(ctx context.Context, planID uuid.UUID) ([]*domain.PlanInstallment, error) {
	query := `
		SELECT id, plan_id, installment_number, due_amount, due_date, status, created_at
		FROM payment_plan_installments
		WHERE plan_id = $1
		ORDER BY installment_number
	`

	var installments []*domain.PlanInstallment
	if err := r.db.SelectContext(ctx, &installments, query, planID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *planRepository) UpdateStatus(ctx context.Context, planID uuid.UUID, status string) error {
	query := `
		UPDATE payment_plans
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, planID, status, time.Now())
	return err
}

func (r *planRepository) MarkOverdue(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE payment_plan_installments i
		SET status = 'overdue'
		FROM payment_plans p
		WHERE p.id = i.plan_id
			AND p.status = 'active'
			AND i.status = 'pending'
			AND i.due_date < $1
	`

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *planRepository) GetUpcomingInstallments(ctx context.Context, from, to time.Time) ([]*domain.UpcomingInstallment, error) {
	query := `
		SELECT i.id, i.plan_id, i.installment_number, i.due_amount, i.due_date, i.status, i.created_at,
			p.donor_id, d.name AS donor_name
		FROM payment_plan_installments i
		JOIN payment_plans p ON p.id = i.plan_id
		JOIN donors d ON d.id = p.donor_id
		WHERE p.status = 'active'
			AND i.status = 'pending'
			AND i.reminded_at IS NULL
			AND i.due_date BETWEEN $1 AND $2
		ORDER BY i.due_date, p.donor_id
	`

	var upcoming []*domain.UpcomingInstallment
	if err := r.db.SelectContext(ctx, &upcoming, query, from, to); err != nil {
		return nil, err
	}

	return upcoming, nil
}

func (r *planRepository) MarkReminded(ctx context.Context, installmentID uuid.UUID, at time.Time) error {
	query := `
		UPDATE payment_plan_installments
		SET reminded_at = $2
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, installmentID, at)
	return err
}

func (r *planRepository) CountCreatedByAgent(ctx context.Context, agentID int64, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM payment_plans
		WHERE agent_id = $1 AND created_at >= $2 AND created_at < $3
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, agentID, from, to)
	return count, err
}
