package repository

import (
	"context"

	"github.com/segyhp/pledge-callcenter/internal/domain"

	"github.com/jmoiron/sqlx"
)

type donorRepository struct {
	db *sqlx.DB
}

func NewDonorRepository(db *sqlx.DB) DonorRepository {
	return &donorRepository{db: db}
}

func (r *donorRepository) GetByID(ctx context.Context, donorID int64) (*domain.Donor, error) {
	query := `
		SELECT id, name, phone, preferred_language, pledge_amount, total_paid, created_at, updated_at
		FROM donors
		WHERE id = $1
	`

	var donor domain.Donor
	err := r.db.GetContext(ctx, &donor, query, donorID)
	if err != nil {
		return nil, err
	}

	return &donor, nil
}
