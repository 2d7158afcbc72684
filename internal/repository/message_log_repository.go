package repository

import (
	"context"

	"github.com/segyhp/pledge-callcenter/internal/domain"

	"github.com/jmoiron/sqlx"
)

type messageLogRepository struct {
	db *sqlx.DB
}

func NewMessageLogRepository(db *sqlx.DB) MessageLogRepository {
	return &messageLogRepository{db: db}
}

func (r *messageLogRepository) Create(ctx context.Context, log *domain.MessageLog) error {
	query := `
		INSERT INTO message_logs (id, donor_id, template_key, source, preview_channel, channel, language,
			language_fallback, transport_fallback, fallback_reason, status, error, provider_message_id, created_at)
		VALUES (:id, :donor_id, :template_key, :source, :preview_channel, :channel, :language,
			:language_fallback, :transport_fallback, :fallback_reason, :status, :error, :provider_message_id, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, log)
	return err
}
