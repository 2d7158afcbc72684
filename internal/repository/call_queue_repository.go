package repository

import (
	"context"
	"time"

	"github.com/segyhp/pledge-callcenter/internal/domain"
	customError "github.com/segyhp/pledge-callcenter/pkg/errors"

	"github.com/jmoiron/sqlx"
)

const queueColumns = `
	q.id, q.donor_id, d.name AS donor_name, d.phone AS donor_phone, q.assigned_agent_id,
	q.priority, q.status, q.attempts, q.conversation_stage,
	COALESCE(q.last_outcome, '') AS last_outcome,
	COALESCE(q.disposition, '') AS disposition,
	q.next_attempt_at, q.callback_at, q.created_at, q.updated_at
`

type callQueueRepository struct {
	db *sqlx.DB
}

func NewCallQueueRepository(db *sqlx.DB) CallQueueRepository {
	return &callQueueRepository{db: db}
}

func (r *callQueueRepository) List(ctx context.Context, filter domain.QueueFilter, now time.Time) ([]*domain.CallQueueEntry, error) {
	// An empty status filter means every open entry
	query := `
		SELECT ` + queueColumns + `
		FROM call_queue q
		JOIN donors d ON d.id = q.donor_id
		WHERE (($1 = '' AND q.status IN ('pending', 'callback_scheduled')) OR q.status = $1)
			AND ($2 = 0 OR q.assigned_agent_id = $2)
			AND (NOT $3 OR q.next_attempt_at <= $4)
		ORDER BY q.priority DESC, q.next_attempt_at ASC
		LIMIT $5
	`

	var entries []*domain.CallQueueEntry
	err := r.db.SelectContext(ctx, &entries, query,
		filter.Status,
		filter.AgentID,
		filter.DueOnly,
		now,
		filter.Limit,
	)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *callQueueRepository) GetByID(ctx context.Context, entryID int64) (*domain.CallQueueEntry, error) {
	query := `
		SELECT ` + queueColumns + `
		FROM call_queue q
		JOIN donors d ON d.id = q.donor_id
		WHERE q.id = $1
	`

	var entry domain.CallQueueEntry
	if err := r.db.GetContext(ctx, &entry, query, entryID); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *callQueueRepository) RecordCall(ctx context.Context, entry *domain.CallQueueEntry, log *domain.CallLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE call_queue
		SET status = $2, attempts = $3, conversation_stage = $4, last_outcome = $5,
			disposition = NULLIF($6, ''), next_attempt_at = $7, callback_at = $8,
			assigned_agent_id = $9, updated_at = $10
		WHERE id = $1 AND attempts = $3 - 1 AND status NOT IN ('completed', 'closed')
	`
	res, err := tx.ExecContext(ctx, updateQuery,
		entry.ID,
		entry.Status,
		entry.Attempts,
		entry.ConversationStage,
		entry.LastOutcome,
		entry.Disposition,
		entry.NextAttemptAt,
		entry.CallbackAt,
		entry.AssignedAgentID,
		entry.UpdatedAt,
	)
	if err != nil {
		return err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return customError.ErrQueueEntryConflict
	}

	logQuery := `
		INSERT INTO call_logs (id, queue_entry_id, donor_id, agent_id, outcome, conversation_stage,
			disposition, notes, duration_seconds, callback_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, logQuery,
		log.ID,
		log.QueueEntryID,
		log.DonorID,
		log.AgentID,
		log.Outcome,
		log.ConversationStage,
		log.Disposition,
		log.Notes,
		log.DurationSeconds,
		log.CallbackAt,
		log.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *callQueueRepository) CountOpen(ctx context.Context, agentID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM call_queue
		WHERE status IN ('pending', 'callback_scheduled')
			AND ($1 = 0 OR assigned_agent_id = $1)
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, agentID)
	return count, err
}

func (r *callQueueRepository) CountCallbacksDue(ctx context.Context, agentID int64, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM call_queue
		WHERE status = 'callback_scheduled'
			AND ($1 = 0 OR assigned_agent_id = $1)
			AND callback_at >= $2 AND callback_at < $3
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, agentID, from, to)
	return count, err
}

func (r *callQueueRepository) OutcomeCounts(ctx context.Context, agentID int64, from, to time.Time) ([]domain.OutcomeCount, error) {
	query := `
		SELECT outcome, COUNT(*) AS count
		FROM call_logs
		WHERE agent_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY outcome
		ORDER BY outcome
	`

	var counts []domain.OutcomeCount
	if err := r.db.SelectContext(ctx, &counts, query, agentID, from, to); err != nil {
		return nil, err
	}

	return counts, nil
}
