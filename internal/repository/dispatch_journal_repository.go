package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/facilityops/helpdesk-gateway/internal/domain"
)

// DispatchJournalRepository stores the outcome of every action sent to the
// ticket API. A nil pool turns it into a no-op.
type DispatchJournalRepository interface {
	Record(ctx context.Context, record *domain.DispatchRecord) error
	ListRecent(ctx context.Context, limit int) ([]domain.DispatchRecord, error)
}

type dispatchJournalRepository struct {
	pool *pgxpool.Pool
}

// NewDispatchJournalRepository builds repository.
func NewDispatchJournalRepository(pool *pgxpool.Pool) DispatchJournalRepository {
	return &dispatchJournalRepository{pool: pool}
}

func (r *dispatchJournalRepository) Record(ctx context.Context, record *domain.DispatchRecord) error {
	if r.pool == nil {
		return nil
	}
	const query = `
        INSERT INTO action_dispatches (id, ticket_id, action, actor_id, succeeded, message, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.TicketID,
		string(record.Action),
		record.ActorID,
		record.Succeeded,
		record.Message,
		record.CreatedAt,
	)
	return err
}

func (r *dispatchJournalRepository) ListRecent(ctx context.Context, limit int) ([]domain.DispatchRecord, error) {
	if r.pool == nil {
		return []domain.DispatchRecord{}, nil
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const query = `
        SELECT id::text, ticket_id, action, actor_id, succeeded, message, created_at
        FROM action_dispatches ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.DispatchRecord{}
	for rows.Next() {
		var (
			record domain.DispatchRecord
			action string
		)
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&action,
			&record.ActorID,
			&record.Succeeded,
			&record.Message,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		record.Action = domain.ActionID(action)
		result = append(result, record)
	}
	return result, rows.Err()
}
