package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/set-night/postrelay/internal/domain"
)

// ProposalRepository is the Postgres proposal ledger.
type ProposalRepository struct {
	db *pgxpool.Pool
}

func NewProposalRepository(db *pgxpool.Pool) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, p domain.Proposal) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO proposals (id, channel_id, submitter_id, created_at) VALUES ($1, $2, $3, $4)`,
		p.ID, string(p.Channel), p.SubmitterID, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

func (r *ProposalRepository) AddInstance(ctx context.Context, inst domain.ProposalInstance) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO proposal_instances (proposal_id, admin_id, message_id) VALUES ($1, $2, $3)
		 ON CONFLICT DO NOTHING`,
		inst.ProposalID, inst.AdminID, inst.MessageID,
	)
	if err != nil {
		return fmt.Errorf("insert proposal instance: %w", err)
	}
	return nil
}

func (r *ProposalRepository) Claim(ctx context.Context, id uuid.UUID, adminID int64) (bool, error) {
	var claimedID uuid.UUID
	err := r.db.QueryRow(ctx,
		`UPDATE proposals SET claimed_by = $2, claimed_at = now()
		 WHERE id = $1 AND claimed_by IS NULL
		 RETURNING id`,
		id, adminID,
	).Scan(&claimedID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("claim proposal: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM proposals WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check proposal: %w", err)
	}
	if !exists {
		return false, domain.ErrProposalNotFound
	}
	return false, nil
}

func (r *ProposalRepository) Release(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE proposals SET claimed_by = NULL, claimed_at = NULL
		 WHERE id = $1 AND published_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("release proposal: %w", err)
	}
	return nil
}

func (r *ProposalRepository) MarkPublished(ctx context.Context, id uuid.UUID, messageID int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE proposals SET published_message_id = $2, published_at = now() WHERE id = $1`,
		id, messageID,
	)
	if err != nil {
		return fmt.Errorf("mark published: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}

func (r *ProposalRepository) Instances(ctx context.Context, id uuid.UUID) ([]domain.ProposalInstance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT proposal_id, admin_id, message_id FROM proposal_instances
		 WHERE proposal_id = $1 ORDER BY admin_id, message_id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query instances: %w", err)
	}
	defer rows.Close()

	var instances []domain.ProposalInstance
	for rows.Next() {
		var inst domain.ProposalInstance
		if err := rows.Scan(&inst.ProposalID, &inst.AdminID, &inst.MessageID); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		instances = append(instances, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instances: %w", err)
	}
	return instances, nil
}

func (r *ProposalRepository) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM proposals WHERE created_at < $1`, t)
	if err != nil {
		return 0, fmt.Errorf("purge proposals: %w", err)
	}
	return tag.RowsAffected(), nil
}
