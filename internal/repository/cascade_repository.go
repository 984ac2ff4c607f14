package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

// CascadeRepository holds the referential-cleanup statements used by the
// cascade engine. WithinTx opens a transaction and threads it through the
// context, so every op of one cascade commits or rolls back together.
type CascadeRepository struct {
	pool *pgxpool.Pool
}

func NewCascadeRepository(pool *pgxpool.Pool) *CascadeRepository {
	return &CascadeRepository{pool: pool}
}

func (r *CascadeRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

func (r *CascadeRepository) conn(ctx context.Context) DB {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.pool
}

// Existence checks treat soft-deleted rows as absent so a repeated delete
// is a no-op.

func (r *CascadeRepository) UserExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND deleted_at IS NULL)`, id)
}

func (r *CascadeRepository) CompanyExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM companies WHERE id = $1 AND deleted_at IS NULL)`, id)
}

func (r *CascadeRepository) JobExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1 AND deleted_at IS NULL)`, id)
}

func (r *CascadeRepository) exists(ctx context.Context, query string, id string) (bool, error) {
	var found bool
	if err := r.conn(ctx).QueryRow(ctx, query, id).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

func (r *CascadeRepository) DeleteApplicationsByUser(ctx context.Context, userID string) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM applications WHERE user_id = $1`, userID)
	return err
}

func (r *CascadeRepository) DeleteApplicationsByJob(ctx context.Context, jobID string) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM applications WHERE job_id = $1`, jobID)
	return err
}

func (r *CascadeRepository) DeleteChatsByParticipant(ctx context.Context, userID string) error {
	conn := r.conn(ctx)
	_, err := conn.Exec(ctx, `
		DELETE FROM messages WHERE chat_id IN (
			SELECT id FROM chats WHERE sender_id = $1 OR receiver_id = $1
		)`, userID)
	if err != nil {
		return err
	}
	_, err = conn.Exec(ctx, `DELETE FROM chats WHERE sender_id = $1 OR receiver_id = $1`, userID)
	return err
}

func (r *CascadeRepository) ListJobIDsByCreator(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT id FROM jobs WHERE added_by = $1 AND deleted_at IS NULL`, userID)
}

func (r *CascadeRepository) ListJobIDsByCompany(ctx context.Context, companyID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT id FROM jobs WHERE company_id = $1 AND deleted_at IS NULL`, companyID)
}

func (r *CascadeRepository) ListCompanyIDsByOwner(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT id FROM companies WHERE created_by = $1 AND deleted_at IS NULL`, userID)
}

func (r *CascadeRepository) listIDs(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *CascadeRepository) MarkUserDeleted(ctx context.Context, id string, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE users SET deleted_at = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id, at)
	return err
}

func (r *CascadeRepository) MarkCompanyDeleted(ctx context.Context, id string, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE companies SET deleted_at = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id, at)
	return err
}

func (r *CascadeRepository) MarkJobDeleted(ctx context.Context, id string, at time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE jobs SET deleted_at = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id, at)
	return err
}
