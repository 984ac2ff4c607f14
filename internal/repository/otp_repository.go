package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"jobboard/internal/models"
)

var ErrOTPNotFound = errors.New("otp not found")

type OTPRepository struct {
	db DB
}

func NewOTPRepository(db DB) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Create(ctx context.Context, otp models.OTP) error {
	const query = `
		INSERT INTO otps (id, user_id, code_hash, kind, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.db.Exec(ctx, query, otp.ID, otp.UserID, otp.CodeHash, otp.Kind, otp.ExpiresAt)
	return err
}

// LatestByKind returns the most recently issued code of the given kind.
func (r *OTPRepository) LatestByKind(ctx context.Context, userID string, kind models.OTPKind) (models.OTP, error) {
	const query = `
		SELECT id, user_id, code_hash, kind, expires_at, created_at
		FROM otps
		WHERE user_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	row := r.db.QueryRow(ctx, query, userID, kind)
	var otp models.OTP
	if err := row.Scan(&otp.ID, &otp.UserID, &otp.CodeHash, &otp.Kind, &otp.ExpiresAt, &otp.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.OTP{}, ErrOTPNotFound
		}
		return models.OTP{}, err
	}
	return otp, nil
}

func (r *OTPRepository) DeleteByUserKind(ctx context.Context, userID string, kind models.OTPKind) error {
	const query = `DELETE FROM otps WHERE user_id = $1 AND kind = $2`
	_, err := r.db.Exec(ctx, query, userID, kind)
	return err
}

// DeleteExpired removes every code past its expiry; run from the scheduler.
func (r *OTPRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM otps WHERE expires_at < $1`
	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
