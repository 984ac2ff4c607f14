package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"jobboard/internal/models"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")

const userColumns = `
	id, first_name, last_name, email, password_hash, provider, gender,
	date_of_birth, mobile_number, role, is_confirmed, deleted_at, banned_at,
	change_credential_time, profile_pic_url, profile_pic_key, cover_pic_url,
	cover_pic_key, created_at, updated_at
`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, first_name, last_name, email, password_hash, provider, gender,
			date_of_birth, mobile_number, role, is_confirmed, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Provider,
		user.Gender,
		user.DateOfBirth,
		user.MobileNumber,
		user.Role,
		user.IsConfirmed,
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user models.User) error {
	const query = `
		UPDATE users
		SET first_name = $2, last_name = $3, gender = $4, date_of_birth = $5,
		    mobile_number = $6, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	cmd, err := r.db.Exec(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Gender, user.DateOfBirth, user.MobileNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword also records the credential change time, which invalidates
// every token issued before it.
func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash []byte, changedAt time.Time) error {
	const query = `
		UPDATE users
		SET password_hash = $2, change_credential_time = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	cmd, err := r.db.Exec(ctx, query, id, passwordHash, changedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Confirm(ctx context.Context, id string) error {
	const query = `UPDATE users SET is_confirmed = TRUE, updated_at = NOW() WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetProfilePic(ctx context.Context, id string, att *models.Attachment) error {
	url, key := attachmentCols(att)
	const query = `UPDATE users SET profile_pic_url = $2, profile_pic_key = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, url, key)
	return err
}

func (r *UserRepository) SetCoverPic(ctx context.Context, id string, att *models.Attachment) error {
	url, key := attachmentCols(att)
	const query = `UPDATE users SET cover_pic_url = $2, cover_pic_key = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, url, key)
	return err
}

// SetBanned bans (non-nil) or unbans (nil) a user.
func (r *UserRepository) SetBanned(ctx context.Context, id string, at *time.Time) (models.User, error) {
	const query = `
		UPDATE users SET banned_at = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return r.scanOne(r.db.QueryRow(ctx, query, id, at))
}

func (r *UserRepository) scanOne(row pgx.Row) (models.User, error) {
	var (
		user                                               models.User
		profileURL, profileKey, coverURL, coverKey, mobile *string
	)
	if err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&user.Provider,
		&user.Gender,
		&user.DateOfBirth,
		&mobile,
		&user.Role,
		&user.IsConfirmed,
		&user.DeletedAt,
		&user.BannedAt,
		&user.ChangeCredentialTime,
		&profileURL,
		&profileKey,
		&coverURL,
		&coverKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	if mobile != nil {
		user.MobileNumber = *mobile
	}
	user.ProfilePic = attachment(profileURL, profileKey)
	user.CoverPic = attachment(coverURL, coverKey)
	return user, nil
}
