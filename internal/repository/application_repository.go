package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"jobboard/internal/models"
)

var ErrApplicationNotFound = errors.New("application not found")
var ErrAlreadyApplied = errors.New("already applied")

type ApplicationRepository struct {
	db DB
}

func NewApplicationRepository(db DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app models.Application) error {
	const query = `
		INSERT INTO applications (id, job_id, user_id, cv_url, cv_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	cvURL, cvKey := attachmentCols(app.UserCV)
	_, err := r.db.Exec(ctx, query, app.ID, app.JobID, app.UserID, cvURL, cvKey, app.Status)
	if isUniqueViolation(err) {
		return ErrAlreadyApplied
	}
	return err
}

func (r *ApplicationRepository) FindByJobAndUser(ctx context.Context, jobID, userID string) (models.Application, error) {
	const query = `
		SELECT id, job_id, user_id, cv_url, cv_key, status, created_at, updated_at
		FROM applications
		WHERE job_id = $1 AND user_id = $2
	`
	row := r.db.QueryRow(ctx, query, jobID, userID)
	return r.scanOne(row)
}

// ListByJob returns one page of a job's applications with applicant fields
// populated, newest first.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string, limit, offset int) ([]models.Application, int, error) {
	const countQuery = `SELECT COUNT(*) FROM applications WHERE job_id = $1`
	var count int
	if err := r.db.QueryRow(ctx, countQuery, jobID).Scan(&count); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT a.id, a.job_id, a.user_id, a.cv_url, a.cv_key, a.status,
		       a.created_at, a.updated_at,
		       u.first_name || ' ' || u.last_name, u.email
		FROM applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.job_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, jobID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		var (
			app          models.Application
			cvURL, cvKey *string
		)
		if err := rows.Scan(
			&app.ID, &app.JobID, &app.UserID, &cvURL, &cvKey, &app.Status,
			&app.CreatedAt, &app.UpdatedAt, &app.ApplicantName, &app.ApplicantEmail,
		); err != nil {
			return nil, 0, err
		}
		app.UserCV = attachment(cvURL, cvKey)
		apps = append(apps, app)
	}
	return apps, count, rows.Err()
}

// ListByCompanyAndDay returns every application submitted to any of the
// company's jobs within [day, day+24h), applicant and job title populated.
func (r *ApplicationRepository) ListByCompanyAndDay(ctx context.Context, companyID string, day time.Time) ([]models.Application, error) {
	const query = `
		SELECT a.id, a.job_id, a.user_id, a.cv_url, a.cv_key, a.status,
		       a.created_at, a.updated_at,
		       u.first_name || ' ' || u.last_name, u.email, j.title
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		JOIN users u ON u.id = a.user_id
		WHERE j.company_id = $1 AND a.created_at >= $2 AND a.created_at < $3
		ORDER BY a.created_at
	`
	rows, err := r.db.Query(ctx, query, companyID, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		var (
			app          models.Application
			cvURL, cvKey *string
		)
		if err := rows.Scan(
			&app.ID, &app.JobID, &app.UserID, &cvURL, &cvKey, &app.Status,
			&app.CreatedAt, &app.UpdatedAt, &app.ApplicantName, &app.ApplicantEmail,
			&app.JobTitle,
		); err != nil {
			return nil, err
		}
		app.UserCV = attachment(cvURL, cvKey)
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id, jobID string, status models.ApplicationStatus) (models.Application, error) {
	const query = `
		UPDATE applications SET status = $3, updated_at = NOW()
		WHERE id = $1 AND job_id = $2
		RETURNING id, job_id, user_id, cv_url, cv_key, status, created_at, updated_at
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id, jobID, status))
}

func (r *ApplicationRepository) scanOne(row pgx.Row) (models.Application, error) {
	var (
		app          models.Application
		cvURL, cvKey *string
	)
	if err := row.Scan(
		&app.ID, &app.JobID, &app.UserID, &cvURL, &cvKey, &app.Status,
		&app.CreatedAt, &app.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Application{}, ErrApplicationNotFound
		}
		return models.Application{}, err
	}
	app.UserCV = attachment(cvURL, cvKey)
	return app, nil
}
