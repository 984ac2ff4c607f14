package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"jobboard/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

const jobColumns = `
	id, title, location, working_time, seniority_level, description,
	technical_skills, soft_skills, added_by, updated_by, closed, company_id,
	deleted_at, created_at, updated_at
`

// JobFilter narrows listing and search queries. Zero values are ignored.
type JobFilter struct {
	CompanyID       string
	Title           string
	Location        models.JobLocation
	WorkingTime     models.WorkingTime
	SeniorityLevel  models.SeniorityLevel
	TechnicalSkills []string
}

type JobRepository struct {
	db DB
}

func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job models.Job) error {
	const query = `
		INSERT INTO jobs (
			id, title, location, working_time, seniority_level, description,
			technical_skills, soft_skills, added_by, closed, company_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
	`
	_, err := r.db.Exec(ctx, query,
		job.ID,
		job.Title,
		job.Location,
		job.WorkingTime,
		job.SeniorityLevel,
		job.Description,
		job.TechnicalSkills,
		job.SoftSkills,
		job.AddedBy,
		job.Closed,
		job.CompanyID,
	)
	return err
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (models.Job, error) {
	const query = `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *JobRepository) Update(ctx context.Context, job models.Job) error {
	const query = `
		UPDATE jobs
		SET title = $2, location = $3, working_time = $4, seniority_level = $5,
		    description = $6, technical_skills = $7, soft_skills = $8,
		    closed = $9, company_id = $10, updated_by = $11, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	cmd, err := r.db.Exec(ctx, query,
		job.ID, job.Title, job.Location, job.WorkingTime, job.SeniorityLevel,
		job.Description, job.TechnicalSkills, job.SoftSkills, job.Closed,
		job.CompanyID, job.UpdatedBy)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

// List returns one page of open listings plus the total match count.
func (r *JobRepository) List(ctx context.Context, filter JobFilter, limit, offset int) ([]models.Job, int, error) {
	where, args := buildJobFilter(filter)

	countQuery := `SELECT COUNT(*) FROM jobs ` + where
	var count int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, count, rows.Err()
}

// ListByCompany returns every live job of one company, newest first.
func (r *JobRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Job, error) {
	const query = `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE company_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func buildJobFilter(filter JobFilter) (string, []any) {
	conds := []string{"deleted_at IS NULL"}
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.CompanyID != "" {
		add("company_id = $%d", filter.CompanyID)
	}
	if filter.Title != "" {
		add("title ILIKE '%%' || $%d || '%%'", filter.Title)
	}
	if filter.Location != "" {
		add("location = $%d", filter.Location)
	}
	if filter.WorkingTime != "" {
		add("working_time = $%d", filter.WorkingTime)
	}
	if filter.SeniorityLevel != "" {
		add("seniority_level = $%d", filter.SeniorityLevel)
	}
	if len(filter.TechnicalSkills) > 0 {
		add("technical_skills && $%d", filter.TechnicalSkills)
	}

	return "WHERE " + strings.Join(conds, " AND "), args
}

func (r *JobRepository) scanOne(row pgx.Row) (models.Job, error) {
	var job models.Job
	if err := row.Scan(
		&job.ID,
		&job.Title,
		&job.Location,
		&job.WorkingTime,
		&job.SeniorityLevel,
		&job.Description,
		&job.TechnicalSkills,
		&job.SoftSkills,
		&job.AddedBy,
		&job.UpdatedBy,
		&job.Closed,
		&job.CompanyID,
		&job.DeletedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Job{}, ErrJobNotFound
		}
		return models.Job{}, err
	}
	return job, nil
}
