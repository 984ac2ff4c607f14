package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"jobboard/internal/models"
)

var ErrCompanyNotFound = errors.New("company not found")
var ErrCompanyExists = errors.New("company already exists")

const companyColumns = `
	id, name, description, industry, address, number_of_employees, email,
	created_by, logo_url, logo_key, cover_url, cover_key, hrs, banned_at,
	deleted_at, legal_url, legal_key, approved_by_admin, created_at, updated_at
`

type CompanyRepository struct {
	db DB
}

func NewCompanyRepository(db DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, company models.Company) error {
	const query = `
		INSERT INTO companies (
			id, name, description, industry, address, number_of_employees, email,
			created_by, hrs, legal_url, legal_key, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()
		)
	`
	legalURL, legalKey := attachmentCols(company.LegalAttachment)
	hrs := company.HRs
	if hrs == nil {
		hrs = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		company.ID,
		company.Name,
		company.Description,
		company.Industry,
		company.Address,
		company.NumberOfEmployees,
		company.Email,
		company.CreatedBy,
		hrs,
		legalURL,
		legalKey,
	)
	if isUniqueViolation(err) {
		return ErrCompanyExists
	}
	return err
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (models.Company, error) {
	const query = `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *CompanyRepository) Update(ctx context.Context, company models.Company) error {
	const query = `
		UPDATE companies
		SET name = $2, description = $3, industry = $4, address = $5,
		    number_of_employees = $6, email = $7, hrs = $8, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	hrs := company.HRs
	if hrs == nil {
		hrs = []string{}
	}
	cmd, err := r.db.Exec(ctx, query,
		company.ID, company.Name, company.Description, company.Industry,
		company.Address, company.NumberOfEmployees, company.Email, hrs)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCompanyExists
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) SearchByName(ctx context.Context, name string) ([]models.Company, error) {
	const query = `
		SELECT ` + companyColumns + `
		FROM companies
		WHERE name ILIKE '%' || $1 || '%' AND deleted_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		company, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

// AnyByOwner reports whether the user created at least one live company.
func (r *CompanyRepository) AnyByOwner(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM companies WHERE created_by = $1 AND deleted_at IS NULL)`
	var found bool
	err := r.db.QueryRow(ctx, query, userID).Scan(&found)
	return found, err
}

// AnyWithHR reports whether the user sits on any company's HR list.
func (r *CompanyRepository) AnyWithHR(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM companies WHERE $1 = ANY(hrs) AND deleted_at IS NULL)`
	var found bool
	err := r.db.QueryRow(ctx, query, userID).Scan(&found)
	return found, err
}

// RemoveHR drops a user from the HR set; atomic at the row level.
func (r *CompanyRepository) RemoveHR(ctx context.Context, companyID string, userID string) error {
	const query = `
		UPDATE companies SET hrs = array_remove(hrs, $2), updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.db.Exec(ctx, query, companyID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) SetLogo(ctx context.Context, id string, att *models.Attachment) error {
	url, key := attachmentCols(att)
	const query = `UPDATE companies SET logo_url = $2, logo_key = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, url, key)
	return err
}

func (r *CompanyRepository) SetCoverPic(ctx context.Context, id string, att *models.Attachment) error {
	url, key := attachmentCols(att)
	const query = `UPDATE companies SET cover_url = $2, cover_key = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, url, key)
	return err
}

func (r *CompanyRepository) SetBanned(ctx context.Context, id string, at *time.Time) (models.Company, error) {
	const query = `
		UPDATE companies SET banned_at = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + companyColumns
	return r.scanOne(r.db.QueryRow(ctx, query, id, at))
}

func (r *CompanyRepository) SetApproved(ctx context.Context, id string) (models.Company, error) {
	const query = `
		UPDATE companies SET approved_by_admin = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + companyColumns
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *CompanyRepository) scanOne(row pgx.Row) (models.Company, error) {
	var (
		company                                        models.Company
		logoURL, logoKey, coverURL, coverKey           *string
		legalURL, legalKey                             *string
	)
	if err := row.Scan(
		&company.ID,
		&company.Name,
		&company.Description,
		&company.Industry,
		&company.Address,
		&company.NumberOfEmployees,
		&company.Email,
		&company.CreatedBy,
		&logoURL,
		&logoKey,
		&coverURL,
		&coverKey,
		&company.HRs,
		&company.BannedAt,
		&company.DeletedAt,
		&legalURL,
		&legalKey,
		&company.ApprovedByAdmin,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Company{}, ErrCompanyNotFound
		}
		return models.Company{}, err
	}
	company.Logo = attachment(logoURL, logoKey)
	company.CoverPic = attachment(coverURL, coverKey)
	company.LegalAttachment = attachment(legalURL, legalKey)
	return company, nil
}
