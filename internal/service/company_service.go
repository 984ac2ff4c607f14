package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"jobboard/internal/apperr"
	"jobboard/internal/config"
	"jobboard/internal/ids"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/storage"
)

type CompanyService struct {
	companies *repository.CompanyRepository
	users     *repository.UserRepository
	jobs      *repository.JobRepository
	apps      *repository.ApplicationRepository
	cascade   *CascadeEngine
	store     *storage.ObjectStore
	cfg       *config.AppConfig
	log       zerolog.Logger
}

func NewCompanyService(
	companies *repository.CompanyRepository,
	users *repository.UserRepository,
	jobs *repository.JobRepository,
	apps *repository.ApplicationRepository,
	cascade *CascadeEngine,
	store *storage.ObjectStore,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *CompanyService {
	return &CompanyService{
		companies: companies,
		users:     users,
		jobs:      jobs,
		apps:      apps,
		cascade:   cascade,
		store:     store,
		cfg:       cfg,
		log:       log,
	}
}

type CompanyInput struct {
	Name              string
	Description       string
	Industry          string
	Address           string
	NumberOfEmployees string
	Email             string
	HRs               []string
}

func (s *CompanyService) Create(ctx context.Context, actor models.User, input CompanyInput) (models.Company, error) {
	if err := s.validateHRs(ctx, actor.ID, input.HRs); err != nil {
		return models.Company{}, err
	}

	company := models.Company{
		ID:                ids.New(),
		Name:              input.Name,
		Description:       input.Description,
		Industry:          input.Industry,
		Address:           input.Address,
		NumberOfEmployees: input.NumberOfEmployees,
		Email:             input.Email,
		CreatedBy:         actor.ID,
		HRs:               input.HRs,
	}

	if err := s.companies.Create(ctx, company); err != nil {
		if errors.Is(err, repository.ErrCompanyExists) {
			return models.Company{}, apperr.Conflict("company already exists")
		}
		return models.Company{}, err
	}
	return s.companies.GetByID(ctx, company.ID)
}

func (s *CompanyService) Update(ctx context.Context, actor models.User, companyID string, input CompanyInput) (models.Company, error) {
	company, err := s.getLive(ctx, companyID)
	if err != nil {
		return models.Company{}, err
	}
	if !company.IsOwner(actor.ID) {
		return models.Company{}, apperr.Forbidden("not authorized")
	}
	if err := s.validateHRs(ctx, company.CreatedBy, input.HRs); err != nil {
		return models.Company{}, err
	}

	company.Name = input.Name
	company.Description = input.Description
	company.Industry = input.Industry
	company.Address = input.Address
	company.NumberOfEmployees = input.NumberOfEmployees
	company.Email = input.Email
	company.HRs = input.HRs

	if err := s.companies.Update(ctx, company); err != nil {
		if errors.Is(err, repository.ErrCompanyExists) {
			return models.Company{}, apperr.Conflict("company name or email already taken")
		}
		return models.Company{}, err
	}
	return s.companies.GetByID(ctx, companyID)
}

// SoftDelete is allowed for the owner or an admin; dependents go through
// the cascade engine.
func (s *CompanyService) SoftDelete(ctx context.Context, actor models.User, companyID string) error {
	company, err := s.getLive(ctx, companyID)
	if err != nil {
		return err
	}
	if !company.IsOwner(actor.ID) && actor.Role != models.UserRoleAdmin {
		return apperr.Forbidden("not authorized")
	}
	return s.cascade.DeleteCompany(ctx, companyID)
}

type CompanyWithJobs struct {
	Company models.Company
	Jobs    []models.Job
}

func (s *CompanyService) GetWithJobs(ctx context.Context, companyID string) (CompanyWithJobs, error) {
	company, err := s.getLive(ctx, companyID)
	if err != nil {
		return CompanyWithJobs{}, err
	}
	jobs, err := s.jobs.ListByCompany(ctx, companyID)
	if err != nil {
		return CompanyWithJobs{}, err
	}
	return CompanyWithJobs{Company: company, Jobs: jobs}, nil
}

func (s *CompanyService) Search(ctx context.Context, name string) ([]models.Company, error) {
	return s.companies.SearchByName(ctx, name)
}

// KickHR removes a user from the company's HR list. The actor must be the
// owner or an HR themselves.
func (s *CompanyService) KickHR(ctx context.Context, actor models.User, companyID, targetUserID string) error {
	company, err := s.getLive(ctx, companyID)
	if err != nil {
		return err
	}
	if !company.IsOwner(actor.ID) && !company.IsHR(actor.ID) {
		return apperr.Forbidden("not authorized")
	}
	if !company.IsHR(targetUserID) {
		return apperr.NotFound("user is not an HR of this company")
	}
	return s.companies.RemoveHR(ctx, companyID, targetUserID)
}

func (s *CompanyService) UploadLogo(ctx context.Context, actor models.User, companyID string, r io.Reader, size int64, contentType string) (models.Company, error) {
	return s.uploadAsset(ctx, actor, companyID, r, size, contentType, "logo", s.companies.SetLogo)
}

func (s *CompanyService) UploadCoverPic(ctx context.Context, actor models.User, companyID string, r io.Reader, size int64, contentType string) (models.Company, error) {
	return s.uploadAsset(ctx, actor, companyID, r, size, contentType, "cover", s.companies.SetCoverPic)
}

func (s *CompanyService) uploadAsset(
	ctx context.Context,
	actor models.User,
	companyID string,
	r io.Reader,
	size int64,
	contentType string,
	slot string,
	set func(context.Context, string, *models.Attachment) error,
) (models.Company, error) {
	company, err := s.getLive(ctx, companyID)
	if err != nil {
		return models.Company{}, err
	}
	if !company.IsOwner(actor.ID) {
		return models.Company{}, apperr.Forbidden("not authorized")
	}

	key := fmt.Sprintf("%s/%s/%s", companyID, slot, ids.New())
	att, err := s.store.Upload(ctx, s.cfg.Storage.BucketCompany, key, r, size, contentType)
	if err != nil {
		return models.Company{}, err
	}
	if err := set(ctx, companyID, &att); err != nil {
		return models.Company{}, err
	}
	return s.companies.GetByID(ctx, companyID)
}

func (s *CompanyService) DeleteLogo(ctx context.Context, actor models.User, companyID string) error {
	return s.deleteAsset(ctx, actor, companyID,
		func(c models.Company) *models.Attachment { return c.Logo }, s.companies.SetLogo)
}

func (s *CompanyService) DeleteCoverPic(ctx context.Context, actor models.User, companyID string) error {
	return s.deleteAsset(ctx, actor, companyID,
		func(c models.Company) *models.Attachment { return c.CoverPic }, s.companies.SetCoverPic)
}

func (s *CompanyService) deleteAsset(
	ctx context.Context,
	actor models.User,
	companyID string,
	get func(models.Company) *models.Attachment,
	set func(context.Context, string, *models.Attachment) error,
) error {
	company, err := s.getLive(ctx, companyID)
	if err != nil {
		return err
	}
	if !company.IsOwner(actor.ID) && actor.Role != models.UserRoleAdmin {
		return apperr.Forbidden("not authorized")
	}
	att := get(company)
	if att == nil {
		return apperr.BadRequest("already deleted")
	}
	if err := set(ctx, companyID, nil); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, att.Key); err != nil {
		s.log.Warn().Err(err).Str("key", att.Key).Msg("remove stored object failed")
	}
	return nil
}

func (s *CompanyService) getLive(ctx context.Context, companyID string) (models.Company, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return models.Company{}, apperr.NotFound("company not found")
		}
		return models.Company{}, err
	}
	if company.DeletedAt != nil {
		return models.Company{}, apperr.NotFound("company not found")
	}
	return company, nil
}

func (s *CompanyService) validateHRs(ctx context.Context, ownerID string, hrs []string) error {
	for _, hrID := range hrs {
		if hrID == ownerID {
			return apperr.BadRequest("company owner cannot be listed as an HR")
		}
		if _, err := s.users.GetByID(ctx, hrID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return apperr.NotFound("HR not found")
			}
			return err
		}
	}
	return nil
}
