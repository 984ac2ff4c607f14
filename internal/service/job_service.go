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

// Notifier pushes realtime events to connected users. Delivery is best
// effort, a missing or dead connection is never an error.
type Notifier interface {
	Notify(userID, event string, payload any)
	Broadcast(event string, payload any)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Notify(string, string, any) {}
func (NopNotifier) Broadcast(string, any)      {}

type JobService struct {
	jobs      *repository.JobRepository
	companies *repository.CompanyRepository
	users     *repository.UserRepository
	apps      *repository.ApplicationRepository
	cascade   *CascadeEngine
	store     *storage.ObjectStore
	mailer    Mailer
	notifier  Notifier
	cfg       *config.AppConfig
	log       zerolog.Logger
}

func NewJobService(
	jobs *repository.JobRepository,
	companies *repository.CompanyRepository,
	users *repository.UserRepository,
	apps *repository.ApplicationRepository,
	cascade *CascadeEngine,
	store *storage.ObjectStore,
	mailer Mailer,
	notifier Notifier,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *JobService {
	return &JobService{
		jobs:      jobs,
		companies: companies,
		users:     users,
		apps:      apps,
		cascade:   cascade,
		store:     store,
		mailer:    mailer,
		notifier:  notifier,
		cfg:       cfg,
		log:       log.With().Str("component", "job_service").Logger(),
	}
}

type JobInput struct {
	Title           string
	Location        models.JobLocation
	WorkingTime     models.WorkingTime
	SeniorityLevel  models.SeniorityLevel
	Description     string
	TechnicalSkills []string
	SoftSkills      []string
	Closed          bool
}

func (i JobInput) validate() error {
	if i.Title == "" {
		return apperr.BadRequest("title is required")
	}
	if !models.ValidJobLocation(i.Location) {
		return apperr.BadRequest("invalid job location")
	}
	if !models.ValidWorkingTime(i.WorkingTime) {
		return apperr.BadRequest("invalid working time")
	}
	if !models.ValidSeniorityLevel(i.SeniorityLevel) {
		return apperr.BadRequest("invalid seniority level")
	}
	return nil
}

// Create posts a new job under the company. Owner and HRs only.
func (s *JobService) Create(ctx context.Context, actor models.User, companyID string, input JobInput) (models.Job, error) {
	if err := input.validate(); err != nil {
		return models.Job{}, err
	}
	company, err := s.liveCompany(ctx, companyID)
	if err != nil {
		return models.Job{}, err
	}
	if !company.IsOwner(actor.ID) && !company.IsHR(actor.ID) {
		return models.Job{}, apperr.Forbidden("not authorized to post jobs for this company")
	}

	job := models.Job{
		ID:              ids.New(),
		Title:           input.Title,
		Location:        input.Location,
		WorkingTime:     input.WorkingTime,
		SeniorityLevel:  input.SeniorityLevel,
		Description:     input.Description,
		TechnicalSkills: input.TechnicalSkills,
		SoftSkills:      input.SoftSkills,
		AddedBy:         actor.ID,
		Closed:          input.Closed,
		CompanyID:       companyID,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return models.Job{}, fmt.Errorf("create job: %w", err)
	}
	return s.jobs.GetByID(ctx, job.ID)
}

// Update edits a job. Company owner only. Moving the job to another company
// requires the actor to own the target company as well.
func (s *JobService) Update(ctx context.Context, actor models.User, jobID string, companyID string, input JobInput) (models.Job, error) {
	if err := input.validate(); err != nil {
		return models.Job{}, err
	}
	job, err := s.liveJob(ctx, jobID)
	if err != nil {
		return models.Job{}, err
	}
	company, err := s.liveCompany(ctx, job.CompanyID)
	if err != nil {
		return models.Job{}, err
	}
	if !company.IsOwner(actor.ID) {
		return models.Job{}, apperr.Forbidden("only the company owner can edit jobs")
	}
	if companyID != "" && companyID != job.CompanyID {
		target, err := s.liveCompany(ctx, companyID)
		if err != nil {
			return models.Job{}, err
		}
		if !target.IsOwner(actor.ID) {
			return models.Job{}, apperr.Forbidden("not an owner of the target company")
		}
		job.CompanyID = target.ID
	}

	job.Title = input.Title
	job.Location = input.Location
	job.WorkingTime = input.WorkingTime
	job.SeniorityLevel = input.SeniorityLevel
	job.Description = input.Description
	job.TechnicalSkills = input.TechnicalSkills
	job.SoftSkills = input.SoftSkills
	job.Closed = input.Closed
	job.UpdatedBy = &actor.ID

	if err := s.jobs.Update(ctx, job); err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return models.Job{}, apperr.NotFound("job not found")
		}
		return models.Job{}, fmt.Errorf("update job: %w", err)
	}
	return s.jobs.GetByID(ctx, jobID)
}

// SoftDelete retires a job and removes its applications. Company HRs only.
func (s *JobService) SoftDelete(ctx context.Context, actor models.User, jobID string) error {
	job, err := s.liveJob(ctx, jobID)
	if err != nil {
		return err
	}
	company, err := s.liveCompany(ctx, job.CompanyID)
	if err != nil {
		return err
	}
	if !company.IsHR(actor.ID) {
		return apperr.Forbidden("only a company HR can delete jobs")
	}
	return s.cascade.DeleteJob(ctx, jobID)
}

func (s *JobService) Get(ctx context.Context, jobID string) (models.Job, error) {
	return s.liveJob(ctx, jobID)
}

// JobPage is one page of listings.
type JobPage struct {
	Jobs  []models.Job
	Total int
	Page  int
	Size  int
}

// Search returns open jobs matching the filter, paginated.
func (s *JobService) Search(ctx context.Context, filter repository.JobFilter, page, size int) (JobPage, error) {
	page, size = s.normalizePage(page, size)
	jobs, total, err := s.jobs.List(ctx, filter, size, (page-1)*size)
	if err != nil {
		return JobPage{}, fmt.Errorf("list jobs: %w", err)
	}
	return JobPage{Jobs: jobs, Total: total, Page: page, Size: size}, nil
}

// ApplicationPage is one page of a job's applications.
type ApplicationPage struct {
	Applications []models.Application
	Total        int
	Page         int
	Size         int
}

// Applications lists who applied to a job. Owner and HRs only.
func (s *JobService) Applications(ctx context.Context, actor models.User, jobID string, page, size int) (ApplicationPage, error) {
	job, err := s.liveJob(ctx, jobID)
	if err != nil {
		return ApplicationPage{}, err
	}
	company, err := s.liveCompany(ctx, job.CompanyID)
	if err != nil {
		return ApplicationPage{}, err
	}
	if !company.IsOwner(actor.ID) && !company.IsHR(actor.ID) {
		return ApplicationPage{}, apperr.Forbidden("not authorized to view applications")
	}

	page, size = s.normalizePage(page, size)
	apps, total, err := s.apps.ListByJob(ctx, jobID, size, (page-1)*size)
	if err != nil {
		return ApplicationPage{}, fmt.Errorf("list applications: %w", err)
	}
	return ApplicationPage{Applications: apps, Total: total, Page: page, Size: size}, nil
}

// Apply submits an application with an optional CV. Regular users only, one
// application per job, and never to the applicant's own company.
func (s *JobService) Apply(ctx context.Context, actor models.User, jobID string, cv io.Reader, size int64, contentType string) (models.Application, error) {
	if actor.Role != models.UserRoleUser {
		return models.Application{}, apperr.Forbidden("only users can apply to jobs")
	}
	job, err := s.liveJob(ctx, jobID)
	if err != nil {
		return models.Application{}, err
	}
	if job.Closed {
		return models.Application{}, apperr.BadRequest("job is closed")
	}
	company, err := s.liveCompany(ctx, job.CompanyID)
	if err != nil {
		return models.Application{}, err
	}
	if company.IsOwner(actor.ID) || company.IsHR(actor.ID) {
		return models.Application{}, apperr.Forbidden("cannot apply to your own company")
	}
	if _, err := s.apps.FindByJobAndUser(ctx, jobID, actor.ID); err == nil {
		return models.Application{}, apperr.Conflict("already applied to this job")
	} else if !errors.Is(err, repository.ErrApplicationNotFound) {
		return models.Application{}, err
	}

	app := models.Application{
		ID:     ids.New(),
		JobID:  jobID,
		UserID: actor.ID,
		Status: models.ApplicationStatusPending,
	}
	if cv != nil {
		key := fmt.Sprintf("%s/%s/%s", actor.ID, jobID, ids.New())
		attachment, err := s.store.Upload(ctx, s.cfg.Storage.BucketCV, key, cv, size, contentType)
		if err != nil {
			return models.Application{}, fmt.Errorf("upload cv: %w", err)
		}
		app.UserCV = &attachment
	}

	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrAlreadyApplied) {
			return models.Application{}, apperr.Conflict("already applied to this job")
		}
		return models.Application{}, fmt.Errorf("create application: %w", err)
	}

	s.notifier.Broadcast("jobApplication", map[string]any{
		"jobId":  jobID,
		"userId": actor.ID,
	})
	s.log.Info().
		Str("job_id", jobID).
		Str("user_id", actor.ID).
		Msg("application submitted")

	return s.apps.FindByJobAndUser(ctx, jobID, actor.ID)
}

var reviewSubjects = map[models.ApplicationStatus]string{
	models.ApplicationStatusViewed:          "Application Viewed",
	models.ApplicationStatusInConsideration: "Application In Consideration",
	models.ApplicationStatusAccepted:        "Application Accepted",
	models.ApplicationStatusRejected:        "Application Rejected",
}

// Review moves an application to a new status and emails the applicant.
// Company HRs only.
func (s *JobService) Review(ctx context.Context, actor models.User, jobID, applicationID string, status models.ApplicationStatus) (models.Application, error) {
	subject, ok := reviewSubjects[status]
	if !ok {
		return models.Application{}, apperr.BadRequest("invalid application status")
	}
	job, err := s.liveJob(ctx, jobID)
	if err != nil {
		return models.Application{}, err
	}
	company, err := s.liveCompany(ctx, job.CompanyID)
	if err != nil {
		return models.Application{}, err
	}
	if !company.IsHR(actor.ID) {
		return models.Application{}, apperr.Forbidden("only a company HR can review applications")
	}

	app, err := s.apps.UpdateStatus(ctx, applicationID, jobID, status)
	if err != nil {
		if errors.Is(err, repository.ErrApplicationNotFound) {
			return models.Application{}, apperr.NotFound("application not found")
		}
		return models.Application{}, fmt.Errorf("update status: %w", err)
	}

	applicant, err := s.users.GetByID(ctx, app.UserID)
	if err == nil {
		body := fmt.Sprintf("<p>Your application has been %s</p>", status)
		if err := s.mailer.Send(ctx, applicant.Email, subject, body); err != nil {
			s.log.Warn().Err(err).
				Str("application_id", applicationID).
				Msg("review email failed")
		}
	}
	return app, nil
}

func (s *JobService) liveJob(ctx context.Context, jobID string) (models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return models.Job{}, apperr.NotFound("job not found")
		}
		return models.Job{}, err
	}
	if job.DeletedAt != nil {
		return models.Job{}, apperr.NotFound("job not found")
	}
	return job, nil
}

func (s *JobService) liveCompany(ctx context.Context, companyID string) (models.Company, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return models.Company{}, apperr.NotFound("company not found")
		}
		return models.Company{}, err
	}
	if company.DeletedAt != nil || company.BannedAt != nil {
		return models.Company{}, apperr.NotFound("company not found")
	}
	return company, nil
}

func (s *JobService) normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = s.cfg.Pagination.DefaultPage
	}
	if size < 1 {
		size = s.cfg.Pagination.DefaultSize
	}
	return page, size
}
