package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// CascadeStore is the referential-cleanup surface the engine drives. The
// context handed to the WithinTx callback scopes every op to one
// transaction, so a failure partway through aborts the whole cascade and
// the parent delete with it.
type CascadeStore interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	UserExists(ctx context.Context, id string) (bool, error)
	CompanyExists(ctx context.Context, id string) (bool, error)
	JobExists(ctx context.Context, id string) (bool, error)

	DeleteApplicationsByUser(ctx context.Context, userID string) error
	DeleteApplicationsByJob(ctx context.Context, jobID string) error
	DeleteChatsByParticipant(ctx context.Context, userID string) error

	ListJobIDsByCreator(ctx context.Context, userID string) ([]string, error)
	ListJobIDsByCompany(ctx context.Context, companyID string) ([]string, error)
	ListCompanyIDsByOwner(ctx context.Context, userID string) ([]string, error)

	MarkUserDeleted(ctx context.Context, id string, at time.Time) error
	MarkCompanyDeleted(ctx context.Context, id string, at time.Time) error
	MarkJobDeleted(ctx context.Context, id string, at time.Time) error
}

// CascadeEngine deletes an entity together with everything that references
// it. Users, companies and jobs are soft-deleted (timestamp marker);
// applications and chats are removed outright.
type CascadeEngine struct {
	store CascadeStore
	log   zerolog.Logger
}

func NewCascadeEngine(store CascadeStore, log zerolog.Logger) *CascadeEngine {
	return &CascadeEngine{store: store, log: log}
}

// DeleteUser removes the user's applications and chats, cascades every job
// and company they created, then soft-deletes the user. Absent or already
// deleted users are a no-op.
func (e *CascadeEngine) DeleteUser(ctx context.Context, userID string) error {
	return e.store.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := e.store.UserExists(ctx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}

		at := time.Now()

		if err := e.store.DeleteApplicationsByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete applications of user %s: %w", userID, err)
		}

		jobIDs, err := e.store.ListJobIDsByCreator(ctx, userID)
		if err != nil {
			return err
		}
		for _, jobID := range jobIDs {
			if err := e.deleteJob(ctx, jobID, at); err != nil {
				return err
			}
		}

		if err := e.store.DeleteChatsByParticipant(ctx, userID); err != nil {
			return fmt.Errorf("delete chats of user %s: %w", userID, err)
		}

		companyIDs, err := e.store.ListCompanyIDsByOwner(ctx, userID)
		if err != nil {
			return err
		}
		for _, companyID := range companyIDs {
			if err := e.deleteCompany(ctx, companyID, at); err != nil {
				return err
			}
		}

		if err := e.store.MarkUserDeleted(ctx, userID, at); err != nil {
			return fmt.Errorf("mark user %s deleted: %w", userID, err)
		}

		e.log.Info().
			Str("user_id", userID).
			Int("jobs", len(jobIDs)).
			Int("companies", len(companyIDs)).
			Msg("user cascade complete")
		return nil
	})
}

// DeleteCompany cascades every job of the company, then soft-deletes it.
func (e *CascadeEngine) DeleteCompany(ctx context.Context, companyID string) error {
	return e.store.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := e.store.CompanyExists(ctx, companyID)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		return e.deleteCompany(ctx, companyID, time.Now())
	})
}

// DeleteJob removes the job's applications, then soft-deletes the job.
func (e *CascadeEngine) DeleteJob(ctx context.Context, jobID string) error {
	return e.store.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := e.store.JobExists(ctx, jobID)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		return e.deleteJob(ctx, jobID, time.Now())
	})
}

func (e *CascadeEngine) deleteCompany(ctx context.Context, companyID string, at time.Time) error {
	jobIDs, err := e.store.ListJobIDsByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	for _, jobID := range jobIDs {
		if err := e.deleteJob(ctx, jobID, at); err != nil {
			return err
		}
	}
	if err := e.store.MarkCompanyDeleted(ctx, companyID, at); err != nil {
		return fmt.Errorf("mark company %s deleted: %w", companyID, err)
	}
	return nil
}

func (e *CascadeEngine) deleteJob(ctx context.Context, jobID string, at time.Time) error {
	if err := e.store.DeleteApplicationsByJob(ctx, jobID); err != nil {
		return fmt.Errorf("delete applications of job %s: %w", jobID, err)
	}
	if err := e.store.MarkJobDeleted(ctx, jobID, at); err != nil {
		return fmt.Errorf("mark job %s deleted: %w", jobID, err)
	}
	return nil
}
