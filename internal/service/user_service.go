package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"jobboard/internal/apperr"
	"jobboard/internal/config"
	"jobboard/internal/ids"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/storage"
)

// DisplayRole is derived, not stored: whoever created a company shows as
// its owner, anyone on an HR list shows as HR.
const (
	DisplayRoleUser         = "User"
	DisplayRoleCompanyOwner = "Company Owner"
	DisplayRoleHR           = "HR"
)

type UserService struct {
	users     *repository.UserRepository
	companies *repository.CompanyRepository
	cascade   *CascadeEngine
	store     *storage.ObjectStore
	cfg       *config.AppConfig
	log       zerolog.Logger
}

func NewUserService(
	users *repository.UserRepository,
	companies *repository.CompanyRepository,
	cascade *CascadeEngine,
	store *storage.ObjectStore,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		companies: companies,
		cascade:   cascade,
		store:     store,
		cfg:       cfg,
		log:       log,
	}
}

type AccountView struct {
	User        models.User
	DisplayRole string
}

func (s *UserService) GetAccount(ctx context.Context, userID string) (AccountView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AccountView{}, apperr.NotFound("user not found")
		}
		return AccountView{}, err
	}

	role := DisplayRoleUser
	owns, err := s.companies.AnyByOwner(ctx, userID)
	if err != nil {
		return AccountView{}, err
	}
	if owns {
		role = DisplayRoleCompanyOwner
	} else {
		isHR, err := s.companies.AnyWithHR(ctx, userID)
		if err != nil {
			return AccountView{}, err
		}
		if isHR {
			role = DisplayRoleHR
		}
	}

	return AccountView{User: user, DisplayRole: role}, nil
}

// GetProfile returns the public subset of another user's account.
func (s *UserService) GetProfile(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.NotFound("user not found")
		}
		return models.User{}, err
	}
	if user.DeletedAt != nil {
		return models.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

type UpdateAccountInput struct {
	FirstName    string
	LastName     string
	Gender       models.Gender
	DateOfBirth  time.Time
	MobileNumber string
}

func (s *UserService) UpdateAccount(ctx context.Context, userID string, input UpdateAccountInput) (models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.NotFound("user not found")
		}
		return models.User{}, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Gender = input.Gender
	user.DateOfBirth = input.DateOfBirth
	user.MobileNumber = input.MobileNumber

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return models.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

// SoftDeleteAccount hands the whole job to the cascade engine: dependents
// first, then the soft-delete marker, all in one transaction.
func (s *UserService) SoftDeleteAccount(ctx context.Context, userID string) error {
	return s.cascade.DeleteUser(ctx, userID)
}

func (s *UserService) UploadProfilePic(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (models.User, error) {
	return s.uploadPic(ctx, userID, r, size, contentType, "profile", s.users.SetProfilePic)
}

func (s *UserService) UploadCoverPic(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (models.User, error) {
	return s.uploadPic(ctx, userID, r, size, contentType, "cover", s.users.SetCoverPic)
}

func (s *UserService) uploadPic(
	ctx context.Context,
	userID string,
	r io.Reader,
	size int64,
	contentType string,
	slot string,
	set func(context.Context, string, *models.Attachment) error,
) (models.User, error) {
	key := fmt.Sprintf("%s/%s/%s", userID, slot, ids.New())
	att, err := s.store.Upload(ctx, s.cfg.Storage.BucketProfile, key, r, size, contentType)
	if err != nil {
		return models.User{}, err
	}
	if err := set(ctx, userID, &att); err != nil {
		return models.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) DeleteProfilePic(ctx context.Context, userID string) error {
	return s.deletePic(ctx, userID, func(u models.User) *models.Attachment { return u.ProfilePic }, s.users.SetProfilePic)
}

func (s *UserService) DeleteCoverPic(ctx context.Context, userID string) error {
	return s.deletePic(ctx, userID, func(u models.User) *models.Attachment { return u.CoverPic }, s.users.SetCoverPic)
}

func (s *UserService) deletePic(
	ctx context.Context,
	userID string,
	get func(models.User) *models.Attachment,
	set func(context.Context, string, *models.Attachment) error,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	att := get(user)
	if att == nil {
		return apperr.BadRequest("picture already deleted")
	}
	if err := set(ctx, userID, nil); err != nil {
		return err
	}
	if err := s.store.Remove(ctx, att.Key); err != nil {
		s.log.Warn().Err(err).Str("key", att.Key).Msg("remove stored object failed")
	}
	return nil
}
