package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"jobboard/internal/apperr"
	"jobboard/internal/config"
	"jobboard/internal/ids"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/security"
)

// Mailer dispatches an outbound email; delivery is fire-and-forget from the
// caller's point of view.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// Scheme is what the client must present the tokens under: System for
	// admins, Bearer for everyone else.
	Scheme security.Scheme
}

type AuthService struct {
	users  *repository.UserRepository
	otps   *repository.OTPRepository
	mailer Mailer
	cfg    *config.AppConfig
	log    zerolog.Logger
}

func NewAuthService(
	users *repository.UserRepository,
	otps *repository.OTPRepository,
	mailer Mailer,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		otps:   otps,
		mailer: mailer,
		cfg:    cfg,
		log:    log,
	}
}

type RegisterInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	Gender       models.Gender
	DateOfBirth  time.Time
	MobileNumber string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Email == "" || input.Password == "" {
		return models.User{}, apperr.BadRequest("email and password required")
	}
	if !input.DateOfBirth.Before(time.Now()) {
		return models.User{}, apperr.BadRequest("invalid birth date")
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: passwordHash,
		Provider:     models.ProviderSystem,
		Gender:       input.Gender,
		DateOfBirth:  input.DateOfBirth,
		MobileNumber: input.MobileNumber,
		Role:         models.UserRoleUser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return models.User{}, apperr.Conflict("email already exists")
		}
		return models.User{}, err
	}

	if err := s.sendOTP(ctx, user, models.OTPKindConfirmEmail); err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("send confirm otp failed")
	}

	return user, nil
}

// ConfirmEmail validates the most recent confirmation code. An expired code
// is replaced and re-sent rather than treated as a hard failure.
func (s *AuthService) ConfirmEmail(ctx context.Context, email, code string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}

	otp, err := s.otps.LatestByKind(ctx, user.ID, models.OTPKindConfirmEmail)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return apperr.NotFound("confirm otp not found")
		}
		return err
	}

	if time.Now().After(otp.ExpiresAt) {
		if err := s.sendOTP(ctx, user, models.OTPKindConfirmEmail); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("resend confirm otp failed")
		}
		return apperr.BadRequest("otp expired, another otp sent to your email")
	}

	if !security.VerifyOTP(code, otp.CodeHash) {
		return apperr.BadRequest("invalid otp")
	}

	return s.users.Confirm(ctx, user.ID)
}

type LoginResult struct {
	Tokens TokenPair
	User   models.User
}

func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginResult{}, apperr.NotFound("user not found")
		}
		return LoginResult{}, err
	}

	if !user.Active() {
		return LoginResult{}, apperr.Forbidden("account deleted or banned")
	}

	if !user.IsConfirmed {
		if err := s.sendOTP(ctx, user, models.OTPKindConfirmEmail); err != nil {
			s.log.Error().Err(err).Str("user_id", user.ID).Msg("resend confirm otp failed")
		}
		return LoginResult{}, apperr.Forbidden("verify account first")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Tokens: tokens, User: user}, nil
}

// Refresh exchanges a valid refresh credential for a fresh access token.
func (s *AuthService) Refresh(user models.User) (TokenPair, error) {
	return s.issueTokens(user)
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	return s.sendOTP(ctx, user, models.OTPKindForgetPassword)
}

// ResetPassword sets a new password and records the credential change time,
// which revokes every token issued before this moment.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}

	otp, err := s.otps.LatestByKind(ctx, user.ID, models.OTPKindForgetPassword)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return apperr.NotFound("reset otp not found")
		}
		return err
	}
	if time.Now().After(otp.ExpiresAt) {
		return apperr.BadRequest("otp expired")
	}
	if !security.VerifyOTP(code, otp.CodeHash) {
		return apperr.BadRequest("invalid otp")
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash, time.Now()); err != nil {
		return err
	}
	return s.otps.DeleteByUserKind(ctx, user.ID, models.OTPKindForgetPassword)
}

func (s *AuthService) issueTokens(user models.User) (TokenPair, error) {
	accessSecret := s.cfg.Security.UserAccessSecret
	refreshSecret := s.cfg.Security.UserRefreshSecret
	scheme := security.SchemeBearer
	if user.Role == models.UserRoleAdmin {
		accessSecret = s.cfg.Security.AdminAccessSecret
		refreshSecret = s.cfg.Security.AdminRefreshSecret
		scheme = security.SchemeSystem
	}

	access, err := security.GenerateToken(accessSecret, user.ID, s.cfg.Security.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := security.GenerateToken(refreshSecret, user.ID, s.cfg.Security.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh, Scheme: scheme}, nil
}

func (s *AuthService) sendOTP(ctx context.Context, user models.User, kind models.OTPKind) error {
	code, hash, err := security.GenerateOTP()
	if err != nil {
		return err
	}

	otp := models.OTP{
		ID:        ids.New(),
		UserID:    user.ID,
		CodeHash:  hash,
		Kind:      kind,
		ExpiresAt: time.Now().Add(s.cfg.Security.OTPTTL),
	}
	if err := s.otps.Create(ctx, otp); err != nil {
		return err
	}

	subject := "Confirm your email"
	if kind == models.OTPKindForgetPassword {
		subject = "Reset your password"
	}
	body := fmt.Sprintf("<p>Hello %s,</p><p>Your verification code is <b>%s</b>. It expires in %s.</p>",
		user.Username(), code, s.cfg.Security.OTPTTL)

	return s.mailer.Send(ctx, user.Email, subject, body)
}
