package service

import (
	"context"
	"errors"

	"jobboard/internal/apperr"
	"jobboard/internal/config"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/security"
)

// UserSource is the single lookup the authenticator needs.
type UserSource interface {
	GetByID(ctx context.Context, id string) (models.User, error)
}

// Authenticator resolves a presented credential to a live user record. It is
// pure validation: it runs at the HTTP boundary, at the realtime handshake,
// and again before every inbound realtime event, because a credential can be
// revoked mid-session (ban, account deletion, password change).
type Authenticator struct {
	users UserSource
	cfg   config.SecurityConfig
}

func NewAuthenticator(users UserSource, cfg config.SecurityConfig) *Authenticator {
	return &Authenticator{users: users, cfg: cfg}
}

// Authenticate verifies an access credential of the form "<Scheme> <jwt>".
// The System scheme selects the admin secret pair, Bearer the user pair.
func (a *Authenticator) Authenticate(ctx context.Context, authorization string) (models.User, error) {
	return a.authenticate(ctx, authorization, a.cfg.AdminAccessSecret, a.cfg.UserAccessSecret)
}

// AuthenticateRefresh is the same check against the refresh secret pair.
func (a *Authenticator) AuthenticateRefresh(ctx context.Context, authorization string) (models.User, error) {
	return a.authenticate(ctx, authorization, a.cfg.AdminRefreshSecret, a.cfg.UserRefreshSecret)
}

func (a *Authenticator) authenticate(ctx context.Context, authorization, adminSecret, userSecret string) (models.User, error) {
	scheme, token, err := security.SplitCredential(authorization)
	if err != nil {
		return models.User{}, apperr.Wrap(401, err.Error(), err)
	}

	secret := userSecret
	if scheme == security.SchemeSystem {
		secret = adminSecret
	}

	claims, err := security.ParseToken(token, secret)
	if err != nil {
		return models.User{}, apperr.Wrap(401, "invalid token", err)
	}
	if claims.UserID == "" {
		return models.User{}, apperr.Unauthorized("invalid token payload")
	}

	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, apperr.Unauthorized("user not found")
		}
		return models.User{}, err
	}
	if !user.Active() {
		return models.User{}, apperr.Unauthorized("user deleted or banned")
	}

	// A token minted before the last credential change is revoked even if
	// its expiry has not passed.
	if user.ChangeCredentialTime != nil {
		if claims.IssuedAt == nil || !claims.IssuedAt.Time.After(*user.ChangeCredentialTime) {
			return models.User{}, apperr.Unauthorized("credentials changed, please log in again")
		}
	}

	return user, nil
}
