package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard/internal/config"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/security"
)

type fakeUserSource struct {
	users map[string]models.User
}

func (f *fakeUserSource) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		UserAccessSecret:   "user-access",
		UserRefreshSecret:  "user-refresh",
		AdminAccessSecret:  "admin-access",
		AdminRefreshSecret: "admin-refresh",
		AccessTTL:          time.Hour,
		RefreshTTL:         24 * time.Hour,
	}
}

func newTestAuthenticator(users ...models.User) *Authenticator {
	source := &fakeUserSource{users: map[string]models.User{}}
	for _, u := range users {
		source.users[u.ID] = u
	}
	return NewAuthenticator(source, testSecurityConfig())
}

func TestAuthenticateBearerSelectsUserSecret(t *testing.T) {
	auth := newTestAuthenticator(models.User{ID: "u1", Role: models.UserRoleUser})

	token, err := security.GenerateToken("user-access", "u1", time.Hour)
	require.NoError(t, err)

	user, err := auth.Authenticate(context.Background(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestAuthenticateSystemSelectsAdminSecret(t *testing.T) {
	auth := newTestAuthenticator(models.User{ID: "a1", Role: models.UserRoleAdmin})

	token, err := security.GenerateToken("admin-access", "a1", time.Hour)
	require.NoError(t, err)

	user, err := auth.Authenticate(context.Background(), "System "+token)
	require.NoError(t, err)
	assert.Equal(t, "a1", user.ID)

	// The same token under the Bearer scheme verifies against the user
	// secret and must fail.
	_, err = auth.Authenticate(context.Background(), "Bearer "+token)
	assert.Error(t, err)
}

func TestAuthenticateRejectsUnknownScheme(t *testing.T) {
	auth := newTestAuthenticator(models.User{ID: "u1"})

	token, err := security.GenerateToken("user-access", "u1", time.Hour)
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), "Token "+token)
	assert.Error(t, err)

	_, err = auth.Authenticate(context.Background(), "")
	assert.Error(t, err)
}

func TestAuthenticateRejectsInactiveUser(t *testing.T) {
	now := time.Now()
	banned := models.User{ID: "banned", BannedAt: &now}
	deleted := models.User{ID: "deleted", DeletedAt: &now}
	auth := newTestAuthenticator(banned, deleted)

	for _, id := range []string{"banned", "deleted"} {
		token, err := security.GenerateToken("user-access", id, time.Hour)
		require.NoError(t, err)

		_, err = auth.Authenticate(context.Background(), "Bearer "+token)
		assert.Error(t, err, id)
	}
}

func TestAuthenticateRevocationByCredentialChange(t *testing.T) {
	token, err := security.GenerateToken("user-access", "u1", time.Hour)
	require.NoError(t, err)

	// Credential changed after the token was minted: revoked.
	changed := time.Now().Add(time.Minute)
	auth := newTestAuthenticator(models.User{ID: "u1", ChangeCredentialTime: &changed})
	_, err = auth.Authenticate(context.Background(), "Bearer "+token)
	assert.Error(t, err)

	// Credential changed before the token was minted: still valid.
	earlier := time.Now().Add(-time.Hour)
	auth = newTestAuthenticator(models.User{ID: "u1", ChangeCredentialTime: &earlier})
	_, err = auth.Authenticate(context.Background(), "Bearer "+token)
	assert.NoError(t, err)
}

func TestAuthenticateRefreshUsesRefreshSecrets(t *testing.T) {
	auth := newTestAuthenticator(models.User{ID: "u1"})

	refresh, err := security.GenerateToken("user-refresh", "u1", time.Hour)
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), "Bearer "+refresh)
	assert.Error(t, err, "refresh token must not pass access validation")

	user, err := auth.AuthenticateRefresh(context.Background(), "Bearer "+refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	auth := newTestAuthenticator()

	token, err := security.GenerateToken("user-access", "ghost", time.Hour)
	require.NoError(t, err)

	_, err = auth.Authenticate(context.Background(), "Bearer "+token)
	assert.Error(t, err)
}
