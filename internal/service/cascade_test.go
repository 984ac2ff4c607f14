package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCascadeState struct {
	users     map[string]bool // id -> live
	companies map[string]string // id -> owner
	jobs      map[string]jobRow
	apps      []appRow
	chats     []chatRow
}

type jobRow struct {
	creator   string
	companyID string
}

type appRow struct {
	jobID  string
	userID string
}

type chatRow struct {
	a, b string
}

type fakeCascadeStore struct {
	state fakeCascadeState

	failMarkUser bool
}

func newFakeCascadeStore() *fakeCascadeStore {
	return &fakeCascadeStore{state: fakeCascadeState{
		users:     map[string]bool{},
		companies: map[string]string{},
		jobs:      map[string]jobRow{},
	}}
}

func (f *fakeCascadeStore) snapshot() fakeCascadeState {
	s := fakeCascadeState{
		users:     map[string]bool{},
		companies: map[string]string{},
		jobs:      map[string]jobRow{},
		apps:      append([]appRow(nil), f.state.apps...),
		chats:     append([]chatRow(nil), f.state.chats...),
	}
	for k, v := range f.state.users {
		s.users[k] = v
	}
	for k, v := range f.state.companies {
		s.companies[k] = v
	}
	for k, v := range f.state.jobs {
		s.jobs[k] = v
	}
	return s
}

// WithinTx restores the pre-call state on error, like a rollback would.
func (f *fakeCascadeStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	before := f.snapshot()
	if err := fn(ctx); err != nil {
		f.state = before
		return err
	}
	return nil
}

func (f *fakeCascadeStore) UserExists(_ context.Context, id string) (bool, error) {
	return f.state.users[id], nil
}

func (f *fakeCascadeStore) CompanyExists(_ context.Context, id string) (bool, error) {
	_, ok := f.state.companies[id]
	return ok, nil
}

func (f *fakeCascadeStore) JobExists(_ context.Context, id string) (bool, error) {
	_, ok := f.state.jobs[id]
	return ok, nil
}

func (f *fakeCascadeStore) DeleteApplicationsByUser(_ context.Context, userID string) error {
	kept := f.state.apps[:0]
	for _, app := range f.state.apps {
		if app.userID != userID {
			kept = append(kept, app)
		}
	}
	f.state.apps = kept
	return nil
}

func (f *fakeCascadeStore) DeleteApplicationsByJob(_ context.Context, jobID string) error {
	kept := f.state.apps[:0]
	for _, app := range f.state.apps {
		if app.jobID != jobID {
			kept = append(kept, app)
		}
	}
	f.state.apps = kept
	return nil
}

func (f *fakeCascadeStore) DeleteChatsByParticipant(_ context.Context, userID string) error {
	kept := f.state.chats[:0]
	for _, chat := range f.state.chats {
		if chat.a != userID && chat.b != userID {
			kept = append(kept, chat)
		}
	}
	f.state.chats = kept
	return nil
}

func (f *fakeCascadeStore) ListJobIDsByCreator(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for id, job := range f.state.jobs {
		if job.creator == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeCascadeStore) ListJobIDsByCompany(_ context.Context, companyID string) ([]string, error) {
	var ids []string
	for id, job := range f.state.jobs {
		if job.companyID == companyID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeCascadeStore) ListCompanyIDsByOwner(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for id, owner := range f.state.companies {
		if owner == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeCascadeStore) MarkUserDeleted(_ context.Context, id string, _ time.Time) error {
	if f.failMarkUser {
		return errors.New("write failed")
	}
	delete(f.state.users, id)
	return nil
}

func (f *fakeCascadeStore) MarkCompanyDeleted(_ context.Context, id string, _ time.Time) error {
	delete(f.state.companies, id)
	return nil
}

func (f *fakeCascadeStore) MarkJobDeleted(_ context.Context, id string, _ time.Time) error {
	delete(f.state.jobs, id)
	return nil
}

func seedTransitiveGraph(store *fakeCascadeStore) {
	store.state.users["owner"] = true
	store.state.users["applicant"] = true
	store.state.companies["acme"] = "owner"
	store.state.jobs["job1"] = jobRow{creator: "owner", companyID: "acme"}
	store.state.apps = []appRow{
		{jobID: "job1", userID: "applicant"},
	}
	store.state.chats = []chatRow{
		{a: "owner", b: "applicant"},
	}
}

func TestCascadeDeleteUserTransitive(t *testing.T) {
	store := newFakeCascadeStore()
	seedTransitiveGraph(store)
	engine := NewCascadeEngine(store, zerolog.Nop())

	require.NoError(t, engine.DeleteUser(context.Background(), "owner"))

	assert.False(t, store.state.users["owner"])
	assert.Empty(t, store.state.companies)
	assert.Empty(t, store.state.jobs)
	assert.Empty(t, store.state.apps, "applications to the owner's jobs must be gone")
	assert.Empty(t, store.state.chats)

	// The applicant themselves is untouched.
	assert.True(t, store.state.users["applicant"])
}

func TestCascadeDeleteUserIdempotent(t *testing.T) {
	store := newFakeCascadeStore()
	seedTransitiveGraph(store)
	engine := NewCascadeEngine(store, zerolog.Nop())

	require.NoError(t, engine.DeleteUser(context.Background(), "owner"))
	require.NoError(t, engine.DeleteUser(context.Background(), "owner"))
	require.NoError(t, engine.DeleteUser(context.Background(), "never-existed"))
}

func TestCascadeDeleteJobWithoutApplications(t *testing.T) {
	store := newFakeCascadeStore()
	store.state.jobs["lonely"] = jobRow{creator: "owner", companyID: "acme"}
	engine := NewCascadeEngine(store, zerolog.Nop())

	require.NoError(t, engine.DeleteJob(context.Background(), "lonely"))
	assert.Empty(t, store.state.jobs)
}

func TestCascadeDeleteCompanyCascadesJobs(t *testing.T) {
	store := newFakeCascadeStore()
	store.state.companies["acme"] = "owner"
	store.state.jobs["job1"] = jobRow{creator: "owner", companyID: "acme"}
	store.state.jobs["job2"] = jobRow{creator: "hr", companyID: "acme"}
	store.state.apps = []appRow{{jobID: "job2", userID: "applicant"}}
	engine := NewCascadeEngine(store, zerolog.Nop())

	require.NoError(t, engine.DeleteCompany(context.Background(), "acme"))
	assert.Empty(t, store.state.companies)
	assert.Empty(t, store.state.jobs)
	assert.Empty(t, store.state.apps)
}

func TestCascadeFailureRollsBackEverything(t *testing.T) {
	store := newFakeCascadeStore()
	seedTransitiveGraph(store)
	store.failMarkUser = true
	engine := NewCascadeEngine(store, zerolog.Nop())

	err := engine.DeleteUser(context.Background(), "owner")
	require.Error(t, err)

	// A failed final step leaves no partial deletions behind.
	assert.True(t, store.state.users["owner"])
	assert.Len(t, store.state.apps, 1)
	assert.Len(t, store.state.chats, 1)
	assert.Contains(t, store.state.jobs, "job1")
	assert.Contains(t, store.state.companies, "acme")
}
