package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/yoockh/dojoportal/internal/logger"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/providers/auth"
	"github.com/yoockh/dojoportal/internal/realtime"
)

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*models.Profile
	err      error
	calls    int
	// seen is the loading flag observed while Ensure runs
	store *Store
	seen  []bool
}

func (f *fakeProfiles) Ensure(_ context.Context, id models.Identity) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.store != nil {
		f.seen = append(f.seen, f.store.State().Loading)
	}
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.profiles[id.ID]; ok {
		return p, nil
	}
	p := &models.Profile{UserID: id.ID, Email: id.Email, Role: models.RolePlayer}
	f.profiles[id.ID] = p
	return p, nil
}

type StoreSuite struct {
	suite.Suite
	profiles *fakeProfiles
	store    *Store
	ctx      context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.profiles = &fakeProfiles{profiles: map[string]*models.Profile{}}
	s.store = New(s.profiles)
	s.profiles.store = s.store
	s.ctx = context.Background()
}

func (s *StoreSuite) TestStartsLoading() {
	st := s.store.State()
	s.True(st.Loading)
	s.False(st.IsAuthed())
	s.False(st.IsAdmin())
}

func (s *StoreSuite) TestSignedOutClearsProfile() {
	s.Require().NoError(s.store.Handle(s.ctx, &models.Identity{ID: "u1"}))
	s.Require().NoError(s.store.Handle(s.ctx, nil))

	st := s.store.State()
	s.False(st.Loading)
	s.False(st.IsAuthed())
	s.Nil(st.Profile)
}

func (s *StoreSuite) TestSignedInLoadsProfile() {
	s.Require().NoError(s.store.Handle(s.ctx, &models.Identity{ID: "u1", Email: "a@dojo.test"}))

	st := s.store.State()
	s.False(st.Loading)
	s.True(st.IsAuthed())
	s.False(st.IsAdmin())
	s.Equal(models.RolePlayer, st.Role())
	s.Equal([]bool{true}, s.profiles.seen, "loading while the profile is fetched")
}

func (s *StoreSuite) TestAdminFlagFollowsProfile() {
	s.profiles.profiles["u1"] = &models.Profile{UserID: "u1", Role: models.RoleAdmin}

	s.Require().NoError(s.store.Handle(s.ctx, &models.Identity{ID: "u1"}))
	s.True(s.store.State().IsAdmin())
}

func (s *StoreSuite) TestErrorPropagatesAndLoadingClears() {
	s.profiles.profiles["u1"] = &models.Profile{UserID: "u1", Role: models.RoleAdmin}
	s.Require().NoError(s.store.Handle(s.ctx, &models.Identity{ID: "u1"}))

	s.profiles.err = errors.New("db down")
	err := s.store.Handle(s.ctx, &models.Identity{ID: "u2"})
	s.Require().Error(err)

	st := s.store.State()
	s.False(st.Loading)
	s.True(st.IsAuthed())
	s.False(st.IsAdmin(), "previous admin profile must not carry over")
	s.Equal(2, s.profiles.calls, "no retry")
}

func (s *StoreSuite) TestOnChangeSeesEveryTransition() {
	var loading []bool
	s.store.OnChange(func(st State) { loading = append(loading, st.Loading) })

	s.Require().NoError(s.store.Handle(s.ctx, &models.Identity{ID: "u1"}))
	s.Equal([]bool{true, true, false}, loading)
}

func TestResolve(t *testing.T) {
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{
		"admin": {UserID: "admin", Role: models.RoleAdmin},
	}}

	st, err := Resolve(context.Background(), profiles, &models.Identity{ID: "admin"})
	require.NoError(t, err)
	assert.False(t, st.Loading)
	assert.True(t, st.IsAdmin())

	st, err = Resolve(context.Background(), profiles, nil)
	require.NoError(t, err)
	assert.False(t, st.IsAuthed())
}

func TestWatchFollowsSubjectEvents(t *testing.T) {
	notifier := auth.NewNotifier(realtime.NewMemoryBus(), logger.Discard())
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{}}
	store := New(profiles)
	ctx := context.Background()

	require.NoError(t, store.Handle(ctx, &models.Identity{ID: "u1"}))
	require.NoError(t, store.Watch(ctx, notifier, "u1"))
	defer store.Close()

	// someone else signing out is ignored
	require.NoError(t, notifier.Publish(ctx, auth.Event{Subject: "u2"}))
	require.NoError(t, notifier.Publish(ctx, auth.Event{Subject: "u1"}))

	assert.Eventually(t, func() bool {
		return !store.State().IsAuthed()
	}, time.Second, 5*time.Millisecond)
}

func TestWatchReportsErrors(t *testing.T) {
	notifier := auth.NewNotifier(realtime.NewMemoryBus(), logger.Discard())
	profiles := &fakeProfiles{profiles: map[string]*models.Profile{}, err: errors.New("db down")}
	store := New(profiles)
	ctx := context.Background()

	errs := make(chan error, 1)
	store.OnError(func(err error) { errs <- err })
	require.NoError(t, store.Watch(ctx, notifier, "u1"))
	defer store.Close()

	require.NoError(t, notifier.Publish(ctx, auth.Event{Subject: "u1", Identity: &models.Identity{ID: "u1"}}))

	select {
	case err := <-errs:
		assert.EqualError(t, err, "db down")
	case <-time.After(time.Second):
		t.Fatal("error not reported")
	}
	assert.False(t, store.State().Loading)
}
