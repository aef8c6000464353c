package carousel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/yoockh/dojoportal/internal/dependencies/mocks"
	"github.com/yoockh/dojoportal/internal/logger"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/realtime"
	"github.com/yoockh/dojoportal/internal/repositories/memory"
	"github.com/yoockh/dojoportal/internal/services"
	"github.com/yoockh/dojoportal/internal/session"
	"github.com/yoockh/dojoportal/internal/storage"
	"github.com/yoockh/dojoportal/internal/utils"
)

func items(n int) []models.MediaItem {
	out := make([]models.MediaItem, n)
	for i := range out {
		out[i] = models.MediaItem{ID: fmt.Sprintf("m%d", i), URL: fmt.Sprintf("https://cdn.test/%d.jpg", i)}
	}
	return out
}

func actor(role models.UserRole) session.State {
	return session.State{
		Identity: &models.Identity{ID: "u1", Email: "sensei@dojo.test"},
		Profile:  &models.Profile{UserID: "u1", Role: role},
	}
}

type ControllerSuite struct {
	suite.Suite
	repo      *memory.MediaRepo
	blobs     *storage.MemoryStore
	bus       *realtime.MemoryBus
	clock     *mocks.MockClock
	scheduler *mocks.MockScheduler
	media     services.MediaService
	ctrl      *Controller
	ctx       context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.repo = memory.NewMediaRepo()
	s.blobs = storage.NewMemoryStore()
	s.bus = realtime.NewMemoryBus()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.scheduler = mocks.NewMockScheduler()
	s.media = services.NewMediaService(s.repo, s.blobs, s.bus, s.clock, logger.Discard())
	s.ctrl = NewController(s.media, s.scheduler, 0, logger.Discard())
	s.ctx = context.Background()
}

func (s *ControllerSuite) TearDownTest() {
	s.ctrl.Close()
}

func (s *ControllerSuite) TestEmptyNavigationIsNoop() {
	s.ctrl.Next()
	s.ctrl.Prev()
	s.Equal(0, s.ctrl.State().ActiveIndex)
	s.Nil(s.ctrl.State().Active())
}

func (s *ControllerSuite) TestNextCyclesModuloCount() {
	s.ctrl.Replace(items(3))

	var seen []int
	for i := 0; i < 4; i++ {
		s.ctrl.Next()
		seen = append(seen, s.ctrl.State().ActiveIndex)
	}
	s.Equal([]int{1, 2, 0, 1}, seen)
}

func (s *ControllerSuite) TestPrevIsInverseOfNext() {
	s.ctrl.Replace(items(3))

	s.ctrl.Prev()
	s.Equal(2, s.ctrl.State().ActiveIndex)
	s.ctrl.Next()
	s.Equal(0, s.ctrl.State().ActiveIndex)
}

func (s *ControllerSuite) TestSelectIgnoresOutOfRange() {
	s.ctrl.Replace(items(3))

	s.ctrl.Select(2)
	s.Equal("m2", s.ctrl.State().Active().ID)
	s.ctrl.Select(3)
	s.ctrl.Select(-1)
	s.Equal(2, s.ctrl.State().ActiveIndex)
}

func (s *ControllerSuite) TestReplaceResetsActiveIndex() {
	s.ctrl.Replace(items(3))
	s.ctrl.Next()

	s.ctrl.Replace(items(3))
	s.Equal(0, s.ctrl.State().ActiveIndex)
}

func (s *ControllerSuite) TestTimerFollowsItemCount() {
	s.ctrl.Replace(items(1))
	s.Equal(0, s.scheduler.Active(), "one item does not rotate")

	s.ctrl.Replace(items(2))
	s.Equal(1, s.scheduler.Active())
	s.Equal([]time.Duration{DefaultInterval}, s.scheduler.Periods())

	s.ctrl.Replace(items(3))
	s.Equal(1, s.scheduler.Active(), "never more than one timer")

	s.ctrl.Replace(items(1))
	s.Equal(0, s.scheduler.Active())
}

func (s *ControllerSuite) TestSameCountDoesNotRearm() {
	s.ctrl.Replace(items(2))
	armed := s.scheduler.Armed

	s.ctrl.Replace(items(2))
	s.Equal(armed, s.scheduler.Armed)
	s.Equal(1, s.scheduler.Active())
}

func (s *ControllerSuite) TestTickAdvances() {
	s.ctrl.Replace(items(2))

	s.scheduler.Tick()
	s.Equal(1, s.ctrl.State().ActiveIndex)
	s.scheduler.Tick()
	s.Equal(0, s.ctrl.State().ActiveIndex)
}

func (s *ControllerSuite) TestCloseStopsTimerAndIgnoresSnapshots() {
	s.ctrl.Replace(items(2))
	s.ctrl.Close()
	s.Equal(0, s.scheduler.Active())

	s.ctrl.Replace(items(4))
	s.Equal(0, s.scheduler.Active())
	s.Len(s.ctrl.State().Items, 2)
}

func (s *ControllerSuite) TestUploadRequiresAdmin() {
	_, err := s.ctrl.Upload(s.ctx, actor(models.RolePlayer), services.UploadFile{
		Name: "kata.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x"),
	})
	s.Require().Error(err)
	s.True(utils.IsCode(err, utils.CodeForbidden))
	s.Equal(0, s.repo.Len())
}

func (s *ControllerSuite) TestUploadVideo() {
	var busy []bool
	s.ctrl.OnChange(func(st State) { busy = append(busy, st.Busy) })

	item, err := s.ctrl.Upload(s.ctx, actor(models.RoleAdmin), services.UploadFile{
		Name: "demo.mp4", ContentType: "video/mp4", Body: strings.NewReader("x"),
	})
	s.Require().NoError(err)
	s.Equal(models.MediaVideo, item.Type)
	s.Equal("carousel/u1/1704110400000-demo.mp4", item.StoragePath)
	s.Equal([]bool{true, false}, busy)
	s.False(s.ctrl.State().Busy)
}

func (s *ControllerSuite) TestUploadFailureClearsBusy() {
	s.repo.InsertErr = errors.New("mongo down")

	_, err := s.ctrl.Upload(s.ctx, actor(models.RoleAdmin), services.UploadFile{
		Name: "kata.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x"),
	})
	s.Require().Error(err)
	s.True(utils.IsCode(err, utils.CodeUnavailable))
	s.False(s.ctrl.State().Busy)
}

func (s *ControllerSuite) TestAddEmbed() {
	item, err := s.ctrl.AddEmbed(s.ctx, actor(models.RoleAdmin), "<iframe src='https://example.com/y'></iframe>")
	s.Require().NoError(err)
	s.Equal("https://example.com/y", item.URL)
	s.Equal(models.MediaIframe, item.Type)
	s.Empty(item.StoragePath)
}

func (s *ControllerSuite) TestAddEmbedBlankCreatesNothing() {
	item, err := s.ctrl.AddEmbed(s.ctx, actor(models.RoleAdmin), "   ")
	s.Require().NoError(err)
	s.Nil(item)
	s.Equal(0, s.repo.Len())
}

func (s *ControllerSuite) TestAddEmbedRequiresAdmin() {
	_, err := s.ctrl.AddEmbed(s.ctx, session.State{}, "https://example.com/x")
	s.True(utils.IsCode(err, utils.CodeForbidden))
}

func (s *ControllerSuite) TestRemoveDeletesBlobThenRecord() {
	item, err := s.ctrl.Upload(s.ctx, actor(models.RoleAdmin), services.UploadFile{
		Name: "kata.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x"),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.ctrl.Remove(s.ctx, actor(models.RoleAdmin), *item))
	s.False(s.blobs.Has(item.StoragePath))
	s.Equal(0, s.repo.Len())
}

func (s *ControllerSuite) TestRemoveIgnoresMissingIDAndNonAdmins() {
	item, err := s.ctrl.AddEmbed(s.ctx, actor(models.RoleAdmin), "https://example.com/x")
	s.Require().NoError(err)

	s.NoError(s.ctrl.Remove(s.ctx, actor(models.RolePlayer), *item))
	s.NoError(s.ctrl.Remove(s.ctx, actor(models.RoleAdmin), models.MediaItem{URL: item.URL}))
	s.Equal(1, s.repo.Len())
}

func (s *ControllerSuite) TestRemoveRecordFailureKeepsBlobDeleted() {
	item, err := s.ctrl.Upload(s.ctx, actor(models.RoleAdmin), services.UploadFile{
		Name: "kata.jpg", ContentType: "image/jpeg", Body: strings.NewReader("x"),
	})
	s.Require().NoError(err)
	s.repo.DeleteErr = errors.New("mongo down")

	err = s.ctrl.Remove(s.ctx, actor(models.RoleAdmin), *item)
	s.Require().Error(err)
	s.False(s.blobs.Has(item.StoragePath), "no rollback")
	s.Equal(1, s.repo.Len())
	s.False(s.ctrl.State().Busy)
}

func (s *ControllerSuite) TestSyncReplacesOnEveryChange() {
	cancel, err := Sync(s.ctx, s.bus, s.media, s.ctrl, logger.Discard())
	s.Require().NoError(err)
	defer cancel()
	s.Empty(s.ctrl.State().Items)

	_, err = s.ctrl.AddEmbed(s.ctx, actor(models.RoleAdmin), "https://example.com/a")
	s.Require().NoError(err)
	s.Eventually(func() bool { return len(s.ctrl.State().Items) == 1 }, time.Second, 5*time.Millisecond)

	s.clock.Advance(time.Minute)
	_, err = s.ctrl.AddEmbed(s.ctx, actor(models.RoleAdmin), "https://example.com/b")
	s.Require().NoError(err)
	s.Eventually(func() bool { return len(s.ctrl.State().Items) == 2 }, time.Second, 5*time.Millisecond)

	st := s.ctrl.State()
	s.Equal("https://example.com/b", st.Items[0].URL, "newest first")
	s.Equal(1, s.scheduler.Active())
}

func (s *ControllerSuite) TestSyncCancelUnsubscribes() {
	cancel, err := Sync(s.ctx, s.bus, s.media, s.ctrl, logger.Discard())
	s.Require().NoError(err)
	s.Equal(1, s.bus.Subscribers(services.TopicMedia))

	cancel()
	s.Equal(0, s.bus.Subscribers(services.TopicMedia))
}
