package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/yoockh/dojoportal/internal/dependencies/mocks"
	"github.com/yoockh/dojoportal/internal/logger"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/realtime"
	"github.com/yoockh/dojoportal/internal/repositories/memory"
	"github.com/yoockh/dojoportal/internal/storage"
	"github.com/yoockh/dojoportal/internal/utils"
)

type MediaServiceSuite struct {
	suite.Suite
	repo    *memory.MediaRepo
	blobs   *storage.MemoryStore
	bus     *realtime.MemoryBus
	clock   *mocks.MockClock
	service MediaService
	ctx     context.Context
}

func TestMediaServiceSuite(t *testing.T) {
	suite.Run(t, new(MediaServiceSuite))
}

func (s *MediaServiceSuite) SetupTest() {
	s.repo = memory.NewMediaRepo()
	s.blobs = storage.NewMemoryStore()
	s.bus = realtime.NewMemoryBus()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = NewMediaService(s.repo, s.blobs, s.bus, s.clock, logger.Discard())
	s.ctx = context.Background()
}

func (s *MediaServiceSuite) upload(name, ct string) *models.MediaItem {
	item, err := s.service.Upload(s.ctx, "u1", UploadFile{Name: name, ContentType: ct, Body: strings.NewReader("data")})
	s.Require().NoError(err)
	return item
}

func (s *MediaServiceSuite) TestUploadStoresBlobAndRecord() {
	item := s.upload("kata.jpg", "image/jpeg")

	want := "carousel/u1/1704110400000-kata.jpg"
	s.Equal(want, item.StoragePath)
	s.Equal("memory://"+want, item.URL)
	s.Equal(models.MediaImage, item.Type)
	s.Equal("u1", item.CreatedBy)
	s.True(s.blobs.Has(want))
	s.Equal(1, s.repo.Len())
}

func (s *MediaServiceSuite) TestUploadClassifiesVideo() {
	item := s.upload("kumite.mp4", "video/mp4")
	s.Equal(models.MediaVideo, item.Type)
}

func (s *MediaServiceSuite) TestUploadStripsDirectoryFromName() {
	item := s.upload("../../etc/passwd.png", "image/png")
	s.Equal("carousel/u1/1704110400000-passwd.png", item.StoragePath)
}

func (s *MediaServiceSuite) TestUploadRejectsOtherTypes() {
	_, err := s.service.Upload(s.ctx, "u1", UploadFile{Name: "notes.pdf", ContentType: "application/pdf", Body: strings.NewReader("x")})
	s.True(utils.IsCode(err, utils.CodeInvalidArgument))
	s.Equal(0, s.repo.Len())
}

func (s *MediaServiceSuite) TestUploadNotifiesSubscribers() {
	sub, err := s.bus.Subscribe(s.ctx, TopicMedia)
	s.Require().NoError(err)
	defer sub.Close()

	s.upload("a.jpg", "image/jpeg")

	select {
	case <-sub.C():
	case <-time.After(time.Second):
		s.Fail("no change notification")
	}
}

func (s *MediaServiceSuite) TestAddEmbed() {
	item, err := s.service.AddEmbed(s.ctx, "u1", " https://www.youtube.com/embed/abc ")
	s.Require().NoError(err)
	s.Equal(models.MediaIframe, item.Type)
	s.Equal("https://www.youtube.com/embed/abc", item.URL)
	s.Empty(item.StoragePath)
}

func (s *MediaServiceSuite) TestRemoveDeletesBlobThenRecord() {
	item := s.upload("a.jpg", "image/jpeg")

	s.Require().NoError(s.service.Remove(s.ctx, *item))
	s.False(s.blobs.Has(item.StoragePath))
	s.Equal(0, s.repo.Len())
}

func (s *MediaServiceSuite) TestRemoveKeepsBlobDeletionWhenRecordDeleteFails() {
	item := s.upload("a.jpg", "image/jpeg")
	s.repo.DeleteErr = errors.New("mongo down")

	err := s.service.Remove(s.ctx, *item)
	s.True(utils.IsCode(err, utils.CodeUnavailable))
	// not transactional: the blob stays released
	s.False(s.blobs.Has(item.StoragePath))
	s.Equal(1, s.repo.Len())
}

func (s *MediaServiceSuite) TestRemoveToleratesMissingBlob() {
	item := models.MediaItem{ID: "m1", StoragePath: "carousel/u1/gone.jpg"}
	s.Require().NoError(s.repo.Insert(s.ctx, &item))

	s.Require().NoError(s.service.Remove(s.ctx, item))
	s.Equal(0, s.repo.Len())
}

func (s *MediaServiceSuite) TestGetNotFound() {
	_, err := s.service.Get(s.ctx, "missing")
	s.True(utils.IsCode(err, utils.CodeNotFound))
}

func (s *MediaServiceSuite) TestListNewestFirst() {
	first := s.upload("a.jpg", "image/jpeg")
	s.clock.Advance(time.Minute)
	second := s.upload("b.jpg", "image/jpeg")

	items, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal(second.ID, items[0].ID)
	s.Equal(first.ID, items[1].ID)
}
