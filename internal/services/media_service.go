package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yoockh/dojoportal/internal/dependencies/clock"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/realtime"
	mongorepo "github.com/yoockh/dojoportal/internal/repositories/mongo"
	"github.com/yoockh/dojoportal/internal/storage"
	"github.com/yoockh/dojoportal/internal/utils"
)

// TopicMedia is the realtime topic carrying carousel changes.
const TopicMedia = mongorepo.MediaCollection

type MediaService interface {
	List(ctx context.Context) ([]models.MediaItem, error)
	Get(ctx context.Context, id string) (*models.MediaItem, error)
	Upload(ctx context.Context, uploaderID string, f UploadFile) (*models.MediaItem, error)
	AddEmbed(ctx context.Context, uploaderID, src string) (*models.MediaItem, error)
	// Remove releases the backing blob (if any) and then deletes the
	// record. The two steps are not transactional.
	Remove(ctx context.Context, item models.MediaItem) error
}

type UploadFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type mediaService struct {
	repo  mongorepo.MediaRepository
	blobs storage.BlobStore
	bus   realtime.Bus
	clock clock.Clock
	log   logrus.FieldLogger
}

func NewMediaService(repo mongorepo.MediaRepository, blobs storage.BlobStore, bus realtime.Bus, clk clock.Clock, log logrus.FieldLogger) MediaService {
	return &mediaService{repo: repo, blobs: blobs, bus: bus, clock: clk, log: log}
}

// ClassifyContentType maps a MIME type to the carousel item type.
func ClassifyContentType(contentType string) models.MediaType {
	if strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return models.MediaVideo
	}
	return models.MediaImage
}

func (s *mediaService) List(ctx context.Context) ([]models.MediaItem, error) {
	const op = "MediaService.List"

	out, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to list carousel items", err)
	}
	return out, nil
}

func (s *mediaService) Get(ctx context.Context, id string) (*models.MediaItem, error) {
	const op = "MediaService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "carousel item not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "failed to get carousel item", err)
	}
	return m, nil
}

func (s *mediaService) Upload(ctx context.Context, uploaderID string, f UploadFile) (*models.MediaItem, error) {
	const op = "MediaService.Upload"

	if uploaderID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "uploader id is required", nil)
	}
	name := path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "file name is required", nil)
	}
	ct := strings.ToLower(f.ContentType)
	if !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "video/") {
		return nil, utils.E(utils.CodeInvalidArgument, op, "only images and videos can be uploaded", nil)
	}

	now := s.clock.Now()
	objectName := fmt.Sprintf("carousel/%s/%d-%s", uploaderID, now.UnixMilli(), name)

	handle, err := s.blobs.Upload(ctx, objectName, f.ContentType, f.Body)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload file", err)
	}
	url, err := s.blobs.URL(ctx, handle)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to resolve file url", err)
	}

	item := &models.MediaItem{
		ID:          uuid.NewString(),
		URL:         url,
		StoragePath: objectName,
		Type:        ClassifyContentType(f.ContentType),
		CreatedAt:   now,
		CreatedBy:   uploaderID,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to save carousel item", err)
	}

	s.notify(ctx)
	return item, nil
}

func (s *mediaService) AddEmbed(ctx context.Context, uploaderID, src string) (*models.MediaItem, error) {
	const op = "MediaService.AddEmbed"

	src = strings.TrimSpace(src)
	if uploaderID == "" || src == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "uploader id and embed url are required", nil)
	}

	item := &models.MediaItem{
		ID:        uuid.NewString(),
		URL:       src,
		Type:      models.MediaIframe,
		CreatedAt: s.clock.Now(),
		CreatedBy: uploaderID,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to save carousel item", err)
	}

	s.notify(ctx)
	return item, nil
}

func (s *mediaService) Remove(ctx context.Context, item models.MediaItem) error {
	const op = "MediaService.Remove"

	if item.ID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}

	if item.StoragePath != "" {
		err := s.blobs.Delete(ctx, item.StoragePath)
		switch {
		case errors.Is(err, storage.ErrObjectNotFound):
			s.log.WithField("path", item.StoragePath).Warn("blob already gone, deleting record anyway")
		case err != nil:
			return utils.E(utils.CodeUnavailable, op, "failed to delete file", err)
		}
	}

	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to delete carousel item", err)
	}

	s.notify(ctx)
	return nil
}

func (s *mediaService) notify(ctx context.Context) {
	if err := realtime.NotifyChanged(ctx, s.bus, TopicMedia); err != nil {
		s.log.WithError(err).Warn("carousel change notification failed")
	}
}
