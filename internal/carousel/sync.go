package carousel

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/realtime"
	"github.com/yoockh/dojoportal/internal/services"
)

// Lister reads the carousel newest first.
type Lister interface {
	List(ctx context.Context) ([]models.MediaItem, error)
}

// Sync mirrors the media collection into ctrl: an initial snapshot now and
// a full replacement after every change. Cancel unsubscribes.
func Sync(ctx context.Context, bus realtime.Bus, media Lister, ctrl *Controller, log logrus.FieldLogger) (cancel func(), err error) {
	return realtime.Watch(ctx, bus, services.TopicMedia, media.List, ctrl.Replace, log)
}
