// Package carousel drives the home page slideshow: the live item list,
// the active slide, auto-advance and admin mutations.
package carousel

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/dojoportal/internal/dependencies/clock"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/services"
	"github.com/yoockh/dojoportal/internal/session"
	"github.com/yoockh/dojoportal/internal/utils"
)

const DefaultInterval = 5 * time.Second

// MediaWriter is the subset of services.MediaService the controller mutates
// through.
type MediaWriter interface {
	Upload(ctx context.Context, uploaderID string, f services.UploadFile) (*models.MediaItem, error)
	AddEmbed(ctx context.Context, uploaderID, src string) (*models.MediaItem, error)
	Remove(ctx context.Context, item models.MediaItem) error
}

type State struct {
	Items       []models.MediaItem `json:"items"`
	ActiveIndex int                `json:"active_index"`
	Busy        bool               `json:"busy"`
}

// Active returns the current slide, or nil for an empty carousel.
func (s State) Active() *models.MediaItem {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Items) {
		return nil
	}
	item := s.Items[s.ActiveIndex]
	return &item
}

type Controller struct {
	media     MediaWriter
	scheduler clock.Scheduler
	interval  time.Duration
	log       logrus.FieldLogger

	mu        sync.Mutex
	state     State
	stopTimer func()
	closed    bool
	listeners []func(State)
}

func NewController(media MediaWriter, scheduler clock.Scheduler, interval time.Duration, log logrus.FieldLogger) *Controller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Controller{media: media, scheduler: scheduler, interval: interval, log: log}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) Next() { c.step(1) }

func (c *Controller) Prev() { c.step(-1) }

func (c *Controller) step(delta int) {
	c.mutate(func() bool {
		n := len(c.state.Items)
		if n == 0 {
			return false
		}
		c.state.ActiveIndex = ((c.state.ActiveIndex+delta)%n + n) % n
		return true
	})
}

// Select jumps to slide i. Out-of-range indexes are ignored.
func (c *Controller) Select(i int) {
	c.mutate(func() bool {
		if i < 0 || i >= len(c.state.Items) || i == c.state.ActiveIndex {
			return false
		}
		c.state.ActiveIndex = i
		return true
	})
}

// Replace installs a fresh snapshot and resets the active slide. The
// auto-advance timer is re-armed when the item count changes.
func (c *Controller) Replace(items []models.MediaItem) {
	c.mutate(func() bool {
		if c.closed {
			return false
		}
		countChanged := len(items) != len(c.state.Items)
		c.state.Items = append([]models.MediaItem(nil), items...)
		c.state.ActiveIndex = 0
		if countChanged || (c.stopTimer == nil) != (len(items) <= 1) {
			c.rearmLocked()
		}
		return true
	})
}

// rearmLocked keeps at most one timer alive, and only while more than one
// item is present.
func (c *Controller) rearmLocked() {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	if c.closed || len(c.state.Items) <= 1 {
		return
	}
	c.stopTimer = c.scheduler.Every(c.interval, c.Next)
}

// Close stops auto-advance. Further snapshots are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
}

// Upload stores f as a new slide. Only admins may upload.
func (c *Controller) Upload(ctx context.Context, actor session.State, f services.UploadFile) (*models.MediaItem, error) {
	const op = "Carousel.Upload"

	if !actor.IsAdmin() {
		return nil, utils.E(utils.CodeForbidden, op, "Only admins can change the carousel.", nil)
	}

	c.setBusy(true)
	defer c.setBusy(false)

	item, err := c.media.Upload(ctx, actor.Identity.ID, f)
	if err != nil {
		c.log.WithError(err).WithField("file", f.Name).Warn("carousel upload failed")
		return nil, err
	}
	return item, nil
}

// AddEmbed adds an iframe slide from a bare URL or pasted iframe markup.
// Input that yields no URL is ignored and returns nil, nil.
func (c *Controller) AddEmbed(ctx context.Context, actor session.State, raw string) (*models.MediaItem, error) {
	const op = "Carousel.AddEmbed"

	if !actor.IsAdmin() {
		return nil, utils.E(utils.CodeForbidden, op, "Only admins can change the carousel.", nil)
	}
	src, ok := ParseEmbed(raw)
	if !ok {
		return nil, nil
	}

	c.setBusy(true)
	defer c.setBusy(false)

	return c.media.AddEmbed(ctx, actor.Identity.ID, src)
}

// Remove deletes item and its blob. Items without an id and non-admin
// callers are ignored.
func (c *Controller) Remove(ctx context.Context, actor session.State, item models.MediaItem) error {
	if item.ID == "" || !actor.IsAdmin() {
		return nil
	}

	c.setBusy(true)
	defer c.setBusy(false)

	if err := c.media.Remove(ctx, item); err != nil {
		c.log.WithError(err).WithField("item_id", item.ID).Warn("carousel remove failed")
		return err
	}
	return nil
}

func (c *Controller) setBusy(b bool) {
	c.mutate(func() bool {
		c.state.Busy = b
		return true
	})
}

func (c *Controller) mutate(fn func() bool) {
	c.mu.Lock()
	changed := fn()
	snap := c.snapshotLocked()
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, l := range listeners {
		l(snap)
	}
}

func (c *Controller) snapshotLocked() State {
	s := c.state
	s.Items = append([]models.MediaItem(nil), c.state.Items...)
	return s
}
