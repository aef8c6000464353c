package records

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/dojoportal/internal/dependencies/clock"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/realtime"
	pgrepo "github.com/yoockh/dojoportal/internal/repositories/postgres"
	"github.com/yoockh/dojoportal/internal/utils"
)

// Service writes one ledger. Drafts are validated before any remote call
// and every successful write is announced on the kind's topic.
type Service[T models.Record[T], D any] interface {
	Topic() string
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, d D) (*T, error)
	// Update refreshes updated_at and keeps created_at.
	Update(ctx context.Context, id string, d D) error
	Delete(ctx context.Context, id string) error
}

type service[T models.Record[T], D any] struct {
	kind  Kind[T, D]
	repo  pgrepo.RecordRepository[T]
	bus   realtime.Bus
	clock clock.Clock
	log   logrus.FieldLogger
}

func NewService[T models.Record[T], D any](kind Kind[T, D], repo pgrepo.RecordRepository[T], bus realtime.Bus, clk clock.Clock, log logrus.FieldLogger) Service[T, D] {
	return &service[T, D]{kind: kind, repo: repo, bus: bus, clock: clk, log: log.WithField("collection", kind.Topic)}
}

func (s *service[T, D]) Topic() string { return s.kind.Topic }

func (s *service[T, D]) List(ctx context.Context) ([]T, error) {
	const op = "RecordService.List"

	out, err := s.repo.ListNewestFirst(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to list "+s.kind.Topic, err)
	}
	return out, nil
}

func (s *service[T, D]) Create(ctx context.Context, d D) (*T, error) {
	const op = "RecordService.Create"

	d, err := s.kind.Normalize(d)
	if err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}

	now := s.clock.Now()
	rec := s.kind.Build(uuid.NewString(), d, now, now)
	if err := s.repo.Insert(ctx, &rec); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to save "+s.kind.Label, err)
	}

	s.notify(ctx)
	return &rec, nil
}

func (s *service[T, D]) Update(ctx context.Context, id string, d D) error {
	const op = "RecordService.Update"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}
	d, err := s.kind.Normalize(d)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}

	// created_at is never written on update
	rec := s.kind.Build(id, d, time.Time{}, s.clock.Now())
	if err := s.repo.Update(ctx, id, &rec); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, s.kind.Label+" not found", err)
		}
		return utils.E(utils.CodeUnavailable, op, "failed to update "+s.kind.Label, err)
	}

	s.notify(ctx)
	return nil
}

func (s *service[T, D]) Delete(ctx context.Context, id string) error {
	const op = "RecordService.Delete"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to delete "+s.kind.Label, err)
	}

	s.notify(ctx)
	return nil
}

func (s *service[T, D]) notify(ctx context.Context) {
	if err := realtime.NotifyChanged(ctx, s.bus, s.kind.Topic); err != nil {
		s.log.WithError(err).Warn("change notification failed")
	}
}
