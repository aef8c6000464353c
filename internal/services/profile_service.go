package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/dojoportal/internal/cache"
	"github.com/yoockh/dojoportal/internal/dependencies/clock"
	"github.com/yoockh/dojoportal/internal/models"
	pgrepo "github.com/yoockh/dojoportal/internal/repositories/postgres"
	"github.com/yoockh/dojoportal/internal/utils"
)

const profileCacheTTL = 5 * time.Minute

type ProfileService interface {
	// Ensure returns the profile for id, creating a player profile when
	// none exists yet.
	Ensure(ctx context.Context, id models.Identity) (*models.Profile, error)
	GetMe(ctx context.Context, userID string) (*models.Profile, error)
	// Touch records the email and update time without touching the role.
	Touch(ctx context.Context, id models.Identity) error
	AssignRole(ctx context.Context, id models.Identity, role models.UserRole) (*models.Profile, error)
}

type profileService struct {
	profiles pgrepo.ProfileRepository
	cache    cache.Cache
	clock    clock.Clock
	log      logrus.FieldLogger
}

func NewProfileService(profiles pgrepo.ProfileRepository, c cache.Cache, clk clock.Clock, log logrus.FieldLogger) ProfileService {
	if c == nil {
		c = cache.Nop{}
	}
	return &profileService{profiles: profiles, cache: c, clock: clk, log: log}
}

func profileKey(userID string) string { return "profile:" + userID }

func (s *profileService) Ensure(ctx context.Context, id models.Identity) (*models.Profile, error) {
	const op = "ProfileService.Ensure"

	if id.ID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "identity id is required", nil)
	}

	p, err := s.GetMe(ctx, id.ID)
	if err == nil {
		return p, nil
	}
	if !utils.IsCode(err, utils.CodeNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	fresh := &models.Profile{
		UserID:    id.ID,
		Email:     id.Email,
		Role:      models.RolePlayer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.CreateIfAbsent(ctx, fresh); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to create profile", err)
	}
	s.log.WithField("user_id", id.ID).Info("created player profile")

	// another request may have won the insert; read back what is stored
	return s.GetMe(ctx, id.ID)
}

func (s *profileService) GetMe(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "ProfileService.GetMe"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	var cached models.Profile
	if hit, err := s.cache.GetJSON(ctx, profileKey(userID), &cached); err != nil {
		s.log.WithError(err).Warn("profile cache read failed")
	} else if hit {
		return &cached, nil
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "failed to get profile", err)
	}

	if err := s.cache.SetJSON(ctx, profileKey(userID), p, profileCacheTTL); err != nil {
		s.log.WithError(err).Warn("profile cache write failed")
	}
	return p, nil
}

func (s *profileService) Touch(ctx context.Context, id models.Identity) error {
	const op = "ProfileService.Touch"

	if id.ID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "identity id is required", nil)
	}
	now := s.clock.Now()
	p := &models.Profile{
		UserID:    id.ID,
		Email:     id.Email,
		Role:      models.RolePlayer, // only used when the row is new
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Upsert(ctx, p, "email", "updated_at"); err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to save profile", err)
	}
	s.invalidate(ctx, id.ID)
	return nil
}

func (s *profileService) AssignRole(ctx context.Context, id models.Identity, role models.UserRole) (*models.Profile, error) {
	const op = "ProfileService.AssignRole"

	if id.ID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "identity id is required", nil)
	}
	now := s.clock.Now()
	p := &models.Profile{
		UserID:    id.ID,
		Email:     id.Email,
		Role:      models.ParseRole(string(role)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Upsert(ctx, p, "email", "role", "updated_at"); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to save role", err)
	}
	s.invalidate(ctx, id.ID)
	return s.GetMe(ctx, id.ID)
}

func (s *profileService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Del(ctx, profileKey(userID)); err != nil {
		s.log.WithError(err).Warn("profile cache invalidate failed")
	}
}
