package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/providers/auth"
	"github.com/yoockh/dojoportal/internal/utils"
)

// Secrets gate the two administrative flows. An empty value disables the
// flow entirely.
type Secrets struct {
	SetupSecret     string
	AdminInviteCode string
}

type EventPublisher interface {
	Publish(ctx context.Context, ev auth.Event) error
}

type SeedRequest struct {
	Secret         string
	AdminEmail     string
	AdminPassword  string
	PlayerEmail    string
	PlayerPassword string
}

type SeededAccount struct {
	UserID string          `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
}

type SeedResult struct {
	Admin  SeededAccount `json:"admin"`
	Player SeededAccount `json:"player"`
}

type AccountService interface {
	// SignIn authenticates and makes sure a profile exists without touching
	// its role. With asRole admin, a non-admin account is signed straight
	// back out.
	SignIn(ctx context.Context, email, password string, asRole models.UserRole) (*auth.Session, *models.Profile, error)
	SignUp(ctx context.Context, email, password string, role models.UserRole, inviteCode string) (*auth.Session, *models.Profile, error)
	SignOut(ctx context.Context, id models.Identity, accessToken string) error
	Seed(ctx context.Context, req SeedRequest) (*SeedResult, error)
}

type accountService struct {
	provider auth.Provider
	profiles ProfileService
	events   EventPublisher
	secrets  Secrets
	log      logrus.FieldLogger
}

func NewAccountService(provider auth.Provider, profiles ProfileService, events EventPublisher, secrets Secrets, log logrus.FieldLogger) AccountService {
	return &accountService{provider: provider, profiles: profiles, events: events, secrets: secrets, log: log}
}

func secretMatches(configured, given string) bool {
	return subtle.ConstantTimeCompare([]byte(configured), []byte(given)) == 1
}

func authFailure(op string, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return utils.E(utils.CodeUnauthorized, op, "Invalid email or password.", err)
	case errors.Is(err, auth.ErrEmailInUse):
		return utils.E(utils.CodeConflict, op, "Email is already registered.", err)
	default:
		return utils.E(utils.CodeUnavailable, op, "Authentication service unavailable.", err)
	}
}

func normalizeEmail(s string) string { return strings.TrimSpace(s) }

func (s *accountService) SignIn(ctx context.Context, email, password string, asRole models.UserRole) (*auth.Session, *models.Profile, error) {
	const op = "AccountService.SignIn"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "Email and password are required.", nil)
	}

	sess, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, nil, authFailure(op, err)
	}

	if err := s.profiles.Touch(ctx, sess.Identity); err != nil {
		return nil, nil, err
	}
	p, err := s.profiles.Ensure(ctx, sess.Identity)
	if err != nil {
		return nil, nil, err
	}

	if asRole == models.RoleAdmin && p.EffectiveRole() != models.RoleAdmin {
		if err := s.provider.SignOut(ctx, sess.AccessToken); err != nil {
			s.log.WithError(err).WithField("user_id", sess.Identity.ID).Warn("sign out after role mismatch failed")
		}
		return nil, nil, utils.E(utils.CodeForbidden, op, "This account is not an admin.", nil)
	}

	s.publish(ctx, auth.Event{Subject: sess.Identity.ID, Identity: &sess.Identity})
	return sess, p, nil
}

func (s *accountService) SignUp(ctx context.Context, email, password string, role models.UserRole, inviteCode string) (*auth.Session, *models.Profile, error) {
	const op = "AccountService.SignUp"

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "Email and password are required.", nil)
	}

	role = models.ParseRole(string(role))
	if role == models.RoleAdmin {
		if s.secrets.AdminInviteCode == "" {
			return nil, nil, utils.E(utils.CodeForbidden, op, "Admin sign-up is not enabled.", nil)
		}
		if !secretMatches(s.secrets.AdminInviteCode, inviteCode) {
			return nil, nil, utils.E(utils.CodeForbidden, op, "Invalid admin invite code.", nil)
		}
	}

	sess, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, nil, authFailure(op, err)
	}

	p, err := s.profiles.AssignRole(ctx, sess.Identity, role)
	if err != nil {
		return nil, nil, err
	}

	if sess.AccessToken != "" {
		s.publish(ctx, auth.Event{Subject: sess.Identity.ID, Identity: &sess.Identity})
	}
	return sess, p, nil
}

func (s *accountService) SignOut(ctx context.Context, id models.Identity, accessToken string) error {
	const op = "AccountService.SignOut"

	if err := s.provider.SignOut(ctx, accessToken); err != nil {
		return utils.E(utils.CodeUnavailable, op, "Sign out failed.", err)
	}
	s.publish(ctx, auth.Event{Subject: id.ID})
	return nil
}

func (s *accountService) Seed(ctx context.Context, req SeedRequest) (*SeedResult, error) {
	const op = "AccountService.Seed"

	if s.secrets.SetupSecret == "" {
		return nil, utils.E(utils.CodeForbidden, op, "Setup is not enabled.", nil)
	}
	if !secretMatches(s.secrets.SetupSecret, req.Secret) {
		return nil, utils.E(utils.CodeForbidden, op, "Invalid setup secret.", nil)
	}
	if normalizeEmail(req.AdminEmail) == "" || req.AdminPassword == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Admin email/password required.", nil)
	}
	if normalizeEmail(req.PlayerEmail) == "" || req.PlayerPassword == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Player email/password required.", nil)
	}

	admin, err := s.createAccount(ctx, op, req.AdminEmail, req.AdminPassword, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	player, err := s.createAccount(ctx, op, req.PlayerEmail, req.PlayerPassword, models.RolePlayer)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"admin": admin.Email, "player": player.Email}).Info("seeded accounts")
	return &SeedResult{Admin: *admin, Player: *player}, nil
}

func (s *accountService) createAccount(ctx context.Context, op, email, password string, role models.UserRole) (*SeededAccount, error) {
	sess, err := s.provider.SignUp(ctx, normalizeEmail(email), password)
	if err != nil {
		return nil, authFailure(op, err)
	}
	p, err := s.profiles.AssignRole(ctx, sess.Identity, role)
	if err != nil {
		return nil, err
	}
	return &SeededAccount{UserID: p.UserID, Email: p.Email, Role: p.EffectiveRole()}, nil
}

func (s *accountService) publish(ctx context.Context, ev auth.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithError(err).Warn("auth event publish failed")
	}
}
