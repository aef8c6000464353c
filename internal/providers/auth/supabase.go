package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/yoockh/dojoportal/internal/models"
)

type Supabase struct {
	client gotrue.Client
}

// NewSupabase talks to the project's GoTrue endpoint. customURL overrides
// the hosted URL derived from projectRef (self-hosted or local stacks).
func NewSupabase(projectRef, anonKey, customURL string) *Supabase {
	c := gotrue.New(projectRef, anonKey)
	if customURL != "" {
		c = c.WithCustomGoTrueURL(customURL)
	}
	return &Supabase{client: c}
}

func (s *Supabase) SignIn(_ context.Context, email, password string) (*Session, error) {
	resp, err := s.client.Token(types.TokenRequest{
		GrantType: "password",
		Email:     email,
		Password:  password,
	})
	if err != nil {
		return nil, classify(err)
	}
	return fromSession(resp.Session), nil
}

func (s *Supabase) SignUp(_ context.Context, email, password string) (*Session, error) {
	resp, err := s.client.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, classify(err)
	}

	// autoconfirm on: a full session; off: only the user
	if resp.AccessToken != "" {
		return fromSession(resp.Session), nil
	}
	return &Session{Identity: models.Identity{ID: resp.User.ID.String(), Email: resp.User.Email}}, nil
}

func (s *Supabase) SignOut(_ context.Context, accessToken string) error {
	if err := s.client.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func fromSession(ss types.Session) *Session {
	return &Session{
		AccessToken:  ss.AccessToken,
		RefreshToken: ss.RefreshToken,
		ExpiresAt:    ss.ExpiresAt,
		Identity: models.Identity{
			ID:    ss.User.ID.String(),
			Email: ss.User.Email,
		},
	}
}

// gotrue-go surfaces API failures as plain errors carrying the response body
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already registered"), strings.Contains(msg, "already exists"):
		return fmt.Errorf("%w: %v", ErrEmailInUse, err)
	case strings.Contains(msg, "invalid login credentials"),
		strings.Contains(msg, "invalid_grant"),
		strings.Contains(msg, "email not confirmed"):
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	default:
		return err
	}
}
