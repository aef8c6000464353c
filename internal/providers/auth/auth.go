package auth

import (
	"context"
	"errors"

	"github.com/yoockh/dojoportal/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrEmailInUse         = errors.New("email already registered")
)

// Session is what a successful sign-in or sign-up yields. AccessToken is
// empty when the provider requires email confirmation first.
type Session struct {
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	ExpiresAt    int64           `json:"expires_at,omitempty"`
	Identity     models.Identity `json:"user"`
}

type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
}
