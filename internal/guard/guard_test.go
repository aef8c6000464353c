package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/session"
)

func signedIn(role models.UserRole) session.State {
	return session.State{
		Identity: &models.Identity{ID: "u1"},
		Profile:  &models.Profile{UserID: "u1", Role: role},
	}
}

func TestAuth(t *testing.T) {
	cases := []struct {
		name  string
		state session.State
		want  Decision
	}{
		{"loading", session.State{Loading: true}, Placeholder},
		{"loading with identity", session.State{Loading: true, Identity: &models.Identity{ID: "u1"}}, Placeholder},
		{"signed out", session.State{}, RedirectSignIn},
		{"player", signedIn(models.RolePlayer), Render},
		{"admin", signedIn(models.RoleAdmin), Render},
		{"no profile yet", session.State{Identity: &models.Identity{ID: "u1"}}, Render},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Auth(tc.state))
		})
	}
}

func TestAdmin(t *testing.T) {
	cases := []struct {
		name  string
		state session.State
		want  Decision
	}{
		{"loading", session.State{Loading: true}, Placeholder},
		{"signed out", session.State{}, RedirectSignIn},
		{"player", signedIn(models.RolePlayer), RedirectHome},
		{"empty role", signedIn(""), RedirectHome},
		{"unknown role", signedIn("sensei"), RedirectHome},
		{"upper-case admin", signedIn("ADMIN"), RedirectHome},
		{"missing profile", session.State{Identity: &models.Identity{ID: "u1"}}, RedirectHome},
		{"admin", signedIn(models.RoleAdmin), Render},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Admin(tc.state))
		})
	}
}

func TestTarget(t *testing.T) {
	assert.Equal(t, "/signin", RedirectSignIn.Target())
	assert.Equal(t, "/", RedirectHome.Target())
	assert.Empty(t, Render.Target())
	assert.Empty(t, Placeholder.Target())
}
