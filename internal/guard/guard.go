// Package guard decides what a protected view shows for a session state.
package guard

import "github.com/yoockh/dojoportal/internal/session"

type Decision int

const (
	Render Decision = iota
	Placeholder
	RedirectSignIn
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case Placeholder:
		return "placeholder"
	case RedirectSignIn:
		return "redirect_signin"
	case RedirectHome:
		return "redirect_home"
	default:
		return "unknown"
	}
}

// Target is the redirect location, empty for non-redirects.
func (d Decision) Target() string {
	switch d {
	case RedirectSignIn:
		return "/signin"
	case RedirectHome:
		return "/"
	default:
		return ""
	}
}

// Auth requires a signed-in user.
func Auth(st session.State) Decision {
	if st.Loading {
		return Placeholder
	}
	if !st.IsAuthed() {
		return RedirectSignIn
	}
	return Render
}

// Admin requires a signed-in user whose profile role is admin.
func Admin(st session.State) Decision {
	if st.Loading {
		return Placeholder
	}
	if !st.IsAuthed() {
		return RedirectSignIn
	}
	if !st.IsAdmin() {
		return RedirectHome
	}
	return Render
}
