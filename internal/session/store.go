// Package session tracks who is signed in and what they may do.
//
// A Store follows authentication state changes for one subject. Every
// change resolves the subject's profile; authorization flags are derived
// from {identity, profile} on read and never stored separately.
package session

import (
	"context"
	"slices"
	"sync"

	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/providers/auth"
)

// State is a read-only snapshot of a Store.
type State struct {
	Loading  bool             `json:"loading"`
	Identity *models.Identity `json:"identity"`
	Profile  *models.Profile  `json:"profile"`
}

func (s State) IsAuthed() bool { return s.Identity != nil }

func (s State) IsAdmin() bool { return s.Role() == models.RoleAdmin }

// Role is empty until a profile is loaded.
func (s State) Role() models.UserRole { return s.Profile.EffectiveRole() }

type ProfileEnsurer interface {
	Ensure(ctx context.Context, id models.Identity) (*models.Profile, error)
}

type EventSource interface {
	Subscribe(ctx context.Context, fn func(auth.Event)) (unsubscribe func(), err error)
}

type Store struct {
	profiles ProfileEnsurer

	mu        sync.Mutex
	state     State
	listeners []func(State)
	onError   func(error)
	unsub     func()
}

// New returns a Store in the loading state.
func New(profiles ProfileEnsurer) *Store {
	return &Store{profiles: profiles, state: State{Loading: true}}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnChange registers fn to receive a snapshot after every transition.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// OnError receives errors from events handled by Watch.
func (s *Store) OnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

// Handle applies one authentication state change. Loading is cleared on
// every path; profile errors are returned without retry.
func (s *Store) Handle(ctx context.Context, identity *models.Identity) error {
	s.update(func(st *State) {
		st.Loading = true
		st.Identity = identity
	})
	defer s.update(func(st *State) { st.Loading = false })

	if identity == nil {
		s.update(func(st *State) { st.Profile = nil })
		return nil
	}

	p, err := s.profiles.Ensure(ctx, *identity)
	if err != nil {
		// a profile left over from a previous identity must not linger
		s.update(func(st *State) { st.Profile = nil })
		return err
	}
	s.update(func(st *State) { st.Profile = p })
	return nil
}

// Watch subscribes to auth events for subject. Close unsubscribes.
func (s *Store) Watch(ctx context.Context, src EventSource, subject string) error {
	unsub, err := src.Subscribe(ctx, func(ev auth.Event) {
		if ev.Subject != subject {
			return
		}
		if err := s.Handle(ctx, ev.Identity); err != nil {
			s.mu.Lock()
			fn := s.onError
			s.mu.Unlock()
			if fn != nil {
				fn(err)
			}
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	prev := s.unsub
	s.unsub = unsub
	s.mu.Unlock()
	if prev != nil {
		prev()
	}
	return nil
}

func (s *Store) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (s *Store) update(fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// Resolve runs one Handle on a fresh Store and returns the settled state.
// HTTP requests use it: each request carries its own identity.
func Resolve(ctx context.Context, profiles ProfileEnsurer, identity *models.Identity) (State, error) {
	s := New(profiles)
	err := s.Handle(ctx, identity)
	return s.State(), err
}
