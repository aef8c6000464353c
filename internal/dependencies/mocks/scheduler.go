package mocks

import (
	"sync"
	"time"

	"github.com/yoockh/dojoportal/internal/dependencies/clock"
)

// MockScheduler records armed timers and fires them on demand.
type MockScheduler struct {
	mu     sync.Mutex
	nextID int
	timers map[int]*mockTimer
	Armed  int // total number of Every calls
}

type mockTimer struct {
	period time.Duration
	fn     func()
}

var _ clock.Scheduler = (*MockScheduler)(nil)

func NewMockScheduler() *MockScheduler {
	return &MockScheduler{timers: map[int]*mockTimer{}}
}

func (s *MockScheduler) Every(d time.Duration, fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.timers[id] = &mockTimer{period: d, fn: fn}
	s.Armed++
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.timers, id)
	}
}

// Active returns how many timers are currently armed.
func (s *MockScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Periods returns the period of every armed timer.
func (s *MockScheduler) Periods() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, 0, len(s.timers))
	for _, t := range s.timers {
		out = append(out, t.period)
	}
	return out
}

// Tick fires every armed timer once.
func (s *MockScheduler) Tick() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.timers))
	for _, t := range s.timers {
		fns = append(fns, t.fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
