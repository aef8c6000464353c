package realtime

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus for tests and single-instance runs.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[string]map[*memorySubscription]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: map[string]map[*memorySubscription]struct{}{}}
}

func (b *MemoryBus) Publish(_ context.Context, topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs[topic] {
		cp := append([]byte(nil), payload...)
		select {
		case s.ch <- cp:
		default:
			// slow subscriber; a pending notification already forces a refetch
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &memorySubscription{bus: b, topic: topic, ch: make(chan []byte, 64)}
	if b.subs[topic] == nil {
		b.subs[topic] = map[*memorySubscription]struct{}{}
	}
	b.subs[topic][s] = struct{}{}
	return s, nil
}

// Subscribers returns the number of live subscriptions on topic.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

type memorySubscription struct {
	bus   *MemoryBus
	topic string
	ch    chan []byte
	once  sync.Once
}

func (s *memorySubscription) C() <-chan []byte { return s.ch }

func (s *memorySubscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.topic], s)
		close(s.ch)
		s.bus.mu.Unlock()
	})
	return nil
}
