package auth

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/realtime"
)

const TopicEvents = "auth_events"

// Event is an authentication state change for one subject. A nil Identity
// means the subject signed out.
type Event struct {
	Subject  string           `json:"subject"`
	Identity *models.Identity `json:"identity,omitempty"`
}

// Notifier publishes auth state changes over the realtime bus so every
// server instance sees them.
type Notifier struct {
	bus realtime.Bus
	log logrus.FieldLogger
}

func NewNotifier(bus realtime.Bus, log logrus.FieldLogger) *Notifier {
	return &Notifier{bus: bus, log: log}
}

func (n *Notifier) Publish(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.bus.Publish(ctx, TopicEvents, b)
}

// Subscribe calls fn for every event until the returned func is called.
func (n *Notifier) Subscribe(ctx context.Context, fn func(Event)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	sub, err := n.bus.Subscribe(ctx, TopicEvents)
	if err != nil {
		cancel()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-sub.C():
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal(raw, &ev); err != nil {
					n.log.WithError(err).Warn("dropping malformed auth event")
					continue
				}
				fn(ev)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = sub.Close()
			<-done
		})
	}, nil
}
