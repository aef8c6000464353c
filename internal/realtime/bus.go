// Package realtime delivers change notifications and rebuilds full
// snapshots from them. A subscriber never patches its mirror: every
// notification triggers a fresh ordered query whose result replaces the
// previous one wholesale.
package realtime

import "context"

// Bus fans out small payloads by topic.
type Bus interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

type Subscription interface {
	C() <-chan []byte
	Close() error
}

var changed = []byte("changed")

// NotifyChanged tells every subscriber of topic to refetch.
func NotifyChanged(ctx context.Context, bus Bus, topic string) error {
	if bus == nil {
		return nil
	}
	return bus.Publish(ctx, topic, changed)
}
