package realtime

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Watch delivers an initial snapshot synchronously, then a fresh snapshot
// after every notification on topic. The returned cancel unsubscribes and
// waits for the delivery goroutine to exit.
func Watch[T any](
	ctx context.Context,
	bus Bus,
	topic string,
	fetch func(context.Context) ([]T, error),
	onSnapshot func([]T),
	log logrus.FieldLogger,
) (cancel func(), err error) {
	ctx, stop := context.WithCancel(ctx)

	// subscribe before the first fetch so no change slips between them
	sub, err := bus.Subscribe(ctx, topic)
	if err != nil {
		stop()
		return nil, err
	}

	rows, err := fetch(ctx)
	if err != nil {
		_ = sub.Close()
		stop()
		return nil, err
	}
	onSnapshot(rows)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-sub.C():
				if !ok {
					return
				}
				rows, err := fetch(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					if log != nil {
						log.WithError(err).WithField("topic", topic).Warn("snapshot refetch failed")
					}
					continue
				}
				onSnapshot(rows)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			_ = sub.Close()
			<-done
		})
	}, nil
}
