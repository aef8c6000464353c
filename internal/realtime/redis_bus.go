package realtime

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "dojoportal:"

type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.rdb.Publish(ctx, channelPrefix+topic, payload).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	ps := b.rdb.Subscribe(ctx, channelPrefix+topic)

	// wait for the subscribe ack so a publish right after this returns is
	// not lost
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	s := &redisSubscription{ps: ps, out: make(chan []byte, 16), done: make(chan struct{})}
	go s.pump()
	return s, nil
}

type redisSubscription struct {
	ps   *redis.PubSub
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for m := range s.ps.Channel() {
		select {
		case s.out <- []byte(m.Payload):
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) C() <-chan []byte { return s.out }

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
