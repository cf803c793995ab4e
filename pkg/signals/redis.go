package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus distributes signals through a Redis pub/sub channel so separate
// client processes observe each other's logins and logouts.
type RedisBus struct {
	client  redis.UniversalClient
	channel string

	mu     sync.Mutex
	subs   map[*redisSubscriber]struct{}
	closed bool
}

// NewRedisBus creates a bus publishing on the given pub/sub channel.
func NewRedisBus(client redis.UniversalClient, channel string) *RedisBus {
	return &RedisBus{
		client:  client,
		channel: channel,
		subs:    make(map[*redisSubscriber]struct{}),
	}
}

// NewRedisBusFromURL connects to Redis at the given URL, verifies the
// connection and returns a bus on top of it.
func NewRedisBusFromURL(ctx context.Context, url, channel string) (*RedisBus, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("signals: invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("signals: redis ping failed: %w", err)
	}

	return NewRedisBus(client, channel), nil
}

func (b *RedisBus) Subscribe(ctx context.Context) Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &redisSubscriber{ch: make(chan Signal, 8)}
	if b.closed {
		_ = sub.Close()
		return sub
	}

	sub.pubsub = b.client.Subscribe(ctx, b.channel)
	b.subs[sub] = struct{}{}
	go sub.pump(ctx)

	return sub
}

func (b *RedisBus) Publish(ctx context.Context, sig Signal) error {
	payload, err := encodeSignal(sig)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for sub := range b.subs {
		_ = sub.Close()
	}
	clear(b.subs)

	return b.client.Close()
}

type redisSubscriber struct {
	pubsub *redis.PubSub
	ch     chan Signal

	mu     sync.Mutex
	closed bool
}

func (s *redisSubscriber) C() <-chan Signal { return s.ch }

func (s *redisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.pubsub != nil {
		// Closing the PubSub terminates pump's range over its channel.
		err = s.pubsub.Close()
	} else {
		close(s.ch)
	}
	return err
}

// pump decodes incoming messages onto the subscriber channel until the
// PubSub or the context is done. Undecodable payloads are skipped.
func (s *redisSubscriber) pump(ctx context.Context) {
	defer close(s.ch)

	msgs := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			sig, err := decodeSignal([]byte(msg.Payload))
			if err != nil {
				continue
			}
			select {
			case s.ch <- sig:
			default:
				// Slow consumer; a dropped signal is recovered by the
				// next one since all signals trigger the same refresh.
			}
		}
	}
}

func encodeSignal(sig Signal) ([]byte, error) {
	payload, err := json.Marshal(sig)
	if err != nil {
		return nil, fmt.Errorf("signals: encode signal: %w", err)
	}
	return payload, nil
}

func decodeSignal(payload []byte) (Signal, error) {
	var sig Signal
	if err := json.Unmarshal(payload, &sig); err != nil {
		return sig, fmt.Errorf("signals: decode signal: %w", err)
	}
	if sig.Kind == "" {
		return sig, fmt.Errorf("signals: decode signal: missing kind")
	}
	return sig, nil
}
