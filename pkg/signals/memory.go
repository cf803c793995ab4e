package signals

import (
	"context"
	"sync"
)

type memorySubscriber struct {
	ch     chan Signal
	closed bool
	mu     sync.Mutex
}

func newMemorySubscriber(buffer int) *memorySubscriber {
	return &memorySubscriber{ch: make(chan Signal, buffer)}
}

func (s *memorySubscriber) C() <-chan Signal { return s.ch }

func (s *memorySubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *memorySubscriber) send(sig Signal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- sig:
		return true
	default:
		return false
	}
}

// MemoryBus is an in-process Bus. Publishes are non-blocking: when a
// subscriber's buffer is full the signal is dropped for that subscriber.
// All methods are safe for concurrent use.
type MemoryBus struct {
	subscribers map[*memorySubscriber]struct{}
	buffer      int
	closed      bool
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup
}

// NewMemoryBus creates an in-process bus. A minimum buffer of 1 is enforced
// so sends never block the publisher.
func NewMemoryBus(buffer int) *MemoryBus {
	return &MemoryBus{
		subscribers: make(map[*memorySubscriber]struct{}),
		buffer:      max(buffer, 1),
	}
}

func (b *MemoryBus) Subscribe(ctx context.Context) Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newMemorySubscriber(b.buffer)
	if b.closed {
		_ = sub.Close()
		return sub
	}
	b.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			<-ctx.Done()
			b.unsubscribe(sub)
		}()
	}

	return sub
}

func (b *MemoryBus) Publish(_ context.Context, sig Signal) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}

	for sub := range b.subscribers {
		if !sub.send(sig) {
			// Drop slow subscribers asynchronously so publishes stay cheap.
			go b.unsubscribe(sub)
		}
	}
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	b.cleanupWg.Wait()
	return nil
}

func (b *MemoryBus) unsubscribe(sub *memorySubscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, sub)
	_ = sub.Close()
}
