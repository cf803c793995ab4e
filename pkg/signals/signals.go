// Package signals carries session lifecycle signals between Infrasync
// clients. A client that logs in or out publishes a signal; every other
// client of the same user revalidates its session when the signal arrives.
// Focus signals trigger the same revalidation when a client regains the
// user's attention after being idle.
//
// Two buses ship with the package: an in-process bus for a single binary,
// and a Redis pub/sub bus so separate processes on one machine stay in
// sync the way browser tabs do through shared storage.
package signals

import (
	"context"
	"time"
)

// Kind identifies what happened.
type Kind string

const (
	// KindLogin means some client established a session.
	KindLogin Kind = "login"
	// KindLogout means some client destroyed the session.
	KindLogout Kind = "logout"
	// KindFocus means this client regained the user's attention.
	KindFocus Kind = "focus"
)

// Signal is one session lifecycle event.
type Signal struct {
	Kind Kind `json:"kind"`
	// Origin identifies the publishing client so subscribers can ignore
	// their own signals, matching how storage events never fire in the
	// tab that wrote the key.
	Origin string    `json:"origin"`
	At     time.Time `json:"at"`
}

// Subscriber receives signals from a Bus.
type Subscriber interface {
	// C returns the channel signals arrive on. The channel is closed
	// when the subscriber or its bus is closed.
	C() <-chan Signal

	// Close tears down the subscription. Idempotent.
	Close() error
}

// Bus distributes signals to all active subscribers. Publish must not block
// on slow subscribers; dropping for a lagging consumer is acceptable since
// any later signal triggers the same revalidation.
type Bus interface {
	// Subscribe creates a subscriber that receives every published signal.
	// The subscription is torn down when ctx is cancelled or Close is called.
	Subscribe(ctx context.Context) Subscriber

	// Publish sends a signal to all active subscribers.
	Publish(ctx context.Context, signal Signal) error

	// Close shuts down the bus and closes all subscribers. Idempotent.
	Close() error
}
