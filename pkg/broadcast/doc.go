// Package broadcast provides type-safe one-to-many delivery of state snapshots.
//
// The estimation engine publishes every new immutable state through a
// MemoryBroadcaster. Subscribers never block the publisher: a subscriber that
// falls behind loses intermediate snapshots but always receives the newest one,
// and a new subscriber starts with the current snapshot.
//
// Basic usage:
//
//	b := broadcast.NewMemoryBroadcaster[State](4)
//	defer b.Close()
//
//	sub := b.Subscribe(ctx)
//	_ = b.Broadcast(ctx, state)
//
//	for msg := range sub.Receive(ctx) {
//		render(msg.Data)
//	}
//
// Subscriptions end when their context is cancelled, when Close is called on
// the subscriber, or when the broadcaster is closed.
package broadcast
