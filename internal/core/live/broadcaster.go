package live

import (
	"context"
	"sync"
)

// Broadcaster tells watchers that stored data changed. Notifications are
// coalesced: a watcher that has not yet consumed one will not queue another.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan struct{}]struct{})}
}

func (b *Broadcaster) Notify() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (b *Broadcaster) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
}

// Watch runs query once and again after every notification from b until ctx
// is done. Each result lands in the returned Value; a failing query yields an
// unavailable Outcome rather than stopping the watch.
func Watch[T any](ctx context.Context, b *Broadcaster, query func(context.Context) (T, error)) *Value[Outcome[T]] {
	out := NewValue[Outcome[T]]()
	invalidations, unsubscribe := b.Subscribe()

	run := func() {
		val, err := query(ctx)
		if err != nil {
			out.Set(Failed[T](err))
			return
		}
		out.Set(Ok(val))
	}

	run()

	go func() {
		defer out.Close()
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-invalidations:
				run()
			}
		}
	}()

	return out
}

// Trigger runs query once in the background and delivers its Outcome.
func Trigger[T any](ctx context.Context, query func(context.Context) (T, error)) *Value[Outcome[T]] {
	out := NewValue[Outcome[T]]()
	go func() {
		val, err := query(ctx)
		if err != nil {
			out.Set(Failed[T](err))
			return
		}
		out.Set(Ok(val))
	}()
	return out
}
