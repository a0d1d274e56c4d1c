// Package live holds observable values: the latest result of a query that is
// recomputed whenever a committed write invalidates it.
package live

import (
	"errors"
	"sync"
)

var ErrUnavailable = errors.New("value unavailable")

// Outcome is the result of an asynchronous computation. A failed computation
// carries its error instead of a value.
type Outcome[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

func Failed[T any](err error) Outcome[T] {
	if err == nil {
		err = ErrUnavailable
	}
	return Outcome[T]{Err: err}
}

func (o Outcome[T]) Available() bool {
	return o.Err == nil
}

// Value holds the latest T and fans it out to subscribers. Slow subscribers
// skip intermediate values and only see the newest one.
type Value[T any] struct {
	mu      sync.RWMutex
	current T
	set     bool
	subs    map[chan T]struct{}
	closed  bool
}

func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[chan T]struct{})}
}

func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.current = val
	v.set = true

	for ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- val
	}
}

// Get returns the latest value and whether one was ever set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current, v.set
}

// Subscribe returns a channel receiving every new value, starting with the
// current one if present, and a function that ends the subscription.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	v.subs[ch] = struct{}{}
	if v.set {
		ch <- v.current
	}
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if _, ok := v.subs[ch]; ok {
				delete(v.subs, ch)
				close(ch)
			}
		})
	}
}

// Close ends every subscription. Further Set calls are ignored.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true
	for ch := range v.subs {
		delete(v.subs, ch)
		close(ch)
	}
}
