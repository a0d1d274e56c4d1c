package workers

import "time"

// RetryPolicy is an exponential backoff for whole-job retries.
type RetryPolicy struct {
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Initial: 2 * time.Second, Max: time.Minute, MaxRetries: 3}
}

func NewRetryPolicy(initial, maxDelay time.Duration, maxRetries int) RetryPolicy {
	p := DefaultRetryPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the wait before retry number retry (1-based).
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry <= 0 {
		return 0
	}
	d := p.Initial << (retry - 1)
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}
