package workers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Delay(t *testing.T) {
	p := NewRetryPolicy(time.Second, 5*time.Second, 4)

	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 4*time.Second, p.Delay(3))
	assert.Equal(t, 5*time.Second, p.Delay(4), "capped at max")
	assert.Equal(t, 5*time.Second, p.Delay(80), "shift overflow falls back to max")
}

func TestNewRetryPolicy_Defaults(t *testing.T) {
	p := NewRetryPolicy(0, 0, -1)
	assert.Equal(t, DefaultRetryPolicy(), p)

	p = NewRetryPolicy(time.Minute, time.Second, 0)
	assert.Equal(t, time.Second, p.Initial)
	assert.Equal(t, 0, p.MaxRetries)
}
