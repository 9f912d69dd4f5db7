package detector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(window time.Duration, max int) (*RateLimiter, *time.Time) {
	rl := NewRateLimiter(window, max)
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return current }
	return rl, &current
}

func TestRateLimiterCapsPerSource(t *testing.T) {
	rl, _ := newTestLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "alert %d should pass", i)
	}
	assert.False(t, rl.Allow("10.0.0.1"), "fourth alert within the window is suppressed")
}

func TestRateLimiterIsPerSource(t *testing.T) {
	rl, _ := newTestLimiter(time.Minute, 1)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "a different source has its own budget")
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl, current := newTestLimiter(time.Minute, 2)

	assert.True(t, rl.Allow("10.0.0.1"))
	*current = current.Add(30 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// First alert falls out of the window, freeing one slot.
	*current = current.Add(31 * time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	assert.Equal(t, time.Minute, rl.window)
	assert.Equal(t, 5, rl.max)
}
