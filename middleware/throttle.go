package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SenderThrottle enforces a minimum gap between messages from the same chat
// sender, independent of the HTTP-level per-IP limiter. A throttled message
// is dropped without a reply so rapid-fire input cannot interleave the
// conversation.
type SenderThrottle struct {
	limiters map[string]*rate.Limiter
	interval time.Duration
	mu       sync.Mutex
}

func NewSenderThrottle(interval time.Duration) *SenderThrottle {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &SenderThrottle{
		limiters: make(map[string]*rate.Limiter),
		interval: interval,
	}
}

// Allow reports whether a message from the sender may be processed now.
func (t *SenderThrottle) Allow(sender string) bool {
	t.mu.Lock()
	limiter, exists := t.limiters[sender]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(t.interval), 1)
		t.limiters[sender] = limiter
	}
	t.mu.Unlock()
	return limiter.Allow()
}
