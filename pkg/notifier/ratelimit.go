package notifier

import (
	"sync"
	"time"
)

// RateLimit caps deliveries per client address. Windows are aligned to the
// wall clock, so every client's counter resets at the same instant.
type RateLimit struct {
	// Requests allowed per client per Window. Zero disables the limit.
	Requests int

	// Window defaults to one minute.
	Window time.Duration
}

const unknownClient = "unknown"

// deliveryLimiter counts deliveries per client in the current window only.
// Counters for past windows are dropped wholesale when the window rolls over.
type deliveryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	slot   int64
	counts map[string]int
	now    func() time.Time
}

func newDeliveryLimiter(cfg RateLimit) *deliveryLimiter {
	if cfg.Requests <= 0 {
		return nil
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &deliveryLimiter{
		limit:  cfg.Requests,
		window: cfg.Window,
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// admit reports whether client may deliver one more request in this window.
func (l *deliveryLimiter) admit(client string) bool {
	if client == "" {
		client = unknownClient
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if slot := l.now().UnixNano() / int64(l.window); slot != l.slot {
		l.slot = slot
		clear(l.counts)
	}

	if l.counts[client] >= l.limit {
		return false
	}
	l.counts[client]++
	return true
}

func (l *deliveryLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counts)
}
