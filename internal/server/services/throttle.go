package services

import (
	"sync"
	"time"
)

// Throttle remembers recent failed logins per mail. Implementations must be
// safe for concurrent use.
type Throttle interface {
	// Blocked reports whether a failure for mail is still inside the retry window.
	Blocked(mail string) bool
	RecordFailure(mail string)
	Clear(mail string)
}

// MemoryThrottle is a process-local Throttle. Each instance owns its state,
// so a multi-instance deployment throttles per instance only.
type MemoryThrottle struct {
	mu       sync.Mutex
	delay    time.Duration
	failures map[string]time.Time
	now      func() time.Time
}

func NewMemoryThrottle(delay time.Duration) *MemoryThrottle {
	return &MemoryThrottle{
		delay:    delay,
		failures: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (t *MemoryThrottle) Blocked(mail string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok := t.failures[mail]
	if !ok {
		return false
	}
	if t.now().Sub(last) < t.delay {
		return true
	}
	// expired, forget it so the map does not grow with stale mails
	delete(t.failures, mail)
	return false
}

func (t *MemoryThrottle) RecordFailure(mail string) {
	t.mu.Lock()
	t.failures[mail] = t.now()
	t.mu.Unlock()
}

func (t *MemoryThrottle) Clear(mail string) {
	t.mu.Lock()
	delete(t.failures, mail)
	t.mu.Unlock()
}
