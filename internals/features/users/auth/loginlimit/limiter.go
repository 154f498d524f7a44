// Package loginlimit tracks failed login attempts per (IP, email) in a
// process-local sliding window. It is deliberately volatile: in a
// multi-process deployment the Limiter interface can be re-implemented on
// a shared store without touching the auth service.
package loginlimit

import (
	"strings"
	"sync"
	"time"
)

type Limiter interface {
	// Check reports whether the key is currently blocked. It does not
	// record an attempt. retryAfter is seconds until attempts are allowed
	// again (only meaningful when blocked); remaining is how many failed
	// attempts are left before blocking.
	Check(ip, email string) (blocked bool, retryAfter int, remaining int)
	RecordFailure(ip, email string)
	Reset(ip, email string)
}

type memoryLimiter struct {
	mu          sync.Mutex
	attempts    map[string][]time.Time
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

func New(maxAttempts int, window time.Duration) Limiter {
	return &memoryLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

func key(ip, email string) string {
	if ip == "" {
		ip = "unknown"
	}
	return ip + "|" + strings.ToLower(strings.TrimSpace(email))
}

func (l *memoryLimiter) Check(ip, email string) (bool, int, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(ip, email)
	ts := l.prune(k)

	if len(ts) >= l.maxAttempts {
		retryAfter := int(l.window.Seconds() - l.now().Sub(ts[0]).Seconds())
		if retryAfter < 0 {
			retryAfter = 0
		}
		return true, retryAfter, 0
	}
	return false, 0, l.maxAttempts - len(ts)
}

func (l *memoryLimiter) RecordFailure(ip, email string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := key(ip, email)
	ts := append(l.prune(k), l.now())
	// keep the slice bounded even under a flood
	if len(ts) > 128 {
		ts = ts[len(ts)-128:]
	}
	l.attempts[k] = ts
}

func (l *memoryLimiter) Reset(ip, email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key(ip, email))
}

// prune drops timestamps outside the window. Caller holds the lock.
func (l *memoryLimiter) prune(k string) []time.Time {
	ts := l.attempts[k]
	cutoff := l.now().Add(-l.window)
	i := 0
	for i < len(ts) && ts[i].Before(cutoff) {
		i++
	}
	ts = ts[i:]
	if len(ts) == 0 {
		delete(l.attempts, k)
	} else {
		l.attempts[k] = ts
	}
	return ts
}
