// File: internal/platform/breaker/breaker.go

// Package breaker provides a small circuit breaker guarding the write paths
// against a persistence layer that is known to be down. It replaces a bare
// process-wide availability flag with an injectable object.
package breaker

import (
	"sync"
	"time"
)

// Breaker is the interface write-path services depend on.
type Breaker interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
}

// CircuitBreaker opens after a number of consecutive failures and stays open
// for a cooldown period, after which the next operation is allowed through.
type CircuitBreaker struct {
	mu        sync.Mutex
	failures  int
	threshold int
	cooldown  time.Duration
	openUntil time.Time

	now func() time.Time // overridable in tests
}

// New creates a circuit breaker. A threshold <= 0 disables opening entirely.
func New(threshold int, cooldown time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// IsOpen reports whether operations should be short-circuited right now.
func (b *CircuitBreaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.openUntil.IsZero() {
		return false
	}
	if b.now().After(b.openUntil) {
		// Cooldown elapsed: half-open. Let the next operation probe the store.
		b.openUntil = time.Time{}
		b.failures = 0
		return false
	}
	return true
}

// RecordSuccess resets the failure streak and closes the breaker.
func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.openUntil = time.Time{}
}

// RecordFailure counts a failure and opens the breaker once the streak
// reaches the threshold.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.threshold <= 0 {
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
	}
}
