package web

// limiter.go implements concurrency control for validation runs.
//
// The limiter uses a semaphore pattern to restrict parallel validation runs
// to a configurable maximum, preventing resource exhaustion under load. When
// all slots are occupied, new requests wait up to maxWait before failing with
// errTooManyRuns.
//
// The limiter also supports graceful shutdown via WaitForDrain, which blocks
// until all active runs complete.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// errTooManyRuns is returned when all validation slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var errTooManyRuns = errors.New("too many concurrent validation runs, please try again later")

// defaultMaxConcurrentRuns is the fallback limit for parallel runs.
const defaultMaxConcurrentRuns = 5

// defaultMaxWaitTime is how long to wait for a slot before rejecting.
const defaultMaxWaitTime = 30 * time.Second

// runLimiter controls concurrent validation processing using a semaphore
// pattern.
type runLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// newRunLimiter creates a limiter that allows at most maxConcurrent
// simultaneous runs. Requests that cannot acquire a slot within maxWait
// receive errTooManyRuns.
func newRunLimiter(maxConcurrent int, maxWait time.Duration) *runLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentRuns
	}
	if maxWait <= 0 {
		maxWait = defaultMaxWaitTime
	}

	return &runLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire attempts to acquire a validation slot.
// Returns nil on success, errTooManyRuns if the timeout expires.
// The caller MUST call Release() when the run completes (use defer).
func (l *runLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// Check if original context was cancelled vs timeout
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errTooManyRuns

	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire.
func (l *runLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of currently active runs.
func (l *runLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until all active runs complete or context is cancelled.
// Used for graceful shutdown to ensure runs finish before termination.
func (l *runLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// limiterStatus is a snapshot of the limiter's current state.
type limiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *runLimiter) Status() limiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return limiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
