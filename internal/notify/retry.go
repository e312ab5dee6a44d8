package notify

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy is a fixed-delay retry schedule.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetry is three attempts one second apart.
var DefaultRetry = RetryPolicy{Attempts: 3, Delay: time.Second}

// DeliveryError is returned once every attempt has failed.
type DeliveryError struct {
	Attempts int
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// Do calls fn until it succeeds or the attempts run out. The pause between
// attempts returns early when ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for i := 0; i < attempts; i++ {
		if last = fn(ctx); last == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if p.Delay > 0 {
			t := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return &DeliveryError{Attempts: i + 1, Err: last}
			case <-t.C:
			}
		}
	}
	return &DeliveryError{Attempts: attempts, Err: last}
}
