package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestConcurrencyLimiter(t *testing.T) {
	l := NewConcurrencyLimiter(1)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if l.InUse() != 1 {
		t.Errorf("InUse() = %d, want 1", l.InUse())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() on full limiter = %v, want deadline exceeded", err)
	}

	l.Release()
	if l.InUse() != 0 {
		t.Errorf("InUse() = %d, want 0", l.InUse())
	}
}
