package backoff

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	p := Policy{Attempts: 3, Wait: time.Millisecond}

	calls := 0
	err := p.Retry(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, expected 1", calls)
	}
}

func TestRetryRecoversAfterFailures(t *testing.T) {
	p := Policy{Attempts: 3, Wait: time.Millisecond}

	calls := 0
	err := p.Retry(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, expected 3", calls)
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	p := Policy{Attempts: 2, Wait: time.Millisecond}

	last := errors.New("still failing")
	calls := 0
	err := p.Retry(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("first failure")
		}
		return last
	})

	if !errors.Is(err, last) {
		t.Errorf("err = %v, expected %v", err, last)
	}
	if calls != 2 {
		t.Errorf("calls = %d, expected 2", calls)
	}
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	p := Policy{}

	calls := 0
	err := p.Retry(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("fail")
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, expected 1", calls)
	}
}

func TestRetryContextCanceled(t *testing.T) {
	p := Policy{Attempts: 5, Wait: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)

	go func() {
		done <- p.Retry(ctx, func(ctx context.Context) error {
			calls++
			return errors.New("fail")
		})
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, expected context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not stop after cancellation")
	}

	if calls != 1 {
		t.Errorf("calls = %d, expected 1", calls)
	}
}
