package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryLockerMutualExclusion(t *testing.T) {
	locker := NewMemoryLocker(2 * time.Second)

	const workers = 20
	var wg sync.WaitGroup
	var counter, active int
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "slotlock:test")
			if err != nil {
				t.Errorf("unexpected acquire error: %v", err)
				return
			}
			defer release()

			mu.Lock()
			active++
			if active > 1 {
				t.Errorf("lock held by %d workers at once", active)
			}
			mu.Unlock()

			counter++

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("expected counter %d, got %d", workers, counter)
	}
}

func TestMemoryLockerTimeout(t *testing.T) {
	locker := NewMemoryLocker(50 * time.Millisecond)

	release, err := locker.Acquire(context.Background(), "slotlock:busy")
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}

	if _, err := locker.Acquire(context.Background(), "slotlock:busy"); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout while held, got %v", err)
	}

	release()

	// Released locks must be acquirable again.
	release2, err := locker.Acquire(context.Background(), "slotlock:busy")
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	release2()
}

func TestMemoryLockerIndependentKeys(t *testing.T) {
	locker := NewMemoryLocker(50 * time.Millisecond)

	releaseA, err := locker.Acquire(context.Background(), "slotlock:a")
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	defer releaseA()

	// A held lock on one coordinate must not block another coordinate.
	releaseB, err := locker.Acquire(context.Background(), "slotlock:b")
	if err != nil {
		t.Fatalf("independent key blocked: %v", err)
	}
	releaseB()
}

func TestMemoryLockerReleaseIsIdempotent(t *testing.T) {
	locker := NewMemoryLocker(50 * time.Millisecond)

	release, err := locker.Acquire(context.Background(), "slotlock:once")
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	release()
	release() // must not panic or underflow the semaphore

	release2, err := locker.Acquire(context.Background(), "slotlock:once")
	if err != nil {
		t.Fatalf("acquire after double release failed: %v", err)
	}
	release2()
}

func TestMemoryLockerContextCancelled(t *testing.T) {
	locker := NewMemoryLocker(5 * time.Second)

	release, err := locker.Acquire(context.Background(), "slotlock:ctx")
	if err != nil {
		t.Fatalf("unexpected acquire error: %v", err)
	}
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = locker.Acquire(ctx, "slotlock:ctx")
	var transient *TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("expected TransientError on cancelled context, got %v", err)
	}
}
