package app

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	var km keyedMutex
	key := uuid.New()

	const workers = 16
	var counter, max int
	var track sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := km.lock(key)
			defer release()

			track.Lock()
			counter++
			if counter > max {
				max = counter
			}
			track.Unlock()

			track.Lock()
			counter--
			track.Unlock()
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Fatalf("expected at most one holder at a time, saw %d", max)
	}
}

func TestKeyedMutex_DiscardsEntriesAfterRelease(t *testing.T) {
	var km keyedMutex
	key := uuid.New()

	release := km.lock(key)
	release()

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.entries) != 0 {
		t.Fatalf("expected entry map to be empty after release, got %d entries", len(km.entries))
	}
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	var km keyedMutex
	first := km.lock(uuid.New())
	defer first()

	done := make(chan struct{})
	go func() {
		release := km.lock(uuid.New())
		release()
		close(done)
	}()
	<-done
}
