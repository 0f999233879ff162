package utils

import (
	"sync"
	"testing"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("g1")
			counter++
			km.Unlock("g1")
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("expected 50, got %d", counter)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock("g1")
	// A different key must not block.
	km.Lock("g2")
	km.Unlock("g2")
	km.Unlock("g1")
}
