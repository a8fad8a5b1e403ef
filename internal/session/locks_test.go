package session

import (
	"sync"
	"testing"
)

func TestLocksSerializePerKey(t *testing.T) {
	locks := NewLocks()
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("96279")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("expected 50 serialized increments, got %d", counter)
	}
	if locks.Len() != 0 {
		t.Fatalf("expected lock table to drain, got %d", locks.Len())
	}
}

func TestLocksIndependentKeys(t *testing.T) {
	locks := NewLocks()
	unlockA := locks.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := locks.Lock("b")
		unlock()
		close(done)
	}()
	<-done
	unlockA()
}
