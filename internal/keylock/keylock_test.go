package keylock

import (
	"sync"
	"testing"
)

func TestLock_SerializesSameKey(t *testing.T) {
	m := New()
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("same-key")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != 100 {
		t.Errorf("counter = %d, want 100", counter)
	}
}

func TestLock_ReleasedLockCanBeReacquired(t *testing.T) {
	m := New()
	unlock := m.Lock("k")
	unlock()
	unlock = m.Lock("k")
	unlock()
}
