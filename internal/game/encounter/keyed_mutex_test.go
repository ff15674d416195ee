package encounter

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerialisesPerKey(t *testing.T) {
	km := newKeyedMutex()
	key := uuid.New()

	const workers = 50
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := km.Lock(key)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
	// All holders released: the entry is reclaimed.
	km.mu.Lock()
	assert.Empty(t, km.locks)
	km.mu.Unlock()
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := newKeyedMutex()
	a, b := uuid.New(), uuid.New()

	unlockA := km.Lock(a)

	// Holding a must not block b.
	done := make(chan struct{})
	go func() {
		unlockB := km.Lock(b)
		unlockB()
		close(done)
	}()
	<-done

	unlockA()
	km.mu.Lock()
	assert.Empty(t, km.locks)
	km.mu.Unlock()
}
