package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemLocks_SerializesSameKey(t *testing.T) {
	locks := newItemLocks()
	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("DON-001")
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Zero(t, locks.size(), "entries must be released once idle")
}

func TestItemLocks_IndependentKeys(t *testing.T) {
	locks := newItemLocks()
	unlockA := locks.lock("a")
	// would deadlock if keys shared a mutex
	unlockB := locks.lock("b")
	assert.Equal(t, 2, locks.size())
	unlockB()
	unlockA()
	assert.Zero(t, locks.size())
}
