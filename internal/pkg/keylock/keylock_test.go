package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_Lock_SerializesSameKey(t *testing.T) {
	// Setup
	kl := New()
	counter := 0
	var wg sync.WaitGroup

	// Act
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("emp-1|Annual")
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	// Assert
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, kl.Len())
}

func TestKeyLock_Lock_IndependentKeys(t *testing.T) {
	// Setup
	kl := New()
	unlockA := kl.Lock("a")

	// Act
	done := make(chan struct{})
	go func() {
		unlockB := kl.Lock("b")
		unlockB()
		close(done)
	}()
	<-done

	// Assert
	assert.Equal(t, 1, kl.Len())
	unlockA()
	assert.Equal(t, 0, kl.Len())
}
