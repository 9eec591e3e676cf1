package atomic_float

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadStore(t *testing.T) {
	af := NewAtomicFloat64(0.5)
	assert.Equal(t, 0.5, af.Load())

	af.Store(0.25)
	assert.Equal(t, 0.25, af.Load())
}

func TestCompareAndSwap(t *testing.T) {
	af := NewAtomicFloat64(1.0)

	assert.True(t, af.CompareAndSwap(1.0, 2.0))
	assert.Equal(t, 2.0, af.Load())

	// Stale expectation loses.
	assert.False(t, af.CompareAndSwap(1.0, 3.0))
	assert.Equal(t, 2.0, af.Load())
}

func TestConcurrentStores(t *testing.T) {
	af := NewAtomicFloat64(0)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(val float64) {
			defer wg.Done()
			af.Store(val)
		}(float64(i) / 10)
	}
	wg.Wait()

	// Whichever store landed last, the register holds a value some goroutine
	// wrote, not a torn word.
	got := af.Load()
	assert.GreaterOrEqual(t, got, 0.0)
	assert.LessOrEqual(t, got, 6.4)
}
