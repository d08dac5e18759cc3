package fx

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolDemandCreateOncePerKey(t *testing.T) {
	var created atomic.Int32
	create := func(key string) *string {
		created.Add(1)
		return &key
	}

	pool := NewSharedResourcePool[string, *string](nil)

	first := pool.DemandCreate("device", create)
	second := pool.DemandCreate("device", create)
	other := pool.DemandCreate("other", create)

	assert.Same(t, first.Value(), second.Value())
	assert.NotSame(t, first.Value(), other.Value())
	assert.EqualValues(t, 2, created.Load())
	assert.Equal(t, 2, pool.Refs("device"))
	assert.Equal(t, 2, pool.Len())
}

func TestPoolDestroysAfterLastRelease(t *testing.T) {
	var destroyed []string
	pool := NewSharedResourcePool(func(key string, _ int) {
		destroyed = append(destroyed, key)
	})

	create := func(string) int { return 42 }

	first := pool.DemandCreate("device", create)
	second := pool.DemandCreate("device", create)

	first.Release()
	assert.Empty(t, destroyed)

	// a second release of the same reference must not count
	first.Release()
	assert.Empty(t, destroyed)
	assert.Equal(t, 1, pool.Refs("device"))

	second.Release()
	assert.Equal(t, []string{"device"}, destroyed)
	assert.Equal(t, 0, pool.Len())

	// the next request creates a fresh value
	third := pool.DemandCreate("device", func(string) int { return 7 })
	defer third.Release()
	assert.Equal(t, 7, third.Value())
}

func TestPoolConcurrentDemandCreate(t *testing.T) {
	var created atomic.Int32
	pool := NewSharedResourcePool[int, *int](nil)

	const callers = 64

	refs := make([]*PoolRef[int, *int], callers)

	var wg sync.WaitGroup
	for idx := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			refs[idx] = pool.DemandCreate(1, func(key int) *int {
				created.Add(1)
				return &key
			})
		}()
	}

	wg.Wait()

	assert.EqualValues(t, 1, created.Load())
	assert.Equal(t, callers, pool.Refs(1))

	for _, ref := range refs {
		assert.Same(t, refs[0].Value(), ref.Value())
		ref.Release()
	}

	assert.Equal(t, 0, pool.Len())
}
