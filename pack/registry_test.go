package pack

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/einp/components"
)

func TestRegistry_Allocate(t *testing.T) {
	r := NewRegistry(100)
	assert.Equal(t, 101, r.Allocate())
	assert.Equal(t, 102, r.Allocate())
}

func TestRegistry_ObserveBootstrapsCounter(t *testing.T) {
	r := NewRegistry(100)
	r.Observe(40) // below the start: ignored
	assert.Equal(t, 101, r.Allocate())

	r.Observe(250)
	assert.Equal(t, 251, r.Allocate())
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry(0)
	p := r.GetOrCreate(12)
	require.NotNil(t, p)
	assert.Equal(t, 12, p.ID())
	assert.Same(t, p, r.GetOrCreate(12))
	assert.Same(t, p, r.Lookup(12))
	assert.Nil(t, r.Lookup(13))
	assert.Equal(t, 13, r.Allocate(), "configured ids are never reallocated")
}

func TestRegistry_Found(t *testing.T) {
	r := NewRegistry(5)
	founder := newWolf(components.SexFemale, true)
	p := r.Found(founder)

	assert.Equal(t, 6, p.ID())
	assert.Equal(t, Member(founder), p.Mother())
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, 1, r.Active())
}

func TestRegistry_EmptyPackStaysRegistered(t *testing.T) {
	r := NewRegistry(0)
	founder := newWolf(components.SexMale, true)
	p := r.Found(founder)

	ok, remaining := p.Leave(founder)
	require.True(t, ok)
	assert.Equal(t, 0, remaining)

	assert.Same(t, p, r.Lookup(p.ID()))
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, 0, r.Active())

	joiner := newWolf(components.SexFemale, true)
	assert.Same(t, p, r.GetOrCreate(p.ID()))
	p.Join(joiner)
	assert.Equal(t, 1, r.Active())
	assert.NotEqual(t, p.ID(), r.Allocate())
}

func TestRegistry_PacksSorted(t *testing.T) {
	r := NewRegistry(0)
	r.GetOrCreate(30)
	r.GetOrCreate(10)
	r.GetOrCreate(20)

	var ids []int
	for _, p := range r.Packs() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []int{10, 20, 30}, ids)
}

// N goroutines allocating concurrently get N distinct ids, each goroutine's
// sequence strictly increasing.
func TestRegistry_ConcurrentAllocate(t *testing.T) {
	const workers, perWorker = 16, 500
	r := NewRegistry(1000)

	results := make([][]int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int, perWorker)
			for i := range ids {
				ids[i] = r.Allocate()
			}
			results[w] = ids
		}()
	}
	wg.Wait()

	seen := make(map[int]bool, workers*perWorker)
	var all []int
	for _, ids := range results {
		for i, id := range ids {
			require.False(t, seen[id], "id %d allocated twice", id)
			seen[id] = true
			if i > 0 {
				require.Greater(t, id, ids[i-1])
			}
			all = append(all, id)
		}
	}
	sort.Ints(all)
	assert.Equal(t, 1001, all[0])
	assert.Equal(t, 1000+workers*perWorker, all[len(all)-1])
}

func TestRegistry_ConcurrentFound(t *testing.T) {
	r := NewRegistry(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Found(newWolf(components.SexMale, true))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Count())
}
