package clipboard

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistory_NewestFirstAndEviction(t *testing.T) {
	h := NewHistory(5)

	for i := 1; i <= 7; i++ {
		assert.True(t, h.Push(fmt.Sprintf("item-%d", i)))
	}

	assert.Equal(t, []string{"item-7", "item-6", "item-5", "item-4", "item-3"}, h.Snapshot())
}

func TestHistory_SuppressesImmediateDuplicate(t *testing.T) {
	h := NewHistory(5)

	assert.True(t, h.Push("a"))
	assert.False(t, h.Push("a"))
	assert.True(t, h.Push("b"))
	assert.True(t, h.Push("a"))

	assert.Equal(t, []string{"a", "b", "a"}, h.Snapshot())
}

func TestHistory_InvariantsHoldForRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []string{"x", "y", "z", "w"}

	for run := 0; run < 200; run++ {
		h := NewHistory(DefaultCapacity)
		n := rng.Intn(50)
		for i := 0; i < n; i++ {
			h.Push(alphabet[rng.Intn(len(alphabet))])

			snap := h.Snapshot()
			assert.LessOrEqual(t, len(snap), DefaultCapacity)
			for j := 1; j < len(snap); j++ {
				assert.NotEqual(t, snap[j-1], snap[j], "adjacent duplicates in %v", snap)
			}
		}
	}
}

func TestHistory_SnapshotIsACopy(t *testing.T) {
	h := NewHistory(5)
	h.Push("original")

	snap := h.Snapshot()
	snap[0] = "mutated"

	head, ok := h.Head()
	assert.True(t, ok)
	assert.Equal(t, "original", head)
}

func TestHistory_EmptySnapshot(t *testing.T) {
	h := NewHistory(0)

	assert.Equal(t, DefaultCapacity, h.Capacity())
	assert.NotNil(t, h.Snapshot())
	assert.Empty(t, h.Snapshot())
	_, ok := h.Head()
	assert.False(t, ok)
}

func TestHistory_ConcurrentReadersSeeConsistentState(t *testing.T) {
	h := NewHistory(5)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			h.Push(fmt.Sprintf("v%d", i))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				snap := h.Snapshot()
				assert.LessOrEqual(t, len(snap), 5)
				for j := 1; j < len(snap); j++ {
					assert.NotEqual(t, snap[j-1], snap[j])
				}
			}
		}()
	}

	wg.Wait()
	assert.Equal(t, 5, h.Len())
}
