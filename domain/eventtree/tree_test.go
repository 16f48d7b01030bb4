package eventtree

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncreaseReduceCount(t *testing.T) {
	tree := New()

	require.Equal(t, int64(5), tree.Increase(10, 5))
	require.Equal(t, int64(5), tree.Count(10))
	require.Equal(t, int64(8), tree.Increase(10, 3))
	require.Equal(t, int64(8), tree.Count(10))

	require.Equal(t, int64(0), tree.Reduce(10, 8))
	require.Equal(t, int64(0), tree.Count(10))
	require.Equal(t, 0, tree.Len())

	ev, ok := tree.Next(5)
	assert.False(t, ok)
	assert.Equal(t, Event{}, ev)
	require.NoError(t, tree.Validate())
}

func TestReducePartial(t *testing.T) {
	tree := New()
	tree.Increase(7, 10)

	assert.Equal(t, int64(6), tree.Reduce(7, 4))
	assert.Equal(t, int64(6), tree.Count(7))

	// overshooting removes the id
	assert.Equal(t, int64(0), tree.Reduce(7, 100))
	assert.Equal(t, 0, tree.Len())
}

func TestAbsentIDsDoNotMutate(t *testing.T) {
	tree := New()
	for _, id := range []int64{5, 15, 25} {
		tree.Increase(id, id)
	}

	assert.Equal(t, int64(0), tree.Count(10))
	assert.Equal(t, int64(0), tree.Reduce(10, 3))
	assert.Equal(t, 3, tree.Len())

	_, ok := tree.Next(25)
	assert.False(t, ok)
	_, ok = tree.Prev(5)
	assert.False(t, ok)

	assert.Equal(t, int64(45), tree.InRange(math.MinInt64, math.MaxInt64))
	require.NoError(t, tree.Validate())
}

func TestNeighbours(t *testing.T) {
	tree := New()
	for _, id := range []int64{-4, 2, 9, 30} {
		tree.Increase(id, 1)
	}

	tests := []struct {
		id         int64
		next, prev Event
		hasN, hasP bool
	}{
		{id: -10, next: Event{-4, 1}, hasN: true},
		{id: -4, next: Event{2, 1}, hasN: true},
		{id: 2, next: Event{9, 1}, prev: Event{-4, 1}, hasN: true, hasP: true},
		{id: 5, next: Event{9, 1}, prev: Event{2, 1}, hasN: true, hasP: true},
		{id: 30, prev: Event{9, 1}, hasP: true},
		{id: 99, prev: Event{30, 1}, hasP: true},
	}
	for _, tt := range tests {
		n, ok := tree.Next(tt.id)
		assert.Equal(t, tt.hasN, ok, "next(%d)", tt.id)
		assert.Equal(t, tt.next, n, "next(%d)", tt.id)

		p, ok := tree.Prev(tt.id)
		assert.Equal(t, tt.hasP, ok, "prev(%d)", tt.id)
		assert.Equal(t, tt.prev, p, "prev(%d)", tt.id)
	}
}

func TestNeighbourWithIDZero(t *testing.T) {
	tree := New()
	tree.Increase(0, 4)
	tree.Increase(3, 1)

	ev, ok := tree.Next(-1)
	assert.True(t, ok)
	assert.Equal(t, Event{ID: 0, Count: 4}, ev)

	ev, ok = tree.Prev(3)
	assert.True(t, ok)
	assert.Equal(t, Event{ID: 0, Count: 4}, ev)

	// same zero id, but nothing there
	ev, ok = tree.Prev(0)
	assert.False(t, ok)
	assert.Equal(t, Event{}, ev)

	tree.Reduce(0, 4)
	ev, ok = tree.Next(-1)
	assert.True(t, ok)
	assert.Equal(t, Event{ID: 3, Count: 1}, ev)
}

func TestInRange(t *testing.T) {
	tree := New()
	for id := int64(1); id <= 20; id++ {
		tree.Increase(id, id*10)
	}

	assert.Equal(t, int64(10+20+30), tree.InRange(1, 3))
	assert.Equal(t, int64(200), tree.InRange(20, 20))
	assert.Equal(t, int64(0), tree.InRange(21, 40))
	assert.Equal(t, int64(0), tree.InRange(8, 4))
	assert.Equal(t, int64(0), New().InRange(0, 100))
	assert.Equal(t, int64(2100), tree.InRange(-5, 100))
}

func TestSequentialInsertHeight(t *testing.T) {
	tree := New()
	const n = 1000
	for id := int64(1); id <= n; id++ {
		tree.Increase(id, 1)
	}
	require.NoError(t, tree.Validate())
	require.Equal(t, n, tree.Len())

	bound := 2 * math.Log2(float64(n+1))
	assert.LessOrEqual(t, float64(tree.Height()), bound)
	assert.Equal(t, int64(n), tree.InRange(1, n))
}

func TestRandomOpsAgainstModel(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	tree := New()
	model := map[int64]int64{}

	for i := 0; i < 20000; i++ {
		id := rng.Int63n(500) - 250
		delta := rng.Int63n(20)
		if rng.Intn(3) == 0 {
			got := tree.Reduce(id, delta)
			want := int64(0)
			if c, ok := model[id]; ok {
				if c-delta > 0 {
					want = c - delta
					model[id] = want
				} else {
					delete(model, id)
				}
			}
			require.Equal(t, want, got, "reduce(%d,%d)", id, delta)
		} else {
			got := tree.Increase(id, delta)
			model[id] += delta
			require.Equal(t, model[id], got, "increase(%d,%d)", id, delta)
		}

		if i%500 == 0 {
			require.NoError(t, tree.Validate(), "after op %d", i)
		}
	}
	require.NoError(t, tree.Validate())
	require.Equal(t, len(model), tree.Len())

	for id, c := range model {
		require.Equal(t, c, tree.Count(id))
	}

	for i := 0; i < 200; i++ {
		lo := rng.Int63n(600) - 300
		hi := lo + rng.Int63n(200)
		var want int64
		for id, c := range model {
			if id >= lo && id <= hi {
				want += c
			}
		}
		require.Equal(t, want, tree.InRange(lo, hi), "inrange(%d,%d)", lo, hi)
	}

	var prev int64 = math.MinInt64
	tree.Ascend(func(ev Event) bool {
		require.Greater(t, ev.ID, prev)
		require.Equal(t, model[ev.ID], ev.Count)
		prev = ev.ID
		return true
	})
}

func TestDrainToEmpty(t *testing.T) {
	tree := New()
	rng := rand.New(rand.NewSource(7))
	ids := rng.Perm(300)
	for _, id := range ids {
		tree.Increase(int64(id), 2)
	}
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	for i, id := range ids {
		require.Equal(t, int64(0), tree.Reduce(int64(id), 2))
		if i%25 == 0 {
			require.NoError(t, tree.Validate())
		}
	}
	assert.Equal(t, 0, tree.Len())
	assert.Equal(t, int64(0), tree.InRange(0, 300))
	require.NoError(t, tree.Validate())

	// freed slots are reused
	slots := len(tree.nodes)
	for _, id := range ids[:100] {
		tree.Increase(int64(id), 1)
	}
	assert.Equal(t, slots, len(tree.nodes))
	require.NoError(t, tree.Validate())
}

func TestAscendStopsEarly(t *testing.T) {
	tree := New()
	for id := int64(0); id < 10; id++ {
		tree.Increase(id, 1)
	}
	var got []int64
	tree.Ascend(func(ev Event) bool {
		got = append(got, ev.ID)
		return len(got) < 3
	})
	assert.Equal(t, []int64{0, 1, 2}, got)
}

func BenchmarkIncrease_Core(b *testing.B) {
	tree := New()
	for i := 0; i < b.N; i++ {
		tree.Increase(int64(i&0xffff), 1)
	}
}

func BenchmarkInRange_Core(b *testing.B) {
	tree := New()
	for id := int64(0); id < 1<<16; id++ {
		tree.Increase(id, 1)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lo := int64(i & 0xffff)
		tree.InRange(lo, lo+64)
	}
}

func TestContainsZeroCount(t *testing.T) {
	tree := New()
	tree.Increase(3, 0)
	assert.True(t, tree.Contains(3))
	assert.Equal(t, int64(0), tree.Count(3))
	assert.False(t, tree.Contains(4))

	assert.Equal(t, int64(0), tree.Reduce(3, 0))
	assert.False(t, tree.Contains(3))
}
