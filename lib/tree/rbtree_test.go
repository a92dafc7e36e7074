package tree

import (
	randv2 "math/rand/v2"
	"slices"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

type checkData struct {
	color RBColor
	key   uint64
}

func requireColors(t *testing.T, s *Set[uint64], expected []checkData) {
	t.Helper()
	require.Equal(t, int64(len(expected)), s.Len())
	s.Foreach(func(idx int64, color RBColor, key uint64) bool {
		require.Equal(t, expected[idx].color, color, "idx %d", idx)
		require.Equal(t, expected[idx].key, key, "idx %d", idx)
		return true
	})
	require.NoError(t, s.Validate())
}

func TestRBTreeInsertAndRemove_Colors(t *testing.T) {
	s := NewSet[uint64]()

	_, ok, err := s.Insert(52)
	require.NoError(t, err)
	require.True(t, ok)
	requireColors(t, s, []checkData{{Black, 52}})

	_, _, _ = s.Insert(47)
	requireColors(t, s, []checkData{{Red, 47}, {Black, 52}})

	// Line, single rotation.
	_, _, _ = s.Insert(3)
	requireColors(t, s, []checkData{{Red, 3}, {Black, 47}, {Red, 52}})

	// Color flip at the root.
	_, _, _ = s.Insert(35)
	requireColors(t, s, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}})

	// Triangle, double rotation.
	_, _, _ = s.Insert(24)
	requireColors(t, s, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	// remove

	// Two children, the successor 35 takes the place.
	require.Equal(t, 1, s.Erase(24))
	requireColors(t, s, []checkData{{Red, 3}, {Black, 35}, {Black, 47}, {Black, 52}})

	// The root, red pushed down by a sibling rotation.
	require.Equal(t, 1, s.Erase(47))
	requireColors(t, s, []checkData{{Black, 3}, {Black, 35}, {Black, 52}})

	// Color flip then leaf.
	require.Equal(t, 1, s.Erase(52))
	requireColors(t, s, []checkData{{Red, 3}, {Black, 35}})

	require.Equal(t, 1, s.Erase(3))
	requireColors(t, s, []checkData{{Black, 35}})

	require.Equal(t, 1, s.Erase(35))
	requireColors(t, s, []checkData{})
	require.True(t, s.Empty())
	require.False(t, s.Begin().Valid())
}

func TestRBTree_RemoveMin(t *testing.T) {
	s := NewSet[uint64]()
	require.NoError(t, s.InsertMany(52, 47, 3, 35, 24))
	requireColors(t, s, []checkData{{Red, 3}, {Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	x, err := s.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(3), x)
	requireColors(t, s, []checkData{{Black, 24}, {Red, 35}, {Black, 47}, {Black, 52}})

	x, err = s.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(24), x)
	requireColors(t, s, []checkData{{Black, 35}, {Black, 47}, {Black, 52}})

	x, err = s.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(35), x)
	requireColors(t, s, []checkData{{Black, 47}, {Red, 52}})

	x, err = s.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(47), x)
	requireColors(t, s, []checkData{{Black, 52}})

	x, err = s.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(52), x)

	_, err = s.RemoveMin()
	require.ErrorIs(t, err, ErrKeyNotFound)
	_, err = s.RemoveMax()
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRBTree_Threads(t *testing.T) {
	s := NewSet[uint64]()
	require.NoError(t, s.InsertMany(52, 47, 3, 35, 24))
	tree := s.t
	arena := tree.arena

	// 47B(24B(3R, 35R), 52B)
	root := tree.root()
	require.Equal(t, uint64(47), tree.keyOf(root))
	n3, n24, n35, n52 := s.Find(3).ref, s.Find(24).ref, s.Find(35).ref, s.Find(52).ref
	require.Equal(t, n24, arena.link(root, Left))
	require.Equal(t, n52, arena.link(root, Right))
	require.Equal(t, rbLink{ref: sentinel, thread: true}, arena.node(n3).links[Left])
	require.Equal(t, rbLink{ref: n24, thread: true}, arena.node(n3).links[Right])
	require.Equal(t, rbLink{ref: n24, thread: true}, arena.node(n35).links[Left])
	require.Equal(t, rbLink{ref: root, thread: true}, arena.node(n35).links[Right])
	require.Equal(t, rbLink{ref: root, thread: true}, arena.node(n52).links[Left])
	require.Equal(t, rbLink{ref: sentinel, thread: true}, arena.node(n52).links[Right])
	require.Equal(t, n3, tree.leftmost)
	require.Equal(t, n52, tree.rightmost)

	// Sentinel wraps.
	require.Equal(t, n3, arena.step(sentinel, Right))
	require.Equal(t, n52, arena.step(sentinel, Left))
	require.Equal(t, sentinel, arena.successor(n52))
	require.Equal(t, sentinel, arena.predecessor(n3))
}

func TestRBTree_EraseKeepsNodeIdentity(t *testing.T) {
	s := NewSet[uint64]()
	require.NoError(t, s.InsertMany(52, 47, 3, 35, 24))
	it35 := s.Find(35)
	it3 := s.Find(3)
	require.Equal(t, 1, s.Erase(24))
	// The successor node was moved, not its key.
	require.True(t, it35.Valid())
	require.Equal(t, uint64(35), it35.Value())
	require.True(t, it35.Equal(s.Find(35)))
	require.Equal(t, uint64(35), it3.Next().Value())
}

func TestRBTree_EraseAbsentIsNoop(t *testing.T) {
	s := NewSet[uint64]()
	require.Equal(t, 0, s.Erase(1))
	require.NoError(t, s.InsertMany(5, 3, 8, 1, 4, 7, 9))
	before := make([]checkData, 0, 7)
	s.Foreach(func(idx int64, color RBColor, key uint64) bool {
		before = append(before, checkData{color, key})
		return true
	})
	require.Equal(t, 0, s.Erase(6))
	require.Equal(t, 0, s.Erase(100))
	requireColors(t, s, before)
}

func TestRBTree_Scenarios(t *testing.T) {
	t.Run("insert one at a time", func(tt *testing.T) {
		s := NewSet[int]()
		for _, v := range []int{5, 3, 8, 1, 4, 7, 9} {
			_, ok, err := s.Insert(v)
			require.NoError(tt, err)
			require.True(tt, ok)
			require.NoError(tt, s.Validate())
		}
		require.Equal(tt, []int{1, 3, 4, 5, 7, 8, 9}, slices.Collect(s.All()))
	})
	t.Run("erase the middle", func(tt *testing.T) {
		s := NewSetOf(10, 20, 30)
		require.Equal(tt, 1, s.Erase(20))
		require.False(tt, s.Contains(20))
		require.True(tt, s.Contains(10))
		require.True(tt, s.Contains(30))
		require.Equal(tt, int64(2), s.Len())
		require.NoError(tt, s.Validate())
	})
	t.Run("clone is independent", func(tt *testing.T) {
		s := NewSet[int]()
		for i := 0; i < 100; i++ {
			_, _, _ = s.Insert(randv2.IntN(1000))
		}
		snapshot := slices.Collect(s.All())
		c, err := s.Clone()
		require.NoError(tt, err)
		require.NoError(tt, c.Validate())
		require.True(tt, s.Equal(c))

		for i := 0; i < 50; i++ {
			_, _ = c.RemoveMin()
			_, _, _ = c.Insert(1000 + i)
		}
		require.NoError(tt, c.Validate())
		require.NoError(tt, s.Validate())
		require.Equal(tt, snapshot, slices.Collect(s.All()))
		require.False(tt, s.Equal(c))
	})
	t.Run("bounds", func(tt *testing.T) {
		s := NewSetOf(1, 3, 5, 7)
		require.Equal(tt, 5, s.LowerBound(4).Value())
		require.Equal(tt, 5, s.UpperBound(3).Value())
		require.Equal(tt, 3, s.LowerBound(3).Value())
		require.Equal(tt, 1, s.LowerBound(0).Value())
		require.True(tt, s.LowerBound(8).Equal(s.End()))
		require.True(tt, s.UpperBound(8).Equal(s.End()))
		require.True(tt, s.UpperBound(7).Equal(s.End()))
	})
	t.Run("insertion order does not matter", func(tt *testing.T) {
		keys := lo.Range(200)
		a := NewSetOf(keys...)
		randv2.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
		b := NewSetOf(keys...)
		require.True(tt, a.Equal(b))
		require.Equal(tt, 0, a.Compare(b))
		require.Equal(tt, slices.Collect(a.All()), slices.Collect(b.All()))
	})
}

func TestRBTree_Desc(t *testing.T) {
	s := NewSet[int](WithRBTreeDesc())
	require.NoError(t, s.InsertMany(1, 5, 3, 9, 7))
	require.Equal(t, []int{9, 7, 5, 3, 1}, slices.Collect(s.All()))
	require.Equal(t, []int{1, 3, 5, 7, 9}, slices.Collect(s.Backward()))
	// Bounds follow the tree order.
	require.Equal(t, 3, s.LowerBound(4).Value())
	require.Equal(t, 5, s.UpperBound(7).Value())
	require.NoError(t, s.Validate())
}

func TestRBTree_HintedInsert(t *testing.T) {
	s := NewSet[int]()
	// Ascending input through the end hint.
	for i := 0; i < 512; i++ {
		it, err := s.InsertHint(s.End(), i)
		require.NoError(t, err)
		require.Equal(t, i, it.Value())
	}
	require.NoError(t, s.Validate())
	require.Equal(t, lo.Range(512), slices.Collect(s.All()))

	// Right before the hint.
	odd := NewSet[int]()
	for i := 1; i < 100; i += 2 {
		_, _, _ = odd.Insert(i)
	}
	for i := 0; i < 100; i += 2 {
		it, err := odd.InsertHint(odd.Find(i+1), i)
		require.NoError(t, err)
		require.Equal(t, i, it.Value())
		require.NoError(t, odd.Validate())
	}
	require.Equal(t, lo.Range(100), slices.Collect(odd.All()))

	// Wrong hints and duplicates fall back to the plain insert.
	it, err := odd.InsertHint(odd.Find(3), 50)
	require.NoError(t, err)
	require.Equal(t, 50, it.Value())
	require.Equal(t, int64(100), odd.Len())
	_, err = odd.InsertHint(s.Begin(), 1000)
	require.NoError(t, err)
	_, err = odd.InsertHint(Iterator[int]{}, -1)
	require.NoError(t, err)
	require.Equal(t, -1, odd.Begin().Value())
	require.Equal(t, 1000, odd.RBegin().Value())
	require.NoError(t, odd.Validate())
}

func TestRBTree_SwapAndMove(t *testing.T) {
	a := NewSetOf(1, 2, 3)
	b := NewSetOf(10, 20)
	itA := a.Find(2)
	a.Swap(b)
	require.Equal(t, []int{10, 20}, slices.Collect(a.All()))
	require.Equal(t, []int{1, 2, 3}, slices.Collect(b.All()))
	// The iterator follows its element.
	require.True(t, itA.Equal(b.Find(2)))

	c := NewSetOf(7)
	c.MoveFrom(b)
	require.Equal(t, []int{1, 2, 3}, slices.Collect(c.All()))
	require.True(t, b.Empty())
	require.NoError(t, b.Validate())
	_, _, err := b.Insert(4)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.NoError(t, b.Validate())

	// {4} against {1, 2, 3}
	require.Equal(t, 1, b.Compare(c))
	require.Equal(t, -1, c.Compare(b))
	require.Equal(t, -1, NewSetOf(1, 2).Compare(c))
	require.Equal(t, 1, c.Compare(NewSetOf(1, 2)))
	require.Equal(t, 0, NewSetOf[int]().Compare(NewSetOf[int]()))
}

func TestRBTree_Clear(t *testing.T) {
	alloc := NewBoundedAllocator(1000)
	s := NewSet[int](WithRBTreeAllocator(alloc), WithRBTreeArenaChunk(16))
	for i := 0; i < 300; i++ {
		_, _, _ = s.Insert(i)
	}
	require.Equal(t, int64(300), alloc.Used())
	require.Greater(t, len(s.t.arena.slabs), 1)
	s.Clear()
	require.Equal(t, int64(0), alloc.Used())
	require.Equal(t, 1, len(s.t.arena.slabs))
	require.True(t, s.Empty())
	require.NoError(t, s.Validate())
	_, _, err := s.Insert(1)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	s.Release()
	require.Equal(t, int64(0), alloc.Used())
}

func rbtreeRandomInsertAndRemoveRunCore(t *testing.T, total int, opts ...RBTreeOpt) {
	s := NewSet[int](opts...)
	mirror := make(map[int]struct{}, total)
	for i := 0; i < total*4; i++ {
		key := randv2.IntN(total)
		if randv2.IntN(3) > 0 {
			_, ok, err := s.Insert(key)
			require.NoError(t, err)
			_, exists := mirror[key]
			require.Equal(t, !exists, ok)
			mirror[key] = struct{}{}
		} else {
			_, exists := mirror[key]
			require.Equal(t, lo.Ternary(exists, 1, 0), s.Erase(key))
			delete(mirror, key)
		}
		if i%7 == 0 {
			require.NoError(t, s.Validate())
		}
		require.Equal(t, int64(len(mirror)), s.Len())
	}
	require.NoError(t, s.Validate())

	expected := lo.Keys(mirror)
	slices.Sort(expected)
	actual := slices.Collect(s.All())
	if s.t.cfg.isDesc {
		slices.Reverse(actual)
	}
	require.Equal(t, expected, actual)

	for len(mirror) > 0 {
		key := expected[randv2.IntN(len(expected))]
		if _, ok := mirror[key]; !ok {
			continue
		}
		require.Equal(t, 1, s.Erase(key))
		delete(mirror, key)
		require.NoError(t, s.Validate())
	}
	require.True(t, s.Empty())
}

func TestRBTreeRandomInsertAndRemove(t *testing.T) {
	testcases := []struct {
		name string
		opts []RBTreeOpt
	}{
		{"borrow succ", nil},
		{"borrow pred", []RBTreeOpt{WithRBTreeRemoveBorrowPred()}},
		{"desc borrow succ", []RBTreeOpt{WithRBTreeDesc()}},
		{"desc borrow pred", []RBTreeOpt{WithRBTreeDesc(), WithRBTreeRemoveBorrowPred()}},
		{"small arena chunk", []RBTreeOpt{WithRBTreeArenaChunk(4)}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveRunCore(tt, 500, tc.opts...)
		})
	}
}

func TestRBTreeSequentialInsertAndRemove(t *testing.T) {
	for _, borrowPred := range []bool{false, true} {
		opts := lo.Ternary(borrowPred, []RBTreeOpt{WithRBTreeRemoveBorrowPred()}, nil)
		s := NewSet[int](opts...)
		for i := 0; i < 1024; i++ {
			_, _, _ = s.Insert(i)
		}
		require.NoError(t, s.Validate())
		for i := 1023; i >= 0; i -= 2 {
			require.Equal(t, 1, s.Erase(i))
		}
		require.NoError(t, s.Validate())
		for i := 0; i < 1024; i += 2 {
			x, err := s.RemoveMin()
			require.NoError(t, err)
			require.Equal(t, i, x)
		}
		require.True(t, s.Empty())
		require.NoError(t, s.Validate())
	}
}

func BenchmarkRBTree_Random(b *testing.B) {
	s := NewSet[uint64]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = s.Insert(randv2.Uint64())
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	s := NewSet[uint64]()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = s.Insert(uint64(i))
	}
}
