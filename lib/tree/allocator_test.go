package tree

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/trbt/lib/xlog"
)

func TestBoundedAllocator(t *testing.T) {
	alloc := NewBoundedAllocator(2)
	require.NoError(t, alloc.Acquire(1))
	require.NoError(t, alloc.Acquire(1))
	require.ErrorIs(t, alloc.Acquire(1), ErrAllocationFailure)
	alloc.Release(1)
	require.NoError(t, alloc.Acquire(1))
	require.Equal(t, int64(2), alloc.Used())
	require.Equal(t, int64(2), alloc.Limit())
	require.NoError(t, alloc.Acquire(0))
	alloc.Release(2)
	require.Panics(t, func() {
		alloc.Release(1)
	})
}

func TestBoundedAllocator_Shared(t *testing.T) {
	alloc := NewBoundedAllocator(1000)
	var wg sync.WaitGroup
	sets := make([]*Set[int], 4)
	for i := range sets {
		sets[i] = NewSet[int](WithRBTreeAllocator(alloc))
		wg.Add(1)
		go func(s *Set[int]) {
			defer wg.Done()
			for k := 0; k < 400; k++ {
				if _, _, err := s.Insert(k); err != nil {
					return
				}
			}
		}(sets[i])
	}
	wg.Wait()
	var total int64
	for _, s := range sets {
		require.NoError(t, s.Validate())
		total += s.Len()
	}
	require.Equal(t, int64(1000), total)
	require.Equal(t, int64(1000), alloc.Used())
}

func TestRBTree_AllocationFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := xlog.NewXLogger(
		xlog.WithXLoggerWriteSyncer(xlog.AsWriteSyncer(buf)),
		xlog.WithXLoggerLevel(xlog.LogLevelDebug),
	)
	alloc := NewBoundedAllocator(3)
	s := NewSet[int](WithRBTreeAllocator(alloc), WithRBTreeLogger(logger))
	require.NoError(t, s.InsertMany(1, 2, 3))

	// An existing key is still found.
	it, ok, err := s.Insert(2)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 2, it.Value())

	_, ok, err = s.Insert(4)
	require.ErrorIs(t, err, ErrAllocationFailure)
	require.False(t, ok)
	require.Equal(t, int64(3), s.Len())
	require.False(t, s.Contains(4))
	require.NoError(t, s.Validate())

	require.ErrorIs(t, s.InsertMany(5, 6), ErrAllocationFailure)
	_, err = NewSetFromSeq[int](func(yield func(int) bool) {
		for i := 0; i < 10; i++ {
			if !yield(i) {
				return
			}
		}
	}, WithRBTreeAllocator(NewBoundedAllocator(5)))
	require.ErrorIs(t, err, ErrAllocationFailure)

	var warned bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		if m["msg"] == "[rbtree] node allocation failure" {
			warned = true
			require.Equal(t, "WARN", m["lvl"])
		}
	}
	require.True(t, warned)
}

func TestRBTree_CloneAllocationFailure(t *testing.T) {
	alloc := NewBoundedAllocator(150)
	s := NewSet[int](WithRBTreeAllocator(alloc))
	for i := 0; i < 100; i++ {
		_, _, err := s.Insert(i)
		require.NoError(t, err)
	}
	_, err := s.Clone()
	require.ErrorIs(t, err, ErrAllocationFailure)
	// The partial copy is released.
	require.Equal(t, int64(100), alloc.Used())
	require.NoError(t, s.Validate())

	s.Clear()
	for i := 0; i < 50; i++ {
		_, _, _ = s.Insert(i)
	}
	c, err := s.Clone()
	require.NoError(t, err)
	require.Equal(t, int64(100), alloc.Used())
	require.True(t, s.Equal(c))
}
