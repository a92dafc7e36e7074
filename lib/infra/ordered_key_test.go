package infra

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedKeyCompare(t *testing.T) {
	testcases := []struct {
		name string
		i, j int64
		want int64
	}{
		{"equal", 3, 3, 0},
		{"less", -1, 3, -1},
		{"greater", 8, 3, 1},
		{"min and max", math.MinInt64, math.MaxInt64, -1},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			require.Equal(tt, tc.want, OrderedKeyCompare[int64](tc.i, tc.j))
			require.Equal(tt, -tc.want, OrderedKeyDescCompare[int64](tc.i, tc.j))
		})
	}
}

func TestOrderedKeyCompare_String(t *testing.T) {
	require.Less(t, OrderedKeyCompare("abc", "abd"), int64(0))
	require.Greater(t, OrderedKeyCompare("b", "abc"), int64(0))
	require.Equal(t, int64(0), OrderedKeyCompare("", ""))
}

func TestOrderedKeyCompare_NaN(t *testing.T) {
	nan := math.NaN()
	require.Equal(t, int64(0), OrderedKeyCompare(nan, 1.0))
	require.Equal(t, int64(0), OrderedKeyCompare(1.0, nan))
}

func TestComparatorReverseAndLess(t *testing.T) {
	cmp := Comparator[int](func(i, j int) int64 {
		return int64(i - j)
	})
	arr := []int{5, 1, 4, 2, 3}
	slices.SortFunc(arr, func(i, j int) int {
		if cmp.Less(i, j) {
			return -1
		} else if cmp.Less(j, i) {
			return 1
		}
		return 0
	})
	require.Equal(t, []int{1, 2, 3, 4, 5}, arr)

	rev := cmp.Reverse()
	require.Greater(t, rev(1, 2), int64(0))
	require.Less(t, rev(2, 1), int64(0))
	require.Equal(t, int64(0), rev(7, 7))
}
