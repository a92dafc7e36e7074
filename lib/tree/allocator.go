package tree

import (
	"fmt"
	"sync/atomic"
)

var (
	_ Allocator = unboundedAllocator{}
	_ Allocator = (*BoundedAllocator)(nil)
)

type unboundedAllocator struct{}

func (unboundedAllocator) Acquire(int) error { return nil }
func (unboundedAllocator) Release(int)       {}

// UnboundedAllocator never refuses a node. It is the default allocator.
var UnboundedAllocator Allocator = unboundedAllocator{}

// BoundedAllocator caps the number of live nodes. One instance may be
// shared by several trees (even on different goroutines) to bound their
// total footprint.
type BoundedAllocator struct {
	limit int64
	used  atomic.Int64
}

func NewBoundedAllocator(limit int64) *BoundedAllocator {
	if limit < 0 {
		limit = 0
	}
	return &BoundedAllocator{
		limit: limit,
	}
}

func (a *BoundedAllocator) Acquire(n int) error {
	if n <= 0 {
		return nil
	}
	for {
		used := a.used.Load()
		if used+int64(n) > a.limit {
			return fmt.Errorf("%w: %d nodes in use, limit %d", ErrAllocationFailure, used, a.limit)
		}
		if a.used.CompareAndSwap(used, used+int64(n)) {
			return nil
		}
	}
}

func (a *BoundedAllocator) Release(n int) {
	if n <= 0 {
		return
	}
	for {
		used := a.used.Load()
		next := used - int64(n)
		if next < 0 {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] bounded allocator released more than acquired")
		}
		if a.used.CompareAndSwap(used, next) {
			return
		}
	}
}

func (a *BoundedAllocator) Used() int64 {
	return a.used.Load()
}

func (a *BoundedAllocator) Limit() int64 {
	return a.limit
}
