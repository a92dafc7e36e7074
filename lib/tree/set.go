package tree

import (
	"iter"

	"github.com/benz9527/trbt/lib/infra"
)

// Set is an ordered set of unique keys. It is not safe for concurrent
// mutation.
type Set[K any] struct {
	t *rbTree[K, K]
}

func NewSet[K infra.OrderedKey](opts ...RBTreeOpt) *Set[K] {
	return NewSetFunc[K](infra.OrderedKeyCompare[K], opts...)
}

// NewSetFunc orders the keys by cmp, which must be a strict weak order.
func NewSetFunc[K any](cmp infra.Comparator[K], opts ...RBTreeOpt) *Set[K] {
	return &Set[K]{
		t: newRBTree[K, K](identityProjector[K]{}, cmp, opts...),
	}
}

// NewSetOf builds an ascending set with the default options, duplicates
// are dropped.
func NewSetOf[K infra.OrderedKey](keys ...K) *Set[K] {
	s := NewSet[K]()
	// The unbounded allocator never fails.
	_ = s.InsertMany(keys...)
	return s
}

func NewSetFromSeq[K infra.OrderedKey](seq iter.Seq[K], opts ...RBTreeOpt) (*Set[K], error) {
	s := NewSet[K](opts...)
	if err := s.InsertSeq(seq); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Set[K]) checker() invariantChecker {
	return s.t
}

func (s *Set[K]) Len() int64 {
	return s.t.Len()
}

func (s *Set[K]) Empty() bool {
	return s.t.Len() == 0
}

// Insert returns the position of the key and whether it was inserted. An
// existing key is never overwritten.
func (s *Set[K]) Insert(key K) (Iterator[K], bool, error) {
	ref, ok, err := s.t.insertElem(key)
	return s.t.iter(ref), ok, err
}

// InsertHint inserts the key close to the hint, in O(1) when the key goes
// right before the hint or after the last element (hint is the end).
// A useless hint costs nothing more than Insert.
func (s *Set[K]) InsertHint(hint Iterator[K], key K) (Iterator[K], error) {
	h, hinted := s.t.hintOf(hint)
	ref, _, err := s.t.insertElemHint(key, h, hinted)
	return s.t.iter(ref), err
}

// InsertMany stops at the first allocation failure, the keys before it
// stay inserted.
func (s *Set[K]) InsertMany(keys ...K) error {
	for _, key := range keys {
		if _, _, err := s.t.insertElem(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Set[K]) InsertSeq(seq iter.Seq[K]) error {
	for key := range seq {
		if _, _, err := s.t.insertElemHint(key, sentinel, true); err != nil {
			return err
		}
	}
	return nil
}

// Erase returns the number of removed keys, 0 or 1.
func (s *Set[K]) Erase(key K) int {
	if _, ok := s.t.remove(key); ok {
		return 1
	}
	return 0
}

// EraseAt removes the element at it and returns the position after it.
func (s *Set[K]) EraseAt(it Iterator[K]) Iterator[K] {
	if !it.Valid() || it.arena != s.t.arena {
		return s.End()
	}
	key := it.Value()
	next := it.Next()
	s.t.remove(key)
	return next
}

func (s *Set[K]) RemoveMin() (K, error) {
	key, ok := s.t.removeExtreme(Left)
	if !ok {
		return key, ErrKeyNotFound
	}
	return key, nil
}

func (s *Set[K]) RemoveMax() (K, error) {
	key, ok := s.t.removeExtreme(Right)
	if !ok {
		return key, ErrKeyNotFound
	}
	return key, nil
}

func (s *Set[K]) Contains(key K) bool {
	return s.t.search(key) != sentinel
}

func (s *Set[K]) Count(key K) int {
	return s.t.count1(key)
}

// Find returns the end iterator if the key is absent.
func (s *Set[K]) Find(key K) Iterator[K] {
	return s.t.iter(s.t.search(key))
}

func (s *Set[K]) LowerBound(key K) Iterator[K] {
	return s.t.iter(s.t.lowerBound(key))
}

func (s *Set[K]) UpperBound(key K) Iterator[K] {
	return s.t.iter(s.t.upperBound(key))
}

func (s *Set[K]) Min() (K, bool) {
	var zero K
	if s.t.leftmost == sentinel {
		return zero, false
	}
	return s.t.arena.node(s.t.leftmost).elem, true
}

func (s *Set[K]) Max() (K, bool) {
	var zero K
	if s.t.rightmost == sentinel {
		return zero, false
	}
	return s.t.arena.node(s.t.rightmost).elem, true
}

func (s *Set[K]) Begin() Iterator[K] {
	return s.t.iter(s.t.leftmost)
}

func (s *Set[K]) End() Iterator[K] {
	return s.t.iter(sentinel)
}

func (s *Set[K]) RBegin() Iterator[K] {
	return s.t.riter(s.t.rightmost)
}

func (s *Set[K]) REnd() Iterator[K] {
	return s.t.riter(sentinel)
}

// All yields the keys in order.
func (s *Set[K]) All() iter.Seq[K] {
	return s.t.seq(Right)
}

// Backward yields the keys in reverse order.
func (s *Set[K]) Backward() iter.Seq[K] {
	return s.t.seq(Left)
}

func (s *Set[K]) Foreach(action func(idx int64, color RBColor, key K) bool) {
	s.t.foreach(action)
}

func (s *Set[K]) Clone() (*Set[K], error) {
	t, err := s.t.clone()
	if err != nil {
		return nil, err
	}
	return &Set[K]{t: t}, nil
}

func (s *Set[K]) Clear() {
	s.t.clear()
}

// Release clears the set and stops its metrics.
func (s *Set[K]) Release() {
	s.t.clear()
	s.t.stats.shutdown()
}

func (s *Set[K]) Equal(other *Set[K]) bool {
	return s.t.equal(other.t, func(a, b K) bool {
		return s.t.kcmp(a, b) == 0
	})
}

// Compare orders two sets lexicographically by their keys, a proper
// prefix is the smaller one.
func (s *Set[K]) Compare(other *Set[K]) int {
	return s.t.compareTo(other.t, s.t.kcmp)
}

func (s *Set[K]) Swap(other *Set[K]) {
	s.t.swap(other.t)
}

// MoveFrom drops the keys of s and takes the nodes of other, other is
// left empty.
func (s *Set[K]) MoveFrom(other *Set[K]) {
	s.t.moveFrom(other.t)
}

func (s *Set[K]) Validate() error {
	err := Validate(s)
	if err != nil {
		s.t.logger.ErrorStack(err, "[rbtree] set invariants violated")
	}
	return err
}
