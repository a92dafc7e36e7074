package tree

import (
	"iter"

	"github.com/benz9527/trbt/lib/infra"
)

// Map is an ordered map of unique keys. It is not safe for concurrent
// mutation.
type Map[K any, V any] struct {
	t *rbTree[Pair[K, V], K]
}

func NewMap[K infra.OrderedKey, V any](opts ...RBTreeOpt) *Map[K, V] {
	return NewMapFunc[K, V](infra.OrderedKeyCompare[K], opts...)
}

func NewMapFunc[K any, V any](cmp infra.Comparator[K], opts ...RBTreeOpt) *Map[K, V] {
	return &Map[K, V]{
		t: newRBTree[Pair[K, V], K](pairProjector[K, V]{}, cmp, opts...),
	}
}

// NewMapFromSeq keeps the first value of a repeated key.
func NewMapFromSeq[K infra.OrderedKey, V any](seq iter.Seq2[K, V], opts ...RBTreeOpt) (*Map[K, V], error) {
	m := NewMap[K, V](opts...)
	if err := m.InsertSeq(seq); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Map[K, V]) checker() invariantChecker {
	return m.t
}

func (m *Map[K, V]) iter(ref nodeRef) MapIterator[K, V] {
	return MapIterator[K, V]{m.t.iter(ref)}
}

func (m *Map[K, V]) Len() int64 {
	return m.t.Len()
}

func (m *Map[K, V]) Empty() bool {
	return m.t.Len() == 0
}

// Insert never overwrites, the position of the existing key is returned
// with false.
func (m *Map[K, V]) Insert(p Pair[K, V]) (MapIterator[K, V], bool, error) {
	ref, ok, err := m.t.insertElem(p)
	return m.iter(ref), ok, err
}

func (m *Map[K, V]) InsertHint(hint MapIterator[K, V], p Pair[K, V]) (MapIterator[K, V], error) {
	h, hinted := m.t.hintOf(hint.Iterator)
	ref, _, err := m.t.insertElemHint(p, h, hinted)
	return m.iter(ref), err
}

// Emplace builds the pair from its parts, same semantics as Insert.
func (m *Map[K, V]) Emplace(key K, val V) (MapIterator[K, V], bool, error) {
	return m.Insert(Pair[K, V]{Key: key, Val: val})
}

func (m *Map[K, V]) EmplaceHint(hint MapIterator[K, V], key K, val V) (MapIterator[K, V], error) {
	return m.InsertHint(hint, Pair[K, V]{Key: key, Val: val})
}

func (m *Map[K, V]) InsertMany(pairs ...Pair[K, V]) error {
	for _, p := range pairs {
		if _, _, err := m.t.insertElem(p); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map[K, V]) InsertSeq(seq iter.Seq2[K, V]) error {
	for key, val := range seq {
		if _, _, err := m.t.insertElemHint(Pair[K, V]{Key: key, Val: val}, sentinel, true); err != nil {
			return err
		}
	}
	return nil
}

// Set inserts or overwrites the value of the key.
func (m *Map[K, V]) Set(key K, val V) error {
	ref, ok, err := m.t.insertElem(Pair[K, V]{Key: key, Val: val})
	if err != nil {
		return err
	}
	if !ok {
		m.t.arena.node(ref).elem.Val = val
	}
	return nil
}

// At returns ErrKeyNotFound if the key is absent.
func (m *Map[K, V]) At(key K) (V, error) {
	ref := m.t.search(key)
	if ref == sentinel {
		var zero V
		return zero, infra.WrapErrorStackWithMessage(ErrKeyNotFound, "[rbtree] at")
	}
	return m.t.arena.node(ref).elem.Val, nil
}

// Ref is At with the value in place. The pointer is valid while the key
// stays in the map.
func (m *Map[K, V]) Ref(key K) (*V, error) {
	ref := m.t.search(key)
	if ref == sentinel {
		return nil, infra.WrapErrorStackWithMessage(ErrKeyNotFound, "[rbtree] ref")
	}
	return &m.t.arena.node(ref).elem.Val, nil
}

// GetOrInsert returns the value in place, a missing key is inserted with
// the zero value first.
func (m *Map[K, V]) GetOrInsert(key K) (*V, error) {
	if ref := m.t.search(key); ref != sentinel {
		return &m.t.arena.node(ref).elem.Val, nil
	}
	ref, _, err := m.t.insertElem(Pair[K, V]{Key: key})
	if err != nil {
		return nil, err
	}
	return &m.t.arena.node(ref).elem.Val, nil
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	ref := m.t.search(key)
	if ref == sentinel {
		var zero V
		return zero, false
	}
	return m.t.arena.node(ref).elem.Val, true
}

func (m *Map[K, V]) Erase(key K) int {
	if _, ok := m.t.remove(key); ok {
		return 1
	}
	return 0
}

func (m *Map[K, V]) EraseAt(it MapIterator[K, V]) MapIterator[K, V] {
	if !it.Valid() || it.arena != m.t.arena {
		return m.End()
	}
	key := it.Key()
	next := it.Next()
	m.t.remove(key)
	return next
}

func (m *Map[K, V]) RemoveMin() (K, V, error) {
	p, ok := m.t.removeExtreme(Left)
	if !ok {
		return p.Key, p.Val, ErrKeyNotFound
	}
	return p.Key, p.Val, nil
}

func (m *Map[K, V]) RemoveMax() (K, V, error) {
	p, ok := m.t.removeExtreme(Right)
	if !ok {
		return p.Key, p.Val, ErrKeyNotFound
	}
	return p.Key, p.Val, nil
}

func (m *Map[K, V]) Contains(key K) bool {
	return m.t.search(key) != sentinel
}

func (m *Map[K, V]) Count(key K) int {
	return m.t.count1(key)
}

func (m *Map[K, V]) Find(key K) MapIterator[K, V] {
	return m.iter(m.t.search(key))
}

func (m *Map[K, V]) LowerBound(key K) MapIterator[K, V] {
	return m.iter(m.t.lowerBound(key))
}

func (m *Map[K, V]) UpperBound(key K) MapIterator[K, V] {
	return m.iter(m.t.upperBound(key))
}

func (m *Map[K, V]) Begin() MapIterator[K, V] {
	return m.iter(m.t.leftmost)
}

func (m *Map[K, V]) End() MapIterator[K, V] {
	return m.iter(sentinel)
}

func (m *Map[K, V]) RBegin() MapIterator[K, V] {
	return MapIterator[K, V]{m.t.riter(m.t.rightmost)}
}

func (m *Map[K, V]) REnd() MapIterator[K, V] {
	return MapIterator[K, V]{m.t.riter(sentinel)}
}

func (m *Map[K, V]) seq2(dir RBDirection) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for p := range m.t.seq(dir) {
			if !yield(p.Key, p.Val) {
				return
			}
		}
	}
}

// All yields the pairs in key order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return m.seq2(Right)
}

func (m *Map[K, V]) Backward() iter.Seq2[K, V] {
	return m.seq2(Left)
}

func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for p := range m.t.seq(Right) {
			if !yield(p.Key) {
				return
			}
		}
	}
}

func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for p := range m.t.seq(Right) {
			if !yield(p.Val) {
				return
			}
		}
	}
}

func (m *Map[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	m.t.foreach(func(idx int64, color RBColor, p Pair[K, V]) bool {
		return action(idx, color, p.Key, p.Val)
	})
}

func (m *Map[K, V]) Clone() (*Map[K, V], error) {
	t, err := m.t.clone()
	if err != nil {
		return nil, err
	}
	return &Map[K, V]{t: t}, nil
}

func (m *Map[K, V]) Clear() {
	m.t.clear()
}

func (m *Map[K, V]) Release() {
	m.t.clear()
	m.t.stats.shutdown()
}

// Equal compares the keys by the map order and the values by valEq.
func (m *Map[K, V]) Equal(other *Map[K, V], valEq func(a, b V) bool) bool {
	return m.t.equal(other.t, func(a, b Pair[K, V]) bool {
		return m.t.kcmp(a.Key, b.Key) == 0 && valEq(a.Val, b.Val)
	})
}

// Compare is the lexicographic order of the pairs, keys first.
func (m *Map[K, V]) Compare(other *Map[K, V], valCmp infra.Comparator[V]) int {
	return m.t.compareTo(other.t, func(a, b Pair[K, V]) int64 {
		if res := m.t.kcmp(a.Key, b.Key); res != 0 {
			return res
		}
		return valCmp(a.Val, b.Val)
	})
}

func (m *Map[K, V]) Swap(other *Map[K, V]) {
	m.t.swap(other.t)
}

func (m *Map[K, V]) MoveFrom(other *Map[K, V]) {
	m.t.moveFrom(other.t)
}

func (m *Map[K, V]) Validate() error {
	err := Validate(m)
	if err != nil {
		m.t.logger.ErrorStack(err, "[rbtree] map invariants violated")
	}
	return err
}
