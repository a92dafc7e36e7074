package tree

// Iterator is a position in a tree: a node or the end. It stays valid
// while its node is in the tree, whatever else is inserted or removed.
// Reverse iterators step from the maximum to the minimum.
//
//	for it := set.Begin(); it.Valid(); it = it.Next() {
//		...
//	}
type Iterator[E any] struct {
	arena   *nodeArena[E]
	ref     nodeRef
	reverse bool
}

// Valid reports whether it refers to an element, i.e. it is not the end.
func (it Iterator[E]) Valid() bool {
	return it.arena != nil && it.ref != sentinel
}

// Value panics on the end iterator.
func (it Iterator[E]) Value() E {
	return it.node().elem
}

func (it Iterator[E]) node() *rbNode[E] {
	if !it.Valid() {
		panic("[rbtree] dereference the end iterator")
	}
	return it.arena.node(it.ref)
}

func (it Iterator[E]) forward() RBDirection {
	if it.reverse {
		return Left
	}
	return Right
}

// Next steps toward the end. Stepping from the end wraps to the first
// element.
func (it Iterator[E]) Next() Iterator[E] {
	if it.arena == nil {
		return it
	}
	it.ref = it.arena.step(it.ref, it.forward())
	return it
}

// Prev steps back. Stepping back from the end gives the last element.
func (it Iterator[E]) Prev() Iterator[E] {
	if it.arena == nil {
		return it
	}
	it.ref = it.arena.step(it.ref, it.forward().opposite())
	return it
}

// Equal reports whether both iterators are the same position of the same
// tree, regardless of their direction.
func (it Iterator[E]) Equal(other Iterator[E]) bool {
	return it.arena == other.arena && it.ref == other.ref
}

// Base converts between the forward and reverse directions at the same
// position.
func (it Iterator[E]) Base() Iterator[E] {
	it.reverse = !it.reverse
	return it
}

func (tree *rbTree[E, K]) iter(ref nodeRef) Iterator[E] {
	return Iterator[E]{arena: tree.arena, ref: ref}
}

func (tree *rbTree[E, K]) riter(ref nodeRef) Iterator[E] {
	return Iterator[E]{arena: tree.arena, ref: ref, reverse: true}
}

// hintOf accepts only positions of this tree, anything else means no hint.
func (tree *rbTree[E, K]) hintOf(it Iterator[E]) (nodeRef, bool) {
	if it.arena != tree.arena {
		return sentinel, false
	}
	return it.ref, true
}

// MapIterator is the Iterator of the maps with key and value accessors.
type MapIterator[K any, V any] struct {
	Iterator[Pair[K, V]]
}

func (it MapIterator[K, V]) Key() K {
	return it.node().elem.Key
}

func (it MapIterator[K, V]) Val() V {
	return it.node().elem.Val
}

// SetVal replaces the value in place, the key is never writable.
func (it MapIterator[K, V]) SetVal(val V) {
	it.node().elem.Val = val
}

func (it MapIterator[K, V]) Next() MapIterator[K, V] {
	return MapIterator[K, V]{it.Iterator.Next()}
}

func (it MapIterator[K, V]) Prev() MapIterator[K, V] {
	return MapIterator[K, V]{it.Iterator.Prev()}
}

func (it MapIterator[K, V]) Base() MapIterator[K, V] {
	return MapIterator[K, V]{it.Iterator.Base()}
}

func (it MapIterator[K, V]) Equal(other MapIterator[K, V]) bool {
	return it.Iterator.Equal(other.Iterator)
}
