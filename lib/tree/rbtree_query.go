package tree

import (
	"iter"
)

func (tree *rbTree[E, K]) search(key K) nodeRef {
	arena := tree.arena
	for q := tree.root(); q != sentinel; {
		res := tree.compare(key, q)
		if res == 0 {
			return q
		}
		l := arena.node(q).links[directionOf(res)]
		if l.thread {
			return sentinel
		}
		q = l.ref
	}
	return sentinel
}

// lowerBound is the first node whose key is not less than key.
func (tree *rbTree[E, K]) lowerBound(key K) nodeRef {
	candidate := sentinel
	for q := tree.root(); q != sentinel; {
		res := tree.compare(key, q)
		if res == 0 {
			return q
		} else if res < 0 {
			candidate = q
			q = tree.arena.link(q, Left)
		} else {
			q = tree.arena.link(q, Right)
		}
	}
	return candidate
}

// upperBound is the first node whose key is greater than key.
func (tree *rbTree[E, K]) upperBound(key K) nodeRef {
	candidate := sentinel
	for q := tree.root(); q != sentinel; {
		if tree.compare(key, q) < 0 {
			candidate = q
			q = tree.arena.link(q, Left)
		} else {
			q = tree.arena.link(q, Right)
		}
	}
	return candidate
}

func (tree *rbTree[E, K]) count1(key K) int {
	if tree.search(key) == sentinel {
		return 0
	}
	return 1
}

// seq walks the threads from one end to the other.
func (tree *rbTree[E, K]) seq(dir RBDirection) iter.Seq[E] {
	return func(yield func(E) bool) {
		start := tree.leftmost
		if dir == Left {
			start = tree.rightmost
		}
		for ref := start; ref != sentinel; ref = tree.arena.step(ref, dir) {
			if !yield(tree.arena.node(ref).elem) {
				return
			}
		}
	}
}

// foreach visits in key order until action returns false.
func (tree *rbTree[E, K]) foreach(action func(idx int64, color RBColor, elem E) bool) {
	var idx int64
	for ref := tree.leftmost; ref != sentinel; ref = tree.arena.successor(ref) {
		n := tree.arena.node(ref)
		if !action(idx, n.color, n.elem) {
			return
		}
		idx++
	}
}
