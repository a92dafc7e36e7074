package tree

import (
	"sync/atomic"
)

// remove erases the node holding key in one top-down pass and returns its
// element. An absent key leaves the tree untouched.
//
// A red node is pushed down along the search path (move red down), so the
// node finally spliced out is red or has a red child. A node with two
// children is replaced by its in-order neighbour on the borrow side, the
// neighbour node itself is moved, never its element, so iterators to the
// other nodes stay valid.
func (tree *rbTree[E, K]) remove(key K) (E, bool) {
	var zero E
	if tree.Len() <= 0 || tree.search(key) == sentinel {
		return zero, false
	}

	arena := tree.arena
	var (
		g, p, q = sentinel, sentinel, sentinel
		f, fp   = sentinel, sentinel
		dir     = Right
		last    = Right
	)
	for arena.link(q, dir) != sentinel {
		last = dir
		g, p = p, q
		q = arena.link(q, dir)
		res := tree.compare(key, q)
		if res == 0 {
			f, fp = q, p
			dir = tree.borrow
		} else {
			dir = directionOf(res)
		}

		if !arena.isRed(q) && !arena.isRed(arena.link(q, dir)) {
			p = tree.moveRedDown(g, p, q, dir, last)
			if f != sentinel {
				fp = tree.parentOf(fp, f)
			}
		}
	}
	if f == sentinel {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] removed key lost during descent")
	}

	if f == tree.leftmost {
		tree.leftmost = arena.successor(f)
	}
	if f == tree.rightmost {
		tree.rightmost = arena.predecessor(f)
	}
	elem := arena.node(f).elem
	if q == f {
		tree.spliceOut(fp, f)
	} else {
		tree.replaceWith(fp, f, p, q)
	}
	arena.free(f)
	atomic.AddInt64(&tree.count, -1)
	arena.paint(tree.root(), Black)
	tree.stats.erased()
	return elem, true
}

// moveRedDown makes q or its child on dir red. It returns the parent of q
// after the restructure.
func (tree *rbTree[E, K]) moveRedDown(g, p, q nodeRef, dir, last RBDirection) nodeRef {
	arena := tree.arena
	if arena.isRed(arena.link(q, dir.opposite())) {
		// The red child on the other side is rotated above q.
		n := tree.rotate(q, dir)
		arena.node(p).setChild(last, n)
		return n
	}
	s := arena.link(p, last.opposite())
	if s == sentinel {
		return p
	}
	if !arena.isRed(arena.link(s, last.opposite())) && !arena.isRed(arena.link(s, last)) {
		// Color flip, p was red.
		arena.paint(p, Black)
		arena.paint(s, Red)
		arena.paint(q, Red)
		return p
	}
	dir2 := Left
	if arena.link(g, Right) == p {
		dir2 = Right
	}
	var n nodeRef
	if arena.isRed(arena.link(s, last)) {
		n = tree.doubleRotate(p, last)
	} else {
		n = tree.rotate(p, last)
	}
	arena.node(g).setChild(dir2, n)
	arena.paint(q, Red)
	arena.paint(n, Red)
	arena.paint(arena.link(n, Left), Black)
	arena.paint(arena.link(n, Right), Black)
	return p
}

// parentOf re-derives the parent of f after a rotation on the path. A
// rotation lifts at most one node between fp and f.
func (tree *rbTree[E, K]) parentOf(fp, f nodeRef) nodeRef {
	arena := tree.arena
	if arena.link(fp, Left) == f || arena.link(fp, Right) == f {
		return fp
	}
	dir := Right
	if fp != sentinel {
		dir = directionOf(tree.kcmp(tree.keyOf(f), tree.keyOf(fp)))
	}
	return arena.link(fp, dir)
}

func (tree *rbTree[E, K]) sideOf(p, child nodeRef) RBDirection {
	if tree.arena.link(p, Left) == child {
		return Left
	} else if tree.arena.link(p, Right) == child {
		return Right
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] node is not a child of its recorded parent")
}

// spliceOut unlinks f, which has no child on the borrow side.
func (tree *rbTree[E, K]) spliceOut(fp, f nodeRef) {
	arena := tree.arena
	sf := tree.sideOf(fp, f)
	fn := arena.node(f)
	o := tree.borrow.opposite()
	if fn.isLeaf() {
		// The parent takes over the thread of f on that side.
		arena.node(fp).setThread(sf, fn.links[sf].ref)
		return
	}
	c := fn.links[o].ref
	arena.node(c).color = fn.color
	arena.node(fp).setChild(sf, c)
	arena.node(arena.extreme(c, tree.borrow)).setThread(tree.borrow, fn.links[tree.borrow].ref)
}

// replaceWith moves q, the in-order neighbour of f on the borrow side,
// into the place of f. p is the parent of q.
//
//	      fp                fp
//	      |                 |
//	      f                 q
//	     / \               / \
//	    a   b      =>     a   b
//	       /                 /
//	     ...               ...
//	     /                 /
//	    q                 c
//	     \
//	      c
//
// (borrow == Right)
func (tree *rbTree[E, K]) replaceWith(fp, f, p, q nodeRef) {
	arena := tree.arena
	bd := tree.borrow
	o := bd.opposite()
	fn, qn := arena.node(f), arena.node(q)

	if !qn.links[bd].thread {
		arena.node(qn.links[bd].ref).color = qn.color
	}
	if p != f {
		pn := arena.node(p)
		if qn.links[bd].thread {
			pn.setThread(o, q)
		} else {
			pn.setChild(o, qn.links[bd].ref)
		}
		qn.links[bd] = fn.links[bd]
	}
	qn.links[o] = fn.links[o]
	qn.color = fn.color
	arena.node(fp).setChild(tree.sideOf(fp, f), q)
	if !fn.links[o].thread {
		arena.node(arena.extreme(fn.links[o].ref, bd)).setThread(bd, q)
	}
}

func (tree *rbTree[E, K]) removeExtreme(dir RBDirection) (E, bool) {
	var zero E
	ref := tree.leftmost
	if dir == Right {
		ref = tree.rightmost
	}
	if ref == sentinel {
		return zero, false
	}
	return tree.remove(tree.keyOf(ref))
}
