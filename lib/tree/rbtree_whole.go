package tree

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/benz9527/trbt/lib/infra"
)

type cloneFrame struct {
	src    nodeRef
	parent nodeRef
	pred   nodeRef
	succ   nodeRef
	side   RBDirection
}

// cloneInto copies the shape, colors and elements into the empty dst.
// The threads are rebuilt from the in-order bounds carried on the stack.
// On failure dst is cleared again.
func (tree *rbTree[E, K]) cloneInto(dst *rbTree[E, K]) error {
	root := tree.root()
	if root == sentinel {
		return nil
	}
	src := tree.arena
	stack := make([]cloneFrame, 0, 64)
	stack = append(stack, cloneFrame{src: root, parent: sentinel, pred: sentinel, succ: sentinel, side: Right})
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sn := src.node(fr.src)
		ref, err := dst.arena.allocate(sn.elem)
		if err != nil {
			dst.clear()
			tree.stats.allocFailed()
			tree.logger.Warn("[rbtree] clone node allocation failure",
				zap.Int64("size", tree.Len()),
				zap.Error(err),
			)
			return infra.WrapErrorStackWithMessage(err, "[rbtree] clone")
		}
		dn := dst.arena.node(ref)
		dn.color = sn.color
		dst.arena.node(fr.parent).setChild(fr.side, ref)
		dst.count++

		if sn.links[Left].thread {
			dn.setThread(Left, fr.pred)
			if fr.pred == sentinel {
				dst.leftmost = ref
			}
		} else {
			stack = append(stack, cloneFrame{src: sn.links[Left].ref, parent: ref, pred: fr.pred, succ: ref, side: Left})
		}
		if sn.links[Right].thread {
			dn.setThread(Right, fr.succ)
			if fr.succ == sentinel {
				dst.rightmost = ref
			}
		} else {
			stack = append(stack, cloneFrame{src: sn.links[Right].ref, parent: ref, pred: ref, succ: fr.succ, side: Right})
		}
	}
	tree.logger.Debug("[rbtree] cloned", zap.Int64("size", dst.count))
	return nil
}

// newEmpty is a tree with the same configuration and its own arena.
func (tree *rbTree[E, K]) newEmpty() *rbTree[E, K] {
	return &rbTree[E, K]{
		arena:     newNodeArena[E](tree.cfg.chunkShift, tree.cfg.alloc),
		proj:      tree.proj,
		kcmp:      tree.kcmp,
		leftmost:  sentinel,
		rightmost: sentinel,
		borrow:    tree.borrow,
		logger:    tree.logger,
		stats:     tree.stats,
		cfg:       tree.cfg,
	}
}

// clone is not metered, the instruments stay bound to the source.
func (tree *rbTree[E, K]) clone() (*rbTree[E, K], error) {
	dst := tree.newEmpty()
	dst.stats = nil
	if err := tree.cloneInto(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// clear releases every node, children are read before the parent is freed.
func (tree *rbTree[E, K]) clear() {
	released := tree.count
	if root := tree.root(); root != sentinel {
		stack := make([]nodeRef, 0, 64)
		stack = append(stack, root)
		for len(stack) > 0 {
			ref := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := tree.arena.node(ref)
			if n.hasChild(Left) {
				stack = append(stack, n.links[Left].ref)
			}
			if n.hasChild(Right) {
				stack = append(stack, n.links[Right].ref)
			}
			tree.arena.free(ref)
		}
	}
	tree.arena.truncate()
	tree.leftmost, tree.rightmost = sentinel, sentinel
	atomic.StoreInt64(&tree.count, 0)
	if released > 0 {
		tree.logger.Debug("[rbtree] cleared", zap.Int64("released", released))
	}
}

// equal reports element-wise equality in key order.
func (tree *rbTree[E, K]) equal(other *rbTree[E, K], eq func(a, b E) bool) bool {
	if tree.Len() != other.Len() {
		return false
	}
	for x, y := tree.leftmost, other.leftmost; x != sentinel && y != sentinel; x, y = tree.arena.successor(x), other.arena.successor(y) {
		if !eq(tree.arena.node(x).elem, other.arena.node(y).elem) {
			return false
		}
	}
	return true
}

// compareTo is the lexicographic order, a proper prefix is the smaller one.
func (tree *rbTree[E, K]) compareTo(other *rbTree[E, K], cmp func(a, b E) int64) int {
	x, y := tree.leftmost, other.leftmost
	for ; x != sentinel && y != sentinel; x, y = tree.arena.successor(x), other.arena.successor(y) {
		if res := cmp(tree.arena.node(x).elem, other.arena.node(y).elem); res < 0 {
			return -1
		} else if res > 0 {
			return 1
		}
	}
	switch {
	case x == sentinel && y != sentinel:
		return -1
	case x != sentinel && y == sentinel:
		return 1
	default:
	}
	return 0
}

// swap exchanges the contents, the instruments stay with their tree.
func (tree *rbTree[E, K]) swap(other *rbTree[E, K]) {
	*tree, *other = *other, *tree
	tree.stats, other.stats = other.stats, tree.stats
}

// moveFrom takes over the nodes of src, src is left empty and usable.
func (tree *rbTree[E, K]) moveFrom(src *rbTree[E, K]) {
	if tree == src {
		return
	}
	tree.clear()
	stats := tree.stats
	*tree = *src
	tree.stats = stats
	*src = *src.newEmpty()
}
