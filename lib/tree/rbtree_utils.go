package tree

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/trbt/lib/infra"
)

var _ invariantChecker = (*rbTree[int, int])(nil)

// RedViolationValidate checks the root is black and no red node has a red
// child.
func RedViolationValidate(tree Checkable) error {
	return tree.checker().redViolation()
}

// BlackViolationValidate checks every path from a node to its thread slots
// carries the same number of black nodes.
func BlackViolationValidate(tree Checkable) error {
	return tree.checker().blackViolation()
}

// BSTViolationValidate checks the in-order keys strictly increase.
func BSTViolationValidate(tree Checkable) error {
	return tree.checker().bstViolation()
}

// ThreadViolationValidate checks every thread slot points to the in-order
// neighbour, or to the sentinel at both ends.
func ThreadViolationValidate(tree Checkable) error {
	return tree.checker().threadViolation()
}

// Validate runs all the checks, the violations are combined.
func Validate(tree Checkable) error {
	c := tree.checker()
	return infra.WrapErrorStackWithMessage(multierr.Combine(
		c.redViolation(),
		c.blackViolation(),
		c.bstViolation(),
		c.threadViolation(),
		c.extremeViolation(),
		c.sizeViolation(),
	), "[rbtree] validate")
}

// inorder lists the nodes by the real links only, the threads are not
// trusted here.
func (tree *rbTree[E, K]) inorder() []nodeRef {
	res := make([]nodeRef, 0, tree.Len())
	stack := make([]nodeRef, 0, 64)
	arena := tree.arena
	for q := tree.root(); q != sentinel || len(stack) > 0; {
		for ; q != sentinel; q = arena.link(q, Left) {
			stack = append(stack, q)
		}
		q = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		res = append(res, q)
		q = arena.link(q, Right)
	}
	return res
}

func (tree *rbTree[E, K]) redViolation() error {
	var merr error
	root := tree.root()
	if tree.arena.isRed(root) {
		merr = multierr.Append(merr, fmt.Errorf("%w: red root %v", ErrRedViolation, tree.keyOf(root)))
	}
	for _, ref := range tree.inorder() {
		if !tree.arena.isRed(ref) {
			continue
		}
		if tree.arena.isRed(tree.arena.link(ref, Left)) || tree.arena.isRed(tree.arena.link(ref, Right)) {
			merr = multierr.Append(merr, fmt.Errorf("%w: red node %v has a red child", ErrRedViolation, tree.keyOf(ref)))
		}
	}
	return merr
}

func (tree *rbTree[E, K]) blackViolation() error {
	var merr error
	root := tree.root()
	if root == sentinel {
		return nil
	}
	// Post-order, the black height of every subtree is kept by its index.
	heights := make(map[nodeRef]int, tree.Len())
	height := func(ref nodeRef) int {
		if ref == sentinel {
			return 1
		}
		return heights[ref]
	}
	type frame struct {
		ref     nodeRef
		visited bool
	}
	stack := []frame{{ref: root}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fr.visited {
			stack = append(stack, frame{ref: fr.ref, visited: true})
			if l := tree.arena.link(fr.ref, Left); l != sentinel {
				stack = append(stack, frame{ref: l})
			}
			if r := tree.arena.link(fr.ref, Right); r != sentinel {
				stack = append(stack, frame{ref: r})
			}
			continue
		}
		lh, rh := height(tree.arena.link(fr.ref, Left)), height(tree.arena.link(fr.ref, Right))
		if lh != rh {
			merr = multierr.Append(merr, fmt.Errorf("%w: node %v left black height %d, right %d",
				ErrBlackViolation, tree.keyOf(fr.ref), lh, rh))
		}
		h := max(lh, rh)
		if !tree.arena.isRed(fr.ref) {
			h++
		}
		heights[fr.ref] = h
	}
	return merr
}

func (tree *rbTree[E, K]) bstViolation() error {
	var merr error
	nodes := tree.inorder()
	for i := 1; i < len(nodes); i++ {
		prev, cur := tree.keyOf(nodes[i-1]), tree.keyOf(nodes[i])
		if tree.kcmp(prev, cur) >= 0 {
			merr = multierr.Append(merr, fmt.Errorf("%w: key %v is not less than %v", ErrBSTViolation, prev, cur))
		}
	}
	return merr
}

func (tree *rbTree[E, K]) threadViolation() error {
	var merr error
	arena := tree.arena
	sn := arena.node(sentinel)
	if !sn.links[Left].thread || sn.links[Left].ref != sentinel {
		merr = multierr.Append(merr, fmt.Errorf("%w: sentinel left slot", ErrThreadViolation))
	}
	if sn.links[Right].thread != (tree.root() == sentinel && sn.links[Right].ref == sentinel) {
		merr = multierr.Append(merr, fmt.Errorf("%w: sentinel right slot", ErrThreadViolation))
	}
	nodes := tree.inorder()
	for i, ref := range nodes {
		n := arena.node(ref)
		pred, succ := sentinel, sentinel
		if i > 0 {
			pred = nodes[i-1]
		}
		if i < len(nodes)-1 {
			succ = nodes[i+1]
		}
		if l := n.links[Left]; l.thread && l.ref != pred {
			merr = multierr.Append(merr, fmt.Errorf("%w: node %v left thread", ErrThreadViolation, tree.keyOf(ref)))
		}
		if r := n.links[Right]; r.thread && r.ref != succ {
			merr = multierr.Append(merr, fmt.Errorf("%w: node %v right thread", ErrThreadViolation, tree.keyOf(ref)))
		}
	}
	return merr
}

func (tree *rbTree[E, K]) extremeViolation() error {
	var merr error
	nodes := tree.inorder()
	first, last := sentinel, sentinel
	if len(nodes) > 0 {
		first, last = nodes[0], nodes[len(nodes)-1]
	}
	if tree.leftmost != first {
		merr = multierr.Append(merr, fmt.Errorf("%w: leftmost %d, expected %d", ErrExtremeViolation, tree.leftmost, first))
	}
	if tree.rightmost != last {
		merr = multierr.Append(merr, fmt.Errorf("%w: rightmost %d, expected %d", ErrExtremeViolation, tree.rightmost, last))
	}
	return merr
}

func (tree *rbTree[E, K]) sizeViolation() error {
	var merr error
	if l := int64(len(tree.inorder())); l != tree.Len() {
		merr = multierr.Append(merr, fmt.Errorf("%w: %d linked nodes, size %d", ErrSizeViolation, l, tree.Len()))
	}
	var walked int64
	for ref := tree.leftmost; ref != sentinel && walked <= tree.Len(); ref = tree.arena.successor(ref) {
		walked++
	}
	if walked != tree.Len() {
		merr = multierr.Append(merr, fmt.Errorf("%w: %d nodes reached by the threads, size %d", ErrSizeViolation, walked, tree.Len()))
	}
	return merr
}
