package tree

import (
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	ibits "github.com/benz9527/trbt/lib/bits"
	"github.com/benz9527/trbt/lib/infra"
	"github.com/benz9527/trbt/lib/xlog"
)

// References:
// https://eternallyconfuzzled.com/red-black-trees-c-the-most-common-balanced-binary-search-tree
// https://www.cs.princeton.edu/~rs/talks/LLRB/RedBlack.pdf
// https://en.wikipedia.org/wiki/Threaded_binary_tree
//
// Red-black tree properties:
//  1. Every node is either red or black.
//  2. The root is black.
//  3. Every leaf (thread slot) is black.
//  4. If a node is red, then both its children are black.
//  5. Every simple path from a node to a descendant leaf contains the same
//     number of black nodes.
//
// The tree is threaded and has no parent pointers. A slot without a child
// keeps the in-order neighbour on that side, the slots of the minimum and
// the maximum point to the sentinel. Insertion and removal are done in a
// single top-down pass, the rebalancing happens on the way down.

type rbTreeCfg struct {
	isDesc     bool
	borrowPred bool
	alloc      Allocator
	logger     xlog.XLogger
	meter      metric.Meter
	name       string
	chunkShift uint32
}

type RBTreeOpt func(*rbTreeCfg)

// WithRBTreeDesc reverses the key order.
func WithRBTreeDesc() RBTreeOpt {
	return func(cfg *rbTreeCfg) {
		cfg.isDesc = true
	}
}

// WithRBTreeRemoveBorrowPred makes the removal of a node with two children
// borrow its in-order predecessor instead of the successor.
func WithRBTreeRemoveBorrowPred() RBTreeOpt {
	return func(cfg *rbTreeCfg) {
		cfg.borrowPred = true
	}
}

func WithRBTreeAllocator(alloc Allocator) RBTreeOpt {
	return func(cfg *rbTreeCfg) {
		if alloc != nil {
			cfg.alloc = alloc
		}
	}
}

func WithRBTreeLogger(logger xlog.XLogger) RBTreeOpt {
	return func(cfg *rbTreeCfg) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithRBTreeMeter records the tree operations into the meter, tagged with
// the name.
func WithRBTreeMeter(meter metric.Meter, name string) RBTreeOpt {
	return func(cfg *rbTreeCfg) {
		cfg.meter = meter
		cfg.name = name
	}
}

// WithRBTreeArenaChunk sets the nodes per arena chunk, rounded up to a
// power of two.
func WithRBTreeArenaChunk(nodes uint32) RBTreeOpt {
	return func(cfg *rbTreeCfg) {
		cfg.chunkShift = uint32(min(max(ibits.CeilPowOf2(nodes), 1), 20))
	}
}

// rbTree is the engine shared by the set and the map. E is the stored
// element, K the key projected out of it.
type rbTree[E any, K any] struct {
	arena     *nodeArena[E]
	proj      KeyProjector[E, K]
	kcmp      infra.Comparator[K]
	leftmost  nodeRef
	rightmost nodeRef
	count     int64
	borrow    RBDirection
	logger    xlog.XLogger
	stats     *rbTreeStats
	cfg       rbTreeCfg
}

func newRBTree[E any, K any](proj KeyProjector[E, K], cmp infra.Comparator[K], opts ...RBTreeOpt) *rbTree[E, K] {
	if cmp == nil {
		panic("[rbtree] nil key comparator")
	}
	cfg := rbTreeCfg{
		alloc:      UnboundedAllocator,
		chunkShift: defaultArenaChunkShift,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = xlog.NewNopXLogger()
	}
	if cfg.isDesc {
		cmp = cmp.Reverse()
	}
	tree := &rbTree[E, K]{
		arena:     newNodeArena[E](cfg.chunkShift, cfg.alloc),
		proj:      proj,
		kcmp:      cmp,
		leftmost:  sentinel,
		rightmost: sentinel,
		borrow:    Right,
		logger:    cfg.logger,
		cfg:       cfg,
	}
	if cfg.borrowPred {
		tree.borrow = Left
	}
	if cfg.meter != nil {
		tree.stats = newRBTreeStats(cfg.meter, cfg.name, tree.Len)
	}
	return tree
}

func (tree *rbTree[E, K]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[E, K]) root() nodeRef {
	return tree.arena.link(sentinel, Right)
}

func (tree *rbTree[E, K]) keyOf(ref nodeRef) K {
	return tree.proj.Key(tree.arena.node(ref).elem)
}

// compare the key against the node, ref must not be the sentinel.
func (tree *rbTree[E, K]) compare(key K, ref nodeRef) int64 {
	return tree.kcmp(key, tree.keyOf(ref))
}

func directionOf(res int64) RBDirection {
	if res > 0 {
		return Right
	}
	return Left
}

// rotate is the single rotation. The child on !dir is lifted and returned,
// the old root becomes red and the lifted child black.
//
//	      root                 save
//	     /    \               /    \
//	   save    c    =>       a     root
//	  /    \                      /    \
//	 a      b                    b      c
//
// (dir == Right). When save has no child b, root keeps a thread to save.
func (tree *rbTree[E, K]) rotate(root nodeRef, dir RBDirection) nodeRef {
	arena := tree.arena
	rn := arena.node(root)
	save := arena.link(root, dir.opposite())
	if save == sentinel {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate without a child on the lifted side")
	}
	sn := arena.node(save)
	if sn.links[dir].thread {
		rn.setThread(dir.opposite(), save)
	} else {
		rn.setChild(dir.opposite(), sn.links[dir].ref)
	}
	sn.setChild(dir, root)
	rn.color = Red
	sn.color = Black
	tree.stats.rotated()
	return save
}

// doubleRotate lifts the grandchild on the inner side.
//
//	      root                 b
//	     /    \              /   \
//	    a      c    =>      a    root
//	     \                          \
//	      b                          c
//
// (dir == Right)
func (tree *rbTree[E, K]) doubleRotate(root nodeRef, dir RBDirection) nodeRef {
	child := tree.arena.link(root, dir.opposite())
	tree.arena.node(root).setChild(dir.opposite(), tree.rotate(child, dir.opposite()))
	return tree.rotate(root, dir)
}

// attach links the fresh node z under p on dir. The slot of p on dir was a
// thread, z inherits it and threads back to p on the other side.
func (tree *rbTree[E, K]) attach(p nodeRef, dir RBDirection, z nodeRef) {
	pn, zn := tree.arena.node(p), tree.arena.node(z)
	zn.setThread(dir, pn.links[dir].ref)
	zn.setThread(dir.opposite(), p)
	zn.color = Red
	pn.setChild(dir, z)
	if zn.links[Left].ref == sentinel {
		tree.leftmost = z
	}
	if zn.links[Right].ref == sentinel {
		tree.rightmost = z
	}
}

// insert links the allocated node z. It returns the node holding the key
// and false if the key is already present, z is untouched in that case.
func (tree *rbTree[E, K]) insert(z nodeRef) (nodeRef, bool) {
	arena := tree.arena
	key := tree.keyOf(z)
	var (
		t, g, p  = sentinel, sentinel, sentinel
		q        = tree.root()
		dir      = Right
		last     = Right
		inserted = false
	)
	for {
		if q == sentinel {
			// Attach to the thread slot of p.
			tree.attach(p, dir, z)
			q, inserted = z, true
		} else if arena.isRed(arena.link(q, Left)) && arena.isRed(arena.link(q, Right)) {
			// Move red up, color flip.
			arena.paint(q, Red)
			arena.paint(arena.link(q, Left), Black)
			arena.paint(arena.link(q, Right), Black)
		}

		if arena.isRed(q) && arena.isRed(p) {
			if g == sentinel {
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] red root with a red child")
			}
			dir2 := Left
			if arena.link(t, Right) == g {
				dir2 = Right
			}
			var n nodeRef
			if q == arena.link(p, last) {
				n = tree.rotate(g, last.opposite())
			} else {
				n = tree.doubleRotate(g, last.opposite())
			}
			arena.node(t).setChild(dir2, n)
		}

		if inserted {
			break
		}
		res := tree.compare(key, q)
		if res == 0 {
			arena.paint(tree.root(), Black)
			return q, false
		}
		last = dir
		dir = directionOf(res)
		if g != sentinel {
			t = g
		}
		g, p = p, q
		q = arena.link(q, dir)
	}
	arena.paint(tree.root(), Black)
	atomic.AddInt64(&tree.count, 1)
	return z, true
}

// insertHint tries the O(1) attaches around the hint before the full
// descent. hint == sentinel means the end position.
func (tree *rbTree[E, K]) insertHint(hint nodeRef, z nodeRef) (nodeRef, bool) {
	key := tree.keyOf(z)
	if hint == sentinel {
		if r := tree.rightmost; r != sentinel && !tree.arena.isRed(r) && tree.compare(key, r) > 0 {
			tree.attach(r, Right, z)
			atomic.AddInt64(&tree.count, 1)
			return z, true
		}
		return tree.insert(z)
	}
	hn := tree.arena.node(hint)
	if hn.color == Black && hn.links[Left].thread && tree.compare(key, hint) < 0 {
		if pred := hn.links[Left].ref; pred == sentinel || tree.compare(key, pred) > 0 {
			tree.attach(hint, Left, z)
			atomic.AddInt64(&tree.count, 1)
			return z, true
		}
	}
	return tree.insert(z)
}

// insertElem allocates before any structural change. On a failed
// allocation an existing equal key is still reported as found.
func (tree *rbTree[E, K]) insertElem(elem E) (nodeRef, bool, error) {
	return tree.insertElemHint(elem, sentinel, false)
}

func (tree *rbTree[E, K]) insertElemHint(elem E, hint nodeRef, hinted bool) (nodeRef, bool, error) {
	z, err := tree.arena.allocate(elem)
	if err != nil {
		if ref := tree.search(tree.proj.Key(elem)); ref != sentinel {
			return ref, false, nil
		}
		tree.stats.allocFailed()
		tree.logger.Warn("[rbtree] node allocation failure",
			zap.Int64("size", tree.Len()),
			zap.Error(err),
		)
		return sentinel, false, infra.WrapErrorStackWithMessage(err, "[rbtree] insert")
	}
	var (
		ref nodeRef
		ok  bool
	)
	if hinted {
		ref, ok = tree.insertHint(hint, z)
	} else {
		ref, ok = tree.insert(z)
	}
	if !ok {
		tree.arena.free(z)
		return ref, false, nil
	}
	tree.stats.inserted()
	return ref, true, nil
}
