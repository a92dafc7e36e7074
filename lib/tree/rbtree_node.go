package tree

// nodeRef is the stable index of a node inside its arena. Index 0 is the
// sentinel: it ends every boundary thread and its right slot holds the root.
type nodeRef uint32

const sentinel nodeRef = 0

const defaultArenaChunkShift = 8

// rbLink is one child slot. A thread slot does not own its target, it
// points to the in-order neighbour on that side (or to the sentinel).
type rbLink struct {
	ref    nodeRef
	thread bool
}

type rbNode[E any] struct {
	elem  E
	links [2]rbLink
	color RBColor
}

func (n *rbNode[E]) setChild(dir RBDirection, ref nodeRef) {
	n.links[dir] = rbLink{ref: ref}
}

func (n *rbNode[E]) setThread(dir RBDirection, ref nodeRef) {
	n.links[dir] = rbLink{ref: ref, thread: true}
}

func (n *rbNode[E]) isLeaf() bool {
	return n.links[Left].thread && n.links[Right].thread
}

func (n *rbNode[E]) hasChild(dir RBDirection) bool {
	return !n.links[dir].thread
}

// nodeArena is a chunked node store. Chunks never move once allocated, so
// node pointers stay valid until the node is freed.
//
//	slabs[0]: [sentinel, n1, n2, ... n(chunk-1)]
//	slabs[1]: [n(chunk), ...]
//
// Freed indices are reused in LIFO order.
type nodeArena[E any] struct {
	slabs    [][]rbNode[E]
	shift    uint32
	mask     uint32
	next     uint32
	recycled []nodeRef
	alloc    Allocator
}

func newNodeArena[E any](shift uint32, alloc Allocator) *nodeArena[E] {
	if shift == 0 || shift > 20 {
		shift = defaultArenaChunkShift
	}
	if alloc == nil {
		alloc = UnboundedAllocator
	}
	arena := &nodeArena[E]{
		slabs: make([][]rbNode[E], 1, 8),
		shift: shift,
		mask:  1<<shift - 1,
		next:  1,
		alloc: alloc,
	}
	arena.slabs[0] = make([]rbNode[E], 1<<shift)
	arena.resetSentinel()
	return arena
}

func (arena *nodeArena[E]) resetSentinel() {
	s := arena.node(sentinel)
	s.color = Black
	s.setThread(Left, sentinel)
	s.setThread(Right, sentinel)
}

func (arena *nodeArena[E]) node(ref nodeRef) *rbNode[E] {
	return &arena.slabs[uint32(ref)>>arena.shift][uint32(ref)&arena.mask]
}

// allocate consults the allocator first. The returned node is red, with
// both slots threaded to the sentinel.
func (arena *nodeArena[E]) allocate(elem E) (nodeRef, error) {
	if err := arena.alloc.Acquire(1); err != nil {
		return sentinel, err
	}
	var ref nodeRef
	if l := len(arena.recycled); l > 0 {
		ref = arena.recycled[l-1]
		arena.recycled = arena.recycled[:l-1]
	} else {
		if arena.next>>arena.shift >= uint32(len(arena.slabs)) {
			arena.slabs = append(arena.slabs, make([]rbNode[E], 1<<arena.shift))
		}
		ref = nodeRef(arena.next)
		arena.next++
	}
	n := arena.node(ref)
	n.elem = elem
	n.color = Red
	n.setThread(Left, sentinel)
	n.setThread(Right, sentinel)
	return ref, nil
}

func (arena *nodeArena[E]) free(ref nodeRef) {
	if ref == sentinel {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] free the sentinel")
	}
	*arena.node(ref) = rbNode[E]{}
	arena.recycled = append(arena.recycled, ref)
	arena.alloc.Release(1)
}

// truncate drops the extra chunks. Only valid once every node is freed.
func (arena *nodeArena[E]) truncate() {
	for i := 1; i < len(arena.slabs); i++ {
		arena.slabs[i] = nil
	}
	arena.slabs = arena.slabs[:1]
	arena.recycled = nil
	arena.next = 1
	arena.resetSentinel()
}

// link returns the child on dir, a thread reads as the sentinel.
func (arena *nodeArena[E]) link(ref nodeRef, dir RBDirection) nodeRef {
	l := arena.node(ref).links[dir]
	if l.thread {
		return sentinel
	}
	return l.ref
}

func (arena *nodeArena[E]) isRed(ref nodeRef) bool {
	return ref != sentinel && arena.node(ref).color == Red
}

func (arena *nodeArena[E]) paint(ref nodeRef, color RBColor) {
	if ref == sentinel {
		return
	}
	arena.node(ref).color = color
}

// extreme walks real children on dir until a thread is met.
func (arena *nodeArena[E]) extreme(ref nodeRef, dir RBDirection) nodeRef {
	for {
		l := arena.node(ref).links[dir]
		if l.thread {
			return ref
		}
		ref = l.ref
	}
}

// step returns the in-order neighbour of ref on dir. Stepping from the
// sentinel wraps to the opposite end: Right gives the minimum and Left
// gives the maximum.
func (arena *nodeArena[E]) step(ref nodeRef, dir RBDirection) nodeRef {
	if ref == sentinel {
		root := arena.link(sentinel, Right)
		if root == sentinel {
			return sentinel
		}
		return arena.extreme(root, dir.opposite())
	}
	l := arena.node(ref).links[dir]
	if l.thread {
		return l.ref
	}
	return arena.extreme(l.ref, dir.opposite())
}

func (arena *nodeArena[E]) successor(ref nodeRef) nodeRef {
	return arena.step(ref, Right)
}

func (arena *nodeArena[E]) predecessor(ref nodeRef) nodeRef {
	return arena.step(ref, Left)
}
