package tree

import (
	"errors"
)

// go install golang.org/x/tools/cmd/stringer@latest

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(unknown)"
}

type RBDirection uint8

const (
	Left RBDirection = iota
	Right
)

func (d RBDirection) opposite() RBDirection {
	return d ^ 1
}

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(unknown)"
}

var (
	ErrAllocationFailure = errors.New("[rbtree] node allocation failure")
	ErrKeyNotFound       = errors.New("[rbtree] key not found")
	ErrRedViolation      = errors.New("[rbtree] red violation")
	ErrBlackViolation    = errors.New("[rbtree] black violation")
	ErrBSTViolation      = errors.New("[rbtree] bst order violation")
	ErrThreadViolation   = errors.New("[rbtree] thread violation")
	ErrExtremeViolation  = errors.New("[rbtree] leftmost or rightmost violation")
	ErrSizeViolation     = errors.New("[rbtree] size violation")
)

// KeyProjector extracts the ordering key from a stored element.
// Sets store the key itself, maps store a Pair and order by its Key.
type KeyProjector[E any, K any] interface {
	Key(elem E) K
}

// Allocator is the node storage budget consulted before a node is linked.
// Acquire must fail without side effects, the tree reports the failure
// before touching any link, color or thread.
type Allocator interface {
	Acquire(n int) error
	Release(n int)
}

// Pair is the element of the map containers.
type Pair[K any, V any] struct {
	Key K
	Val V
}

type identityProjector[K any] struct{}

func (identityProjector[K]) Key(elem K) K {
	return elem
}

type pairProjector[K any, V any] struct{}

func (pairProjector[K, V]) Key(elem Pair[K, V]) K {
	return elem.Key
}

// Checkable is implemented by the containers of this package, it is the
// entry of the invariant validations.
type Checkable interface {
	checker() invariantChecker
}

type invariantChecker interface {
	redViolation() error
	blackViolation() error
	bstViolation() error
	threadViolation() error
	extremeViolation() error
	sizeViolation() error
}
