package tree

import (
	"errors"
	"iter"

	"github.com/benz9527/xcoll/lib/infra"
)

var (
	ErrInvalidArgument      = errors.New("[tree] invalid argument")
	ErrUnsupportedOperation = errors.New("[tree] unsupported operation")
)

//go:generate stringer -type=RBColor
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
	return "Unknown"
}

//go:generate stringer -type=Direction
type Direction int8

const (
	Left Direction = -1 + iota
	Root
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "Unknown"
}

type DFSOrder uint8

const (
	PreOrder DFSOrder = iota
	InOrder
	PostOrder
)

// Vertex is a read-only observer handle of a tree vertex.
// Absent relatives are returned as nil interfaces.
// A handle is only valid until the next mutation of its tree.
type Vertex[K infra.OrderedKey] interface {
	Key() K
	Left() Vertex[K]
	Right() Vertex[K]
	Parent() Vertex[K]
	IsRoot() bool
	IsLeaf() bool
}

// OrderedTree is the surface shared by every binary search tree in
// this package. None of them is safe for concurrent mutation.
type OrderedTree[K infra.OrderedKey] interface {
	Len() int64
	IsEmpty() bool
	// Depth returns the height of the whole tree, -1 if it is empty.
	Depth() int
	Root() Vertex[K]
	// Insert adds the key. Inserting a present key is a no-op.
	// NaN keys are rejected with ErrInvalidArgument.
	Insert(key K) error
	// Delete removes the key and reports whether it was present.
	// Deleting an absent key leaves the tree untouched.
	Delete(key K) bool
	Contains(key K) bool
	Search(key K) Vertex[K]
	Min() (K, bool)
	Max() (K, bool)
	RotateLeft(v Vertex[K]) error
	RotateRight(v Vertex[K]) error
	// Foreach runs the action in order until it returns false.
	Foreach(action func(idx int64, key K) bool)
	// All is a lazy in-order sequence, it can be ranged many times.
	All() iter.Seq[K]
	Backward() iter.Seq[K]
	// BFS visits the vertices level by level until the action returns false.
	BFS(action func(depth int, v Vertex[K]) bool)
	DFS(order DFSOrder, action func(v Vertex[K]) bool)
	Release()
	String() string
}

type BSTree[K infra.OrderedKey] interface {
	OrderedTree[K]
}

// BalancedTree forbids the public rotations, both of them
// always fail with ErrUnsupportedOperation.
type BalancedTree[K infra.OrderedKey] interface {
	OrderedTree[K]
	RemoveMin() (K, bool)
	RemoveMax() (K, bool)
	Stats() RebalanceStats
}

type AVLTree[K infra.OrderedKey] interface {
	BalancedTree[K]
	// Height returns the cached height of the vertex, -1 for nil.
	Height(v Vertex[K]) int
	// Balance is height(left) - height(right).
	Balance(v Vertex[K]) int
}

type RBTree[K infra.OrderedKey] interface {
	BalancedTree[K]
	// Color returns the color of the vertex, nil is Black.
	Color(v Vertex[K]) RBColor
}
