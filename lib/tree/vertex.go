package tree

import "github.com/benz9527/xcoll/lib/infra"

var (
	_ Vertex[int] = (*vertex[int, struct{}])(nil)
	_ Vertex[int] = (*vertex[int, avlMeta])(nil)
	_ Vertex[int] = (*vertex[int, rbMeta])(nil)
)

// vertex is owned by exactly one tree. The parent link is a back
// reference, the children links are owning references.
// M carries the balancing metadata of the owner tree.
type vertex[K infra.OrderedKey, M any] struct {
	parent *vertex[K, M]
	left   *vertex[K, M]
	right  *vertex[K, M]
	key    K
	meta   M
}

func (v *vertex[K, M]) Key() K {
	return v.key
}

func (v *vertex[K, M]) Left() Vertex[K] {
	if v == nil || v.left == nil {
		return nil
	}
	return v.left
}

func (v *vertex[K, M]) Right() Vertex[K] {
	if v == nil || v.right == nil {
		return nil
	}
	return v.right
}

func (v *vertex[K, M]) Parent() Vertex[K] {
	if v == nil || v.parent == nil {
		return nil
	}
	return v.parent
}

func (v *vertex[K, M]) IsRoot() bool {
	return v != nil && v.parent == nil
}

func (v *vertex[K, M]) IsLeaf() bool {
	return v != nil && v.left == nil && v.right == nil
}

func (v *vertex[K, M]) direction() Direction {
	if v == nil {
		// impossible run to here
		panic( /* debug assertion */ "[tree] nil vertex without direction")
	}

	if v.parent == nil {
		return Root
	}
	if v == v.parent.left {
		return Left
	}
	return Right
}

func (v *vertex[K, M]) sibling() *vertex[K, M] {
	switch v.direction() {
	case Left:
		return v.parent.right
	case Right:
		return v.parent.left
	default:
	}
	return nil
}

func (v *vertex[K, M]) fixLink() {
	if v.left != nil {
		v.left.parent = v
	}
	if v.right != nil {
		v.right.parent = v
	}
}

// unlink releases every link, the vertex must be detached already.
func (v *vertex[K, M]) unlink() {
	v.parent = nil
	v.left = nil
	v.right = nil
}

func (v *vertex[K, M]) minimum() *vertex[K, M] {
	aux := v
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (v *vertex[K, M]) maximum() *vertex[K, M] {
	aux := v
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred vertex of the current vertex is its previous vertex in sorted order.
func (v *vertex[K, M]) pred() *vertex[K, M] {
	x := v
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father vertex that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ vertex of the current vertex is its next vertex in sorted order.
func (v *vertex[K, M]) succ() *vertex[K, M] {
	x := v
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father vertex that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}
