package tree

import (
	"fmt"

	"github.com/benz9527/xcoll/lib/infra"
)

var _ AVLTree[int] = (*avlTree[int])(nil)

// avlMeta caches the height of the vertex, a leaf is 0.
type avlMeta struct {
	height int
}

func avlHeight[K infra.OrderedKey](v *vertex[K, avlMeta]) int {
	if v == nil {
		return -1
	}
	return v.meta.height
}

// References:
// https://en.wikipedia.org/wiki/AVL_tree
// AVL property:
// For every vertex, |height(left) - height(right)| <= 1.
// The height of an empty subtree is -1.
type avlTree[K infra.OrderedKey] struct {
	bst[K, avlMeta]
}

func (t *avlTree[K]) Height(v Vertex[K]) int {
	x, ok := v.(*vertex[K, avlMeta])
	if !ok {
		return -1
	}
	return avlHeight[K](x)
}

func (t *avlTree[K]) Balance(v Vertex[K]) int {
	x, ok := v.(*vertex[K, avlMeta])
	if !ok || x == nil {
		return 0
	}
	return avlHeight[K](x.left) - avlHeight[K](x.right)
}

// Depth is the cached height of the root.
func (t *avlTree[K]) Depth() int {
	return avlHeight[K](t.root)
}

func (t *avlTree[K]) Insert(key K) error {
	if err := t.validateKey(key); err != nil {
		return err
	}
	z, ok := t.insertOrdered(key, avlMeta{height: 0})
	if !ok {
		return nil
	}
	t.rebalance(z.parent)
	return nil
}

func (t *avlTree[K]) Delete(key K) bool {
	z := t.search(key)
	if z == nil {
		return false
	}
	if z.left != nil && z.right != nil {
		z = t.swapWithPredecessor(z)
	}
	t.spliceOut(z)
	p := z.parent
	t.release(z)
	t.rebalance(p)
	return true
}

func (t *avlTree[K]) RemoveMin() (key K, ok bool) {
	if key, ok = t.Min(); ok {
		t.Delete(key)
	}
	return key, ok
}

func (t *avlTree[K]) RemoveMax() (key K, ok bool) {
	if key, ok = t.Max(); ok {
		t.Delete(key)
	}
	return key, ok
}

func (t *avlTree[K]) RotateLeft(Vertex[K]) error {
	return fmt.Errorf("%w: avl tree vertices can not be rotated left by users", ErrUnsupportedOperation)
}

func (t *avlTree[K]) RotateRight(Vertex[K]) error {
	return fmt.Errorf("%w: avl tree vertices can not be rotated right by users", ErrUnsupportedOperation)
}

/*
rebalance walks from the lowest changed vertex V up to the root.
h is the recomputed height of V, C is the heavy child, G is the
grandchild on the inner side.

r1: balance(V) == -2 and height(G) - height(Cd) == 1 (right-left).
Rotate C right first, then C is replaced by G.

	  V                   V
	 / \                 / \
	L   C  r-rotate(C)  L   G
	   / \ ==========>     / \
	  G  Cd               Gc  C
	                         / \
	                       Gd  Cd

	height(G) = h-1, height(C) = h-2

r2: balance(V) == -2 (right-right, or r1 done). Rotate V left.

	  V                   C
	 / \                 / \
	L   C  l-rotate(V)  V   Cd
	   / \ ==========> / \
	  G  Cd           L   G

	height(V) = height(G) == h-2 ? h-1 : h-2
	height(C) = height(V) == h-1 ? h : h-1

r3, r4: balance(V) == 2, mirror of r1 and r2.
*/
func (t *avlTree[K]) rebalance(v *vertex[K, avlMeta]) {
	for ; v != nil; v = v.parent {
		v.meta.height = 1 + max(avlHeight[K](v.left), avlHeight[K](v.right))
		switch balance := avlHeight[K](v.left) - avlHeight[K](v.right); balance {
		case -2:
			child := v.right
			grand := child.left
			if /* r1 */ avlHeight[K](grand)-avlHeight[K](child.right) == 1 {
				t.rotateRight(child)
				grand.meta.height = v.meta.height - 1
				child.meta.height = v.meta.height - 2
				child, grand = grand, grand.left
			}
			/* r2 */
			h, hg := v.meta.height, avlHeight[K](grand)
			t.rotateLeft(v)
			if hg == h-2 {
				v.meta.height = h - 1
			} else {
				v.meta.height = h - 2
			}
			if v.meta.height == h-1 {
				child.meta.height = h
			} else {
				child.meta.height = h - 1
			}
		case 2:
			child := v.left
			grand := child.right
			if /* r3 */ avlHeight[K](child.left)-avlHeight[K](grand) == -1 {
				t.rotateLeft(child)
				grand.meta.height = v.meta.height - 1
				child.meta.height = v.meta.height - 2
				child, grand = grand, grand.right
			}
			/* r4 */
			h, hg := v.meta.height, avlHeight[K](grand)
			t.rotateRight(v)
			if hg == h-2 {
				v.meta.height = h - 1
			} else {
				v.meta.height = h - 2
			}
			if v.meta.height == h-1 {
				child.meta.height = h
			} else {
				child.meta.height = h - 1
			}
		default:
		}
	}
}

func NewAVLTree[K infra.OrderedKey](opts ...TreeOption) AVLTree[K] {
	return &avlTree[K]{
		bst: newBST[K, avlMeta]("avl", func(v *vertex[K, avlMeta]) string {
			return fmt.Sprintf("%v %d/%d", v.key, avlHeight[K](v), avlHeight[K](v.left)-avlHeight[K](v.right))
		}, opts...),
	}
}
