package tree

import (
	"fmt"

	"github.com/benz9527/xcoll/lib/infra"
)

var _ RBTree[int] = (*rbTree[int])(nil)

type rbMeta struct {
	color RBColor
}

func isBlack[K infra.OrderedKey](v *vertex[K, rbMeta]) bool {
	return v == nil || v.meta.color == Black
}

func isRed[K infra.OrderedKey](v *vertex[K, rbMeta]) bool {
	return v != nil && v.meta.color == Red
}

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every vertex is either red or black.
// p2. All NIL vertices are considered black.
// p3. A red vertex does not have a red child. (red-violation)
// p4. Every path from a given vertex to any of its descendant
//   NIL vertices goes through the same number of black vertices. (black-violation)
// p5. The root is black.
// (Conclusion) If a vertex X has exactly one child, it must be a red child,
//   because if it were black, its NIL descendants would sit at a different
//   black depth than X's NIL child, violating p4.
type rbTree[K infra.OrderedKey] struct {
	bst[K, rbMeta]
}

func (t *rbTree[K]) Color(v Vertex[K]) RBColor {
	x, ok := v.(*vertex[K, rbMeta])
	if !ok || x == nil {
		return Black
	}
	return x.meta.color
}

func (t *rbTree[K]) paint(v *vertex[K, rbMeta], color RBColor) {
	if v == nil || v.meta.color == color {
		return
	}
	v.meta.color = color
	t.stats.recordRecolor()
}

// rotateToward rotates x down to the side of v (a child of x).
func (t *rbTree[K]) rotateToward(x, v *vertex[K, rbMeta]) {
	if v.direction() == Left {
		t.rotateLeft(x)
	} else {
		t.rotateRight(x)
	}
}

// rotateAway rotates x down to the opposite side of v.
func (t *rbTree[K]) rotateAway(x, v *vertex[K, rbMeta]) {
	if v.direction() == Left {
		t.rotateRight(x)
	} else {
		t.rotateLeft(x)
	}
}

func (t *rbTree[K]) Insert(key K) error {
	if err := t.validateKey(key); err != nil {
		return err
	}
	z, ok := t.insertOrdered(key, rbMeta{color: Red})
	if !ok {
		return nil
	}
	t.insertRebalance(z)
	return nil
}

/*
New vertex X is red by default.

<X> is a RED vertex.
[X] is a BLACK vertex (or NIL).
{X} is either a RED vertex or a BLACK vertex.

im1: X is the root, repaint X into black.

im2: X's parent P is black, nothing is violated.

im3: Both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Loop to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to its own direction.
Then swap the roles of X and P, enter im5 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: X is the same direction as P. Repaint, then rotate G
opposite to X's direction.

	    [G]                 <G>               [P]
	    / \    repaint      / \    rotate(G)  / \
	  <P> [U]  ========>  [P] [U]  ======>  <X> <G>
	  /                   /                       \
	<X>                 <X>                       [U]
*/
func (t *rbTree[K]) insertRebalance(x *vertex[K, rbMeta]) {
	for {
		p := x.parent
		if /* im1 */ p == nil {
			t.paint(x, Black)
			return
		}

		if /* im2 */ isBlack[K](p) {
			return
		}

		// The red parent is never the root, so the grandpa exists.
		gp := p.parent
		if uncle := p.sibling(); /* im3 */ isRed[K](uncle) {
			t.paint(uncle, Black)
			t.paint(p, Black)
			t.paint(gp, Red)
			x = gp
			continue
		}

		if /* im4 */ x.direction() != p.direction() {
			if p.direction() == Left {
				t.rotateLeft(p)
			} else {
				t.rotateRight(p)
			}
			x, p = p, x
		}

		/* im5 */
		t.paint(p, Black)
		t.paint(gp, Red)
		t.rotateAway(gp, x)
		return
	}
}

/*
Delete removes the vertex holding the key.

r1: The target vertex Z has left and right children.
Swap the key with its pred (or succ), the vertex to remove has at
most one child now.

r2: The vertex to remove has no child. Attach a black phantom leaf
as its left child, so it always has exactly one child C to promote.

r3: C is red, repaint C into black. The removed black is absorbed.

r4: C is black and the removed vertex is black. C carries a
double black, enter the remove fixup.

The phantom leaf is detached again before returning.
*/
func (t *rbTree[K]) Delete(key K) bool {
	z := t.search(key)
	if z == nil {
		return false
	}
	if /* r1 */ z.left != nil && z.right != nil {
		z = t.swapWithPredecessor(z)
	}

	var phantom *vertex[K, rbMeta]
	if /* r2 */ z.left == nil && z.right == nil {
		phantom = &vertex[K, rbMeta]{
			parent: z,
			meta:   rbMeta{color: Black},
		}
		z.left = phantom
	}

	child := z.right
	if child == nil {
		child = z.left
	}
	t.spliceOut(z)
	if /* r3 */ isRed[K](child) {
		t.paint(child, Black)
	} else if /* r4 */ isBlack[K](z) {
		t.removeRebalance(child)
	}

	if phantom != nil {
		t.spliceOut(phantom)
		phantom.unlink()
	}
	t.release(z)
	return true
}

func (t *rbTree[K]) RemoveMin() (key K, ok bool) {
	if key, ok = t.Min(); ok {
		t.Delete(key)
	}
	return key, ok
}

func (t *rbTree[K]) RemoveMax() (key K, ok bool) {
	if key, ok = t.Max(); ok {
		t.Delete(key)
	}
	return key, ok
}

/*
<X> is a RED vertex.
[X] is a BLACK vertex (or NIL).
{X} is either a RED vertex or a BLACK vertex.

X carries a double black. S is X's sibling.
Sc is the same direction to X and it is X's near nephew.
Sd is the opposite direction to X and it is X's far nephew.

rm1: X is the root, the whole tree black height decreases by one.

rm2: X's sibling S is red, so the parent P, nephew Sc and Sd
must be black. (Otherwise, red-violation)
Repaint P into red, S into black. Rotate P toward X.
X gets a new black sibling.

	  [P]                 <P>                 [S]
	  / \    repaint      / \   l-rotate(P)   / \
	[X] <S>  ======>    [X] [S] ==========> <P> [Sd]
	    / \                 / \             / \
	 [Sc] [Sd]           [Sc] [Sd]        [X] [Sc]

rm3: The parent P, the sibling S, nephew Sc and Sd are all black.
Paint S into red to satisfy p4 locally. Then loop to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: The parent P is red, the sibling S, nephew Sc and Sd are black.
Repaint S into red and P into black.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm5: The sibling S is black, the near nephew Sc is red and the far
nephew Sd is black. Repaint Sc into black and S into red, rotate S
away from X. The rotation only prepares rm6, it never resolves.

	  {P}                  {P}                   {P}
	  / \      repaint     / \    r-rotate(S)    / \
	[X] [S]   =======>   [X] <S>  ==========>  [X] [Sc]
	    / \                  / \                     \
	  <Sc> [Sd]            [Sc] [Sd]                 <S>
	                                                   \
	                                                   [Sd]

rm6: The sibling S is black and the far nephew Sd is red.
Paint S with P's color, repaint Sd and P into black, rotate P toward X.

	  {P}                   [S]                {S}
	  / \    repaint        / \    l-rotate(P) / \
	[X] [S]  ==========>  [X] {S} =========> [P] [Sd]
	    / \                   / \            / \
	  {Sc} <Sd>            {Sc} [Sd]       [X] {Sc}
*/
func (t *rbTree[K]) removeRebalance(x *vertex[K, rbMeta]) {
	for {
		p := x.parent
		if /* rm1 */ p == nil {
			return
		}

		sibling := x.sibling()
		if /* rm2 */ isRed[K](sibling) {
			t.paint(p, Red)
			t.paint(sibling, Black)
			t.rotateToward(p, x)
			sibling = x.sibling()
		}

		near, far := t.nephews(x, sibling)
		if /* rm3 */ isBlack[K](p) && isBlack[K](sibling) && isBlack[K](near) && isBlack[K](far) {
			t.paint(sibling, Red)
			x = p
			continue
		}

		if /* rm4 */ isRed[K](p) && isBlack[K](sibling) && isBlack[K](near) && isBlack[K](far) {
			t.paint(sibling, Red)
			t.paint(p, Black)
			return
		}

		if /* rm5 */ isRed[K](near) && isBlack[K](far) {
			t.paint(near, Black)
			t.paint(sibling, Red)
			t.rotateAway(sibling, x)
			sibling = x.sibling()
			_, far = t.nephews(x, sibling)
		}

		/* rm6 */
		t.paint(sibling, p.meta.color)
		t.paint(far, Black)
		t.paint(p, Black)
		t.rotateToward(p, x)
		return
	}
}

// nephews returns the sibling's children, near to x first.
func (t *rbTree[K]) nephews(x, sibling *vertex[K, rbMeta]) (near, far *vertex[K, rbMeta]) {
	if sibling == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] double black vertex without sibling")
	}
	if x.direction() == Left {
		return sibling.left, sibling.right
	}
	return sibling.right, sibling.left
}

func (t *rbTree[K]) RotateLeft(Vertex[K]) error {
	return fmt.Errorf("%w: red-black tree vertices can not be rotated left by users", ErrUnsupportedOperation)
}

func (t *rbTree[K]) RotateRight(Vertex[K]) error {
	return fmt.Errorf("%w: red-black tree vertices can not be rotated right by users", ErrUnsupportedOperation)
}

func NewRBTree[K infra.OrderedKey](opts ...TreeOption) RBTree[K] {
	return &rbTree[K]{
		bst: newBST[K, rbMeta]("rb", func(v *vertex[K, rbMeta]) string {
			if v.meta.color == Red {
				return fmt.Sprintf("R{%v}", v.key)
			}
			return fmt.Sprintf("B{%v}", v.key)
		}, opts...),
	}
}
