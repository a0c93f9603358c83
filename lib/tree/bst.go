package tree

import (
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"github.com/benz9527/xcoll/lib/infra"
)

// bst owns the raw shape of an ordered binary search tree.
// The balanced trees embed it and run their own fixup after
// every structural mutation. The bst never calls back into them.
type bst[K infra.OrderedKey, M any] struct {
	root           *vertex[K, M]
	count          int64
	cmp            infra.OrderedKeyComparator[K]
	isRmBorrowSucc bool
	stats          *treeStats
	format         func(v *vertex[K, M]) string
}

func newBST[K infra.OrderedKey, M any](kind string, format func(v *vertex[K, M]) string, opts ...TreeOption) bst[K, M] {
	cfg := applyTreeOptions(opts...)
	t := bst[K, M]{
		cmp:            infra.AscKeyComparator[K],
		isRmBorrowSucc: cfg.isRmBorrowSucc,
		stats:          newTreeStats(kind, cfg),
		format:         format,
	}
	if cfg.isDesc {
		t.cmp = infra.DescKeyComparator[K]
	}
	return t
}

func (t *bst[K, M]) Len() int64 {
	return atomic.LoadInt64(&t.count)
}

func (t *bst[K, M]) IsEmpty() bool {
	return t.Len() == 0
}

func (t *bst[K, M]) Root() Vertex[K] {
	if t.root == nil {
		return nil
	}
	return t.root
}

func (t *bst[K, M]) Depth() int {
	depth := -1
	t.BFS(func(d int, v Vertex[K]) bool {
		depth = max(depth, d)
		return true
	})
	return depth
}

func (t *bst[K, M]) Stats() RebalanceStats {
	return t.stats.snapshot()
}

func (t *bst[K, M]) validateKey(key K) error {
	if infra.IsNaN(key) {
		return fmt.Errorf("%w: NaN key is out of the total order", ErrInvalidArgument)
	}
	return nil
}

// insertOrdered attaches a new leaf holding the key and returns it.
// If the key is present already, the existing vertex is returned with false.
func (t *bst[K, M]) insertOrdered(key K, meta M) (*vertex[K, M], bool) {
	if t.root == nil {
		t.root = &vertex[K, M]{
			key:  key,
			meta: meta,
		}
		atomic.AddInt64(&t.count, 1)
		t.stats.recordInsert()
		return t.root, true
	}

	var (
		x, y *vertex[K, M] = t.root, nil
		res  int64
	)
	for x != nil {
		y = x
		res = t.cmp(key, x.key)
		if /* equal */ res == 0 {
			return x, false
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	z := &vertex[K, M]{
		parent: y,
		key:    key,
		meta:   meta,
	}
	if res < 0 {
		y.left = z
	} else {
		y.right = z
	}
	atomic.AddInt64(&t.count, 1)
	t.stats.recordInsert()
	return z, true
}

func (t *bst[K, M]) search(key K) *vertex[K, M] {
	for aux := t.root; aux != nil; {
		res := t.cmp(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (t *bst[K, M]) Search(key K) Vertex[K] {
	if x := t.search(key); x != nil {
		return x
	}
	return nil
}

func (t *bst[K, M]) Contains(key K) bool {
	return t.search(key) != nil
}

func (t *bst[K, M]) Min() (key K, ok bool) {
	if x := t.root.minimum(); x != nil {
		return x.key, true
	}
	return key, false
}

func (t *bst[K, M]) Max() (key K, ok bool) {
	if x := t.root.maximum(); x != nil {
		return x.key, true
	}
	return key, false
}

func (t *bst[K, M]) replaceChild(p, old, repl *vertex[K, M]) {
	switch {
	case p == nil:
		t.root = repl
	case p.left == old:
		p.left = repl
	case p.right == old:
		p.right = repl
	default:
		// impossible run to here
		panic( /* debug assertion */ "[tree] vertex is not a child of its parent")
	}
	if repl != nil {
		repl.parent = p
	}
}

/*
		 |                         |
		 X                         S
		/ \     rotateLeft(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (t *bst[K, M]) rotateLeft(x *vertex[K, M]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[tree] left rotate vertex x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	x.right, y.left = y.left, x
	x.fixLink()
	y.fixLink()
	t.replaceChild(p, x, y)
	t.stats.recordRotation(Left)
}

/*
			 |                         |
			 X                         L
			/ \     rotateRight(X)    / \
	       L   R    ============>    Lc  X
		  / \                           / \
		Lc   Ld                        Ld  R
*/
func (t *bst[K, M]) rotateRight(x *vertex[K, M]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[tree] right rotate vertex x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	x.left, y.right = y.right, x
	x.fixLink()
	y.fixLink()
	t.replaceChild(p, x, y)
	t.stats.recordRotation(Right)
}

// spliceOut removes a vertex with at most one child from the shape and
// promotes the child. The links of the removed vertex are kept, so the
// caller still knows where the fixup starts.
func (t *bst[K, M]) spliceOut(v *vertex[K, M]) {
	if v.left != nil && v.right != nil {
		// impossible run to here
		panic( /* debug assertion */ "[tree] splice out a vertex with two children")
	}

	child := v.left
	if child == nil {
		child = v.right
	}
	t.replaceChild(v.parent, v, child)
}

/*
swapWithPredecessor reduces a vertex with two children to a vertex with
at most one child. Swap the key only.

Find pred:

	  |                    |
	  X                    L
	 / \                  / \
	L  ..   swap(X, L)   X  ..

Find succ:

	  |                    |
	  X                    S
	 / \                  / \
	.. ..   swap(X, S)   .. ..
	    |                    |
	    S                    X
*/
func (t *bst[K, M]) swapWithPredecessor(v *vertex[K, M]) *vertex[K, M] {
	var y *vertex[K, M]
	if t.isRmBorrowSucc {
		y = v.right.minimum()
	} else {
		y = v.left.maximum()
	}
	v.key, y.key = y.key, v.key
	return y
}

// release detaches a spliced out vertex and accounts for it.
func (t *bst[K, M]) release(v *vertex[K, M]) {
	v.unlink()
	atomic.AddInt64(&t.count, -1)
	t.stats.recordDelete()
}

// owned resolves an observer handle into a vertex of this tree.
func (t *bst[K, M]) owned(v Vertex[K]) (*vertex[K, M], error) {
	x, ok := v.(*vertex[K, M])
	if !ok || x == nil {
		return nil, fmt.Errorf("%w: nil or foreign vertex", ErrInvalidArgument)
	}
	aux := x
	for ; aux.parent != nil; aux = aux.parent {
	}
	if aux != t.root {
		return nil, fmt.Errorf("%w: vertex %v does not belong to the tree", ErrInvalidArgument, x.key)
	}
	return x, nil
}

// Inorder traversal to implement the DFS.
func (t *bst[K, M]) Foreach(action func(idx int64, key K) bool) {
	size := atomic.LoadInt64(&t.count)
	aux := t.root
	if size <= 0 || aux == nil {
		return
	}

	stack := make([]*vertex[K, M], 0, size>>1+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.key) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

func (t *bst[K, M]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for aux := t.root.minimum(); aux != nil; aux = aux.succ() {
			if !yield(aux.key) {
				return
			}
		}
	}
}

func (t *bst[K, M]) Backward() iter.Seq[K] {
	return func(yield func(K) bool) {
		for aux := t.root.maximum(); aux != nil; aux = aux.pred() {
			if !yield(aux.key) {
				return
			}
		}
	}
}

func (t *bst[K, M]) BFS(action func(depth int, v Vertex[K]) bool) {
	if t.root == nil {
		return
	}

	type level struct {
		v     *vertex[K, M]
		depth int
	}
	queue := make([]level, 0, atomic.LoadInt64(&t.count)>>1+1)
	defer func() {
		clear(queue)
	}()
	queue = append(queue, level{v: t.root})

	for len(queue) > 0 {
		aux := queue[0]
		queue = queue[1:]
		if !action(aux.depth, aux.v) {
			return
		}
		if aux.v.left != nil {
			queue = append(queue, level{v: aux.v.left, depth: aux.depth + 1})
		}
		if aux.v.right != nil {
			queue = append(queue, level{v: aux.v.right, depth: aux.depth + 1})
		}
	}
}

func (t *bst[K, M]) DFS(order DFSOrder, action func(v Vertex[K]) bool) {
	if t.root == nil {
		return
	}

	stack := make([]*vertex[K, M], 0, atomic.LoadInt64(&t.count)>>1+1)
	defer func() {
		clear(stack)
	}()

	switch order {
	case PreOrder:
		stack = append(stack, t.root)
		for len(stack) > 0 {
			aux := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !action(aux) {
				return
			}
			if aux.right != nil {
				stack = append(stack, aux.right)
			}
			if aux.left != nil {
				stack = append(stack, aux.left)
			}
		}
	case InOrder:
		for aux := t.root; aux != nil || len(stack) > 0; {
			if aux != nil {
				stack = append(stack, aux)
				aux = aux.left
				continue
			}
			aux = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !action(aux) {
				return
			}
			aux = aux.right
		}
	case PostOrder:
		var last *vertex[K, M]
		for aux := t.root; aux != nil || len(stack) > 0; {
			if aux != nil {
				stack = append(stack, aux)
				aux = aux.left
				continue
			}
			peek := stack[len(stack)-1]
			if peek.right != nil && peek.right != last {
				aux = peek.right
				continue
			}
			if !action(peek) {
				return
			}
			last = peek
			stack = stack[:len(stack)-1]
		}
	default:
		panic(fmt.Sprintf("[tree] unknown dfs order %d", order))
	}
}

// Release detaches all vertices, the tree is empty and reusable afterwards.
func (t *bst[K, M]) Release() {
	size := atomic.LoadInt64(&t.count)
	aux := t.root
	t.root = nil
	if aux == nil {
		atomic.StoreInt64(&t.count, 0)
		return
	}

	stack := make([]*vertex[K, M], 0, size>>1+1)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)
	for len(stack) > 0 {
		aux = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.unlink()
	}
	atomic.StoreInt64(&t.count, 0)
	t.stats.recordRelease(size)
}

/*
String renders one vertex per line, the left child first.

	B{20}
	├─L─ R{10}
	└─R─ R{30}
*/
func (t *bst[K, M]) String() string {
	if t.root == nil {
		return ""
	}

	type line struct {
		v    *vertex[K, M]
		head string
		tail string
	}
	builder := strings.Builder{}
	stack := []line{{v: t.root}}
	for len(stack) > 0 {
		l := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		builder.WriteString(l.head)
		builder.WriteString(t.format(l.v))
		builder.WriteByte('\n')

		// Push the right child first, so the left one is rendered first.
		switch {
		case l.v.left != nil && l.v.right != nil:
			stack = append(stack,
				line{v: l.v.right, head: l.tail + "└─R─ ", tail: l.tail + "     "},
				line{v: l.v.left, head: l.tail + "├─L─ ", tail: l.tail + "│    "},
			)
		case l.v.left != nil:
			stack = append(stack, line{v: l.v.left, head: l.tail + "└─L─ ", tail: l.tail + "     "})
		case l.v.right != nil:
			stack = append(stack, line{v: l.v.right, head: l.tail + "└─R─ ", tail: l.tail + "     "})
		default:
		}
	}
	return builder.String()
}

var _ BSTree[int] = (*bsTree[int])(nil)

// bsTree is the plain ordered binary search tree, it is not balanced.
// Rotations are public here since no invariant depends on the shape.
type bsTree[K infra.OrderedKey] struct {
	bst[K, struct{}]
}

func (t *bsTree[K]) Insert(key K) error {
	if err := t.validateKey(key); err != nil {
		return err
	}
	t.insertOrdered(key, struct{}{})
	return nil
}

func (t *bsTree[K]) Delete(key K) bool {
	z := t.search(key)
	if z == nil {
		return false
	}
	if z.left != nil && z.right != nil {
		z = t.swapWithPredecessor(z)
	}
	t.spliceOut(z)
	t.release(z)
	return true
}

func (t *bsTree[K]) RotateLeft(v Vertex[K]) error {
	x, err := t.owned(v)
	if err != nil {
		return err
	}
	if x.right == nil {
		return fmt.Errorf("%w: vertex %v has no right child to rotate left", ErrInvalidArgument, x.key)
	}
	t.rotateLeft(x)
	return nil
}

func (t *bsTree[K]) RotateRight(v Vertex[K]) error {
	x, err := t.owned(v)
	if err != nil {
		return err
	}
	if x.left == nil {
		return fmt.Errorf("%w: vertex %v has no left child to rotate right", ErrInvalidArgument, x.key)
	}
	t.rotateRight(x)
	return nil
}

func NewBSTree[K infra.OrderedKey](opts ...TreeOption) BSTree[K] {
	return &bsTree[K]{
		bst: newBST[K, struct{}]("bst", func(v *vertex[K, struct{}]) string {
			return fmt.Sprint(v.key)
		}, opts...),
	}
}
