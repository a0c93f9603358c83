package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xcoll/lib/infra"
)

// Tree rule validation utilities.
// They are debug checks of the invariants, the trees never call them.

// OrderViolationValidate checks the links between parents and children,
// the strict order of the keys and the number of keys.
func OrderViolationValidate[K infra.OrderedKey](tree OrderedTree[K]) error {
	if root := tree.Root(); root != nil && root.Parent() != nil {
		return errors.New("tree root has a parent")
	}

	var err error
	tree.DFS(PreOrder, func(v Vertex[K]) bool {
		if l := v.Left(); l != nil && l.Parent() != v {
			err = fmt.Errorf("tree link violation, left child of %v", v.Key())
			return false
		}
		if r := v.Right(); r != nil && r.Parent() != v {
			err = fmt.Errorf("tree link violation, right child of %v", v.Key())
			return false
		}
		return true
	})
	if err != nil {
		return err
	}

	var (
		count     int64
		prev      K
		direction int64
	)
	for key := range tree.All() {
		if count > 0 {
			res := infra.AscKeyComparator(prev, key)
			if res == 0 || (direction != 0 && res != direction) {
				return fmt.Errorf("tree order violation between %v and %v", prev, key)
			}
			direction = res
		}
		prev = key
		count++
	}
	if count != tree.Len() {
		return fmt.Errorf("tree size violation, len %d but %d keys reachable", tree.Len(), count)
	}
	return nil
}

// AVLViolationValidate checks every cached height and balance factor.
func AVLViolationValidate[K infra.OrderedKey](tree AVLTree[K]) error {
	var err error
	tree.DFS(PostOrder, func(v Vertex[K]) bool {
		expected := 1 + max(tree.Height(v.Left()), tree.Height(v.Right()))
		if h := tree.Height(v); h != expected {
			err = fmt.Errorf("avl height violation at %v, cached %d but %d", v.Key(), h, expected)
			return false
		}
		if b := tree.Balance(v); b < -1 || b > 1 {
			err = fmt.Errorf("avl balance violation at %v, balance %d", v.Key(), b)
			return false
		}
		return true
	})
	return err
}

func isBlackVertex[K infra.OrderedKey](tree RBTree[K], v Vertex[K]) bool {
	return v == nil || tree.Color(v) == Black
}

func isRedVertex[K infra.OrderedKey](tree RBTree[K], v Vertex[K]) bool {
	return v != nil && tree.Color(v) == Red
}

func blackDepthTo[K infra.OrderedKey](tree RBTree[K], target, to Vertex[K]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlackVertex[K](tree, aux) {
			depth++
		}
	}
	return depth
}

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

func RootViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	if isRedVertex[K](tree, tree.Root()) {
		return errors.New("rbtree root violation")
	}
	return nil
}

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	var err error
	tree.DFS(InOrder, func(v Vertex[K]) bool {
		if isRedVertex[K](tree, v) &&
			(isRedVertex[K](tree, v.Parent()) || isRedVertex[K](tree, v.Left()) || isRedVertex[K](tree, v.Right())) {
			err = fmt.Errorf("rbtree red violation at %v", v.Key())
			return false
		}
		return true
	})
	return err
}

// BFS traversal to load all vertices owning a NIL child.
func bfsLeaves[K infra.OrderedKey](tree RBTree[K]) []Vertex[K] {
	leaves := make([]Vertex[K], 0, tree.Len()>>1+1)
	tree.BFS(func(depth int, v Vertex[K]) bool {
		if /* nil leaves, keep one */ v.Left() == nil || v.Right() == nil {
			leaves = append(leaves, v)
		}
		return true
	})
	return leaves
}

/*
<X> is a RED vertex.
[X] is a BLACK vertex (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf vertex to root vertex black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey](tree RBTree[K]) error {
	leaves := bfsLeaves[K](tree)
	if len(leaves) == 0 {
		return nil
	}

	blackDepth := blackDepthTo[K](tree, leaves[0], tree.Root())
	for i := 1; i < len(leaves); i++ {
		if blackDepthTo[K](tree, leaves[i], tree.Root()) != blackDepth {
			return fmt.Errorf("rbtree black violation at %v", leaves[i].Key())
		}
	}
	return nil
}

// Validate runs every validator that applies to the tree and
// reports all violations.
func Validate[K infra.OrderedKey](tree OrderedTree[K]) error {
	err := OrderViolationValidate[K](tree)
	switch t := tree.(type) {
	case AVLTree[K]:
		err = multierr.Append(err, AVLViolationValidate[K](t))
	case RBTree[K]:
		err = multierr.Combine(
			err,
			RootViolationValidate[K](t),
			RedViolationValidate[K](t),
			BlackViolationValidate[K](t),
		)
	default:
	}
	return err
}
