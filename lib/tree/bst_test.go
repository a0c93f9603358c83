package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBSTree(t *testing.T, keys ...int) BSTree[int] {
	t.Helper()
	tree := NewBSTree[int]()
	for _, key := range keys {
		require.NoError(t, tree.Insert(key))
	}
	return tree
}

func TestBSTree_InsertAndSearch(t *testing.T) {
	tree := newTestBSTree(t, 5, 3, 8, 1, 4)
	require.Equal(t, int64(5), tree.Len())
	require.False(t, tree.IsEmpty())
	require.Equal(t, 2, tree.Depth())
	require.Equal(t, []int{1, 3, 4, 5, 8}, slices.Collect(tree.All()))
	require.Equal(t, []int{8, 5, 4, 3, 1}, slices.Collect(tree.Backward()))
	require.Equal(t, "5\n├─L─ 3\n│    ├─L─ 1\n│    └─R─ 4\n└─R─ 8\n", tree.String())

	require.NoError(t, tree.Insert(4))
	require.Equal(t, int64(5), tree.Len())

	x := tree.Search(4)
	require.NotNil(t, x)
	require.Equal(t, 4, x.Key())
	require.True(t, x.IsLeaf())
	require.False(t, x.IsRoot())
	require.Equal(t, 3, x.Parent().Key())
	require.Nil(t, x.Left())
	require.Nil(t, x.Right())
	require.Nil(t, tree.Search(7))
	require.True(t, tree.Contains(8))
	require.False(t, tree.Contains(0))

	minKey, ok := tree.Min()
	require.True(t, ok)
	require.Equal(t, 1, minKey)
	maxKey, ok := tree.Max()
	require.True(t, ok)
	require.Equal(t, 8, maxKey)
}

func TestBSTree_Empty(t *testing.T) {
	tree := NewBSTree[string]()
	require.True(t, tree.IsEmpty())
	require.Nil(t, tree.Root())
	require.Equal(t, -1, tree.Depth())
	require.Equal(t, "", tree.String())
	_, ok := tree.Min()
	require.False(t, ok)
	_, ok = tree.Max()
	require.False(t, ok)
	require.False(t, tree.Delete("x"))
	require.Empty(t, slices.Collect(tree.All()))

	visited := 0
	tree.BFS(func(int, Vertex[string]) bool {
		visited++
		return true
	})
	tree.DFS(InOrder, func(Vertex[string]) bool {
		visited++
		return true
	})
	tree.Foreach(func(int64, string) bool {
		visited++
		return true
	})
	require.Zero(t, visited)
	tree.Release()
	require.True(t, tree.IsEmpty())
}

func TestBSTree_Rotate(t *testing.T) {
	tree := newTestBSTree(t, 5, 3, 8, 1, 4)

	require.NoError(t, tree.RotateLeft(tree.Root()))
	require.Equal(t, 8, tree.Root().Key())
	require.Equal(t, 3, tree.Depth())
	require.Equal(t, []int{1, 3, 4, 5, 8}, slices.Collect(tree.All()))
	require.Equal(t, "8\n└─L─ 5\n     └─L─ 3\n          ├─L─ 1\n          └─R─ 4\n", tree.String())
	require.NoError(t, OrderViolationValidate[int](tree))

	require.NoError(t, tree.RotateRight(tree.Root()))
	require.Equal(t, 5, tree.Root().Key())
	require.Equal(t, "5\n├─L─ 3\n│    ├─L─ 1\n│    └─R─ 4\n└─R─ 8\n", tree.String())

	// Rotate an inner vertex.
	require.NoError(t, tree.RotateRight(tree.Search(3)))
	require.Equal(t, 1, tree.Root().Left().Key())
	require.Equal(t, []int{1, 3, 4, 5, 8}, slices.Collect(tree.All()))
	require.NoError(t, OrderViolationValidate[int](tree))
}

func TestBSTree_RotateInvalid(t *testing.T) {
	tree := newTestBSTree(t, 5, 3, 8)
	before := tree.String()

	require.ErrorIs(t, tree.RotateLeft(nil), ErrInvalidArgument)
	require.ErrorIs(t, tree.RotateRight(nil), ErrInvalidArgument)
	require.ErrorIs(t, tree.RotateLeft(tree.Search(8)), ErrInvalidArgument)
	require.ErrorIs(t, tree.RotateRight(tree.Search(3)), ErrInvalidArgument)

	other := newTestBSTree(t, 5, 3, 8)
	require.ErrorIs(t, tree.RotateLeft(other.Root()), ErrInvalidArgument)

	avl := NewAVLTree[int]()
	require.NoError(t, avl.Insert(1))
	require.NoError(t, avl.Insert(2))
	require.ErrorIs(t, tree.RotateLeft(avl.Root()), ErrInvalidArgument)

	require.Equal(t, before, tree.String())
}

func TestBSTree_Delete(t *testing.T) {
	testcases := []struct {
		name     string
		opts     []TreeOption
		deleted  int
		expected string
	}{
		{
			name:     "leaf",
			deleted:  1,
			expected: "5\n├─L─ 3\n│    └─R─ 4\n└─R─ 8\n",
		},
		{
			name:     "right leaf",
			deleted:  8,
			expected: "5\n└─L─ 3\n     ├─L─ 1\n     └─R─ 4\n",
		},
		{
			name:     "two children borrow pred",
			deleted:  5,
			expected: "4\n├─L─ 3\n│    └─L─ 1\n└─R─ 8\n",
		},
		{
			name:     "two children borrow succ",
			opts:     []TreeOption{WithRemoveBorrowSucc()},
			deleted:  3,
			expected: "5\n├─L─ 4\n│    └─L─ 1\n└─R─ 8\n",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			tree := NewBSTree[int](tc.opts...)
			for _, key := range []int{5, 3, 8, 1, 4} {
				require.NoError(tt, tree.Insert(key))
			}
			require.True(tt, tree.Delete(tc.deleted))
			require.False(tt, tree.Delete(tc.deleted))
			require.Equal(tt, tc.expected, tree.String())
			require.Equal(tt, int64(4), tree.Len())
			require.NoError(tt, Validate[int](tree))
		})
	}
}

func TestBSTree_Traversal(t *testing.T) {
	tree := newTestBSTree(t, 5, 3, 8, 1, 4)

	type level struct {
		depth int
		key   int
	}
	levels := make([]level, 0, 5)
	tree.BFS(func(depth int, v Vertex[int]) bool {
		levels = append(levels, level{depth: depth, key: v.Key()})
		return true
	})
	assert.Equal(t, []level{{0, 5}, {1, 3}, {1, 8}, {2, 1}, {2, 4}}, levels)

	testcases := []struct {
		order    DFSOrder
		expected []int
	}{
		{order: PreOrder, expected: []int{5, 3, 1, 4, 8}},
		{order: InOrder, expected: []int{1, 3, 4, 5, 8}},
		{order: PostOrder, expected: []int{1, 4, 3, 8, 5}},
	}
	for _, tc := range testcases {
		keys := make([]int, 0, 5)
		tree.DFS(tc.order, func(v Vertex[int]) bool {
			keys = append(keys, v.Key())
			return true
		})
		assert.Equal(t, tc.expected, keys)

		// Early stop.
		keys = keys[:0]
		tree.DFS(tc.order, func(v Vertex[int]) bool {
			keys = append(keys, v.Key())
			return len(keys) < 2
		})
		assert.Equal(t, tc.expected[:2], keys)
	}

	keys := make([]int, 0, 3)
	tree.Foreach(func(idx int64, key int) bool {
		keys = append(keys, key)
		return idx < 2
	})
	assert.Equal(t, []int{1, 3, 4}, keys)

	keys = keys[:0]
	for key := range tree.All() {
		if key > 4 {
			break
		}
		keys = append(keys, key)
	}
	assert.Equal(t, []int{1, 3, 4}, keys)

	require.Panics(t, func() {
		tree.DFS(DFSOrder(99), func(Vertex[int]) bool { return true })
	})
}

func TestBSTree_Degenerate(t *testing.T) {
	tree := NewBSTree[uint8]()
	for i := uint8(0); i < 10; i++ {
		require.NoError(t, tree.Insert(i))
	}
	require.Equal(t, 9, tree.Depth())

	tree.Release()
	require.True(t, tree.IsEmpty())
	require.Nil(t, tree.Root())

	require.NoError(t, tree.Insert(42))
	require.Equal(t, int64(1), tree.Len())
	require.Equal(t, "42\n", tree.String())
}

func TestBSTree_Desc(t *testing.T) {
	tree := NewBSTree[string](WithDesc())
	for _, key := range []string{"m", "c", "x", "a"} {
		require.NoError(t, tree.Insert(key))
	}
	require.Equal(t, []string{"x", "m", "c", "a"}, slices.Collect(tree.All()))
	require.Equal(t, "x", tree.Root().Left().Key())
	require.NoError(t, Validate[string](tree))
}
