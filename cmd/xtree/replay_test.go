package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xcoll/lib/tree"
	"github.com/benz9527/xcoll/lib/xlog"
)

func mustOps(t *testing.T, input string) []Op {
	ops, err := ParseOps(strings.NewReader(input))
	require.NoError(t, err)
	return ops
}

func TestNewTree(t *testing.T) {
	for _, kind := range treeKinds {
		tr, err := newTree(kind)
		require.NoError(t, err)
		require.True(t, tr.IsEmpty())
	}
	tr, err := newTree(" RB ")
	require.NoError(t, err)
	_, ok := tr.(tree.RBTree[int64])
	require.True(t, ok)

	_, err = newTree("splay")
	require.ErrorIs(t, err, ErrUnknownTreeKind)
}

func TestReplay_RB(t *testing.T) {
	tr, err := newTree(KindRB)
	require.NoError(t, err)

	res, err := replay(context.Background(), KindRB, tr, mustOps(t, "+10 +20 +30 ?20 -10 -10 ?10"), xlog.NewNopXLogger())
	require.NoError(t, err)
	require.Equal(t, 3, res.Inserted)
	require.Equal(t, 1, res.Deleted)
	require.Equal(t, 1, res.Hits)
	require.Equal(t, 1, res.Misses)
	require.Equal(t, int64(2), res.Len)
	require.Equal(t, 1, res.Depth)
	require.Equal(t, []int64{20, 30}, res.Keys)
	require.Equal(t, int64(1), res.Stats.Rotations)
	require.Equal(t, "B{20}\n└─R─ R{30}\n", res.Rendered)
	require.NoError(t, res.Invalid)

	buf := &bytes.Buffer{}
	require.NoError(t, res.print(buf, true, true))
	require.Equal(t, "kind: rb\n"+
		"inserted: 3 deleted: 1 hits: 1 misses: 1\n"+
		"len: 2 depth: 1\n"+
		"keys: [20 30]\n"+
		"rotations: 1 recolors: 3\n"+
		"B{20}\n└─R─ R{30}\n"+
		"validate: ok\n", buf.String())
}

func TestReplay_AVL(t *testing.T) {
	tr, err := newTree(KindAVL, tree.WithDesc())
	require.NoError(t, err)

	res, err := replay(context.Background(), KindAVL, tr, mustOps(t, "+1 +2 +3 +4 +5"), xlog.NewNopXLogger())
	require.NoError(t, err)
	require.Equal(t, []int64{5, 4, 3, 2, 1}, res.Keys)
	require.Equal(t, int64(2), res.Stats.Rotations)
	require.Equal(t, int64(0), res.Stats.Recolors)
	require.Equal(t, 2, res.Depth)

	buf := &bytes.Buffer{}
	require.NoError(t, res.print(buf, false, false))
	require.NotContains(t, buf.String(), "validate")
	require.Contains(t, buf.String(), "keys: [5 4 3 2 1]\n")
}

func TestReplay_BST(t *testing.T) {
	tr, err := newTree(KindBST)
	require.NoError(t, err)

	res, err := replay(context.Background(), KindBST, tr, mustOps(t, "+1 +2 +3"), xlog.NewNopXLogger())
	require.NoError(t, err)
	require.Equal(t, 2, res.Depth)
	require.Equal(t, tree.RebalanceStats{}, res.Stats)
	require.NoError(t, res.Invalid)
}

func TestReplay_Canceled(t *testing.T) {
	tr, err := newTree(KindAVL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = replay(ctx, KindAVL, tr, mustOps(t, "+1"), xlog.NewNopXLogger())
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, tr.IsEmpty())
}
