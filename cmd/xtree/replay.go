package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/benz9527/xcoll/lib/tree"
	"github.com/benz9527/xcoll/lib/xlog"
)

var ErrUnknownTreeKind = errors.New("[xtree] unknown tree kind")

const (
	KindAVL = "avl"
	KindRB  = "rb"
	KindBST = "bst"
)

var treeKinds = []string{KindAVL, KindRB, KindBST}

func newTree(kind string, opts ...tree.TreeOption) (tree.OrderedTree[int64], error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindAVL:
		return tree.NewAVLTree[int64](opts...), nil
	case KindRB:
		return tree.NewRBTree[int64](opts...), nil
	case KindBST:
		return tree.NewBSTree[int64](opts...), nil
	default:
	}
	return nil, fmt.Errorf("%w: %q, expected one of %s", ErrUnknownTreeKind, kind, strings.Join(treeKinds, ", "))
}

type replayResult struct {
	Kind     string
	Inserted int
	Deleted  int
	Hits     int
	Misses   int
	Len      int64
	Depth    int
	Keys     []int64
	Stats    tree.RebalanceStats
	Rendered string
	// Invalid holds the violations found by the validators.
	Invalid error
}

// replay applies the ops in order. Only a rejected insert aborts it.
func replay(ctx context.Context, kind string, t tree.OrderedTree[int64], ops []Op, logger xlog.XLogger) (*replayResult, error) {
	res := &replayResult{Kind: kind}
	for idx, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch op.Kind {
		case OpInsert:
			if err := t.Insert(op.Key); err != nil {
				return nil, fmt.Errorf("op %d %s: %w", idx, op, err)
			}
			res.Inserted++
		case OpDelete:
			if t.Delete(op.Key) {
				res.Deleted++
			}
		case OpContains:
			if t.Contains(op.Key) {
				res.Hits++
			} else {
				res.Misses++
			}
		default:
		}
		logger.DebugContext(ctx, "replayed op",
			zap.String("kind", kind),
			zap.Int("idx", idx),
			zap.Stringer("op", op),
			zap.Int64("len", t.Len()),
		)
	}

	res.Len = t.Len()
	res.Depth = t.Depth()
	res.Keys = slices.Collect(t.All())
	if bt, ok := t.(tree.BalancedTree[int64]); ok {
		res.Stats = bt.Stats()
	}
	res.Rendered = t.String()
	res.Invalid = tree.Validate[int64](t)
	logger.InfoContext(ctx, "replay done",
		zap.String("kind", kind),
		zap.Int("ops", len(ops)),
		zap.Int64("len", res.Len),
		zap.Int("depth", res.Depth),
		zap.Int64("rotations", res.Stats.Rotations),
		zap.Int64("recolors", res.Stats.Recolors),
	)
	return res, nil
}

func (res *replayResult) print(w io.Writer, render, validate bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "kind: %s\n", res.Kind)
	fmt.Fprintf(&b, "inserted: %d deleted: %d hits: %d misses: %d\n", res.Inserted, res.Deleted, res.Hits, res.Misses)
	fmt.Fprintf(&b, "len: %d depth: %d\n", res.Len, res.Depth)
	fmt.Fprintf(&b, "keys: %v\n", res.Keys)
	fmt.Fprintf(&b, "rotations: %d recolors: %d\n", res.Stats.Rotations, res.Stats.Recolors)
	if render {
		b.WriteString(res.Rendered)
	}
	if validate {
		if res.Invalid != nil {
			fmt.Fprintf(&b, "validate: %v\n", res.Invalid)
		} else {
			b.WriteString("validate: ok\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
