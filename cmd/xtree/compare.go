package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/benz9527/xcoll/lib/xlog"
)

// compareKinds replays the same ops against every kind, each tree is
// owned by a single pool worker.
func compareKinds(ctx context.Context, cfg *config, ops []Op, logger xlog.XLogger) ([]*replayResult, error) {
	kinds := lo.Uniq(cfg.Kinds)
	if len(kinds) == 0 {
		kinds = treeKinds
	}
	pool, err := ants.NewPool(
		len(kinds),
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
		ants.WithPreAlloc(true),
	)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		results = make([]*replayResult, len(kinds))
		errs    = make([]error, len(kinds))
	)
	for i, kind := range kinds {
		t, err := newTree(kind, cfg.treeOptions(kind)...)
		if err != nil {
			return nil, err
		}
		wg.Add(1)
		if err = pool.Submit(func() {
			defer wg.Done()
			defer t.Release()
			results[i], errs[i] = replay(ctx, kind, t, ops, logger)
		}); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()
	return results, multierr.Combine(errs...)
}

func printComparison(w io.Writer, results []*replayResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tLEN\tDEPTH\tROTATIONS\tRECOLORS\tVALID")
	for _, res := range results {
		valid := "ok"
		if res.Invalid != nil {
			valid = res.Invalid.Error()
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
			res.Kind, res.Len, res.Depth, res.Stats.Rotations, res.Stats.Recolors, valid)
	}
	return tw.Flush()
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Replay the ops against several tree kinds concurrently",
		Example: `  xtree compare --kinds avl,rb,bst --ops "+1 +2 +3 +4 +5 -2"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.v, cmd.Flags(), opts.cfgFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			ops, err := cfg.loadOps()
			if err != nil {
				return err
			}
			results, err := compareKinds(cmd.Context(), cfg, ops, logger)
			if err != nil {
				return err
			}
			return printComparison(cmd.OutOrStdout(), results)
		},
	}
	flags := cmd.Flags()
	flags.StringSlice("kinds", treeKinds, "tree kinds to compare")
	addReplayFlags(flags)
	return cmd
}
