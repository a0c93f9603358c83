package tree

type treeOptions struct {
	isDesc         bool
	isRmBorrowSucc bool
	isStatsEnabled bool
	statsName      string
}

type TreeOption func(*treeOptions)

// WithDesc orders the keys from the largest to the smallest.
func WithDesc() TreeOption {
	return func(opts *treeOptions) {
		opts.isDesc = true
	}
}

// WithRemoveBorrowSucc replaces a removed vertex with two children by
// its in-order successor instead of the predecessor.
func WithRemoveBorrowSucc() TreeOption {
	return func(opts *treeOptions) {
		opts.isRmBorrowSucc = true
	}
}

// WithTreeStats exports the tree counters through the global
// OpenTelemetry meter provider under the meter "xcoll/tree/<name>".
func WithTreeStats(name string) TreeOption {
	return func(opts *treeOptions) {
		opts.isStatsEnabled = true
		opts.statsName = name
	}
}

func applyTreeOptions(opts ...TreeOption) *treeOptions {
	cfg := &treeOptions{}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o(cfg)
	}
	return cfg
}
