package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type rootOptions struct {
	cfgFile string
	v       *viper.Viper
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{v: viper.New()}
	rootCmd := &cobra.Command{
		Use:           "xtree",
		Short:         "xtree replays scripted operations against ordered trees",
		Long:          "xtree replays insert (+k), delete (-k) and contains (?k) ops against an AVL, red-black or plain binary search tree.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "config file path (yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-encoder", "plaintext", "log encoder: json, plaintext")
	flags.String("log-file", "", "append the logs into the file instead of stderr")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newCompareCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func addReplayFlags(flags *pflag.FlagSet) {
	flags.String("ops", "", `ops to replay, e.g. "+1 +2 -1 ?2"`)
	flags.String("ops-file", "", "file of whitespace separated ops, # starts a comment")
	flags.Bool("render", false, "render the final tree")
	flags.Bool("validate", false, "validate the tree invariants after the replay")
	flags.Bool("desc", false, "order the keys from the largest to the smallest")
	flags.Bool("borrow-succ", false, "replace removed vertices by their successor")
	flags.String("metrics", "", "export the tree metrics: console, prometheus")
	flags.Duration("metrics-interval", 10*time.Second, "console metrics export interval")
}
