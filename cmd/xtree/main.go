package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	undo, err := maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "xtree: set GOMAXPROCS: %v\n", err)
	}

	if err = newRootCmd(os.Stdout).Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "xtree: %v\n", err)
		undo()
		os.Exit(1)
	}
	undo()
}
