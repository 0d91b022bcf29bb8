// Command ifdif evaluates SEAndroid policies for information-flow
// regressions between two policy snapshots.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/seanpol/ifdif/internal/ifdiferr"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ifdif: %v\n", err)
		return exitCodeFor(err)
	}
	return 0
}

// exitCodeFor maps an error to one of the two nonzero exit codes
// SPEC_FULL.md §6 defines: 2 for a query parse/eval failure, 1 for
// everything else (policy load failures and all other errors).
func exitCodeFor(err error) int {
	var parseErr *ifdiferr.QueryParseError
	var indexErr *ifdiferr.QueryIndexError
	var typeErr *ifdiferr.QueryTypeError
	if errors.As(err, &parseErr) || errors.As(err, &indexErr) || errors.As(err, &typeErr) {
		return 2
	}
	return 1
}
